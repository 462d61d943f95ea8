package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/services"
)

// handleAPIDue lists the chunks due today, most overdue first. The limit
// query parameter defaults to the daily limit.
func (s *Server) handleAPIDue(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	limit := services.DefaultDailyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, r, errors.NewBadRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	chunks, err := s.ReviewService.DueChunks(r.Context(), user.ID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"count":  len(chunks),
		"chunks": chunks,
	})
}

type reviewRequest struct {
	Quality     *int    `json:"quality"`
	TimeSeconds float64 `json:"time_seconds"`
}

func (s *Server) handleAPIReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := chunkIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid review body: %v", err)
		handleError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if req.Quality == nil {
		handleError(w, r, errors.NewValidationError("quality", "is required"))
		return
	}
	if req.TimeSeconds < 0 {
		req.TimeSeconds = 0
	}

	user := userFromContext(r.Context())
	chunk, err := s.ReviewService.Review(r.Context(), user.ID, id, *req.Quality, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, chunk)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	stats, err := s.StatsService.ChunkStats(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	dist, err := s.StatsService.QualityDistribution(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"stats":                stats,
		"quality_distribution": dist,
	})
}
