package api

import (
	"net/http"
	"strconv"

	"github.com/chunkrecall/trainer/internal/logger"
)

func (s *Server) handleReviewChunk(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := chunkIDParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	quality, err := parseQuality(r.FormValue("quality"))
	if err != nil {
		log.Warn("invalid quality value: %s", r.FormValue("quality"))
		handleError(w, r, err)
		return
	}

	// time_seconds is optional
	timeSeconds, _ := strconv.ParseFloat(r.FormValue("time_seconds"), 64)
	if timeSeconds < 0 {
		timeSeconds = 0
	}

	log = log.WithFields(map[string]any{
		"chunk_id":     id,
		"quality":      quality,
		"time_seconds": timeSeconds,
	})
	log.Debug("reviewing chunk")

	user := userFromContext(r.Context())
	chunk, err := s.ReviewService.Review(r.Context(), user.ID, id, quality, timeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("chunk reviewed, next due %s", chunk.NextDueDate)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
