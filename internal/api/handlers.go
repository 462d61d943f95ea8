package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/services"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	Ready(ctx context.Context) error
}

type Server struct {
	ChunkService    services.ChunkService
	ReviewService   services.ReviewService
	TransferService services.TransferService
	ExerciseService services.ExerciseService
	StatsService    services.StatsService
	AuthService     services.AuthService
	DB              HealthChecker
	Templates       *template.Template
	SecureCookies   bool
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}
	if _, ok := data["user"]; !ok {
		data["user"] = userFromContext(r.Context())
	}
	if session := sessionFromContext(r.Context()); session != nil {
		data["has_api_key"] = session.OpenAIAPIKey != ""
	}
	if _, ok := data["notice"]; !ok {
		data["notice"] = r.URL.Query().Get("notice")
	}

	log := logger.FromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// redirectWithNotice sends the browser to path with a one-line message for
// the next page.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	if notice != "" {
		path += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func chunkIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("invalid chunk ID")
	}
	return id, nil
}

// formIDs parses every value of a repeated form field as a chunk ID.
func formIDs(r *http.Request, field string) ([]int64, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.NewBadRequestError("invalid form")
	}
	values := r.Form[field]
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.NewBadRequestError("invalid chunk ID: " + v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
