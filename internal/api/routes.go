package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Post("/logout", s.handleLogout)
		r.Post("/settings/api-key", s.handleSetAPIKey)

		r.Get("/", s.handlePractice)
		r.Post("/chunks/{id}/exercise", s.handleGenerateExercise)
		r.Post("/chunks/{id}/answer", s.handleCheckAnswer)
		r.Post("/chunks/{id}/review", s.handleReviewChunk)

		r.Get("/chunks", s.handleChunks)
		r.Post("/chunks", s.handleAddChunk)
		r.Post("/chunks/edit", s.handleEditChunks)
		r.Post("/chunks/delete", s.handleDeleteChunks)
		r.Post("/chunks/reset-intervals", s.handleResetIntervals)
		r.Post("/chunks/reset-all", s.handleResetAll)

		r.Post("/import", s.handleImport)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)

		r.Route("/api", func(r chi.Router) {
			r.Get("/due", s.handleAPIDue)
			r.Post("/chunks/{id}/review", s.handleAPIReview)
			r.Get("/stats", s.handleAPIStats)
		})
	})
	return r
}
