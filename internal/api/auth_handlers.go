package api

import (
	"net/http"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "pages/login.html", nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	email := r.FormValue("email")

	session, user, err := s.AuthService.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		appErr, ok := errors.As(err)
		if !ok || appErr.Status >= 500 || wantsJSON(r) {
			handleError(w, r, err)
			return
		}
		log.Warn("login rejected for %s: %v", email, err)
		s.renderStatus(w, r, appErr.Status, "pages/login.html", pageData{
			"error": appErr.Message,
			"email": email,
		})
		return
	}

	s.setSessionCookie(w, session)
	log.Info("user %d signed in", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFromContext(r.Context()); session != nil {
		if err := s.AuthService.Logout(r.Context(), session.Token); err != nil {
			handleError(w, r, err)
			return
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	if err := s.AuthService.SetAPIKey(r.Context(), session.Token, r.FormValue("api_key")); err != nil {
		handleError(w, r, err)
		return
	}
	redirectWithNotice(w, r, "/", "API key saved")
}
