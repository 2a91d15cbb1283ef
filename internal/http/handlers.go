package http

import (
	"net/http"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"security": s.metrics.snapshot(),
	})
}

// handleReady reports ready once the first store snapshot has loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"snapshot": "ok"}
	status := http.StatusOK
	if s.deps.Dashboard == nil || !s.deps.Dashboard.Ready() {
		checks["snapshot"] = "loading"
		status = http.StatusServiceUnavailable
	}

	body := map[string]any{"status": "ready", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "not_ready"
	}
	writeJSON(w, status, body)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Authenticator == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: msgNotFound})
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}
	sess, err := s.deps.Authenticator.SignIn(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: core.UserMessage(core.ErrInvalidCredentials)})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Authenticator != nil {
		s.deps.Authenticator.SignOut(r.Context(), tokenFrom(r))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFamily(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Family.Members())
}
