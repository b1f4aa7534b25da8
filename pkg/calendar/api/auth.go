package api

import (
	"encoding/json"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
}

// handleLogin checks the username against the injected allow-list.
// No password or session is involved.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, ok := s.allowed[req.Username]; !ok {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "login fail or user not exist"})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"username": req.Username,
		"role":     "member",
	})
}
