package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type credentials struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	user, err := s.users.Register(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, user)
}

// handleLogin answers 404 for both an unknown user and a wrong password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	token, err := s.users.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.metrics.RecordLogin(false)
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordLogin(true)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(token))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if err := s.sessions.Revoke(r.Context(), user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	s.writeJSON(w, r, user)
}

func (s *Server) handleFindUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.FindByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, user)
}
