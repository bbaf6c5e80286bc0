package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.comments.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	comment, err := s.comments.Create(r.Context(), user, mux.Vars(r)["id"], req.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, comment)
}
