package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/stargram/internal/common"
)

// handleCreateFeed streams the multipart body into the upload pipeline.
// The body is capped at MaxUploadBytes before any part is read.
func (s *Server) handleCreateFeed(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	parts, err := r.MultipartReader()
	if err != nil {
		status := s.writeError(w, r, fmt.Errorf("%w: %v", common.ErrorMalformedUpload, err))
		s.metrics.RecordUploadFailed(status)
		return
	}

	feed, err := s.feeds.Create(r.Context(), user, parts)
	if err != nil {
		status := s.writeError(w, r, err)
		s.metrics.RecordUploadFailed(status)
		return
	}
	s.metrics.RecordFeedCreated(feed.ImageCount)

	s.writeJSON(w, r, feed)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeStatus(w, http.StatusNotFound)
		return
	}

	image, err := s.feeds.GetImage(r.Context(), vars["id"], index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", image.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(image.Data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(image.Data)
}

func (s *Server) handleHomeFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.ListHome(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, feeds)
}

func (s *Server) handleUserFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.ListByUser(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, feeds)
}
