package playlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CleytonSeles/play-fullstack/internal/httputil"
)

func (s *Server) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	var body AddVideoInput
	if err := httputil.DecodeJSON(r, "playlist.AddVideo", &body); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	v, err := s.videos.AddVideo(r.Context(), chi.URLParam(r, "id"), body, p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	v, err := s.videos.GetVideo(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "videoId"), p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	if err := s.videos.RemoveVideo(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "videoId"), p); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
