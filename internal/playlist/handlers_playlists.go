package playlist

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/CleytonSeles/play-fullstack/internal/httputil"
)

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	var body CreatePlaylistInput
	if err := httputil.Decode(r, "playlist.Create", &body); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	pl, err := s.playlists.Create(r.Context(), body, p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pl)
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	list, err := s.playlists.ListAccessible(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// handleFilterPlaylists accepts ?category=x and repeated or comma separated
// ?tags= values.
func (s *Server) handleFilterPlaylists(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	q := r.URL.Query()
	var tags []string
	for _, v := range q["tags"] {
		tags = append(tags, strings.Split(v, ",")...)
	}

	list, err := s.playlists.Filter(r.Context(), FilterCriteria{
		Category: q.Get("category"),
		Tags:     tags,
	}, p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	pl, err := s.playlists.GetOne(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pl)
}

func (s *Server) handlePatchPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	var body UpdatePlaylistInput
	if err := httputil.DecodeJSON(r, "playlist.Update", &body); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	pl, err := s.playlists.Update(r.Context(), chi.URLParam(r, "id"), body, p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pl)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	if err := s.playlists.Remove(r.Context(), chi.URLParam(r, "id"), p); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSharePlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	var body ShareInput
	if err := httputil.DecodeJSON(r, "playlist.Share", &body); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	pl, err := s.playlists.Share(r.Context(), chi.URLParam(r, "id"), body, p)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pl)
}
