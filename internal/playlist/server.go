package playlist

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/CleytonSeles/play-fullstack/internal/access"
	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/auth"
)

type Server struct {
	playlists *Service
	videos    *VideoService
	codec     *auth.TokenCodec
	log       *log.Logger
}

func NewServer(playlists *Service, videos *VideoService, codec *auth.TokenCodec, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		playlists: playlists,
		videos:    videos,
		codec:     codec,
		log:       logger.With("component", "playlist-http"),
	}
}

// Router serves the playlist routes relative to its mount point. Every route
// requires a bearer token.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}
	r.Use(auth.Middleware(s.codec))

	r.Post("/", s.handleCreatePlaylist)
	r.Get("/", s.handleListPlaylists)
	r.Get("/filter", s.handleFilterPlaylists)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetPlaylist)
		r.Patch("/", s.handlePatchPlaylist)
		r.Delete("/", s.handleDeletePlaylist)
		r.Post("/share", s.handleSharePlaylist)

		r.Post("/videos", s.handleAddVideo)
		r.Get("/videos/{videoId}", s.handleGetVideo)
		r.Delete("/videos/{videoId}", s.handleDeleteVideo)
	})

	return r
}

func principal(r *http.Request) (access.Principal, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return access.Principal{}, apperror.InvalidToken("playlist.principal", errors.New("no identity in context"))
	}
	return id.Principal(), nil
}
