package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/CleytonSeles/play-fullstack/internal/auth"
	"github.com/CleytonSeles/play-fullstack/internal/httputil"
	"github.com/CleytonSeles/play-fullstack/internal/playlist"
	"github.com/CleytonSeles/play-fullstack/internal/realtime"
)

func (a *app) router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogMiddleware(a.log))
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "watchplay",
		})
	})
	r.Method(http.MethodGet, "/metrics", a.metrics.handler())

	// Long-lived; kept out of the request timeout.
	r.Mount("/ws", realtime.NewServer(a.hub, a.codec, a.cfg.CORSAllowedOrigins, a.log).Router())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(bodySizeLimitMiddleware(a.cfg.MaxBodyBytes))

		limiter := newIPRateLimiter(a.cfg.AuthRateLimitRPS, a.cfg.AuthRateLimitRPS)
		r.Mount("/auth", auth.NewServer(a.verifier, a.log).Router(limiter.middleware))
		r.Mount("/playlists", playlist.NewServer(a.playlists, a.videos, a.codec, a.log).Router())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "not found")
	})

	return r
}
