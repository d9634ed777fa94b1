package auth

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/httputil"
)

type Server struct {
	verifier *Verifier
	log      *log.Logger
}

func NewServer(verifier *Verifier, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{verifier: verifier, log: logger.With("component", "auth-http")}
}

// Router serves /register, /login and /me. Middlewares wrap the public
// routes; /me always sits behind the token middleware.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(Middleware(s.verifier.Codec()))
		r.Get("/me", s.handleMe)
	})

	return r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httputil.Decode(r, "auth.Register", &in); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	sess, err := s.verifier.Register(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httputil.Decode(r, "auth.Login", &in); err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}

	sess, err := s.verifier.Login(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		httputil.WriteError(w, s.log, apperror.InvalidToken("auth.Me", errors.New("no identity in context")))
		return
	}

	user, err := s.verifier.Me(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, s.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
