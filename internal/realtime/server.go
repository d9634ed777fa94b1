package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/auth"
	"github.com/CleytonSeles/play-fullstack/internal/httputil"
)

type Server struct {
	hub      *Hub
	codec    *auth.TokenCodec
	upgrader websocket.Upgrader
	log      *log.Logger
}

// NewServer accepts websocket handshakes from browsers whose Origin is in
// allowedOrigins. "*" allows any origin. Requests without an Origin header
// (non-browser clients) are always accepted.
func NewServer(hub *Hub, codec *auth.TokenCodec, allowedOrigins []string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		hub:   hub,
		codec: codec,
		log:   logger.With("component", "realtime-http"),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return s
}

// Router serves the websocket endpoint at its mount point.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/", s.handleWS)

	return r
}

// handleWS authenticates before upgrading. Browsers cannot set headers on a
// websocket handshake, so the token may also come as ?token=.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	raw := auth.BearerToken(r)
	if raw == "" {
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		httputil.WriteError(w, nil, apperror.InvalidToken("realtime.handleWS", errors.New("missing token")))
		return
	}
	id, err := s.codec.Verify(raw)
	if err != nil {
		httputil.WriteError(w, nil, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade", "err", err)
		return
	}

	client := &Client{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		principal: id.Principal(),
	}

	welcome := map[string]any{
		"type":   "welcome",
		"userId": id.UserID,
		"now":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		_ = conn.Close()
		return
	}
	s.log.Debug("client connected", "user_id", id.UserID)

	go client.writePump()
	go client.readPump()
}
