// Package realtime pushes playlist events to connected websocket clients.
// A client only receives events for playlists it is allowed to view.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/CleytonSeles/play-fullstack/internal/access"
	"github.com/CleytonSeles/play-fullstack/internal/events"
)

const (
	relayInitialInterval = 500 * time.Millisecond
	relayMaxInterval     = 30 * time.Second
)

var errSubscriptionClosed = errors.New("realtime: redis subscription closed")

// message is what a client sees. The audience snapshot stays server side.
type message struct {
	Type       events.Type     `json:"type"`
	PlaylistID string          `json:"playlistId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// Hub owns the set of connected clients and fans events out to them.
type Hub struct {
	clients map[*Client]bool

	// Events waiting to be delivered.
	broadcast chan events.Event

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// First wait before resubscribing after a Redis failure.
	relayInterval time.Duration

	log *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan events.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),

		relayInterval: relayInitialInterval,

		log: logger.With("component", "realtime"),
	}
}

// Run serves register, unregister and broadcast requests until ctx is
// cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case e := <-h.broadcast:
			h.deliver(e)
		}
	}
}

// Publish queues e for delivery. It never blocks the caller; when the queue
// is full the event is dropped.
func (h *Hub) Publish(_ context.Context, e events.Event) {
	select {
	case h.broadcast <- e:
	default:
		h.log.Warn("drop event, hub queue full", "type", e.Type, "playlist_id", e.PlaylistID)
	}
}

// Relay feeds events from a Redis channel into the hub until ctx is
// cancelled. A refused or lost subscription is retried with exponential
// backoff, so the feed resumes once Redis is reachable again.
func (h *Hub) Relay(ctx context.Context, rdb *redis.Client, channel string) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.relayInterval
	b.MaxInterval = relayMaxInterval
	b.MaxElapsedTime = 0

	subscribe := func() error {
		start := time.Now()
		err := events.Subscribe(ctx, rdb, channel, h.log, func(e events.Event) {
			h.Publish(ctx, e)
		})
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		// A subscription that stayed up for a while starts over at the
		// shortest wait.
		if time.Since(start) > relayMaxInterval {
			b.Reset()
		}
		if err == nil {
			err = errSubscriptionClosed
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		h.log.Warn("event relay interrupted, retrying", "channel", channel, "in", wait, "err", err)
	}

	_ = backoff.RetryNotify(subscribe, backoff.WithContext(b, ctx), notify)
}

func (h *Hub) deliver(e events.Event) {
	data, err := json.Marshal(message{
		Type:       e.Type,
		PlaylistID: e.PlaylistID,
		Payload:    e.Payload,
		OccurredAt: e.OccurredAt,
	})
	if err != nil {
		h.log.Error("marshal event", "type", e.Type, "err", err)
		return
	}

	for client := range h.clients {
		if !access.Can(e.Audience, client.principal, access.View) {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.log.Warn("drop slow client", "user_id", client.principal.UserID)
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	_ = client.conn.Close()
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
