// Package events carries playlist change notifications from the services to
// live subscribers, either in process or over a Redis channel.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CleytonSeles/play-fullstack/internal/access"
)

type Type string

const (
	PlaylistCreated Type = "playlist.created"
	PlaylistUpdated Type = "playlist.updated"
	PlaylistShared  Type = "playlist.shared"
	PlaylistDeleted Type = "playlist.deleted"
	VideoAdded      Type = "video.added"
	VideoRemoved    Type = "video.removed"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "broadcast"

// Event is one change to a playlist. Audience is the playlist's access
// snapshot at the time of the change; subscribers use it to decide who may
// see the event.
type Event struct {
	Type       Type            `json:"type"`
	PlaylistID string          `json:"playlistId"`
	Audience   access.Resource `json:"audience"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func New(t Type, playlistID string, audience access.Resource, payload any) (Event, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		raw = b
	}
	return Event{
		Type:       t,
		PlaylistID: playlistID,
		Audience:   audience,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Publisher delivers events on a best-effort basis. Implementations log
// failures instead of returning them; a lost event never fails the change
// that produced it.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Fanout publishes to every wrapped publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) {
	for _, p := range f {
		p.Publish(ctx, e)
	}
}
