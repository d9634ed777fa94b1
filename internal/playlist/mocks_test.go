package playlist

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/CleytonSeles/play-fullstack/internal/access"
	"github.com/CleytonSeles/play-fullstack/internal/events"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(Playlist), args.Error(1)
}

func (m *MockStore) FindPlaylist(ctx context.Context, id string) (Playlist, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Playlist), args.Error(1)
}

func (m *MockStore) ListAccessible(ctx context.Context, userID, email string) ([]Playlist, error) {
	args := m.Called(ctx, userID, email)
	if v := args.Get(0); v != nil {
		return v.([]Playlist), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) FilterPlaylists(ctx context.Context, userID string, c FilterCriteria) ([]Playlist, error) {
	args := m.Called(ctx, userID, c)
	if v := args.Get(0); v != nil {
		return v.([]Playlist), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) UpdatePlaylist(ctx context.Context, id string, patch UpdatePlaylistInput) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockStore) DeletePlaylist(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) AppendSharedWith(ctx context.Context, id string, emails []string) ([]string, error) {
	args := m.Called(ctx, id, emails)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// eventRecorder is a Publisher that keeps every event it receives.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *eventRecorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

var (
	alice = access.Principal{UserID: "user-alice", Email: "a@x.com"}
	bob   = access.Principal{UserID: "user-bob", Email: "b@x.com"}
	carol = access.Principal{UserID: "user-carol", Email: "c@x.com"}
)

type fixture struct {
	store     *MemoryStore
	playlists *Service
	videos    *VideoService
	events    *eventRecorder
}

func newFixture() *fixture {
	store := NewMemoryStore()
	rec := &eventRecorder{}
	playlists := NewService(store, rec, nil)
	return &fixture{
		store:     store,
		playlists: playlists,
		videos:    NewVideoService(playlists, store, rec, nil),
		events:    rec,
	}
}

func ptr[T any](v T) *T { return &v }
