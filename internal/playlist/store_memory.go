package playlist

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store and VideoStore in process memory. Videos live
// in their parent's record, so removing a playlist removes its videos.
type MemoryStore struct {
	mu        sync.RWMutex
	playlists map[string]*Playlist
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playlists: make(map[string]*Playlist),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := Playlist{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		IsPublic:    p.IsPublic,
		Tags:        slices.Clone(nonNil(p.Tags)),
		Category:    p.Category,
		Videos:      []Video{},
		SharedWith:  []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.playlists[stored.ID] = &stored
	return clonePlaylist(&stored), nil
}

func (s *MemoryStore) FindPlaylist(ctx context.Context, id string) (Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok {
		return Playlist{}, ErrPlaylistNotFound
	}
	return clonePlaylist(p), nil
}

func (s *MemoryStore) ListAccessible(ctx context.Context, userID, email string) ([]Playlist, error) {
	return s.list(func(p *Playlist) bool {
		return p.OwnerID == userID || p.IsPublic || (email != "" && slices.Contains(p.SharedWith, email))
	}), nil
}

func (s *MemoryStore) FilterPlaylists(ctx context.Context, userID string, c FilterCriteria) ([]Playlist, error) {
	return s.list(func(p *Playlist) bool {
		if p.OwnerID != userID && !p.IsPublic {
			return false
		}
		if c.Category != "" && p.Category != c.Category {
			return false
		}
		for _, want := range c.Tags {
			if !slices.ContainsFunc(p.Tags, func(tag string) bool { return strings.Contains(tag, want) }) {
				return false
			}
		}
		return true
	}), nil
}

func (s *MemoryStore) UpdatePlaylist(ctx context.Context, id string, patch UpdatePlaylistInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok {
		return ErrPlaylistNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
	if patch.Tags != nil {
		p.Tags = slices.Clone(nonNil(*patch.Tags))
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	p.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) DeletePlaylist(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[id]; !ok {
		return ErrPlaylistNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *MemoryStore) AppendSharedWith(ctx context.Context, id string, emails []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok {
		return nil, ErrPlaylistNotFound
	}
	for _, e := range emails {
		if !slices.Contains(p.SharedWith, e) {
			p.SharedWith = append(p.SharedWith, e)
		}
	}
	p.UpdatedAt = s.now()
	return slices.Clone(p.SharedWith), nil
}

func (s *MemoryStore) CreateVideo(ctx context.Context, v Video) (Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[v.PlaylistID]
	if !ok {
		return Video{}, ErrPlaylistNotFound
	}
	v.ID = uuid.NewString()
	v.CreatedAt = s.now()
	p.Videos = append(p.Videos, v)
	return v, nil
}

func (s *MemoryStore) FindVideo(ctx context.Context, playlistID, videoID string) (Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[playlistID]
	if !ok {
		return Video{}, ErrVideoNotFound
	}
	i := slices.IndexFunc(p.Videos, func(v Video) bool { return v.ID == videoID })
	if i < 0 {
		return Video{}, ErrVideoNotFound
	}
	return p.Videos[i], nil
}

func (s *MemoryStore) DeleteVideo(ctx context.Context, playlistID, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[playlistID]
	if !ok {
		return ErrVideoNotFound
	}
	i := slices.IndexFunc(p.Videos, func(v Video) bool { return v.ID == videoID })
	if i < 0 {
		return ErrVideoNotFound
	}
	p.Videos = slices.Delete(p.Videos, i, i+1)
	return nil
}

// list returns matching playlists, newest first.
func (s *MemoryStore) list(match func(*Playlist) bool) []Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Playlist{}
	for _, p := range s.playlists {
		if match(p) {
			out = append(out, clonePlaylist(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func clonePlaylist(p *Playlist) Playlist {
	c := *p
	c.Tags = slices.Clone(nonNil(p.Tags))
	c.SharedWith = slices.Clone(nonNil(p.SharedWith))
	c.Videos = slices.Clone(p.Videos)
	if c.Videos == nil {
		c.Videos = []Video{}
	}
	return c
}
