package playlist

import (
	"context"
)

// Store persists playlists. FindPlaylist and the list queries return
// playlists with their videos loaded.
type Store interface {
	CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error)
	FindPlaylist(ctx context.Context, id string) (Playlist, error)
	// ListAccessible returns playlists owned by userID, public, or shared
	// with email. Each playlist appears once.
	ListAccessible(ctx context.Context, userID, email string) ([]Playlist, error)
	FilterPlaylists(ctx context.Context, userID string, c FilterCriteria) ([]Playlist, error)
	UpdatePlaylist(ctx context.Context, id string, patch UpdatePlaylistInput) error
	// DeletePlaylist removes the playlist and every video it owns.
	DeletePlaylist(ctx context.Context, id string) error
	// AppendSharedWith adds the emails not already present, in order, as
	// one atomic step, and returns the resulting list.
	AppendSharedWith(ctx context.Context, id string, emails []string) ([]string, error)
}

type VideoStore interface {
	CreateVideo(ctx context.Context, v Video) (Video, error)
	// FindVideo and DeleteVideo match on both ids; a video that belongs to
	// another playlist is reported as ErrVideoNotFound.
	FindVideo(ctx context.Context, playlistID, videoID string) (Video, error)
	DeleteVideo(ctx context.Context, playlistID, videoID string) error
}
