package playlist

import (
	"errors"
	"time"

	"github.com/CleytonSeles/play-fullstack/internal/access"
)

type Playlist struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"userId"`
	IsPublic    bool      `json:"isPublic"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	Videos      []Video   `json:"videos"`
	SharedWith  []string  `json:"sharedWith"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Resource is the playlist's access snapshot.
func (p Playlist) Resource() access.Resource {
	shared := make([]string, len(p.SharedWith))
	copy(shared, p.SharedWith)
	return access.Resource{OwnerID: p.OwnerID, IsPublic: p.IsPublic, SharedWith: shared}
}

type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Duration     string    `json:"duration"`
	PlaylistID   string    `json:"playlistId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreatePlaylistInput struct {
	Title       string   `json:"title" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	IsPublic    *bool    `json:"isPublic"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=100"`
	Category    string   `json:"category" validate:"max=100"`
}

// UpdatePlaylistInput is a partial patch; nil fields are left unchanged.
type UpdatePlaylistInput struct {
	Title       *string   `json:"title" validate:"omitnil,notblank,max=200"`
	Description *string   `json:"description" validate:"omitnil,max=2000"`
	IsPublic    *bool     `json:"isPublic"`
	Tags        *[]string `json:"tags" validate:"omitnil,max=50,dive,max=100"`
	Category    *string   `json:"category" validate:"omitnil,max=100"`
}

func (in UpdatePlaylistInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.IsPublic == nil && in.Tags == nil && in.Category == nil
}

type ShareInput struct {
	Emails []string `json:"emails" validate:"dive,required,email"`
}

// FilterCriteria narrows owner-or-public playlists. Every tag must be a
// substring of at least one stored tag.
type FilterCriteria struct {
	Category string
	Tags     []string
}

type AddVideoInput struct {
	Title        string `json:"title" validate:"notblank,max=200"`
	URL          string `json:"url" validate:"required,httpurl"`
	Description  string `json:"description" validate:"max=2000"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"omitempty,httpurl"`
	Duration     string `json:"duration" validate:"max=32"`
}

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrVideoNotFound    = errors.New("video not found")
)
