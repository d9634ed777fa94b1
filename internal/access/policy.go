// Package access decides whether a principal may perform an action on a
// playlist. It performs no I/O.
package access

import (
	"slices"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
)

// Action is the closed set of operations guarded by the policy.
type Action int

const (
	View Action = iota + 1
	Edit
	Delete
	Share
	ManageVideos
)

func (a Action) String() string {
	switch a {
	case View:
		return "view"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	case Share:
		return "share"
	case ManageVideos:
		return "manage_videos"
	default:
		return "unknown"
	}
}

// Principal is the authenticated caller. Ownership is matched on UserID,
// sharing on Email.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Resource is the access-relevant projection of a playlist.
type Resource struct {
	OwnerID    string   `json:"ownerId"`
	IsPublic   bool     `json:"isPublic"`
	SharedWith []string `json:"sharedWith"`
}

// Can reports whether p may perform a on r.
func Can(r Resource, p Principal, a Action) bool {
	isOwner := p.UserID != "" && r.OwnerID == p.UserID

	switch a {
	case View:
		if isOwner || r.IsPublic {
			return true
		}
		return p.Email != "" && slices.Contains(r.SharedWith, p.Email)
	case Edit, Delete, Share, ManageVideos:
		return isOwner
	default:
		return false
	}
}

// Authorize returns a forbidden error when Can denies the action.
func Authorize(r Resource, p Principal, a Action) error {
	if Can(r, p, a) {
		return nil
	}
	return apperror.Forbidden("access.Authorize", denyMessage(a))
}

func denyMessage(a Action) string {
	switch a {
	case View:
		return "you do not have access to this playlist"
	case Edit:
		return "you can only update your own playlists"
	case Delete:
		return "you can only delete your own playlists"
	case Share:
		return "you can only share your own playlists"
	case ManageVideos:
		return "you can only manage videos in your own playlists"
	default:
		return "forbidden"
	}
}
