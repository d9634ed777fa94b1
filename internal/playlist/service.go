package playlist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/CleytonSeles/play-fullstack/internal/access"
	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/events"
	"github.com/CleytonSeles/play-fullstack/internal/validation"
)

// Service runs playlist operations. Every decision about who may do what is
// delegated to access.Authorize.
type Service struct {
	store  Store
	events events.Publisher
	log    *log.Logger
}

func NewService(store Store, publisher events.Publisher, logger *log.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, events: publisher, log: logger.With("component", "playlist")}
}

func (s *Service) Create(ctx context.Context, in CreatePlaylistInput, p access.Principal) (Playlist, error) {
	const op = "playlist.Create"

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Tags = cleanTags(in.Tags)
	if err := validation.Struct(op, in); err != nil {
		return Playlist{}, err
	}

	created, err := s.store.CreatePlaylist(ctx, Playlist{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     p.UserID,
		IsPublic:    in.IsPublic != nil && *in.IsPublic,
		Tags:        in.Tags,
		Category:    in.Category,
	})
	if err != nil {
		return Playlist{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.PlaylistCreated, created, created)
	return created, nil
}

// ListAccessible returns every playlist the principal may view.
func (s *Service) ListAccessible(ctx context.Context, p access.Principal) ([]Playlist, error) {
	list, err := s.store.ListAccessible(ctx, p.UserID, p.Email)
	if err != nil {
		return nil, fmt.Errorf("playlist.ListAccessible: %w", err)
	}
	return slices.DeleteFunc(list, func(pl Playlist) bool {
		return !access.Can(pl.Resource(), p, access.View)
	}), nil
}

// GetOne reports NotFound before any access decision.
func (s *Service) GetOne(ctx context.Context, id string, p access.Principal) (Playlist, error) {
	const op = "playlist.GetOne"

	pl, err := s.find(ctx, op, id)
	if err != nil {
		return Playlist{}, err
	}
	if err := access.Authorize(pl.Resource(), p, access.View); err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdatePlaylistInput, p access.Principal) (Playlist, error) {
	const op = "playlist.Update"

	pl, err := s.GetOne(ctx, id, p)
	if err != nil {
		return Playlist{}, err
	}
	if err := access.Authorize(pl.Resource(), p, access.Edit); err != nil {
		return Playlist{}, err
	}

	in = trimPatch(in)
	if err := validation.Struct(op, in); err != nil {
		return Playlist{}, err
	}
	if in.empty() {
		return pl, nil
	}

	if err := s.store.UpdatePlaylist(ctx, pl.ID, in); err != nil {
		return Playlist{}, s.storeErr(op, err)
	}

	updated, err := s.GetOne(ctx, pl.ID, p)
	if err != nil {
		return Playlist{}, err
	}
	s.publish(ctx, events.PlaylistUpdated, updated, updated)
	return updated, nil
}

// Remove deletes the playlist together with its videos.
func (s *Service) Remove(ctx context.Context, id string, p access.Principal) error {
	const op = "playlist.Remove"

	pl, err := s.GetOne(ctx, id, p)
	if err != nil {
		return err
	}
	if err := access.Authorize(pl.Resource(), p, access.Delete); err != nil {
		return err
	}
	if err := s.store.DeletePlaylist(ctx, pl.ID); err != nil {
		return s.storeErr(op, err)
	}

	s.publish(ctx, events.PlaylistDeleted, pl, map[string]string{"id": pl.ID})
	return nil
}

// Filter matches playlists the principal owns or that are public. Tag
// matching is by substring: "music" matches a stored "live-music-2024".
func (s *Service) Filter(ctx context.Context, c FilterCriteria, p access.Principal) ([]Playlist, error) {
	c.Category = strings.TrimSpace(c.Category)
	c.Tags = cleanTags(c.Tags)

	list, err := s.store.FilterPlaylists(ctx, p.UserID, c)
	if err != nil {
		return nil, fmt.Errorf("playlist.Filter: %w", err)
	}
	return list, nil
}

// Share grants view access to each email. Sharing an address twice is a
// no-op.
func (s *Service) Share(ctx context.Context, id string, in ShareInput, p access.Principal) (Playlist, error) {
	const op = "playlist.Share"

	pl, err := s.GetOne(ctx, id, p)
	if err != nil {
		return Playlist{}, err
	}
	if err := access.Authorize(pl.Resource(), p, access.Share); err != nil {
		return Playlist{}, err
	}

	emails := make([]string, 0, len(in.Emails))
	for _, e := range in.Emails {
		emails = append(emails, strings.TrimSpace(e))
	}
	if len(emails) == 0 {
		return Playlist{}, apperror.Validation(op, "emails must contain at least one address")
	}
	if err := validation.Struct(op, ShareInput{Emails: emails}); err != nil {
		return Playlist{}, err
	}
	emails = dedupe(emails)

	if _, err := s.store.AppendSharedWith(ctx, pl.ID, emails); err != nil {
		return Playlist{}, s.storeErr(op, err)
	}

	updated, err := s.GetOne(ctx, pl.ID, p)
	if err != nil {
		return Playlist{}, err
	}
	s.publish(ctx, events.PlaylistShared, updated, map[string]any{"id": updated.ID, "sharedWith": updated.SharedWith})
	return updated, nil
}

func (s *Service) find(ctx context.Context, op, id string) (Playlist, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Playlist{}, apperror.NotFound(op, "playlist not found")
	}
	pl, err := s.store.FindPlaylist(ctx, id)
	if err != nil {
		return Playlist{}, s.storeErr(op, err)
	}
	return pl, nil
}

func (s *Service) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrPlaylistNotFound):
		return apperror.NotFound(op, "playlist not found")
	case errors.Is(err, ErrVideoNotFound):
		return apperror.NotFound(op, "video not found")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// publish is best-effort; the audience is the playlist's access snapshot.
func (s *Service) publish(ctx context.Context, t events.Type, pl Playlist, payload any) {
	e, err := events.New(t, pl.ID, pl.Resource(), payload)
	if err != nil {
		s.log.Error("build event", "type", t, "err", err)
		return
	}
	s.events.Publish(ctx, e)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func trimPatch(in UpdatePlaylistInput) UpdatePlaylistInput {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	in.Title = trim(in.Title)
	in.Description = trim(in.Description)
	in.Category = trim(in.Category)
	if in.Tags != nil {
		tags := cleanTags(*in.Tags)
		in.Tags = &tags
	}
	return in
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
