package playlist

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/CleytonSeles/play-fullstack/internal/access"
	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/events"
	"github.com/CleytonSeles/play-fullstack/internal/validation"
)

// VideoService manages the videos inside a playlist. The parent playlist is
// always resolved through Service.GetOne first.
type VideoService struct {
	playlists *Service
	videos    VideoStore
	events    events.Publisher
	log       *log.Logger
}

func NewVideoService(playlists *Service, videos VideoStore, publisher events.Publisher, logger *log.Logger) *VideoService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &VideoService{
		playlists: playlists,
		videos:    videos,
		events:    publisher,
		log:       logger.With("component", "videos"),
	}
}

func (s *VideoService) AddVideo(ctx context.Context, playlistID string, in AddVideoInput, p access.Principal) (Video, error) {
	const op = "playlist.AddVideo"

	pl, err := s.playlists.GetOne(ctx, playlistID, p)
	if err != nil {
		return Video{}, err
	}
	if err := access.Authorize(pl.Resource(), p, access.ManageVideos); err != nil {
		return Video{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Description = strings.TrimSpace(in.Description)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	in.Duration = strings.TrimSpace(in.Duration)
	if err := validation.Struct(op, in); err != nil {
		return Video{}, err
	}
	if in.ThumbnailURL == "" {
		in.ThumbnailURL = YouTubeThumbnailURL(in.URL)
	}

	v, err := s.videos.CreateVideo(ctx, Video{
		Title:        in.Title,
		URL:          in.URL,
		Description:  in.Description,
		ThumbnailURL: in.ThumbnailURL,
		Duration:     in.Duration,
		PlaylistID:   pl.ID,
	})
	if err != nil {
		return Video{}, s.playlists.storeErr(op, err)
	}

	s.publish(ctx, events.VideoAdded, pl, v)
	return v, nil
}

// RemoveVideo deletes a video only when it belongs to playlistID. A video id
// from another playlist is reported as not found and left untouched.
func (s *VideoService) RemoveVideo(ctx context.Context, playlistID, videoID string, p access.Principal) error {
	const op = "playlist.RemoveVideo"

	pl, err := s.playlists.GetOne(ctx, playlistID, p)
	if err != nil {
		return err
	}
	if err := access.Authorize(pl.Resource(), p, access.ManageVideos); err != nil {
		return err
	}
	if _, err := uuid.Parse(videoID); err != nil {
		return apperror.NotFound(op, "video not found")
	}
	if err := s.videos.DeleteVideo(ctx, pl.ID, videoID); err != nil {
		return s.playlists.storeErr(op, err)
	}

	s.publish(ctx, events.VideoRemoved, pl, map[string]string{"id": videoID, "playlistId": pl.ID})
	return nil
}

func (s *VideoService) GetVideo(ctx context.Context, playlistID, videoID string, p access.Principal) (Video, error) {
	const op = "playlist.GetVideo"

	pl, err := s.playlists.GetOne(ctx, playlistID, p)
	if err != nil {
		return Video{}, err
	}
	if _, err := uuid.Parse(videoID); err != nil {
		return Video{}, apperror.NotFound(op, "video not found")
	}
	v, err := s.videos.FindVideo(ctx, pl.ID, videoID)
	if err != nil {
		return Video{}, s.playlists.storeErr(op, err)
	}
	return v, nil
}

func (s *VideoService) publish(ctx context.Context, t events.Type, pl Playlist, payload any) {
	e, err := events.New(t, pl.ID, pl.Resource(), payload)
	if err != nil {
		s.log.Error("build event", "type", t, "playlist_id", pl.ID, "err", err)
		return
	}
	s.events.Publish(ctx, e)
}
