package playlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/events"
)

func TestAddVideo(t *testing.T) {
	ctx := context.Background()

	t.Run("DerivesYouTubeThumbnail", func(t *testing.T) {
		f := newFixture()
		pl := f.create(t, alice, CreatePlaylistInput{Title: "mix"})

		v, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{
			Title:    "Song",
			URL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			Duration: "3:32",
		}, alice)
		require.NoError(t, err)

		assert.Equal(t, pl.ID, v.PlaylistID)
		assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", v.ThumbnailURL)
		assert.Equal(t, "3:32", v.Duration)
		assert.Equal(t, events.VideoAdded, f.events.last().Type)

		got, err := f.playlists.GetOne(ctx, pl.ID, alice)
		require.NoError(t, err)
		require.Len(t, got.Videos, 1)
		assert.Equal(t, v.ID, got.Videos[0].ID)
	})

	t.Run("KeepsExplicitThumbnail", func(t *testing.T) {
		f := newFixture()
		pl := f.create(t, alice, CreatePlaylistInput{Title: "mix"})

		v, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{
			Title:        "Song",
			URL:          "https://youtu.be/dQw4w9WgXcQ",
			ThumbnailURL: "https://cdn.example.com/t.png",
		}, alice)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/t.png", v.ThumbnailURL)
	})

	t.Run("InvalidURL", func(t *testing.T) {
		f := newFixture()
		pl := f.create(t, alice, CreatePlaylistInput{Title: "mix"})

		for _, u := range []string{"", "not a url", "ftp://files.example.com/a.mp4", "/relative"} {
			_, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "Song", URL: u}, alice)
			assert.True(t, apperror.IsValidation(err), u)
		}

		_, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "Song", URL: "https://example.com/v", ThumbnailURL: "thumb.png"}, alice)
		assert.True(t, apperror.IsValidation(err))
		assert.Equal(t, "thumbnailUrl must be a valid URL", apperror.PublicMessage(err))
	})

	t.Run("OwnerOnlyEvenForViewers", func(t *testing.T) {
		f := newFixture()
		pl := f.create(t, alice, CreatePlaylistInput{Title: "mix", IsPublic: ptr(true)})
		_, err := f.playlists.Share(ctx, pl.ID, ShareInput{Emails: []string{bob.Email}}, alice)
		require.NoError(t, err)

		// The ownership gate runs before input validation.
		_, err = f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "Song", URL: "garbage"}, bob)
		assert.True(t, apperror.IsForbidden(err))
		assert.Equal(t, "you can only manage videos in your own playlists", apperror.PublicMessage(err))

		_, err = f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "Song", URL: "https://example.com/v"}, carol)
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("PrivateStrangerAndMissingPlaylist", func(t *testing.T) {
		f := newFixture()
		pl := f.create(t, alice, CreatePlaylistInput{Title: "mix"})

		_, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "Song", URL: "https://example.com/v"}, bob)
		assert.True(t, apperror.IsForbidden(err))

		_, err = f.videos.AddVideo(ctx, uuid.NewString(), AddVideoInput{Title: "Song", URL: "https://example.com/v"}, alice)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestRemoveVideo(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	a := f.create(t, alice, CreatePlaylistInput{Title: "A"})
	b := f.create(t, alice, CreatePlaylistInput{Title: "B"})
	va, err := f.videos.AddVideo(ctx, a.ID, AddVideoInput{Title: "in A", URL: "https://example.com/a"}, alice)
	require.NoError(t, err)
	vb, err := f.videos.AddVideo(ctx, b.ID, AddVideoInput{Title: "in B", URL: "https://example.com/b"}, alice)
	require.NoError(t, err)

	t.Run("CrossPlaylistIDIsNotFound", func(t *testing.T) {
		err := f.videos.RemoveVideo(ctx, a.ID, vb.ID, alice)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
		assert.Equal(t, "video not found", apperror.PublicMessage(err))

		still, err := f.videos.GetVideo(ctx, b.ID, vb.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, vb, still)
	})

	t.Run("MalformedVideoID", func(t *testing.T) {
		err := f.videos.RemoveVideo(ctx, a.ID, "42", alice)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("NonOwner", func(t *testing.T) {
		_, err := f.playlists.Update(ctx, a.ID, UpdatePlaylistInput{IsPublic: ptr(true)}, alice)
		require.NoError(t, err)

		err = f.videos.RemoveVideo(ctx, a.ID, va.ID, bob)
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("Owner", func(t *testing.T) {
		require.NoError(t, f.videos.RemoveVideo(ctx, a.ID, va.ID, alice))
		assert.Equal(t, events.VideoRemoved, f.events.last().Type)

		_, err := f.videos.GetVideo(ctx, a.ID, va.ID, alice)
		assert.True(t, apperror.IsNotFound(err))

		err = f.videos.RemoveVideo(ctx, a.ID, va.ID, alice)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDeletePlaylistCascadesVideos(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	pl := f.create(t, alice, CreatePlaylistInput{Title: "gone soon"})
	v1, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "one", URL: "https://example.com/1"}, alice)
	require.NoError(t, err)
	v2, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "two", URL: "https://example.com/2"}, alice)
	require.NoError(t, err)

	require.NoError(t, f.playlists.Remove(ctx, pl.ID, alice))

	for _, v := range []Video{v1, v2} {
		_, err := f.videos.GetVideo(ctx, pl.ID, v.ID, alice)
		assert.True(t, apperror.IsNotFound(err))

		_, err = f.store.FindVideo(ctx, pl.ID, v.ID)
		assert.ErrorIs(t, err, ErrVideoNotFound)
	}
}

func TestGetVideo_RequiresView(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	pl := f.create(t, alice, CreatePlaylistInput{Title: "private"})
	v, err := f.videos.AddVideo(ctx, pl.ID, AddVideoInput{Title: "one", URL: "https://example.com/1"}, alice)
	require.NoError(t, err)

	_, err = f.videos.GetVideo(ctx, pl.ID, v.ID, bob)
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.playlists.Share(ctx, pl.ID, ShareInput{Emails: []string{bob.Email}}, alice)
	require.NoError(t, err)

	got, err := f.videos.GetVideo(ctx, pl.ID, v.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)
}
