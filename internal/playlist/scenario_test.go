package playlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/CleytonSeles/play-fullstack/internal/apperror"
	"github.com/CleytonSeles/play-fullstack/internal/auth"
)

// TestRegisterShareScenario drives the register, login, create, share and
// edit-denied flow through the real verifier, codec and services.
func TestRegisterShareScenario(t *testing.T) {
	ctx := context.Background()
	codec := auth.NewTokenCodec(auth.TokenConfig{Secret: "scenario-secret", TTL: time.Hour})
	verifier := auth.NewVerifier(auth.NewMemoryRepository(), auth.BcryptHasher{Cost: bcrypt.MinCost}, codec, nil)
	f := newFixture()

	_, err := verifier.Register(ctx, auth.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)
	_, err = verifier.Register(ctx, auth.RegisterInput{Username: "bob", Email: "b@x.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = verifier.Login(ctx, auth.LoginInput{Email: "a@x.com", Password: "wrong-password"})
	require.Error(t, err)
	assert.True(t, apperror.IsUnauthorized(err))

	aliceSession, err := verifier.Login(ctx, auth.LoginInput{Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)
	bobSession, err := verifier.Login(ctx, auth.LoginInput{Email: "b@x.com", Password: "hunter22"})
	require.NoError(t, err)

	aliceID, err := codec.Verify(aliceSession.AccessToken)
	require.NoError(t, err)
	bobID, err := codec.Verify(bobSession.AccessToken)
	require.NoError(t, err)
	a, b := aliceID.Principal(), bobID.Principal()

	pl, err := f.playlists.Create(ctx, CreatePlaylistInput{Title: "Road trip"}, a)
	require.NoError(t, err)
	assert.Equal(t, aliceSession.User.ID, pl.OwnerID)
	assert.False(t, pl.IsPublic)
	assert.Empty(t, pl.Videos)
	assert.Empty(t, pl.SharedWith)

	_, err = f.playlists.GetOne(ctx, pl.ID, b)
	assert.True(t, apperror.IsForbidden(err))

	_, err = f.playlists.Share(ctx, pl.ID, ShareInput{Emails: []string{"b@x.com"}}, a)
	require.NoError(t, err)

	viewed, err := f.playlists.GetOne(ctx, pl.ID, b)
	require.NoError(t, err)
	assert.Equal(t, "Road trip", viewed.Title)

	_, err = f.playlists.Update(ctx, pl.ID, UpdatePlaylistInput{Title: ptr("mine now")}, b)
	assert.True(t, apperror.IsForbidden(err))

	unchanged, err := f.playlists.GetOne(ctx, pl.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Road trip", unchanged.Title)
}
