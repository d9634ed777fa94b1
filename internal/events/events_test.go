package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CleytonSeles/play-fullstack/internal/access"
)

type recorder struct {
	got []Event
}

func (r *recorder) Publish(_ context.Context, e Event) { r.got = append(r.got, e) }

func TestNew(t *testing.T) {
	aud := access.Resource{OwnerID: "u1", SharedWith: []string{"b@x.com"}}
	e, err := New(PlaylistShared, "pl-1", aud, map[string]any{"sharedWith": []string{"b@x.com"}})
	require.NoError(t, err)

	assert.Equal(t, PlaylistShared, e.Type)
	assert.Equal(t, "pl-1", e.PlaylistID)
	assert.Equal(t, aud, e.Audience)
	assert.JSONEq(t, `{"sharedWith":["b@x.com"]}`, string(e.Payload))
	assert.False(t, e.OccurredAt.IsZero())

	e, err = New(PlaylistDeleted, "pl-1", aud, nil)
	require.NoError(t, err)
	assert.Nil(t, e.Payload)

	_, err = New(PlaylistCreated, "pl-1", aud, make(chan int))
	assert.Error(t, err)
}

func TestFanout(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Fanout{a, Nop{}, b}.Publish(context.Background(), Event{Type: VideoAdded})

	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestRedisPublishSubscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, rdb, "test-events", nil, func(e Event) { received <- e })
	}()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test-events")["test-events"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Garbage on the channel is skipped, not fatal.
	mr.Publish("test-events", "{not json")

	pub := NewRedisPublisher(rdb, "test-events", nil)
	e, err := New(VideoAdded, "pl-1", access.Resource{OwnerID: "u1", IsPublic: true}, map[string]string{"videoId": "v1"})
	require.NoError(t, err)
	pub.Publish(ctx, e)

	select {
	case got := <-received:
		assert.Equal(t, VideoAdded, got.Type)
		assert.Equal(t, "pl-1", got.PlaylistID)
		assert.True(t, got.Audience.IsPublic)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(got.Payload, &payload))
		assert.Equal(t, "v1", payload["videoId"])
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestRedisPublisher_UnreachableIsBestEffort(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	pub := NewRedisPublisher(rdb, "", nil)
	assert.NotPanics(t, func() {
		pub.Publish(context.Background(), Event{Type: PlaylistCreated, PlaylistID: "pl-1"})
	})

	assert.NotPanics(t, func() {
		NewRedisPublisher(nil, "", nil).Publish(context.Background(), Event{Type: PlaylistCreated})
	})
}
