package events

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	log     *log.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, logger *log.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RedisPublisher{rdb: rdb, channel: channel, log: logger.With("component", "events")}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) {
	if p.rdb == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		p.log.Error("marshal event", "type", e.Type, "err", err)
		return
	}
	// The originating request may already be finishing; the publish should
	// not be cut short by its cancellation.
	if err := p.rdb.Publish(context.WithoutCancel(ctx), p.channel, data).Err(); err != nil {
		p.log.Warn("publish event", "type", e.Type, "playlist_id", e.PlaylistID, "err", err)
	}
}

// Subscribe relays events from channel to handle until ctx is cancelled.
// Messages that do not decode are logged and skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string, logger *log.Logger, handle func(Event)) error {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = log.Default()
	}

	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed so publishes issued right
	// after Subscribe returns control are not missed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	logger.Info("subscribed", "channel", channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				logger.Warn("drop undecodable event", "channel", channel, "err", err)
				continue
			}
			handle(e)
		}
	}
}
