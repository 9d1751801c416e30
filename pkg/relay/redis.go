package relay

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a Relay backed by Redis PUBLISH / PSUBSCRIBE.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the Redis server at url (redis://[:password@]host:port/db).
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Publish sends payload on channel.
func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// PSubscribe waits for Redis to confirm the pattern subscription, then delivers messages from a
// background goroutine. go-redis re-subscribes by itself after reconnecting.
func (r *Redis) PSubscribe(ctx context.Context, pattern string, handler Handler) error {
	ps := r.client.PSubscribe(ctx, pattern)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("psubscribe %s: %w", pattern, err)
	}

	go func() {
		defer ps.Close()
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(msg.Channel, []byte(msg.Payload))
			}
		}
	}()
	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client and every subscription made through it.
func (r *Redis) Close() error {
	return r.client.Close()
}
