// Package relay is the cross-process publish/subscribe bus carrying notification events
// between backend replicas. There is one channel per recipient, named by NotificationChannel.
package relay

import (
	"context"
	"strconv"
)

// ChannelPrefix prefixes every per-recipient notification channel.
const ChannelPrefix = "notifications:"

// NotificationPattern matches every per-recipient notification channel.
const NotificationPattern = ChannelPrefix + "*"

// NotificationChannel returns the channel carrying notifications for userID.
func NotificationChannel(userID uint) string {
	return ChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Handler receives one message. Handlers of one subscription are called sequentially.
type Handler func(channel string, payload []byte)

// Publisher sends a payload to every subscriber of channel, in any process.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscriber registers a handler for every channel matching a glob pattern. The subscription
// is active when PSubscribe returns and lasts until ctx is cancelled.
type Subscriber interface {
	PSubscribe(ctx context.Context, pattern string, handler Handler) error
}

// Relay is a full pub/sub client.
type Relay interface {
	Publisher
	Subscriber
	Ping(ctx context.Context) error
	Close() error
}
