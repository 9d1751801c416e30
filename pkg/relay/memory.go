package relay

import (
	"context"
	"fmt"
	"path"
	"sync"
)

const memoryBuffer = 256

type memoryMessage struct {
	channel string
	payload []byte
}

type memorySubscription struct {
	pattern string
	ch      chan memoryMessage
}

// Memory is an in-process Relay. It only connects subscribers living in the same process, so it
// suits a single replica and tests. Patterns follow path.Match.
type Memory struct {
	mu   sync.RWMutex
	subs map[*memorySubscription]struct{}
}

// NewMemory creates an empty in-process relay.
func NewMemory() *Memory {
	return &Memory{subs: make(map[*memorySubscription]struct{})}
}

// Publish queues payload for every matching subscription.
func (m *Memory) Publish(ctx context.Context, channel string, payload []byte) error {
	m.mu.RLock()
	var targets []*memorySubscription
	for sub := range m.subs {
		if ok, _ := path.Match(sub.pattern, channel); ok {
			targets = append(targets, sub)
		}
	}
	m.mu.RUnlock()

	msg := memoryMessage{channel: channel, payload: append([]byte(nil), payload...)}
	for _, sub := range targets {
		select {
		case sub.ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// PSubscribe registers handler for channels matching pattern until ctx is cancelled.
func (m *Memory) PSubscribe(ctx context.Context, pattern string, handler Handler) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("psubscribe %s: %w", pattern, err)
	}

	sub := &memorySubscription{pattern: pattern, ch: make(chan memoryMessage, memoryBuffer)}
	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.subs, sub)
			m.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.ch:
				handler(msg.channel, msg.payload)
			}
		}
	}()
	return nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error {
	return nil
}

// Close drops every subscription.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.subs = make(map[*memorySubscription]struct{})
	m.mu.Unlock()
	return nil
}
