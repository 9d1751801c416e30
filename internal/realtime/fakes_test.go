package realtime

import (
	"context"
	"encoding/json"
	"sync"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []Event
	closed bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	c.events = append(c.events, event)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *fakeConn) named(name string) []Event {
	var out []Event
	for _, e := range c.received() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) lastCount() (int64, bool) {
	counts := c.named(EventNotificationCount)
	if len(counts) == 0 {
		return 0, false
	}
	return counts[len(counts)-1].Data.(CountPayload).UnreadCount, true
}

type fakeStore struct {
	mu      sync.Mutex
	counts  map[uint]int64
	marked  []uint
	markErr error
}

func newFakeStore(counts map[uint]int64) *fakeStore {
	return &fakeStore{counts: counts}
}

func (s *fakeStore) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[userID], nil
}

func (s *fakeStore) MarkRead(ctx context.Context, notificationID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = append(s.marked, notificationID)
	if s.counts[userID] > 0 {
		s.counts[userID]--
	}
	return nil
}

func frame(event string, data any) []byte {
	b, _ := json.Marshal(map[string]any{"event": event, "data": data})
	return b
}
