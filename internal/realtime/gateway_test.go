package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/anonto42/nano-comments/backend/pkg/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinedSession(t *testing.T, g *Gateway, conn *fakeConn, userID uint) *Session {
	t.Helper()
	s := g.Connect(conn, userID)
	g.HandleMessage(context.Background(), s, frame(EventJoin, map[string]any{"userId": userID}))
	require.Equal(t, StateJoined, s.State())
	return s
}

func errorMessages(conn *fakeConn) []string {
	var out []string
	for _, e := range conn.named(EventError) {
		out = append(out, e.Data.(ErrorPayload).Message)
	}
	return out
}

func TestGateway_Join(t *testing.T) {
	g := NewGateway(newFakeStore(map[uint]int64{7: 3}), relay.NewMemory())
	conn := newFakeConn("c1")

	s := g.Connect(conn, 7)
	assert.Equal(t, StateIdentified, s.State())

	g.HandleMessage(context.Background(), s, frame(EventJoin, map[string]any{"userId": 7}))

	assert.Equal(t, StateJoined, s.State())
	assert.Equal(t, 1, g.Registry().Conns(7))
	count, ok := conn.lastCount()
	require.True(t, ok)
	assert.Equal(t, int64(3), count)
}

func TestGateway_JoinAcceptsStringID(t *testing.T) {
	g := NewGateway(newFakeStore(map[uint]int64{7: 1}), relay.NewMemory())
	conn := newFakeConn("c1")
	s := g.Connect(conn, 7)

	g.HandleMessage(context.Background(), s, frame(EventJoin, map[string]any{"userId": "7"}))

	assert.Equal(t, StateJoined, s.State())
}

func TestGateway_JoinCountGoesToRequesterOnly(t *testing.T) {
	g := NewGateway(newFakeStore(map[uint]int64{7: 2}), relay.NewMemory())
	first := newFakeConn("c1")
	joinedSession(t, g, first, 7)

	second := newFakeConn("c2")
	joinedSession(t, g, second, 7)

	assert.Len(t, first.named(EventNotificationCount), 1)
	assert.Len(t, second.named(EventNotificationCount), 1)
}

func TestGateway_JoinRejected(t *testing.T) {
	tests := []struct {
		name      string
		handshake uint
		data      any
		want      string
	}{
		{"missing user id", 7, map[string]any{}, "userId is required"},
		{"null user id", 7, map[string]any{"userId": nil}, "userId is required"},
		{"no payload", 7, nil, "Invalid payload"},
		{"anonymous connection", 0, map[string]any{"userId": 7}, "Connection is not identified"},
		{"another user", 7, map[string]any{"userId": 8}, "Cannot join another user's notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(newFakeStore(nil), relay.NewMemory())
			conn := newFakeConn("c1")
			s := g.Connect(conn, tt.handshake)

			g.HandleMessage(context.Background(), s, frame(EventJoin, tt.data))

			assert.Equal(t, StateIdentified, s.State())
			assert.Equal(t, []string{tt.want}, errorMessages(conn))
			assert.Equal(t, 0, g.Registry().Users())
			assert.False(t, conn.closed, "errors never close the connection")
		})
	}
}

func TestGateway_MalformedAndUnknownEvents(t *testing.T) {
	g := NewGateway(newFakeStore(nil), relay.NewMemory())
	conn := newFakeConn("c1")
	s := g.Connect(conn, 7)

	g.HandleMessage(context.Background(), s, []byte("{not json"))
	g.HandleMessage(context.Background(), s, frame("dance", nil))

	assert.Equal(t, []string{"Malformed message", "Unknown event"}, errorMessages(conn))
	assert.Equal(t, StateIdentified, s.State())
}

func TestGateway_Disconnect(t *testing.T) {
	g := NewGateway(newFakeStore(nil), relay.NewMemory())
	a := joinedSession(t, g, newFakeConn("a"), 7)
	b := joinedSession(t, g, newFakeConn("b"), 7)

	g.Disconnect(a)
	assert.Equal(t, StateClosed, a.State())
	assert.Equal(t, 1, g.Registry().Conns(7))

	g.Disconnect(b)
	g.Disconnect(b)
	assert.Equal(t, 0, g.Registry().Users())
}

func TestGateway_DisconnectUnjoined(t *testing.T) {
	g := NewGateway(newFakeStore(nil), relay.NewMemory())
	s := g.Connect(newFakeConn("a"), 0)

	g.Disconnect(s)

	assert.Equal(t, StateClosed, s.State())
	assert.Equal(t, 0, g.Registry().Users())
}

func TestGateway_MarkReadBroadcastsToRoom(t *testing.T) {
	store := newFakeStore(map[uint]int64{7: 2})
	g := NewGateway(store, relay.NewMemory())
	a, b := newFakeConn("a"), newFakeConn("b")
	sa := joinedSession(t, g, a, 7)
	joinedSession(t, g, b, 7)

	g.HandleMessage(context.Background(), sa, frame(EventMarkRead, map[string]any{"notificationId": 11, "userId": 7}))

	assert.Equal(t, []uint{11}, store.marked)
	for _, c := range []*fakeConn{a, b} {
		count, ok := c.lastCount()
		require.True(t, ok)
		assert.Equal(t, int64(1), count)
	}
}

func TestGateway_MarkReadErrors(t *testing.T) {
	store := newFakeStore(map[uint]int64{7: 2})
	store.markErr = &services.Error{Kind: services.ErrForbidden, Message: "You can only access your own notifications"}
	g := NewGateway(store, relay.NewMemory())
	conn := newFakeConn("a")
	s := joinedSession(t, g, conn, 7)

	g.HandleMessage(context.Background(), s, frame(EventMarkRead, map[string]any{"notificationId": 11}))
	g.HandleMessage(context.Background(), s, frame(EventMarkRead, map[string]any{"userId": 7}))
	g.HandleMessage(context.Background(), s, frame(EventMarkRead, map[string]any{"notificationId": 11, "userId": 8}))

	assert.Equal(t, []string{
		"You can only access your own notifications",
		"notificationId is required",
		"You can only access your own notifications",
	}, errorMessages(conn))
	assert.Empty(t, store.marked)
}

func TestGateway_RelayDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := relay.NewMemory()
	defer bus.Close()

	store := newFakeStore(map[uint]int64{7: 0, 8: 0})
	g := NewGateway(store, bus)
	require.NoError(t, g.Start(ctx))

	a, b, other := newFakeConn("a"), newFakeConn("b"), newFakeConn("other")
	joinedSession(t, g, a, 7)
	joinedSession(t, g, b, 7)
	joinedSession(t, g, other, 8)

	store.mu.Lock()
	store.counts[7] = 1
	store.mu.Unlock()

	payload := []byte(`{"id":5,"userId":7,"type":"post_reply","title":"New comment on your post","read":false}`)
	require.NoError(t, bus.Publish(ctx, relay.NotificationChannel(7), payload))

	for _, c := range []*fakeConn{a, b} {
		require.Eventually(t, func() bool {
			count, ok := c.lastCount()
			return ok && count == 1
		}, 2*time.Second, 10*time.Millisecond)

		notifications := c.named(EventNotification)
		require.Len(t, notifications, 1)
		assert.JSONEq(t, string(payload), string(notifications[0].Data.(json.RawMessage)))
	}

	assert.Empty(t, other.named(EventNotification))
}

func TestGateway_RelayDropsMessageWithoutRecipient(t *testing.T) {
	g := NewGateway(newFakeStore(map[uint]int64{7: 1}), relay.NewMemory())
	conn := newFakeConn("a")
	joinedSession(t, g, conn, 7)

	g.handleRelay(relay.NotificationChannel(7), []byte(`{"id":5,"type":"post_reply"}`))
	g.handleRelay(relay.NotificationChannel(7), []byte(`garbage`))

	assert.Empty(t, conn.named(EventNotification))
	assert.Len(t, conn.named(EventNotificationCount), 1, "only the join ack")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "identified", StateIdentified.String())
	assert.Equal(t, "joined", StateJoined.String())
	assert.Equal(t, "closed", StateClosed.String())
}
