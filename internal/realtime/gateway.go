// Package realtime is the live notification channel: it tracks which connections are joined to
// which user's room in this process and pushes relayed notifications and unread counts to them.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/anonto42/nano-comments/backend/internal/metrics"
	"github.com/anonto42/nano-comments/backend/internal/services"
	"github.com/anonto42/nano-comments/backend/pkg/relay"
)

// State is the lifecycle stage of a connection.
type State int

const (
	StateConnecting State = iota
	StateIdentified
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdentified:
		return "identified"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// NotificationStore is the part of the notification service the gateway needs.
type NotificationStore interface {
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID uint) error
}

// Session is the gateway's view of one connection. It is driven by the connection's read loop
// only, so it needs no locking.
type Session struct {
	conn   Conn
	userID uint
	state  State
}

// UserID is the identity established at handshake, 0 when anonymous.
func (s *Session) UserID() uint { return s.userID }

// State returns the current lifecycle stage.
func (s *Session) State() State { return s.state }

// Gateway owns this process's registry and its single relay subscription.
type Gateway struct {
	store    NotificationStore
	sub      relay.Subscriber
	registry *Registry
	log      *slog.Logger

	mu  sync.Mutex
	ctx context.Context
}

// NewGateway creates a Gateway. Call Start before accepting connections.
func NewGateway(store NotificationStore, sub relay.Subscriber) *Gateway {
	return &Gateway{
		store:    store,
		sub:      sub,
		registry: NewRegistry(),
		log:      logger.WithComponent("gateway"),
		ctx:      context.Background(),
	}
}

// Registry exposes the connection registry, for health reporting and tests.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Start subscribes to every per-user notification channel. The subscription lasts until ctx is
// cancelled.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()

	if err := g.sub.PSubscribe(ctx, relay.NotificationPattern, g.handleRelay); err != nil {
		return err
	}
	g.log.Info("Subscribed to notification relay", slog.String("pattern", relay.NotificationPattern))
	return nil
}

// Connect registers a freshly handshaken connection. userID is 0 when the handshake carried no
// identity; such a connection stays identified but can never join.
func (g *Gateway) Connect(conn Conn, userID uint) *Session {
	metrics.GatewayConnections.Inc()
	g.log.Debug("Connection opened", slog.String("conn_id", conn.ID()), slog.Uint64("user_id", uint64(userID)))
	return &Session{conn: conn, userID: userID, state: StateIdentified}
}

// Disconnect removes the session from its room. It is safe to call more than once.
func (g *Gateway) Disconnect(s *Session) {
	if s.state == StateClosed {
		return
	}
	if s.state == StateJoined {
		g.registry.Leave(s.userID, s.conn.ID())
	}
	s.state = StateClosed
	metrics.GatewayConnections.Dec()
	g.log.Debug("Connection closed", slog.String("conn_id", s.conn.ID()), slog.Uint64("user_id", uint64(s.userID)))
}

// HandleMessage processes one inbound frame. Failures are answered with an error event; the
// connection is left open.
func (g *Gateway) HandleMessage(ctx context.Context, s *Session, raw []byte) {
	if s.state == StateClosed {
		return
	}

	var in inboundEvent
	if err := json.Unmarshal(raw, &in); err != nil || in.Name == "" {
		g.send(s.conn, errorEvent("", "Malformed message"))
		return
	}

	switch in.Name {
	case EventJoin:
		g.Join(ctx, s, in.Data)
	case EventMarkRead:
		g.MarkRead(ctx, s, in.Data)
	default:
		g.send(s.conn, errorEvent(in.Name, "Unknown event"))
	}
}

// Join puts the session in its user's room and sends it the current unread count.
func (g *Gateway) Join(ctx context.Context, s *Session, data json.RawMessage) {
	var p joinPayload
	if err := decode(data, &p); err != nil {
		g.send(s.conn, errorEvent(EventJoin, "Invalid payload"))
		return
	}
	if p.UserID == 0 {
		g.send(s.conn, errorEvent(EventJoin, "userId is required"))
		return
	}
	if s.userID == 0 {
		g.send(s.conn, errorEvent(EventJoin, "Connection is not identified"))
		return
	}
	if uint(p.UserID) != s.userID {
		g.send(s.conn, errorEvent(EventJoin, "Cannot join another user's notifications"))
		return
	}

	if s.state != StateJoined {
		g.registry.Join(s.userID, s.conn)
		s.state = StateJoined
	}

	count, err := g.store.UnreadCount(ctx, s.userID)
	if err != nil {
		g.log.ErrorContext(ctx, "Failed to load unread count", slog.Uint64("user_id", uint64(s.userID)), slog.String("error", err.Error()))
		g.send(s.conn, errorEvent(EventJoin, services.Message(err, "Failed to load unread count")))
		return
	}
	g.send(s.conn, countEvent(count))
}

// MarkRead marks a notification as read for the session's user and broadcasts the new count to
// the user's whole room.
func (g *Gateway) MarkRead(ctx context.Context, s *Session, data json.RawMessage) {
	var p markReadPayload
	if err := decode(data, &p); err != nil {
		g.send(s.conn, errorEvent(EventMarkRead, "Invalid payload"))
		return
	}
	if p.NotificationID == 0 {
		g.send(s.conn, errorEvent(EventMarkRead, "notificationId is required"))
		return
	}
	if s.userID == 0 {
		g.send(s.conn, errorEvent(EventMarkRead, "Connection is not identified"))
		return
	}
	if p.UserID != 0 && uint(p.UserID) != s.userID {
		g.send(s.conn, errorEvent(EventMarkRead, "You can only access your own notifications"))
		return
	}

	if err := g.store.MarkRead(ctx, uint(p.NotificationID), s.userID); err != nil {
		g.send(s.conn, errorEvent(EventMarkRead, services.Message(err, "Failed to mark notification as read")))
		return
	}
	g.pushCount(ctx, s.userID)
}

func (g *Gateway) handleRelay(channel string, payload []byte) {
	var p relayPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.UserID == 0 {
		g.log.Warn("Dropping relay message without recipient", slog.String("channel", channel))
		metrics.ObserveRelayMessage(metrics.RelayDropped)
		return
	}

	userID := uint(p.UserID)
	conns := g.registry.Room(userID)
	if len(conns) == 0 {
		metrics.ObserveRelayMessage(metrics.RelayNoRoom)
		return
	}
	metrics.ObserveRelayMessage(metrics.RelayDelivered)

	event := Event{Name: EventNotification, Data: json.RawMessage(payload)}
	for _, c := range conns {
		g.send(c, event)
	}

	g.mu.Lock()
	ctx := g.ctx
	g.mu.Unlock()
	g.pushCount(ctx, userID)
}

// pushCount recomputes the unread count from the store and sends it to every joined connection
// of the user.
func (g *Gateway) pushCount(ctx context.Context, userID uint) {
	count, err := g.store.UnreadCount(ctx, userID)
	if err != nil {
		g.log.ErrorContext(ctx, "Failed to load unread count", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
		return
	}
	event := countEvent(count)
	for _, c := range g.registry.Room(userID) {
		g.send(c, event)
	}
}

func (g *Gateway) send(c Conn, event Event) {
	if err := c.Send(event); err != nil {
		g.log.Warn("Failed to push event",
			slog.String("conn_id", c.ID()),
			slog.String("event", event.Name),
			slog.String("error", err.Error()))
		return
	}
	metrics.ObserveEventSent(event.Name)
}
