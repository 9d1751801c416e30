package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/anonto42/nano-comments/backend/internal/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	defaultSendBuffer = 32
)

var (
	// ErrConnClosed is returned by Send after the connection was closed.
	ErrConnClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned by Send when the client fell too far behind; the connection is
	// closed.
	ErrSlowConsumer = errors.New("send buffer full")
)

// IdentityResolver extracts the user id from a handshake request. It returns 0 when the request
// carries no usable identity.
type IdentityResolver func(r *http.Request) uint

// WebSocketOptions configures the websocket transport.
type WebSocketOptions struct {
	// AllowedOrigin is the browser origin allowed to connect. Empty or "*" allows any origin.
	AllowedOrigin string
	// RejectAnonymous closes connections whose handshake has no identity instead of leaving
	// them un-joined.
	RejectAnonymous bool
	SendBuffer      int
}

// WebSocketHandler upgrades HTTP requests and bridges each websocket to the Gateway.
type WebSocketHandler struct {
	gateway  *Gateway
	identify IdentityResolver
	opts     WebSocketOptions
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewWebSocketHandler creates a WebSocketHandler.
func NewWebSocketHandler(gateway *Gateway, identify IdentityResolver, opts WebSocketOptions) *WebSocketHandler {
	if opts.SendBuffer < 1 {
		opts.SendBuffer = defaultSendBuffer
	}
	h := &WebSocketHandler{
		gateway:  gateway,
		identify: identify,
		opts:     opts,
		log:      logger.WithComponent("websocket"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" {
		return true
	}
	return origin == h.opts.AllowedOrigin
}

// Handle serves GET /ws. It blocks until the connection closes.
func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.log.Warn("Failed to upgrade websocket", slog.String("error", err.Error()))
		return nil
	}

	userID := h.identify(c.Request())
	if userID == 0 && h.opts.RejectAnonymous {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = ws.Close()
		return nil
	}

	conn := newWSConn(ws, h.opts.SendBuffer)
	session := h.gateway.Connect(conn, userID)
	go conn.writePump()

	ctx := c.Request().Context()
	conn.readPump(func(msg []byte) {
		h.gateway.HandleMessage(ctx, session, msg)
	})

	h.gateway.Disconnect(session)
	return nil
}

// wsConn is a Conn over a gorilla websocket. Writes go through a buffered queue drained by
// writePump, which is the only goroutine writing to the socket.
type wsConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSConn(ws *websocket.Conn, buffer int) *wsConn {
	return &wsConn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		_ = c.Close()
		return ErrSlowConsumer
	}
}

// Close stops the write pump, which closes the socket and so ends the read pump.
func (c *wsConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *wsConn) readPump(handle func([]byte)) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		handle(msg)
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
