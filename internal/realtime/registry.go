package realtime

import (
	"sync"

	"github.com/anonto42/nano-comments/backend/internal/metrics"
)

// Conn is one live client connection. Send must not block on a slow client.
type Conn interface {
	ID() string
	Send(event Event) error
	Close() error
}

// Registry maps each user to the connections joined to their room in this process. A user
// entry exists only while it has at least one connection.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uint]map[string]Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[uint]map[string]Conn)}
}

// Join adds conn to the room of userID.
func (r *Registry) Join(userID uint, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[userID]
	if !ok {
		room = make(map[string]Conn)
		r.rooms[userID] = room
	}
	room[conn.ID()] = conn
	metrics.GatewayJoinedUsers.Set(float64(len(r.rooms)))
}

// Leave removes the connection from the room of userID, dropping the room when it empties.
func (r *Registry) Leave(userID uint, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[userID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, userID)
	}
	metrics.GatewayJoinedUsers.Set(float64(len(r.rooms)))
}

// Room returns a snapshot of the connections joined for userID.
func (r *Registry) Room(userID uint) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[userID]
	conns := make([]Conn, 0, len(room))
	for _, c := range room {
		conns = append(conns, c)
	}
	return conns
}

// Users returns how many users have a room.
func (r *Registry) Users() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Conns returns how many connections are joined for userID.
func (r *Registry) Conns(userID uint) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[userID])
}
