// Package notify pushes events to users' live WebSocket connections. Delivery
// is at-most-once and fire-and-forget: no persistence, no retry, and a user
// with no live connection simply misses the event.
package notify

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Notifier is the fan-out contract the core services depend on. Send must
// never block or fail the calling operation.
type Notifier interface {
	SendToUser(userID uuid.UUID, event string, payload any)
}

// Envelope is the wire format pushed to clients.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub tracks live connections per user id. A user may hold several
// connections (multiple tabs); every one of them receives each event.
type Hub struct {
	mu    sync.RWMutex
	users map[uuid.UUID]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{users: make(map[uuid.UUID]map[*Client]bool)}
}

func (h *Hub) register(userID uuid.UUID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Client]bool)
	}
	h.users[userID][c] = true
}

func (h *Hub) unregister(userID uuid.UUID, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns := h.users[userID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// SendToUser delivers an event to every live connection of the target user.
// A slow connection whose buffer is full is dropped rather than waited on.
func (h *Hub) SendToUser(userID uuid.UUID, event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*Client, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		select {
		case c.send <- data:
		default:
			go c.Close()
		}
	}
}

// LiveConnections reports how many connections the user currently holds.
func (h *Hub) LiveConnections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
