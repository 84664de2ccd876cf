package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message represents a real-time notification sent to an organization's
// connected dashboard clients.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub maintains the set of active WebSocket clients grouped by organization.
// Broadcasts are tenant-scoped: a client only ever receives messages for its
// own organization.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to its organization's room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	room, ok := h.clients[c.organizationID]
	if !ok {
		room = make(map[*Client]struct{})
		h.clients[c.organizationID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if room, ok := h.clients[c.organizationID]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			close(c.send)
		}
		if len(room) == 0 {
			delete(h.clients, c.organizationID)
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all clients of one organization.
func (h *Hub) Broadcast(organizationID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[organizationID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients for an organization.
func (h *Hub) ClientCount(organizationID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[organizationID])
}
