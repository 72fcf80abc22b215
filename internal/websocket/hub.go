// Package websocket pushes change notifications to an owner's open
// connections.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

const (
	EntityTask     = "task"
	EntityEvent    = "event"
	EntityReminder = "reminder"

	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionCompleted = "completed"
	ActionReopened  = "reopened"
	ActionDue       = "due"
)

// Message is a change notification. Type is "<entity>_<action>".
type Message struct {
	Type   string `json:"type"`
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id,omitempty"`
}

func NewMessage(entity, action string, id int64) Message {
	return Message{
		Type:   entity + "_" + action,
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// Hub tracks open clients per owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.ownerID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.ownerID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes c and closes its send channel. It is safe to call more
// than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.ownerID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.ownerID)
	}
}

// Broadcast sends msg to every client of ownerID. A client whose buffer is
// full misses the message.
func (h *Hub) Broadcast(ownerID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[ownerID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client buffer full, dropping message", "owner_id", ownerID, "type", msg.Type)
		}
	}
}

// ClientCount returns the number of open clients across all owners.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) OwnerClientCount(ownerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[ownerID])
}
