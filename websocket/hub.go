// Package websocket implements the realtime channel: one room per chat,
// best-effort fan-out of chat events to the sockets currently joined.
package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event names on the wire.
const (
	EventJoinChat       = "joinChat"
	EventTyping         = "typing"
	EventStopTyping     = "stopTyping"
	EventUserTyping     = "userTyping"
	EventUserStopTyping = "userStoppedTyping"
	EventMessageNew     = "messageReceived"
	EventMessageDeleted = "messageDeleted"
)

// Event is the JSON frame exchanged on the socket.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub owns all room membership. Events are delivered only to sockets joined
// to the target room at emit time; there is no queuing or replay.
type Hub struct {
	log *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	h.log.Infow("socket connected", "clients", len(h.clients))
}

// Unregister drops the client from every room and closes its send channel.
// Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	for chatID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
	close(c.send)
	h.log.Infow("socket disconnected", "clients", len(h.clients))
}

// Join subscribes the client to the chat's room.
func (h *Hub) Join(chatID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	if h.rooms[chatID] == nil {
		h.rooms[chatID] = make(map[*Client]bool)
	}
	h.rooms[chatID][c] = true
	h.log.Infow("socket joined chat", "chatId", chatID)
}

// Broadcast emits an event to every socket in the room. A room with no
// sockets is a silent no-op.
func (h *Hub) Broadcast(chatID, event string, payload interface{}) {
	h.emit(chatID, nil, event, payload)
}

// BroadcastExcept emits to the room while skipping one socket, used for
// typing indicators so a sender never sees its own presence signal.
func (h *Hub) BroadcastExcept(chatID string, skip *Client, event string, payload interface{}) {
	h.emit(chatID, skip, event, payload)
}

// RoomSize reports how many sockets are joined to a chat's room.
func (h *Hub) RoomSize(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

func (h *Hub) emit(chatID string, skip *Client, event string, payload interface{}) {
	frame, err := json.Marshal(struct {
		Event   string      `json:"event"`
		Payload interface{} `json:"payload"`
	}{Event: event, Payload: payload})
	if err != nil {
		h.log.Errorw("marshal socket event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[chatID] {
		if c == skip {
			continue
		}
		select {
		case c.send <- frame:
		default:
			// slow consumer, drop the frame rather than block the hub
			h.log.Warnw("dropping socket event", "event", event, "chatId", chatID)
		}
	}
}
