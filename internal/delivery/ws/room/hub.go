package ws_room

import (
	"log/slog"
	"sync"

	"github.com/humanbelnik/restaurantpicker/internal/model"
)

// Hub is the registry of live connections and the room each one is in.
// Membership follows the events delivered: session-joined attaches a
// connection to its room and session-deleted detaches it.
// Send never blocks; a peer whose buffer is full gets disconnected.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	rooms   map[model.ConnID]model.RoomCode

	logger *slog.Logger
}

type HubOption func(*Hub)

func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[model.ConnID]*Client),
		rooms:   make(map[model.ConnID]model.RoomCode),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.id] = client
	h.logger.Info("client registered", "conn", client.id)
}

// Unregister forgets the connection and returns the room it was in, if any.
// Unknown ids are ignored.
func (h *Hub) Unregister(id model.ConnID) model.RoomCode {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[id]
	if !ok {
		return model.EmptyRoomCode
	}
	delete(h.clients, id)
	code := h.rooms[id]
	delete(h.rooms, id)
	client.kick()

	h.logger.Info("client unregistered", "conn", id, "room", code)
	return code
}

// Send delivers ev to one connection. Deliveries only share the hub's read
// lock; the write lock is taken just for the session events that move a
// connection between rooms.
func (h *Hub) Send(to model.ConnID, ev model.Event) {
	switch p := ev.Payload.(type) {
	case model.SessionJoinedPayload:
		h.track(to, p.RoomCode, true)
	case model.SessionDeletedPayload:
		h.track(to, p.RoomCode, false)
	}

	h.mu.RLock()
	client, ok := h.clients[to]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("send to unknown connection", "conn", to, "type", ev.Type)
		return
	}

	select {
	case <-client.done:
	case client.send <- ev:
	default:
		h.logger.Warn("client too slow, disconnecting", "conn", to, "type", ev.Type)
		client.kick()
	}
}

// track attaches a registered connection to code, or detaches it if it is still there.
func (h *Hub) track(id model.ConnID, code model.RoomCode, attach bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[id]; !ok {
		return
	}
	switch {
	case attach:
		h.rooms[id] = code
	case h.rooms[id] == code:
		delete(h.rooms, id)
	}
}

// Detach clears the connection's room if it is still code.
func (h *Hub) Detach(id model.ConnID, code model.RoomCode) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[id] == code {
		delete(h.rooms, id)
	}
}

func (h *Hub) RoomOf(id model.ConnID) model.RoomCode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[id]
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects every client; their read loops then unregister them.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		client.kick()
	}
}
