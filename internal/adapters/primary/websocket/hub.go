package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
	"github.com/samber/lo"
)

// Hub maintains the set of active Clients and the room membership index.
// Rooms exist implicitly: created on first join, gone when the last member
// leaves. The index is the only shared mutable state of the delivery layer
// and is guarded by mu.
type Hub struct {
	// clients maps connection IDs to their client.
	clients map[uuid.UUID]*Client

	// rooms maps room keys to joined clients.
	rooms map[rooms.Key]map[*Client]bool

	// mu protects the clients and rooms maps.
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the Transport port consumed by the dispatcher.
var _ ports.Transport = (*Hub)(nil)

// NewHub creates a new WebSocket hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		rooms:   make(map[rooms.Key]map[*Client]bool),
		logger:  logger.With("component", "websocket_hub"),
	}
}

// Register adds a client to the hub and auto-joins its personal room and
// its session room, so direct-to-user and direct-session delivery work
// without an explicit join request.
func (h *Hub) Register(client *Client) error {
	personal, err := rooms.ForUser(client.Identity.Role, client.Identity.UserID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.joinLocked(client, personal)
	h.joinLocked(client, rooms.ForSession(client.ID))

	h.logger.Info("client registered",
		"connection_id", client.ID,
		"role", client.Identity.Role,
		"user_id", client.Identity.UserID,
	)
	return nil
}

// Unregister removes a client from the hub and from every room it had
// joined, then closes its send channel. Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	delete(h.clients, client.ID)
	for _, key := range client.Memberships() {
		h.leaveLocked(client, key)
	}
	h.mu.Unlock()

	client.CloseSend()

	h.logger.Info("client unregistered",
		"connection_id", client.ID,
		"role", client.Identity.Role,
		"user_id", client.Identity.UserID,
	)
}

// Join adds a client to a room. Joining an already-joined room is a no-op
// success.
func (h *Hub) Join(client *Client, key rooms.Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(client, key)
}

// Leave removes a client from a room. Leaving a non-joined room is a no-op
// success.
func (h *Hub) Leave(client *Client, key rooms.Key) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, key)
}

func (h *Hub) joinLocked(client *Client, key rooms.Key) {
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Client]bool)
	}
	if h.rooms[key][client] {
		return
	}
	h.rooms[key][client] = true
	client.addMembership(key)

	h.logger.Debug("client joined room",
		"connection_id", client.ID,
		"room", key.String(),
	)
}

func (h *Hub) leaveLocked(client *Client, key rooms.Key) {
	if room, ok := h.rooms[key]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, key)
		}
	}
	client.removeMembership(key)
}

// Broadcast delivers an envelope to every client joined to the room. A room
// with zero members is a successful zero-recipient delivery. Clients whose
// send buffer is full, or that unregistered after the member snapshot was
// taken, are skipped, not counted, and logged; stalled connections are torn
// down by their own pumps.
func (h *Hub) Broadcast(key rooms.Key, envelope domain.Envelope) (int, error) {
	h.mu.RLock()
	room, ok := h.rooms[key]
	if !ok {
		h.mu.RUnlock()
		return 0, nil
	}

	// Copy the member list to avoid holding the lock while sending.
	members := lo.Keys(room)
	h.mu.RUnlock()

	delivered := 0
	for _, client := range members {
		if client.trySend(envelope) {
			delivered++
			continue
		}
		h.logger.Warn("client not accepting deliveries, skipping",
			"connection_id", client.ID,
			"room", key.String(),
			"event", envelope.Event,
		)
	}

	return delivered, nil
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of active rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// RoomSize returns the number of clients joined to a room.
func (h *Hub) RoomSize(key rooms.Key) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[key])
}

// RoomSizes returns a snapshot of every active room and its member count.
func (h *Hub) RoomSizes() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sizes := make(map[string]int, len(h.rooms))
	for key, room := range h.rooms {
		sizes[key.String()] = len(room)
	}
	return sizes
}

// IsUserConnected checks whether a user has any active connection, i.e.
// whether their personal room has members.
func (h *Hub) IsUserConnected(role domain.Role, userID int64) bool {
	key, err := rooms.ForUser(role, userID)
	if err != nil {
		return false
	}
	return h.RoomSize(key) > 0
}
