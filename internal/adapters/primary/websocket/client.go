package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// sendBufferSize is the per-client outbound queue depth.
	sendBufferSize = 256

	// Inbound message rate limit per connection.
	inboundRPS   = 20
	inboundBurst = 40
)

// Client is a middleman between one websocket connection and the hub. It is
// bound to a single authenticated identity for its lifetime.
type Client struct {
	hub      *Hub
	registry *Registry

	// The websocket connection.
	conn *websocket.Conn

	// Send is the buffered channel of outbound envelopes.
	Send chan domain.Envelope

	// ID is the opaque session handle for this connection.
	ID uuid.UUID

	// Identity is the authenticated role/id pair from the handshake.
	Identity domain.Identity

	// memberships tracks which rooms this connection has joined.
	memberships map[rooms.Key]bool

	// limiter throttles inbound messages from this connection.
	limiter *rate.Limiter

	// sendMu serializes trySend against CloseSend so the hub never sends
	// on a channel that a concurrent unregister has closed.
	sendMu     sync.RWMutex
	sendClosed bool

	// mu protects the memberships map.
	mu sync.RWMutex

	logger *slog.Logger
}

// NewClient creates a client for an upgraded connection. The caller is
// responsible for registering it with the hub and starting the pumps.
func NewClient(hub *Hub, registry *Registry, conn *websocket.Conn, identity domain.Identity, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		hub:         hub,
		registry:    registry,
		conn:        conn,
		Send:        make(chan domain.Envelope, sendBufferSize),
		ID:          id,
		Identity:    identity,
		memberships: make(map[rooms.Key]bool),
		limiter:     rate.NewLimiter(rate.Limit(inboundRPS), inboundBurst),
		logger: logger.With(
			"connection_id", id.String(),
			"role", identity.Role.String(),
			"user_id", identity.UserID,
		),
	}
}

// CloseSend closes the Send channel exactly once. The write lock waits out
// any in-flight trySend, so a broadcast racing an unregister can never hit
// a closed channel.
func (c *Client) CloseSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.Send)
}

// trySend queues an envelope for this client without blocking. It reports
// false when the channel is already closed or the buffer is full.
func (c *Client) trySend(envelope domain.Envelope) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.Send <- envelope:
		return true
	default:
		return false
	}
}

func (c *Client) addMembership(key rooms.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memberships[key] = true
}

func (c *Client) removeMembership(key rooms.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.memberships, key)
}

// InRoom reports whether the client is currently joined to the room.
func (c *Client) InRoom(key rooms.Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.memberships[key]
}

// Memberships returns a copy of the client's current room memberships.
func (c *Client) Memberships() []rooms.Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]rooms.Key, 0, len(c.memberships))
	for key := range c.memberships {
		keys = append(keys, key)
	}
	return keys
}

// ReadPump pumps messages from the websocket connection into the handler
// registry. It runs in its own goroutine; on exit the client is
// unregistered, which implicitly leaves every joined room.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		if !c.limiter.Allow() {
			c.logger.Warn("inbound message rate limit exceeded, dropping message")
			continue
		}

		c.registry.HandleMessage(ctx, c, message)
	}
}

// WritePump pumps envelopes from the Send channel to the websocket
// connection. It runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.Send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(envelope); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes one envelope to the websocket connection.
func (c *Client) writeJSON(envelope domain.Envelope) error {
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// sendDirect queues an envelope straight to this client, bypassing room
// fan-out. Used for protocol-level replies like pong.
func (c *Client) sendDirect(envelope domain.Envelope) {
	c.trySend(envelope)
}
