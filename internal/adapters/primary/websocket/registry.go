package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
)

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// HandlerFunc processes one inbound client message. Implementations
// validate their payload, then either mutate the client's room membership
// or relay a catalog event through the emitter. They never return errors to
// the peer; failures are logged and the listener exits.
type HandlerFunc func(ctx context.Context, c *Client, payload json.RawMessage)

// Registry holds the inbound listener sets, shared and per role. A client
// connection resolves its listeners from its authenticated role; the sets
// themselves are built once at construction and read-only after.
type Registry struct {
	emitter  ports.Emitter
	validate *validator.Validate
	logger   *slog.Logger

	shared map[string]HandlerFunc
	byRole map[domain.Role]map[string]HandlerFunc
}

// NewRegistry creates the registry with the built-in listener sets for
// every platform role.
func NewRegistry(emitter ports.Emitter, logger *slog.Logger) *Registry {
	r := &Registry{
		emitter:  emitter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("component", "handler_registry"),
		shared:   make(map[string]HandlerFunc),
		byRole:   make(map[domain.Role]map[string]HandlerFunc),
	}

	for _, role := range domain.Roles {
		r.byRole[role] = make(map[string]HandlerFunc)
	}

	r.registerShared()
	r.registerCustomer()
	r.registerDriver()
	r.registerMerchant()
	r.registerStaff()
	r.registerAdmin()

	return r
}

// on binds a listener for one role.
func (r *Registry) on(role domain.Role, msgType string, handler HandlerFunc) {
	if _, exists := r.byRole[role][msgType]; exists {
		panic("registry: duplicate listener " + msgType + " for role " + role.String())
	}
	r.byRole[role][msgType] = handler
}

// onAll binds a listener shared by every role.
func (r *Registry) onAll(msgType string, handler HandlerFunc) {
	if _, exists := r.shared[msgType]; exists {
		panic("registry: duplicate shared listener " + msgType)
	}
	r.shared[msgType] = handler
}

// HandleMessage routes one raw inbound message to the listener registered
// for the client's role. Unknown types and malformed payloads are logged
// and dropped; a listener panic is recovered so one bad message cannot
// take down the connection.
func (r *Registry) HandleMessage(ctx context.Context, c *Client, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("listener panicked",
				"connection_id", c.ID,
				"panic", rec,
			)
		}
	}()

	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.logger.Warn("failed to unmarshal client message",
			"connection_id", c.ID,
			"error", err,
		)
		return
	}

	handler, ok := r.byRole[c.Identity.Role][msg.Type]
	if !ok {
		handler, ok = r.shared[msg.Type]
	}
	if !ok {
		r.logger.Debug("no listener for message type",
			"connection_id", c.ID,
			"role", c.Identity.Role,
			"type", msg.Type,
		)
		return
	}

	handler(ctx, c, msg.Payload)
}

// decode unmarshals and validates a listener payload. A failure is a
// caller error, not a crash: it is wrapped as a ValidationFailure, logged
// by the listener, and the dispatch is skipped.
func (r *Registry) decode(listener string, raw json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return &apperrors.ValidationFailure{Listener: listener, Err: err}
	}
	if err := r.validate.Struct(dst); err != nil {
		return &apperrors.ValidationFailure{Listener: listener, Err: err}
	}
	return nil
}

// rejected logs a validation failure for a listener.
func (r *Registry) rejected(c *Client, err error) {
	r.logger.Warn("inbound payload rejected",
		"connection_id", c.ID,
		"role", c.Identity.Role,
		"error", err,
	)
}

// pong answers a client-side keep-alive without going through dispatch.
func pong() domain.Envelope {
	return domain.Envelope{Event: "pong", EmittedAt: time.Now().UTC()}
}
