// Package ports defines the boundaries between the delivery core and its
// collaborators: the transport that owns live connections, the sinks that
// record dispatch outcomes, and the Emitter interface handlers dispatch
// through.
package ports

import (
	"context"

	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

// Transport delivers an envelope to every connection currently joined to a
// room. Delivery to a room with zero members is a no-op returning zero
// recipients. Assumed reliable within a single process only.
type Transport interface {
	Broadcast(room rooms.Key, envelope domain.Envelope) (recipients int, err error)
}

// DispatchSink receives a record of every dispatch outcome. Sink errors are
// logged by the dispatcher and never affect the dispatch result.
type DispatchSink interface {
	Record(ctx context.Context, record domain.DispatchRecord) error
}

// EmitOptions carries optional per-dispatch settings.
type EmitOptions struct {
	LanguageCode string
}

// EmitOption mutates EmitOptions.
type EmitOption func(*EmitOptions)

// WithLanguage tags the delivered envelope with a language code so clients
// can localize the update.
func WithLanguage(code string) EmitOption {
	return func(o *EmitOptions) {
		o.LanguageCode = code
	}
}

// Target identifies the recipient room(s) of a dispatch. Construct one with
// ToRoom, ToRooms, or ToUser.
type Target struct {
	keys   []rooms.Key
	role   domain.Role
	userID int64
	toUser bool
}

// ToRoom targets a single room key.
func ToRoom(key rooms.Key) Target {
	return Target{keys: []rooms.Key{key}}
}

// ToRooms targets several room keys; the envelope is delivered to each in
// the order given.
func ToRooms(keys ...rooms.Key) Target {
	return Target{keys: keys}
}

// ToUser targets a user's personal room, resolved via the room addressing
// scheme at dispatch time.
func ToUser(role domain.Role, userID int64) Target {
	return Target{role: role, userID: userID, toUser: true}
}

// Resolve returns the concrete room keys for the target, or an
// InvalidAddressError for malformed targets.
func (t Target) Resolve() ([]rooms.Key, error) {
	if t.toUser {
		key, err := rooms.ForUser(t.role, t.userID)
		if err != nil {
			return nil, err
		}
		return []rooms.Key{key}, nil
	}
	if len(t.keys) == 0 {
		return nil, &apperrors.InvalidAddressError{
			Field:  "target",
			Value:  "",
			Reason: "no room keys given",
		}
	}
	for _, key := range t.keys {
		if key == "" {
			return nil, &apperrors.InvalidAddressError{
				Field:  "target",
				Value:  "",
				Reason: "empty room key",
			}
		}
	}
	return t.keys, nil
}

// Outcome reports the result of one Emit call. A zero-recipient delivery to
// an empty room is still Delivered.
type Outcome struct {
	Delivered  bool
	Recipients int
	Rooms      []rooms.Key
	Err        error
}

// Emitter is the single choke point for event delivery. Emit never panics
// and never returns an error to the caller; failures are reported inside
// the Outcome and logged.
type Emitter interface {
	Emit(ctx context.Context, event string, payload interface{}, target Target, opts ...EmitOption) Outcome
}
