package domain

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire message delivered to every connection joined to a
// room. Event carries the catalog wire name; Payload is the event-specific
// body documented by the catalog entry.
type Envelope struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Room      string      `json:"room,omitempty"`
	Language  string      `json:"language,omitempty"`
	EmittedAt time.Time   `json:"emittedAt"`
}

// DispatchRecord captures a single delivery attempt for the dispatch sinks.
// Records are ephemeral: they exist only as long as the sink retains them.
type DispatchRecord struct {
	ID         uuid.UUID `json:"id"`
	Event      string    `json:"event"`
	Rooms      []string  `json:"rooms"`
	Recipients int       `json:"recipients"`
	Delivered  bool      `json:"delivered"`
	Reason     string    `json:"reason,omitempty"`
	EmittedAt  time.Time `json:"emittedAt"`
}
