// Package rooms implements the room addressing scheme: pure, deterministic
// mappings from identities and entities to canonical room key strings.
// Room keys are opaque to everything downstream; only this package knows
// their structure at construction time.
package rooms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
)

// Key is a canonical room identifier. Many connections may be joined to one
// key; one connection may be joined to many keys.
type Key string

func (k Key) String() string {
	return string(k)
}

// ForUser returns the personal broadcast room for a role + user id pair,
// in the "{role}:{id}" convention used for direct-to-user delivery.
func ForUser(role domain.Role, userID int64) (Key, error) {
	if !role.Valid() {
		return "", &apperrors.InvalidAddressError{
			Field:  "role",
			Value:  role.String(),
			Reason: "not a known platform role",
		}
	}
	if userID <= 0 {
		return "", &apperrors.InvalidAddressError{
			Field:  "userId",
			Value:  strconv.FormatInt(userID, 10),
			Reason: "must be a positive id",
		}
	}
	return Key(role.String() + ":" + strconv.FormatInt(userID, 10)), nil
}

// ForEntity returns the shared room for an entity, e.g. "ride:42" or
// "chat:7".
func ForEntity(entityType string, entityID int64) (Key, error) {
	if err := checkToken("entityType", entityType); err != nil {
		return "", err
	}
	if entityID <= 0 {
		return "", &apperrors.InvalidAddressError{
			Field:  "entityId",
			Value:  strconv.FormatInt(entityID, 10),
			Reason: "must be a positive id",
		}
	}
	return Key(entityType + ":" + strconv.FormatInt(entityID, 10)), nil
}

// ForComposite returns a multi-part room key, e.g.
// ForComposite("cancellation", "mpark", 123) -> "cancellation:mpark:123".
// The resulting format is part of the wire contract with clients and must
// not change.
func ForComposite(prefix string, parts ...interface{}) (Key, error) {
	if err := checkToken("prefix", prefix); err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return "", &apperrors.InvalidAddressError{
			Field:  "parts",
			Value:  "",
			Reason: "at least one part is required",
		}
	}

	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)
	for i, part := range parts {
		field := fmt.Sprintf("parts[%d]", i)
		switch v := part.(type) {
		case string:
			if err := checkToken(field, v); err != nil {
				return "", err
			}
			segments = append(segments, v)
		case int:
			if v <= 0 {
				return "", &apperrors.InvalidAddressError{
					Field:  field,
					Value:  strconv.Itoa(v),
					Reason: "must be a positive id",
				}
			}
			segments = append(segments, strconv.Itoa(v))
		case int64:
			if v <= 0 {
				return "", &apperrors.InvalidAddressError{
					Field:  field,
					Value:  strconv.FormatInt(v, 10),
					Reason: "must be a positive id",
				}
			}
			segments = append(segments, strconv.FormatInt(v, 10))
		default:
			return "", &apperrors.InvalidAddressError{
				Field:  field,
				Value:  fmt.Sprintf("%v", part),
				Reason: "unsupported part type",
			}
		}
	}
	return Key(strings.Join(segments, ":")), nil
}

// ForSession returns the degenerate one-member room auto-joined by each
// connection at registration, used for direct-session delivery.
func ForSession(connectionID uuid.UUID) Key {
	return Key("session:" + connectionID.String())
}

// checkToken rejects key segments that would produce a malformed or
// ambiguous room key, e.g. "customer:undefined" style keys.
func checkToken(field, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed != value {
		return &apperrors.InvalidAddressError{
			Field:  field,
			Value:  value,
			Reason: "must be a non-empty token without surrounding whitespace",
		}
	}
	if strings.ContainsAny(value, ": \t\n") {
		return &apperrors.InvalidAddressError{
			Field:  field,
			Value:  value,
			Reason: "must not contain separators or whitespace",
		}
	}
	return nil
}
