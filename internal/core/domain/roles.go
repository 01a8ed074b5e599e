package domain

import apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"

// Role identifies which side of the platform a connection belongs to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleMerchant Role = "merchant"
	RoleStaff    Role = "staff"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleCustomer, RoleDriver, RoleMerchant, RoleStaff}

// Valid reports whether the role is one of the known platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleDriver, RoleMerchant, RoleStaff:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw string (e.g. from a JWT claim) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", apperrors.ErrUnknownRole
	}
	return r, nil
}

// Identity is the authenticated identity bound to a connection for its
// lifetime. Supplied by the auth collaborator at handshake time and treated
// as trusted input.
type Identity struct {
	Role              Role
	UserID            int64
	PreferredLanguage string
}
