package domain

import "fmt"

// Role enumerates the portals a session may belong to.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFacility Role = "facility"
	RoleDoctor   Role = "doctor"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleFacility, RoleDoctor}
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleFacility:
		return RoleFacility, nil
	case RoleDoctor:
		return RoleDoctor, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the known portal roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFacility, RoleDoctor:
		return true
	default:
		return false
	}
}

// Suspendable reports whether the role can carry a suspension flag.
// Admin accounts are never suspended.
func (r Role) Suspendable() bool {
	return r == RoleFacility || r == RoleDoctor
}

// LoginPath returns the login route for the role's portal.
func (r Role) LoginPath() string {
	return "/" + string(r)
}

// SuspensionKey returns the persisted flag key for the role.
func (r Role) SuspensionKey() string {
	return string(r) + "AccountSuspended"
}
