package domain

import "time"

// User is the record identifying a portal account. Immutable once issued
// by the auth gate; looked up from the static directory keyed by email.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Valid reports whether the record is well formed. A stored session that
// fails this check is treated as absent.
func (u *User) Valid() bool {
	return u != nil && u.ID != "" && u.Email != "" && u.Role.Valid()
}

// Session pairs an opaque session key with the user it was issued to.
type Session struct {
	Key      string    `json:"key"`
	User     User      `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}
