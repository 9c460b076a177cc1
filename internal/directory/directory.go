// Package directory holds the static known-user directory. It is demo
// configuration, not a runtime interface: every account shares the single
// demo secret, held here only as a bcrypt hash.
package directory

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

// Directory resolves emails to known portal accounts and checks the
// shared demo secret.
type Directory struct {
	byEmail      map[string]domain.User
	passwordHash []byte
}

// New builds a directory over the given users, hashing the shared demo
// password at the configured cost.
func New(demoPassword string, bcryptCost int, users []domain.User) (*Directory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcryptCost)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string]domain.User, len(users))
	for _, u := range users {
		byEmail[normalizeEmail(u.Email)] = u
	}

	return &Directory{byEmail: byEmail, passwordHash: hash}, nil
}

// NewWithDemoUsers builds a directory seeded with the demo accounts.
func NewWithDemoUsers(demoPassword string, bcryptCost int) (*Directory, error) {
	return New(demoPassword, bcryptCost, DemoUsers())
}

// Lookup returns the user registered under the email, if any.
func (d *Directory) Lookup(email string) (domain.User, bool) {
	user, ok := d.byEmail[normalizeEmail(email)]
	return user, ok
}

// CheckPassword verifies the supplied password against the shared demo
// secret.
func (d *Directory) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(d.passwordHash, []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DemoUsers returns the hard-coded accounts for the three portals.
func DemoUsers() []domain.User {
	return []domain.User{
		{
			ID:    "admin-001",
			Email: "admin@medsched.com",
			Name:  "System Administrator",
			Role:  domain.RoleAdmin,
		},
		{
			ID:    "facility-001",
			Email: "contact@downtownmed.com",
			Name:  "Downtown Medical Center",
			Role:  domain.RoleFacility,
		},
		{
			ID:    "facility-002",
			Email: "info@riversideclinic.com",
			Name:  "Riverside Family Clinic",
			Role:  domain.RoleFacility,
		},
		{
			ID:    "doctor-001",
			Email: "dr.johnson@downtownmed.com",
			Name:  "Dr. Sarah Johnson",
			Role:  domain.RoleDoctor,
		},
		{
			ID:    "doctor-002",
			Email: "dr.patel@riversideclinic.com",
			Name:  "Dr. Anil Patel",
			Role:  domain.RoleDoctor,
		},
	}
}
