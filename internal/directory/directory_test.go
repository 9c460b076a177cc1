package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portal-session-service/internal/domain"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	// bcrypt.MinCost keeps the test fast
	d, err := NewWithDemoUsers("password123", 4)
	require.NoError(t, err)
	return d
}

func TestLookup_KnownEmail(t *testing.T) {
	d := newTestDirectory(t)

	user, ok := d.Lookup("dr.johnson@downtownmed.com")
	require.True(t, ok)
	assert.Equal(t, domain.RoleDoctor, user.Role)
	assert.Equal(t, "doctor-001", user.ID)
}

func TestLookup_NormalizesEmail(t *testing.T) {
	d := newTestDirectory(t)

	user, ok := d.Lookup("  DR.Johnson@DowntownMed.COM ")
	require.True(t, ok)
	assert.Equal(t, "doctor-001", user.ID)
}

func TestLookup_UnknownEmail(t *testing.T) {
	d := newTestDirectory(t)

	_, ok := d.Lookup("nobody@nowhere.com")
	assert.False(t, ok)
}

func TestCheckPassword(t *testing.T) {
	d := newTestDirectory(t)

	assert.True(t, d.CheckPassword("password123"))
	assert.False(t, d.CheckPassword("password124"))
	assert.False(t, d.CheckPassword(""))
}

func TestDemoUsers_EveryRoleRepresented(t *testing.T) {
	seen := make(map[domain.Role]bool)
	for _, u := range DemoUsers() {
		require.True(t, u.Valid(), "demo user %s must be well formed", u.ID)
		seen[u.Role] = true
	}
	for _, role := range domain.Roles() {
		assert.True(t, seen[role], "missing demo user for role %s", role)
	}
}
