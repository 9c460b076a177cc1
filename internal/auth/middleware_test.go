package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/session"
)

const testCookie = "portal_session"

func newGuardedApp(t *testing.T, store session.Store) *fiber.App {
	t.Helper()

	guard := NewGuard(store, nil, testCookie)
	app := fiber.New()

	app.Get("/admin/dashboard", guard.RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		sess, ok := SessionFromContext(c)
		require.True(t, ok)
		return c.SendString("admin content for " + sess.User.Name)
	})
	app.Get("/doctor/dashboard", guard.RequireRole(domain.RoleDoctor), func(c *fiber.Ctx) error {
		return c.SendString("doctor content")
	})
	app.Get("/session/status", guard.RequireAny(), func(c *fiber.Ctx) error {
		return c.SendString("status")
	})
	return app
}

func seedSession(t *testing.T, store session.Store, key string, role domain.Role) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), key, domain.User{
		ID:    "usr-1",
		Email: "user@example.com",
		Name:  "Test User",
		Role:  role,
	}))
}

func request(t *testing.T, app *fiber.App, path, cookieValue string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: cookieValue})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGuard_NoCookieRedirectsToLogin(t *testing.T) {
	app := newGuardedApp(t, session.NewMemoryStore())

	resp := request(t, app, "/admin/dashboard", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestGuard_UnknownSessionRedirects(t *testing.T) {
	app := newGuardedApp(t, session.NewMemoryStore())

	resp := request(t, app, "/doctor/dashboard", "no-such-session")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/doctor", resp.Header.Get("Location"))
}

func TestGuard_RoleMismatchRedirectsToRequiredRoleLogin(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "doc-key", domain.RoleDoctor)
	app := newGuardedApp(t, store)

	// doctor session visiting the admin screen lands on the admin login
	resp := request(t, app, "/admin/dashboard", "doc-key")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestGuard_MatchingRoleRenders(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "doc-key", domain.RoleDoctor)
	app := newGuardedApp(t, store)

	resp := request(t, app, "/doctor/dashboard", "doc-key")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuard_CorruptSessionTreatedAsAbsent(t *testing.T) {
	store := session.NewMemoryStore()
	type seeder interface{ Seed(key string, raw []byte) }
	store.(seeder).Seed("bad-key", []byte("{{{corrupt"))
	app := newGuardedApp(t, store)

	resp := request(t, app, "/admin/dashboard", "bad-key")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestGuard_RequireAnyAcceptsEveryRole(t *testing.T) {
	store := session.NewMemoryStore()
	seedSession(t, store, "any-key", domain.RoleFacility)
	app := newGuardedApp(t, store)

	resp := request(t, app, "/session/status", "any-key")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuard_RequireAnyRejectsMissingSession(t *testing.T) {
	app := newGuardedApp(t, session.NewMemoryStore())

	resp := request(t, app, "/session/status", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
