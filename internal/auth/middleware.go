package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/session"
	"github.com/spec-kit/portal-session-service/internal/timeout"
)

const sessionLocalKey = "portal_session_record"

// Guard is the route guard for role-scoped screens. It reads the session
// cookie, resolves it through the session store, and redirects anyone
// without a matching-role session to the visited portal's login path.
type Guard struct {
	store      session.Store
	tracker    *timeout.Tracker
	cookieName string
}

// NewGuard constructs the guard.
func NewGuard(store session.Store, tracker *timeout.Tracker, cookieName string) *Guard {
	return &Guard{store: store, tracker: tracker, cookieName: cookieName}
}

// RequireRole guards a portal's screens. No session, a corrupt session,
// or a session for a different role all redirect to the REQUIRED role's
// login path; protected content is never rendered on that pass. A
// guarded request counts as qualifying activity for the idle tracker.
func (g *Guard) RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Cookies(g.cookieName)
		if key == "" {
			return c.Redirect(role.LoginPath(), fiber.StatusFound)
		}

		user, err := g.store.Get(c.UserContext(), key)
		if err != nil {
			return err
		}
		if user == nil || user.Role != role {
			return c.Redirect(role.LoginPath(), fiber.StatusFound)
		}

		if g.tracker != nil {
			g.tracker.Touch(key, user.Role)
		}

		c.Locals(sessionLocalKey, &domain.Session{Key: key, User: *user})
		return c.Next()
	}
}

// RequireAny guards screens shared by every portal (session status,
// logout). It resolves the session without a role check and without
// counting as activity, so polling the countdown never resets it.
func (g *Guard) RequireAny() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Cookies(g.cookieName)
		if key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "no session")
		}

		user, err := g.store.Get(c.UserContext(), key)
		if err != nil {
			return err
		}
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "no session")
		}

		c.Locals(sessionLocalKey, &domain.Session{Key: key, User: *user})
		return c.Next()
	}
}

// SessionFromContext retrieves the guarded session for the request.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionLocalKey)
	if val == nil {
		return nil, false
	}
	sess, ok := val.(*domain.Session)
	return sess, ok
}
