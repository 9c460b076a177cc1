package suspension

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/auth"
	apperrors "github.com/spec-kit/portal-session-service/pkg/util"
)

// Gate blocks every dashboard request for a suspended role. It re-reads
// the flag store on each request, so clearing the flag unblocks the very
// next request without navigation or re-login. The gate never touches
// the session: a suspended user stays authenticated, just blocked.
func Gate(flags FlagStore, supportContact string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := auth.SessionFromContext(c)
		if !ok {
			// guard runs first; nothing to gate without a session
			return c.Next()
		}

		role := sess.User.Role
		if !role.Suspendable() {
			return c.Next()
		}

		suspended, err := flags.IsSuspended(c.UserContext(), role)
		if err != nil {
			return err
		}
		if suspended {
			return apperrors.NewAccountSuspended(map[string]any{
				"role":            string(role),
				"support_contact": supportContact,
			})
		}

		return c.Next()
	}
}
