package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/auth"
	"github.com/spec-kit/portal-session-service/internal/domain"
)

// PortalHandler serves the per-role screens: the login screen descriptor
// at the bare role path (the redirect target for guarded routes) and the
// guarded dashboard.
type PortalHandler struct{}

// NewPortalHandler constructs handler.
func NewPortalHandler() *PortalHandler {
	return &PortalHandler{}
}

// LoginScreen returns the handler for GET /{role}.
func (h *PortalHandler) LoginScreen(portal domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": fiber.Map{
			"screen":     "login",
			"portal":     string(portal),
			"login_path": portal.LoginPath() + "/login",
		}})
	}
}

// Dashboard returns the handler for GET /{role}/dashboard. It renders
// only after the route guard and suspension gate have passed.
func (h *PortalHandler) Dashboard(portal domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := auth.SessionFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "no session")
		}

		return c.JSON(fiber.Map{"data": fiber.Map{
			"screen": "dashboard",
			"portal": string(portal),
			"user": fiber.Map{
				"id":   sess.User.ID,
				"name": sess.User.Name,
				"role": string(sess.User.Role),
			},
		}})
	}
}
