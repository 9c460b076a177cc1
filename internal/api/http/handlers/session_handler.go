package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/api/dto"
	"github.com/spec-kit/portal-session-service/internal/auth"
	"github.com/spec-kit/portal-session-service/internal/timeout"
)

// SessionHandler exposes the inactivity-lifecycle endpoints: the
// once-per-second status poll behind the warning countdown, the explicit
// extend control, and the qualifying-activity signal.
type SessionHandler struct {
	tracker *timeout.Tracker
}

// NewSessionHandler constructs handler.
func NewSessionHandler(tracker *timeout.Tracker) *SessionHandler {
	return &SessionHandler{tracker: tracker}
}

// Status handles GET /session/status. Polling the status is not
// qualifying activity, so watching the countdown never resets it.
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no session")
	}

	phase, remaining, tracked := h.tracker.Status(sess.Key)
	if !tracked {
		// live cookie without a machine: the service restarted; a fresh
		// window starts on the next guarded request
		phase, remaining = timeout.PhaseActive, 0
	}

	return c.JSON(fiber.Map{"data": dto.SessionStatusResponse{
		Phase:            phase.String(),
		RemainingSeconds: remaining,
	}})
}

// Extend handles POST /session/extend, the single designated control
// that dismisses the warning and starts a fresh idle window.
func (h *SessionHandler) Extend(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no session")
	}

	if !h.tracker.Extend(sess.Key) {
		h.tracker.Touch(sess.Key, sess.User.Role)
	}

	phase, remaining, _ := h.tracker.Status(sess.Key)
	return c.JSON(fiber.Map{"data": dto.SessionStatusResponse{
		Phase:            phase.String(),
		RemainingSeconds: remaining,
	}})
}

// Activity handles POST /session/activity: the explicit qualifying-
// activity signal (pointer press, key press, scroll, touch, click
// batched client-side). Ignored once the warning phase has begun.
func (h *SessionHandler) Activity(c *fiber.Ctx) error {
	sess, ok := auth.SessionFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "no session")
	}

	h.tracker.Touch(sess.Key, sess.User.Role)
	return c.JSON(fiber.Map{"data": fiber.Map{"recorded": true}})
}
