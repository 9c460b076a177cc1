package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/api/dto"
	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/suspension"
)

// SuspensionHandler exposes the suspension flag. The update endpoint is
// the demo stand-in for the external suspension signal and is mounted
// behind the admin guard.
type SuspensionHandler struct {
	flags   suspension.FlagStore
	watcher *suspension.Watcher
}

// NewSuspensionHandler constructs handler.
func NewSuspensionHandler(flags suspension.FlagStore, watcher *suspension.Watcher) *SuspensionHandler {
	return &SuspensionHandler{flags: flags, watcher: watcher}
}

// Status handles GET /suspensions/:role.
func (h *SuspensionHandler) Status(c *fiber.Ctx) error {
	role, err := parseSuspendableRole(c.Params("role"))
	if err != nil {
		return err
	}

	suspended, err := h.flags.IsSuspended(c.UserContext(), role)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.SuspensionStatusResponse{
		Role:      string(role),
		Suspended: suspended,
	}})
}

// Update handles PUT /admin/suspensions/:role. Clearing the flag
// unblocks gated requests immediately; the watcher poll only feeds the
// subscription side.
func (h *SuspensionHandler) Update(c *fiber.Ctx) error {
	role, err := parseSuspendableRole(c.Params("role"))
	if err != nil {
		return err
	}

	var req dto.SuspensionUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.flags.SetSuspended(c.UserContext(), role, req.Suspended); err != nil {
		return err
	}

	// surface the change to subscribers without waiting a poll interval
	if h.watcher != nil {
		h.watcher.Poll(c.UserContext())
	}

	return c.JSON(fiber.Map{"data": dto.SuspensionStatusResponse{
		Role:      string(role),
		Suspended: req.Suspended,
	}})
}

func parseSuspendableRole(raw string) (domain.Role, error) {
	role, err := domain.ParseRole(raw)
	if err != nil {
		return "", fiber.NewError(http.StatusBadRequest, "unknown role")
	}
	if !role.Suspendable() {
		return "", fiber.NewError(http.StatusBadRequest, "role cannot be suspended")
	}
	return role, nil
}
