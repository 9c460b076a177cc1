package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/api/dto"
	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/service"
)

// AuthHandler exposes the portal login and logout endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	cookieName string
	cookieTTL  time.Duration
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookieName string, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: authService, cookieName: cookieName, cookieTTL: cookieTTL}
}

// Login returns the handler for a direct-login portal (admin, doctor).
func (h *AuthHandler) Login(portal domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
		if req.Email == "" || req.Password == "" {
			return fiber.NewError(http.StatusBadRequest, "email and password required")
		}

		result, err := h.auth.Login(c.UserContext(), req.Email, req.Password, portal)
		if err != nil {
			return err
		}

		h.setSessionCookie(c, result.SessionKey)
		return c.JSON(fiber.Map{"data": fiber.Map{"user": userResponse(result.User)}})
	}
}

// FacilityLogin handles POST /facility/login: primary credentials only.
// Success moves the flow to the OTP step; no session exists yet.
func (h *AuthHandler) FacilityLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	pending, err := h.auth.BeginFacilityLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.PendingResponse{
		PendingToken: pending.Token,
		ExpiresAt:    pending.ExpiresAt,
	}})
}

// VerifyOTP handles POST /facility/otp/verify.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.OTPVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.PendingToken == "" || req.Code == "" {
		return fiber.NewError(http.StatusBadRequest, "pending_token and code required")
	}

	result, err := h.auth.VerifyOTP(c.UserContext(), req.PendingToken, req.Code)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result.SessionKey)
	return c.JSON(fiber.Map{"data": fiber.Map{"user": userResponse(result.User)}})
}

// ResendOTP handles POST /facility/otp/resend.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req dto.OTPResendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.PendingToken == "" {
		return fiber.NewError(http.StatusBadRequest, "pending_token required")
	}

	if err := h.auth.ResendOTP(c.UserContext(), req.PendingToken); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"resent": true}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	key := c.Cookies(h.cookieName)
	if err := h.auth.Logout(c.UserContext(), key); err != nil {
		return err
	}

	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, key string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    key,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.cookieTTL),
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
}

func userResponse(user domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}
