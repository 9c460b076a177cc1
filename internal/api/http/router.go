package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-session-service/internal/api/http/handlers"
	"github.com/spec-kit/portal-session-service/internal/auth"
	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/suspension"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Session        *handlers.SessionHandler
	Suspension     *handlers.SuspensionHandler
	Portal         *handlers.PortalHandler
	Guard          *auth.Guard
	Flags          suspension.FlagStore
	SupportContact string
}

// RegisterRoutes wires HTTP routes. Every role-scoped screen is mounted
// behind the route guard; dashboard screens additionally pass the
// suspension gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	gate := suspension.Gate(cfg.Flags, cfg.SupportContact)

	// admin portal
	app.Get("/admin", cfg.Portal.LoginScreen(domain.RoleAdmin))
	app.Post("/admin/login", cfg.Auth.Login(domain.RoleAdmin))
	adminGroup := app.Group("/admin", cfg.Guard.RequireRole(domain.RoleAdmin))
	adminGroup.Get("/dashboard", gate, cfg.Portal.Dashboard(domain.RoleAdmin))
	adminGroup.Put("/suspensions/:role", cfg.Suspension.Update)

	// facility portal: login completes through the OTP step
	app.Get("/facility", cfg.Portal.LoginScreen(domain.RoleFacility))
	app.Post("/facility/login", cfg.Auth.FacilityLogin)
	app.Post("/facility/otp/verify", cfg.Auth.VerifyOTP)
	app.Post("/facility/otp/resend", cfg.Auth.ResendOTP)
	facilityGroup := app.Group("/facility", cfg.Guard.RequireRole(domain.RoleFacility))
	facilityGroup.Get("/dashboard", gate, cfg.Portal.Dashboard(domain.RoleFacility))

	// doctor portal
	app.Get("/doctor", cfg.Portal.LoginScreen(domain.RoleDoctor))
	app.Post("/doctor/login", cfg.Auth.Login(domain.RoleDoctor))
	doctorGroup := app.Group("/doctor", cfg.Guard.RequireRole(domain.RoleDoctor))
	doctorGroup.Get("/dashboard", gate, cfg.Portal.Dashboard(domain.RoleDoctor))

	// session lifecycle, shared by every portal
	sessionGroup := app.Group("/session", cfg.Guard.RequireAny())
	sessionGroup.Get("/status", cfg.Session.Status)
	sessionGroup.Post("/extend", cfg.Session.Extend)
	sessionGroup.Post("/activity", cfg.Session.Activity)

	app.Post("/auth/logout", cfg.Auth.Logout)

	app.Get("/suspensions/:role", cfg.Suspension.Status)
}
