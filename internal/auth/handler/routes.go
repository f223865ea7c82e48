package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HakiMohamed/LocationsGuard/internal/auth/revocation"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/service"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler, tokenService service.TokenGenerator, registry *revocation.Registry) {
	auth := app.Group("/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Get("/verify-email", h.VerifyEmail)
	auth.Post("/resend-verification", h.ResendVerification)
	auth.Post("/request-password-reset", h.RequestPasswordReset)
	auth.Post("/reset-password", h.ResetPassword)

	protected := auth.Use(RequireAuth(tokenService, registry))
	protected.Post("/logout", h.Logout)
	protected.Post("/logout/all-devices", h.LogoutAllDevices)
	protected.Get("/devices", h.GetDevices)
	protected.Delete("/devices/:deviceId", h.DeactivateDevice)
	protected.Delete("/devices", h.DeactivateAllDevices)
	protected.Get("/user", h.GetUser)
	protected.Post("/verify-phone/initiate", h.InitiatePhoneVerification)
	protected.Post("/verify-phone/verify", h.VerifyPhone)
}
