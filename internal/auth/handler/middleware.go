package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HakiMohamed/LocationsGuard/internal/auth/revocation"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/service"
	autherror "github.com/HakiMohamed/LocationsGuard/internal/errors"
)

const (
	localsUserID      = "userID"
	localsUserEmail   = "userEmail"
	localsUserRole    = "userRole"
	localsAccessToken = "accessToken"
)

// RequireAuth verifies the bearer access token and rejects blacklisted
// tokens. A revoked token stays rejected until its natural expiry; past that
// the signature check rejects it regardless of the blacklist.
func RequireAuth(tokenService service.TokenGenerator, registry *revocation.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims, err := tokenService.Verify(service.PurposeAccess, token)
		if err != nil {
			return respondError(c, err)
		}

		if registry.IsRevoked(token) {
			return respondError(c, autherror.ErrTokenRevoked)
		}

		c.Locals(localsUserID, claims.Subject)
		c.Locals(localsUserEmail, claims.Email)
		c.Locals(localsUserRole, claims.Role)
		c.Locals(localsAccessToken, token)

		return c.Next()
	}
}
