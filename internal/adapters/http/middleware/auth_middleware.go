package middleware

import (
	"errors"
	"strings"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/config"
	"helpbridge/internal/pkg/jwt"
	"helpbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Context keys for the authenticated principal
const (
	LocalPrincipalID = "principalID"
	LocalRoleID      = "roleID"
	LocalClient      = "client"
)

// AuthMiddleware validates the bearer token and stores the claims in the
// request context
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(LocalPrincipalID, claims.PrincipalID)
		c.Locals(LocalRoleID, claims.RoleID)
		c.Locals(LocalClient, claims.Client)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware over the
// numeric role claim
func RoleMiddleware(allowedRoles ...uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleID, ok := c.Locals(LocalRoleID).(uint)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowed := range allowedRoles {
			if roleID == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// BeneficiaryOnly allows only the beneficiary role
func BeneficiaryOnly() fiber.Handler {
	return RoleMiddleware(models.RoleBeneficiary)
}

// VolunteerOnly allows only the volunteer role
func VolunteerOnly() fiber.Handler {
	return RoleMiddleware(models.RoleVolunteer)
}

// ModeratorOnly allows only the moderator role
func ModeratorOnly() fiber.Handler {
	return RoleMiddleware(models.RoleModerator)
}
