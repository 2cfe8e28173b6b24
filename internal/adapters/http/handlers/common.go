package handlers

import (
	"helpbridge/internal/adapters/http/middleware"
	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/core/domain"
	"helpbridge/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// resolvePrincipal loads the caller behind the validated token claims
func resolvePrincipal(c *fiber.Ctx, auth *services.AuthService) (*services.Principal, error) {
	principalID, ok := c.Locals(middleware.LocalPrincipalID).(uint)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	roleID, ok := c.Locals(middleware.LocalRoleID).(uint)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return auth.ResolvePrincipal(c.Context(), principalID, roleID)
}

// resolveCustomer loads the caller and requires it to be a customer
func resolveCustomer(c *fiber.Ctx, auth *services.AuthService) (*models.Customer, error) {
	principal, err := resolvePrincipal(c, auth)
	if err != nil {
		return nil, err
	}
	if principal.Customer == nil {
		return nil, domain.ErrWrongRole
	}
	return principal.Customer, nil
}
