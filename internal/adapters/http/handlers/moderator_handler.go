package handlers

import (
	"helpbridge/internal/core/services"
	"helpbridge/internal/pkg/pagination"
	"helpbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ModeratorHandler handles moderator-facing endpoints
type ModeratorHandler struct {
	authService        *services.AuthService
	moderationService  *services.ModerationService
	applicationService *services.ApplicationService
}

// NewModeratorHandler creates a new moderator handler
func NewModeratorHandler(
	authService *services.AuthService,
	moderationService *services.ModerationService,
	applicationService *services.ApplicationService,
) *ModeratorHandler {
	return &ModeratorHandler{
		authService:        authService,
		moderationService:  moderationService,
		applicationService: applicationService,
	}
}

// ListUnverified lists customers awaiting verification
func (h *ModeratorHandler) ListUnverified(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	customers, total, err := h.moderationService.ListUnverified(c.Context(), params)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Unverified customers", pagination.NewResponse(customers, params, total))
}

// VerifyRequest represents a verification decision
type VerifyRequest struct {
	Verified *bool `json:"verified"`
}

// SetVerified grants or revokes a customer's verification
func (h *ModeratorHandler) SetVerified(c *fiber.Ctx) error {
	customerID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	verified := true
	if req.Verified != nil {
		verified = *req.Verified
	}

	customer, err := h.moderationService.SetVerified(c.Context(), customerID, verified)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Verification updated", customer)
}

// DeactivateCustomer force-deactivates a customer
func (h *ModeratorHandler) DeactivateCustomer(c *fiber.Ctx) error {
	customerID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid customer ID")
	}

	if err := h.moderationService.DeactivateCustomer(c.Context(), customerID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Customer deactivated", nil)
}

// CreateCategory creates a new help category
func (h *ModeratorHandler) CreateCategory(c *fiber.Ctx) error {
	var req services.CreateCategoryInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Category name is required")
	}

	category, err := h.moderationService.CreateCategory(c.Context(), &req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Category created", category)
}

// DeactivateCategory soft-deletes a category
func (h *ModeratorHandler) DeactivateCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	if err := h.moderationService.DeactivateCategory(c.Context(), categoryID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Category deactivated", nil)
}

// DeactivateApplication soft-deletes any application
func (h *ModeratorHandler) DeactivateApplication(c *fiber.Ctx) error {
	principal, err := resolvePrincipal(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}
	appID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	if err := h.applicationService.Deactivate(c.Context(), principal, appID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Application deactivated", nil)
}
