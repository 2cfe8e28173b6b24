package handlers

import (
	"helpbridge/internal/core/services"
	"helpbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BeneficiaryHandler handles beneficiary-facing endpoints
type BeneficiaryHandler struct {
	authService        *services.AuthService
	applicationService *services.ApplicationService
	moderationService  *services.ModerationService
}

// NewBeneficiaryHandler creates a new beneficiary handler
func NewBeneficiaryHandler(
	authService *services.AuthService,
	applicationService *services.ApplicationService,
	moderationService *services.ModerationService,
) *BeneficiaryHandler {
	return &BeneficiaryHandler{
		authService:        authService,
		applicationService: applicationService,
		moderationService:  moderationService,
	}
}

// CreateApplication opens a new help request
func (h *BeneficiaryHandler) CreateApplication(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}

	var req services.CreateApplicationInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CategoryID == 0 {
		return response.BadRequest(c, "Category is required")
	}
	if req.Description == "" {
		return response.BadRequest(c, "Description is required")
	}
	if req.ActiveTo == "" {
		return response.BadRequest(c, "Deadline is required")
	}

	app, err := h.applicationService.Create(c.Context(), customer, &req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Application created", app)
}

// ListApplications lists the beneficiary's own applications
func (h *BeneficiaryHandler) ListApplications(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}

	apps, err := h.applicationService.ListByCreator(c.Context(), customer)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Applications", apps)
}

// Confirm acknowledges a done application as finished
func (h *BeneficiaryHandler) Confirm(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}
	appID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.applicationService.Confirm(c.Context(), customer, appID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Application confirmed", app)
}

// Deactivate soft-deletes the beneficiary's own application
func (h *BeneficiaryHandler) Deactivate(c *fiber.Ctx) error {
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

// ListCategories lists the categories open for new applications
func (h *BeneficiaryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.moderationService.ListCategories(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Categories", categories)
}
