package handlers

import (
	"io"
	"strconv"

	"helpbridge/internal/core/services"
	"helpbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VolunteerHandler handles volunteer-facing endpoints
type VolunteerHandler struct {
	authService        *services.AuthService
	customerService    *services.CustomerService
	matchingService    *services.MatchingService
	applicationService *services.ApplicationService
}

// NewVolunteerHandler creates a new volunteer handler
func NewVolunteerHandler(
	authService *services.AuthService,
	customerService *services.CustomerService,
	matchingService *services.MatchingService,
	applicationService *services.ApplicationService,
) *VolunteerHandler {
	return &VolunteerHandler{
		authService:        authService,
		customerService:    customerService,
		matchingService:    matchingService,
		applicationService: applicationService,
	}
}

// GetProfile returns the volunteer's profile
func (h *VolunteerHandler) GetProfile(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Profile", customer.ToResponse())
}

// UpdateProfile edits names, location or category subscriptions
func (h *VolunteerHandler) UpdateProfile(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}

	var req services.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updated, err := h.customerService.UpdateProfile(c.Context(), customer, &req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Profile updated", updated)
}

// DeactivateProfile retires the volunteer's own profile and revokes sessions
func (h *VolunteerHandler) DeactivateProfile(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}

	if err := h.customerService.Deactivate(c.Context(), customer.ID); err != nil {
		return response.DomainError(c, err)
	}
	if err := h.authService.LogoutAll(c.Context(), customer.ID, customer.RoleID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Profile deactivated", nil)
}

// ListApplications lists open, in-progress or done applications for the
// volunteer. Open listings honor the radius_km query parameter.
func (h *VolunteerHandler) ListApplications(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}

	listType := c.Query("type", services.ListTypeOpen)
	radiusKm, _ := strconv.ParseFloat(c.Query("radius_km", "0"), 64)
	if radiusKm < 0 {
		return response.BadRequest(c, "radius_km must not be negative")
	}

	matched, err := h.matchingService.FindEligible(c.Context(), customer, listType, radiusKm)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Applications", matched)
}

// Accept takes an open application into progress
func (h *VolunteerHandler) Accept(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}
	appID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.applicationService.Accept(c.Context(), customer, appID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Application accepted", app)
}

// Close marks an in-progress application done, with uploaded evidence files
func (h *VolunteerHandler) Close(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}
	appID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	evidence, err := readEvidence(c)
	if err != nil {
		return response.BadRequest(c, "Invalid evidence upload")
	}

	app, err := h.applicationService.Close(c.Context(), customer, appID, evidence)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Application closed", app)
}

// Cancel releases an in-progress application back to open
func (h *VolunteerHandler) Cancel(c *fiber.Ctx) error {
	customer, err := resolveCustomer(c, h.authService)
	if err != nil {
		return response.DomainError(c, err)
	}
	appID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.applicationService.Cancel(c.Context(), customer, appID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Application cancelled", app)
}

// Rating returns the volunteer leaderboard
func (h *VolunteerHandler) Rating(c *fiber.Ctx) error {
	rating, err := h.matchingService.Rating(c.Context())
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Rating", rating)
}

// parseID reads the :id route parameter
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}

// readEvidence collects uploaded files from the multipart form
func readEvidence(c *fiber.Ctx) ([]services.EvidenceInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Closing without evidence is allowed
		return nil, nil
	}

	var evidence []services.EvidenceInput
	for _, header := range form.File["evidence"] {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		evidence = append(evidence, services.EvidenceInput{
			Filename: header.Filename,
			Data:     data,
		})
	}
	return evidence, nil
}
