package handlers

import (
	"strings"

	"helpbridge/internal/adapters/http/middleware"
	"helpbridge/internal/core/services"
	"helpbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RefreshRequest represents refresh/logout request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles customer registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.PhoneNum == "" {
		return response.BadRequest(c, "Phone number is required")
	}
	if req.TgID == "" {
		return response.BadRequest(c, "Telegram ID is required")
	}
	if req.Firstname == "" {
		return response.BadRequest(c, "First name is required")
	}
	if req.ClientName == "" || req.ClientSecret == "" {
		return response.BadRequest(c, "Client credentials are required")
	}

	req.PhoneNum = strings.TrimSpace(req.PhoneNum)
	req.TgID = strings.TrimSpace(req.TgID)

	result, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Registered successfully", result)
}

// Login handles customer login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.TgID == "" || req.RoleID == 0 {
		return response.BadRequest(c, "Telegram ID and role are required")
	}
	if req.ClientName == "" || req.ClientSecret == "" {
		return response.BadRequest(c, "Client credentials are required")
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Logged in successfully", result)
}

// ModeratorLogin handles moderator login
func (h *AuthHandler) ModeratorLogin(c *fiber.Ctx) error {
	var req services.ModeratorLoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PhoneNumber == "" || req.Password == "" {
		return response.BadRequest(c, "Phone number and password are required")
	}
	if req.ClientName == "" || req.ClientSecret == "" {
		return response.BadRequest(c, "Client credentials are required")
	}

	result, err := h.authService.ModeratorLogin(c.Context(), &req)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Logged in successfully", result)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	pair, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Token refreshed", pair)
}

// Logout revokes the presented refresh token
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	if err := h.authService.Logout(c.Context(), req.RefreshToken); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Logged out", nil)
}

// LogoutAll revokes every session of the authenticated principal
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	principalID, _ := c.Locals(middleware.LocalPrincipalID).(uint)
	roleID, _ := c.Locals(middleware.LocalRoleID).(uint)
	if principalID == 0 || roleID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), principalID, roleID); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "All sessions revoked", nil)
}
