package response

import (
	"errors"

	"helpbridge/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NoContent sends an empty 204 response
func NoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// DomainError maps a domain sentinel error to the matching HTTP status so
// handlers do not repeat the taxonomy switch.
func DomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrPrincipalGone),
		errors.Is(err, domain.ErrInvalidCredentials):
		return Unauthorized(c, err.Error())

	case errors.Is(err, domain.ErrWrongRole),
		errors.Is(err, domain.ErrNotVerified),
		errors.Is(err, domain.ErrNotExecutor),
		errors.Is(err, domain.ErrNotCreator),
		errors.Is(err, domain.ErrInactive):
		return Forbidden(c, err.Error())

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrClientNotFound):
		return NotFound(c, err.Error())

	case errors.Is(err, domain.ErrVolunteerSaturated),
		errors.Is(err, domain.ErrAlreadyAccepted),
		errors.Is(err, domain.ErrUserAlreadyExists):
		return Conflict(c, err.Error())

	case errors.Is(err, domain.ErrGeocodingFailed),
		errors.Is(err, domain.ErrAddressNotFound):
		return Error(c, fiber.StatusServiceUnavailable, err.Error())

	case errors.Is(err, domain.ErrPastDeadline),
		errors.Is(err, domain.ErrUnparseableDate),
		errors.Is(err, domain.ErrNoLocationInput),
		errors.Is(err, domain.ErrLocationForbidden),
		errors.Is(err, domain.ErrCategoryForbidden),
		errors.Is(err, domain.ErrNoExecutor),
		errors.Is(err, domain.ErrNotDoneYet),
		errors.Is(err, domain.ErrNotOpen),
		errors.Is(err, domain.ErrNotInProgress),
		errors.Is(err, domain.ErrAlreadyInactive),
		errors.Is(err, domain.ErrAlreadyFinished),
		errors.Is(err, domain.ErrInvalidListType):
		return BadRequest(c, err.Error())

	default:
		return InternalServerError(c, "internal server error")
	}
}
