package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// FieldError describes a single invalid input field. Validation failures
// aggregate every offending field rather than stopping at the first.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the wire shape of every REST error.
type ErrorResponse struct {
	Message string       `json:"message"`
	Code    string       `json:"code,omitempty"`
	Data    []FieldError `json:"data,omitempty"`
}

// AppError is a typed application error carrying the HTTP status it maps
// to. Components fail with an AppError; only the outermost transport
// layer turns it into a wire response.
type AppError struct {
	Status  int
	Code    string
	Message string
	Data    []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Extensions exposes status and per-field data to the GraphQL error
// formatter.
func (e *AppError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"status": e.Status,
		"code":   e.Code,
	}
	if len(e.Data) > 0 {
		ext["data"] = e.Data
	}
	return ext
}

// NewValidationError reports invalid input, optionally with per-field detail.
func NewValidationError(message string, fields ...FieldError) *AppError {
	return &AppError{
		Status:  fiber.StatusUnprocessableEntity,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Data:    fields,
	}
}

// NewUnauthenticatedError reports a missing or unusable credential.
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Code:    "UNAUTHENTICATED",
		Message: message,
	}
}

// NewForbiddenError reports an authenticated caller acting on a resource
// it does not own.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusOf returns the HTTP status an error maps to, defaulting to 500
// for anything unclassified.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return fiber.StatusInternalServerError
}

// RespondWithError writes the standardized error response. Unclassified
// errors surface as a bare 500 message; their detail stays server-side.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
			Data:    appErr.Data,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Message: "Internal server error",
		Code:    "INTERNAL_ERROR",
	})
}
