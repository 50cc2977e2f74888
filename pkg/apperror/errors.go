package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// NewInvalidTransition creates an error for a state change that violates a
// lifecycle. It is always returned to the caller, never swallowed.
func NewInvalidTransition(entity, from, to string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("%s cannot transition from %s to %s", entity, from, to),
	}
}

// NewAlreadySettled creates an error for a duplicate terminal payment settlement
func NewAlreadySettled(paymentID uuid.UUID) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: fmt.Sprintf("payment %s is already settled", paymentID),
	}
}

// NewUnknownTimeZone creates an error for an unresolvable time zone identifier.
// A bad zone is a configuration defect and must never fall back to UTC.
func NewUnknownTimeZone(zone string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: fmt.Sprintf("unknown time zone %q in venue configuration", zone),
	}
}

// NewNegativeBalance creates an error surfacing a negative computed balance
// with enough context to diagnose the offending records. The balance is
// reported as computed, never clamped to zero.
func NewNegativeBalance(tabID uuid.UUID, balance, orders, payments int64) *AppError {
	return &AppError{
		Code: http.StatusInternalServerError,
		Message: fmt.Sprintf(
			"negative balance %d on tab %s (confirmed orders %d, successful payments %d)",
			balance, tabID, orders, payments),
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
