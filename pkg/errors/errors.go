package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the failure kinds the storefront distinguishes.
var (
	ErrNetwork             = errors.New("backend unreachable")
	ErrServer              = errors.New("server error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// AppError represents a structured application error with HTTP status mapping.
// For failures reported by the backend, Message carries the server-provided
// message verbatim so the presentation layer can show it as-is.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Network creates an error for a transport-level failure (no response arrived).
func Network(err error) *AppError {
	return &AppError{
		Code:    "NETWORK_ERROR",
		Message: "backend is not reachable",
		Status:  0,
		Err:     fmt.Errorf("%w: %w", ErrNetwork, err),
	}
}

// Server creates an error for a structured failure body returned by the backend.
func Server(status int, message string) *AppError {
	return &AppError{
		Code:    "SERVER_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrServer,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error for a client-side precondition failure.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InsufficientBalance creates a 400 error for a wallet balance shortfall.
func InsufficientBalance(message string) *AppError {
	return &AppError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInsufficientBalance,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInsufficientBalance):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
