// Package errors defines the storefront's structured error type. Every
// failure a user can see carries a Message fit to print as-is.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is checks.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternal        = errors.New("internal error")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrServiceUnavail  = errors.New("service unavailable")
)

// AppError pairs a printable Message with a machine Code. Status is the HTTP
// status the backend answered with, or the closest one for a local failure.
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

func newError(code string, status int, cause error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: cause}
}

// NotFound reports a missing resource by kind and id.
func NotFound(resource, id string) *AppError {
	return newError("NOT_FOUND", http.StatusNotFound, ErrNotFound,
		fmt.Sprintf("%s with id %s not found", resource, id))
}

func InvalidInput(message string) *AppError {
	return newError("INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput, message)
}

func Unauthorized(message string) *AppError {
	return newError("UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError("FORBIDDEN", http.StatusForbidden, ErrForbidden, message)
}

func Conflict(message string) *AppError {
	return newError("CONFLICT", http.StatusConflict, ErrConflict, message)
}

func TooManyRequests(message string) *AppError {
	return newError("TOO_MANY_REQUESTS", http.StatusTooManyRequests, ErrTooManyRequests, message)
}

// Unavailable reports a dependency that could not be reached. The cause
// stays reachable through errors.Is and errors.As.
func Unavailable(message string, cause error) *AppError {
	err := ErrServiceUnavail
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrServiceUnavail, cause)
	}
	return newError("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, err, message)
}

// Validation wraps a field validation failure as invalid input.
func Validation(err error) *AppError {
	return newError("VALIDATION_FAILED", http.StatusBadRequest,
		fmt.Errorf("%w: %w", ErrInvalidInput, err), err.Error())
}

// Internal hides err behind a generic message.
func Internal(err error) *AppError {
	return newError("INTERNAL_ERROR", http.StatusInternalServerError, err, "an internal error occurred")
}

// Message is what a user should see for err: the AppError message when
// there is one, otherwise the error text.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus returns the status that best describes err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
