package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// BadRequestMessage is returned for malformed client requests.
	BadRequestMessage = "bad request"
	// AdvisorUnavailableMessage is returned when no model provider is configured.
	AdvisorUnavailableMessage = "advisor is not configured"
	// ModelErrorMessage describes failures of the upstream model provider.
	ModelErrorMessage = "advisor model call failed"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// BadRequest wraps a client error. An empty message falls back to BadRequestMessage.
func BadRequest(err error, message string) *AppError {
	if message == "" {
		message = BadRequestMessage
	}
	return New(err, http.StatusBadRequest, message)
}

// Unavailable reports a dependency that is not configured or not reachable.
func Unavailable(err error, message string) *AppError {
	return New(err, http.StatusServiceUnavailable, message)
}

// WrapModel wraps a failed model invocation.
func WrapModel(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(err, http.StatusBadGateway, ModelErrorMessage)
}

// StatusOf extracts the HTTP status and safe message for err. Errors that are
// not AppErrors map to 500 with SystemErrorMessage.
func StatusOf(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, appErr.Message
	}
	return http.StatusInternalServerError, SystemErrorMessage
}
