// Package apperror defines the application's error taxonomy.
//
// Three families of failure exist in this app:
//   - validation errors: resolved locally, never hit the network
//   - remote errors: network/timeout, not-found, unauthorized, rate-limited,
//     or a generic request failure carrying the original HTTP status
//   - data-integrity degradations: dangling refs, malformed timestamps —
//     these are NOT errors; the reconcile package absorbs them as fallbacks
//
// Sentinel errors let callers branch with errors.Is without parsing
// messages. AppError carries the human-readable message and unwraps to the
// sentinel, so both errors.Is and errors.As work across wrapping.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("authorization failed")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnavailable  = errors.New("data unavailable")
	ErrConflict     = errors.New("conflict")
)

type AppError struct {
	Err     error  // sentinel this error belongs to
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
	Status  int    // optional: original HTTP status for remote failures
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Unauthorized covers both the remote 401 ("check your API key") case and a
// failed credential check during login.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
		Status:  401,
	}
}

// RateLimited maps HTTP 429 from the hosted store.
func RateLimited() *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: "too many requests, please try again later",
		Status:  429,
	}
}

// Unavailable covers network and timeout failures. The cause ends up in the
// message for logging; callers branch on ErrUnavailable only.
func Unavailable(cause error) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("service unavailable: %v", cause),
	}
}

// RequestFailed covers every other non-2xx status, preserving the original
// status code.
func RequestFailed(status int) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("request failed with status %d", status),
		Status:  status,
	}
}
