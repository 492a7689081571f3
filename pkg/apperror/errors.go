package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal server error")
	ErrInvalidInput = errors.New("invalid input")

	// ErrRepositoryUnavailable means the content store failed to answer.
	// No partial result is ever synthesized around it.
	ErrRepositoryUnavailable = errors.New("content repository unavailable")

	// ErrUnresolvableCategorySlug names the permissive deep-link outcome: the
	// requested slug has no matching term and the filter is dropped. Callers
	// absorb it; it never reaches a user.
	ErrUnresolvableCategorySlug = errors.New("category slug does not resolve")

	// ErrRequestCancelled marks a superseded in-flight request. Not a failure:
	// it must never produce a visible error state.
	ErrRequestCancelled = errors.New("request cancelled")
)

// AppError is a custom error type that can hold an HTTP status code
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrRepositoryUnavailable) {
		return http.StatusServiceUnavailable
	}
	// Default to internal server error
	return http.StatusInternalServerError
}
