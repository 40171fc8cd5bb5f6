// Package errors holds the sentinel errors shared by the indexer and the
// search API, and maps them to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDocumentRead      = errors.New("document read failed")
	ErrSourceUnavailable = errors.New("document source unavailable")
	ErrTimeout           = errors.New("operation timed out")
)

// AppError pairs a sentinel with a message that is safe to show API
// clients. A zero StatusCode defers to the sentinel's status.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Invalidf reports a bad request parameter.
func Invalidf(format string, args ...any) *AppError {
	return &AppError{
		Err:        ErrInvalidInput,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: http.StatusBadRequest,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDocumentRead):
		return http.StatusBadRequest
	case errors.Is(err, ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message carried by err, or
// fallback when there is none.
func PublicMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
