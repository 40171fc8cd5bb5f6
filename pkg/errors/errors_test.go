package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"app error status":   {err: &apperrors.AppError{Err: apperrors.ErrTimeout, StatusCode: http.StatusTeapot}, want: http.StatusTeapot},
		"app error sentinel": {err: &apperrors.AppError{Err: apperrors.ErrTimeout, Message: "slow"}, want: http.StatusGatewayTimeout},
		"wrapped invalid":    {err: fmt.Errorf("search: %w", apperrors.Invalidf("limit %q", "abc")), want: http.StatusBadRequest},
		"invalid input":      {err: fmt.Errorf("parse: %w", apperrors.ErrInvalidInput), want: http.StatusBadRequest},
		"read error":         {err: apperrors.ErrDocumentRead, want: http.StatusBadRequest},
		"source unavailable": {err: apperrors.ErrSourceUnavailable, want: http.StatusServiceUnavailable},
		"timeout":            {err: apperrors.ErrTimeout, want: http.StatusGatewayTimeout},
		"unknown":            {err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperrors.HTTPStatusCode(tc.err))
		})
	}
}

func TestInvalidf(t *testing.T) {
	err := apperrors.Invalidf("query parameter %q is required", "q")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, `invalid input: query parameter "q" is required`, err.Error())
}

func TestPublicMessage(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperrors.Invalidf("limit must be a positive integer"))
	assert.Equal(t, "limit must be a positive integer", apperrors.PublicMessage(err, "search failed"))

	internal := fmt.Errorf("%w: dial tcp 10.0.0.5:5432", apperrors.ErrSourceUnavailable)
	assert.Equal(t, "search failed", apperrors.PublicMessage(internal, "search failed"))
}
