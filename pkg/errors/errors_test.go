package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("contact", "c-123")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "c-123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("contact", "email", "jane@example.com")

	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, `"jane@example.com"`)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("first name is required")

	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTokenExpired(t *testing.T) {
	err := TokenExpired("verification token has expired")

	assert.Equal(t, "TOKEN_EXPIRED", err.Code)
	assert.Equal(t, http.StatusGone, err.Status)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestAppError_ErrorString(t *testing.T) {
	inner := errors.New("pq: boom")
	err := &AppError{Code: "INTERNAL_ERROR", Message: "an internal error occurred", Status: 500, Err: inner}

	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
	assert.Contains(t, err.Error(), "pq: boom")
	assert.Equal(t, inner, errors.Unwrap(err))
}

func TestWrap(t *testing.T) {
	base := errors.New("connection reset")
	wrapped := Wrap(base, "fetch contact")

	assert.EqualError(t, wrapped, "fetch contact: connection reset")
	assert.True(t, errors.Is(wrapped, base))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrTokenExpired, http.StatusGone},
		{errors.New("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "for error %v", tt.err)
		// Wrapped errors must map the same way.
		assert.Equal(t, tt.status, HTTPStatus(fmt.Errorf("context: %w", tt.err)))
	}
}

func TestHTTPStatus_AppErrorWins(t *testing.T) {
	err := fmt.Errorf("outer: %w", Forbidden("no access to contact"))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(err))
}
