// AngelaMos | 2026
// errors_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		code     string
		sentinel error
	}{
		{"not found", NotFoundError("package"), http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{"duplicate", DuplicateError("email"), http.StatusConflict, "DUPLICATE", ErrDuplicateKey},
		{"conflict", ConflictError("already active"), http.StatusConflict, "CONFLICT", ErrConflict},
		{"validation", ValidationAppError("bad input"), http.StatusBadRequest, "VALIDATION_FAILED", ErrInvalidInput},
		{"unauthorized", UnauthorizedError(""), http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized},
		{"forbidden", ForbiddenError(""), http.StatusForbidden, "FORBIDDEN", ErrForbidden},
		{"token expired", TokenExpiredError(), http.StatusUnauthorized, "TOKEN_EXPIRED", ErrTokenExpired},
		{"token revoked", TokenRevokedError(), http.StatusUnauthorized, "TOKEN_REVOKED", ErrTokenRevoked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestAppErrorUnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create package: %w", NotFoundError("package"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.True(t, IsAppError(wrapped))

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestJSONError_Envelope(t *testing.T) {
	t.Run("app error uses its status and message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, NotFoundError("assessment"))

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var envelope Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.False(t, envelope.Success)
		assert.Equal(t, "assessment not found", envelope.Message)
	})

	t.Run("unknown error is suppressed to 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var envelope Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.False(t, envelope.Success)
		assert.Equal(t, "internal server error", envelope.Message)
	})
}
