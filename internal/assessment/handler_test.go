// AngelaMos | 2026
// handler_test.go

package assessment

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selfmode/selfmode-api/internal/core"
)

func TestRespondCreateError(t *testing.T) {
	h := NewHandler(nil)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown package", core.ErrNotFound, http.StatusNotFound},
		{"bracket mismatch", ErrBracketMismatch, http.StatusBadRequest},
		{"already active", ErrAlreadyActive, http.StatusConflict},
		{"unexpected", errBoom, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.respondCreateError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
