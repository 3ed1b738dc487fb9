package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeNone},
		{"plain error", cause, ErrorTypeInternal},
		{"connection", NewConnectionError("failed to open database", cause), ErrorTypeConnection},
		{"query", NewQueryError("failed to insert reading", cause), ErrorTypeQuery},
		{"io", NewIOError("failed to append", cause), ErrorTypeIO},
		{"wrapped validation", fmt.Errorf("save: %w", NewValidationError("x is required", nil)), ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestAPIErrorCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewValidationError("bad", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, NewConnectionError("down", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, NewIOError("disk", nil).Code)
	assert.Equal(t, http.StatusOK, ErrorTypeNone.StatusCode())
}

func TestAPIErrorUnwrapAndCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := NewIOError("failed to open fallback file", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "permission denied", err.Cause())
	assert.Equal(t, "io: failed to open fallback file (internal: permission denied)", err.Error())
	assert.Equal(t, "missing x", NewValidationError("missing x", nil).Cause())
	assert.True(t, IsConnection(NewConnectionError("down", nil)))
	assert.True(t, IsValidation(NewValidationError("bad", nil)))
}
