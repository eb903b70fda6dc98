package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", NewResourceNotFoundError("event not found"), ErrResourceNotFound},
		{"forbidden", NewForbiddenError("not an admin"), ErrPermissionDenied},
		{"validation", NewValidationError("bad duration"), ErrValidationFailed},
		{"conflict", NewConflictError("already verified"), ErrConflict},
		{"upstream", NewUpstreamError(errors.New("connection reset"), "failed to load event"), ErrUpstream},
		{"wrapped", fmt.Errorf("toggle: %w", NewResourceNotFoundError("event not found")), ErrResourceNotFound},
		{"unknown", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestUpstreamErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewUpstreamError(cause, "failed to load event")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, "failed to load event", Message(err))
}

func TestCustomErrorFallsBackToKindMessage(t *testing.T) {
	err := &CustomError{Err: ErrConflict}
	assert.Equal(t, "conflict", err.Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
}
