package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKind(t *testing.T) {
	err := NewConflictError("token already assigned")
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindValidation))

	wrapped := fmt.Errorf("assign hospital: %w", err)
	assert.True(t, IsKind(wrapped, KindConflict))

	assert.False(t, IsKind(errors.New("plain"), KindConflict))
}

func TestUserMessageHidesWrappedCause(t *testing.T) {
	cause := errors.New("DIRECTIONS_API: OVER_QUERY_LIMIT at 10.0.0.1")
	err := NewUpstreamError("route computation failed", cause)

	// The wrapped collaborator text stays in Error() for logs only.
	assert.Contains(t, err.Error(), "OVER_QUERY_LIMIT")
	assert.Equal(t, "route computation failed", UserMessage(err))
	assert.NotContains(t, UserMessage(err), "OVER_QUERY_LIMIT")
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "request could not be completed", UserMessage(errors.New("mongo: no documents")))
}
