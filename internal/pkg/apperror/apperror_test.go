package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTest = New(KindConflict, "TEST_CONFLICT", "test conflict")

func TestWrapfKeepsSentinel(t *testing.T) {
	err := Wrapf(errTest, "room %d is full", 12)

	assert.ErrorIs(t, err, errTest)
	assert.Equal(t, "test conflict: room 12 is full", err.Error())
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "TEST_CONFLICT", CodeOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errors.New("boom"))

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(err))
	assert.False(t, Retryable(err))
}

func TestRetryable(t *testing.T) {
	lock := New(KindConcurrency, "LOCK_TIMEOUT", "lock timeout")
	assert.True(t, Retryable(fmt.Errorf("tx: %w", lock)))
}
