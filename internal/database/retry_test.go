package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTransient = errors.New("transient")

func retryTransient(err error) bool { return errors.Is(err, errTransient) }

func TestWithRetries_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := WithRetries(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errTransient
		}
		return nil
	}, 3, retryTransient)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetries_GivesUp(t *testing.T) {
	calls := 0
	err := WithRetries(context.Background(), func() error {
		calls++
		return errTransient
	}, 2, retryTransient)

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestWithRetries_NonRetryable(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := WithRetries(context.Background(), func() error {
		calls++
		return permanent
	}, 3, retryTransient)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetries_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetries(ctx, func() error {
		calls++
		return errTransient
	}, 3, retryTransient)

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestIsMongoDuplicateKeyError(t *testing.T) {
	assert.False(t, IsMongoDuplicateKeyError(errors.New("boom")))
}
