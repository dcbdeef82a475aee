package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := services.RetryWithBackoff(context.Background(), "test_op", 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("still broken")
	err := services.RetryWithBackoff(context.Background(), "test_op", 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotRepeatValidationErrors(t *testing.T) {
	calls := 0
	err := services.RetryWithBackoff(context.Background(), "test_op", 5, time.Millisecond, func(ctx context.Context) error {
		calls++
		return &models.ValidationError{Field: "guest_count", Message: "must be positive"}
	})
	assert.True(t, services.IsValidationError(err))
	assert.Equal(t, 1, calls)
}

func TestRetryDoesNotRepeatNotFoundErrors(t *testing.T) {
	calls := 0
	err := services.RetryWithBackoff(context.Background(), "test_op", 5, time.Millisecond, func(ctx context.Context) error {
		calls++
		return models.NewTableNotFound(42)
	})
	assert.True(t, services.IsNotFoundError(err))
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := services.RetryWithBackoff(ctx, "test_op", 10, 50*time.Millisecond, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("temporary")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryTreatsZeroAttemptsAsOne(t *testing.T) {
	calls := 0
	err := services.RetryWithBackoff(context.Background(), "test_op", 0, time.Millisecond, func(ctx context.Context) error {
		calls++
		return errors.New("temporary")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
