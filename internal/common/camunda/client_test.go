package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("permission denied")))
}

func TestRetryWithBackoff(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls, retries := 0, 0
		err := retryWithBackoff(context.Background(), cfg, func() error {
			calls++
			if calls < 3 {
				return errors.New("unavailable")
			}
			return nil
		}, func(int, error, time.Duration) { retries++ })

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, retries)
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return errors.New("permission denied")
		}, nil)

		assert.EqualError(t, err, "permission denied")
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), cfg, func() error {
			calls++
			return errors.New("timeout")
		}, nil)

		assert.Error(t, err)
		assert.Equal(t, cfg.MaxRetries+1, calls)
	})

	t.Run("context cancellation stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := &RetryConfig{MaxRetries: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}

		err := retryWithBackoff(ctx, slow, func() error { return errors.New("timeout") }, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
