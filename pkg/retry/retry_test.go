package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier(maxAttempts int) *Retrier {
	return New(Policy{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       0,
	})
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	r := fastRetrier(5)

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("quota exceeded"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	r := fastRetrier(5)
	cause := errors.New("invalid api key")

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Permanent(cause)
	})

	assert.Equal(t, 1, attempts)
	// The marker is stripped so callers match on the cause.
	assert.Equal(t, cause, err)
}

func TestDo_ExhaustionReturnsUnwrappedError(t *testing.T) {
	r := fastRetrier(3)
	cause := errors.New("service unavailable")

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return Retryable(cause)
	})

	assert.Equal(t, 3, attempts)
	assert.Equal(t, cause, err)
}

func TestDo_ContextCancelStopsRetries(t *testing.T) {
	r := New(Policy{
		MaxAttempts:  10,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(ctx context.Context) error {
		return Retryable(errors.New("still failing"))
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_UnmarkedErrorsAreRetried(t *testing.T) {
	r := fastRetrier(2)

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("unclassified")
	})

	assert.Equal(t, 2, attempts)
	assert.EqualError(t, err, "unclassified")
}

func TestMarkers_NilPassthrough(t *testing.T) {
	assert.NoError(t, Retryable(nil))
	assert.NoError(t, Permanent(nil))
}

func TestNew_NormalizesPolicy(t *testing.T) {
	r := New(Policy{MaxAttempts: 0, InitialDelay: -1, Multiplier: 0})
	assert.Equal(t, 1, r.policy.MaxAttempts)
	assert.Positive(t, r.policy.InitialDelay)
	assert.GreaterOrEqual(t, r.policy.Multiplier, 1.0)
}
