// Package retry retries transient failures with exponential backoff and
// jitter. The Gemini client is its only production caller; errors opt in to
// retry with Retryable or opt out with Permanent.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// RetryableError marks an error as transient.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps an error so Do retries it.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// PermanentError marks an error as not worth retrying.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps an error so Do fails immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Policy holds the backoff parameters for a Retrier.
type Policy struct {
	// MaxAttempts counts the first call too, so 3 means two retries.
	MaxAttempts int

	// InitialDelay is the wait before the first retry; it grows by
	// Multiplier per attempt up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// Jitter randomizes each delay by up to its fraction in either
	// direction, spreading out retries from concurrent callers.
	Jitter float64
}

// DefaultPolicy is a general-purpose policy for external calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.2,
	}
}

// Retrier executes functions under a Policy. Safe for concurrent use.
type Retrier struct {
	policy Policy

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Retrier, normalizing out-of-range policy values.
func New(policy Policy) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = 500 * time.Millisecond
	}
	if policy.MaxDelay < policy.InitialDelay {
		policy.MaxDelay = policy.InitialDelay
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2.0
	}
	if policy.Jitter < 0 || policy.Jitter > 1 {
		policy.Jitter = 0.2
	}
	return &Retrier{
		policy: policy,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GeminiRetrier is tuned for the Gemini API: few attempts with generous
// delays, since quota errors clear on the order of seconds.
func GeminiRetrier() *Retrier {
	return New(Policy{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.3,
	})
}

// Do calls fn until it succeeds, returns a permanent error, exhausts the
// attempts, or ctx is done. The error markers are unwrapped before being
// returned to the caller.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := r.policy.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var permanent *PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}

		if attempt >= r.policy.MaxAttempts {
			return unwrapMarker(err)
		}

		timer := time.NewTimer(r.jittered(delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * r.policy.Multiplier)
		if delay > r.policy.MaxDelay {
			delay = r.policy.MaxDelay
		}
	}
}

func unwrapMarker(err error) error {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return retryable.Err
	}
	return err
}

func (r *Retrier) jittered(delay time.Duration) time.Duration {
	if r.policy.Jitter == 0 {
		return delay
	}

	r.mu.Lock()
	factor := 1 + r.policy.Jitter*(2*r.rng.Float64()-1)
	r.mu.Unlock()

	return time.Duration(float64(delay) * factor)
}
