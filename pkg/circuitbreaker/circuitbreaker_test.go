package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream failed")

func failingCall(ctx context.Context) error { return errUpstream }
func okCall(ctx context.Context) error      { return nil }

func tripBreaker(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		assert.ErrorIs(t, cb.Execute(context.Background(), failingCall), errUpstream)
	}
	require.Equal(t, StateOpen, cb.State())
}

func TestExecute_OpensAfterFailureThreshold(t *testing.T) {
	cb := New(Config{FailureThreshold: 3, OpenTimeout: time.Hour})

	tripBreaker(t, cb, 3)

	// Calls are now rejected without reaching the upstream.
	called := false
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestExecute_SuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{FailureThreshold: 3, OpenTimeout: time.Hour})

	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), failingCall)
	}
	require.NoError(t, cb.Execute(context.Background(), okCall))

	// Two more failures are below the threshold again.
	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), failingCall)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_HalfOpenProbeClosesCircuit(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})

	tripBreaker(t, cb, 1)
	time.Sleep(15 * time.Millisecond)

	require.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(context.Background(), okCall))
	assert.Equal(t, StateClosed, cb.State())
}

func TestExecute_HalfOpenProbeFailureReopens(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})

	tripBreaker(t, cb, 1)
	time.Sleep(15 * time.Millisecond)

	assert.ErrorIs(t, cb.Execute(context.Background(), failingCall), errUpstream)
	assert.Equal(t, StateOpen, cb.State())
}

func TestExecute_HalfOpenLimitsConcurrentProbes(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Millisecond,
		HalfOpenMaxCalls: 1,
	})

	tripBreaker(t, cb, 1)
	time.Sleep(15 * time.Millisecond)

	probeStarted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- cb.Execute(context.Background(), func(ctx context.Context) error {
			close(probeStarted)
			<-release
			return nil
		})
	}()

	<-probeStarted
	assert.ErrorIs(t, cb.Execute(context.Background(), okCall), ErrTooManyRequests)

	close(release)
	require.NoError(t, <-done)
}

func TestOnStateChange_ReportsTransitions(t *testing.T) {
	type change struct{ from, to State }
	var changes []change

	cb := New(Config{
		Name:             "gemini-api",
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
		OnStateChange: func(name string, from, to State) {
			assert.Equal(t, "gemini-api", name)
			changes = append(changes, change{from, to})
		},
	})

	tripBreaker(t, cb, 1)
	time.Sleep(15 * time.Millisecond)
	require.NoError(t, cb.Execute(context.Background(), okCall))

	assert.Equal(t, []change{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, changes)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}
