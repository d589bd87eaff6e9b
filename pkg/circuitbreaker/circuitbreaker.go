// Package circuitbreaker stops calling a failing upstream until it has had
// time to recover. The Gemini client wraps every generation call in one so
// a broken API key or an outage degrades briefings to template summaries
// instead of stalling meeting preparation.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker's position.
type State int

const (
	// StateClosed passes requests through and counts failures.
	StateClosed State = iota
	// StateOpen rejects requests until the open timeout elapses.
	StateOpen
	// StateHalfOpen lets a limited number of probes through to test
	// whether the upstream recovered.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config holds the breaker thresholds.
type Config struct {
	// Name identifies the breaker in state-change callbacks.
	Name string

	// FailureThreshold is how many consecutive failures open the
	// circuit.
	FailureThreshold int

	// SuccessThreshold is how many consecutive half-open successes
	// close it again.
	SuccessThreshold int

	// OpenTimeout is how long the circuit stays open before allowing
	// probes.
	OpenTimeout time.Duration

	// HalfOpenMaxCalls caps concurrent probes in half-open state.
	HalfOpenMaxCalls int

	// OnStateChange, if set, is called outside the breaker's lock on
	// every transition.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns conservative defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

// CircuitBreaker guards calls to one upstream. Safe for concurrent use.
type CircuitBreaker struct {
	config Config

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	openedAt      time.Time
	halfOpenCalls int
}

// New creates a breaker in the closed state, normalizing out-of-range
// config values.
func New(config Config) *CircuitBreaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 2
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxCalls < 1 {
		config.HalfOpenMaxCalls = 1
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// GeminiAPIBreaker is tuned for the Gemini API: trip fast (summaries have
// a template fallback) and probe again after a minute.
func GeminiAPIBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(Config{
		Name:             "gemini-api",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxCalls: 1,
		OnStateChange:    onStateChange,
	})
}

// State returns the current state, applying the open-to-half-open
// transition if the open timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	state, notify := cb.currentState(time.Now())
	cb.mu.Unlock()

	notify()
	return state
}

// Execute runs fn under the breaker. It returns ErrCircuitOpen without
// calling fn while the circuit is open, and ErrTooManyRequests when the
// half-open probe slot is taken.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.afterCall(err == nil)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()

	state, notify := cb.currentState(time.Now())
	switch state {
	case StateOpen:
		cb.mu.Unlock()
		notify()
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.config.HalfOpenMaxCalls {
			cb.mu.Unlock()
			notify()
			return ErrTooManyRequests
		}
		cb.halfOpenCalls++
	}

	cb.mu.Unlock()
	notify()
	return nil
}

func (cb *CircuitBreaker) afterCall(success bool) {
	cb.mu.Lock()

	var notify func()
	if success {
		notify = cb.onSuccess()
	} else {
		notify = cb.onFailure()
	}

	cb.mu.Unlock()
	notify()
}

// currentState must be called with the lock held. The returned func fires
// any pending state-change callback and must be called after unlocking.
func (cb *CircuitBreaker) currentState(now time.Time) (State, func()) {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.config.OpenTimeout {
		return cb.transition(StateHalfOpen)
	}
	return cb.state, func() {}
}

func (cb *CircuitBreaker) onSuccess() func() {
	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		cb.halfOpenCalls--
		if cb.successes >= cb.config.SuccessThreshold {
			_, notify := cb.transition(StateClosed)
			return notify
		}
	}
	return func() {}
}

func (cb *CircuitBreaker) onFailure() func() {
	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			_, notify := cb.transition(StateOpen)
			return notify
		}
	case StateHalfOpen:
		cb.halfOpenCalls--
		_, notify := cb.transition(StateOpen)
		return notify
	}
	return func() {}
}

// transition must be called with the lock held.
func (cb *CircuitBreaker) transition(to State) (State, func()) {
	from := cb.state
	if from == to {
		return to, func() {}
	}

	cb.state = to
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenCalls = 0
	if to == StateOpen {
		cb.openedAt = time.Now()
	}

	callback := cb.config.OnStateChange
	if callback == nil {
		return to, func() {}
	}
	name := cb.config.Name
	return to, func() { callback(name, from, to) }
}
