// Package handlers holds the HTTP server's supporting pieces: health
// aggregation and API key authentication for mutating endpoints.
package handlers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// HealthChecker is what the server's /health and /ready endpoints consult.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc probes one dependency, returning an error when it is
// down.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the aggregated health report served to operators.
type HealthStatus struct {
	Healthy   bool                   `json:"healthy"`
	Ready     bool                   `json:"ready"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one dependency probe.
type CheckResult struct {
	Healthy     bool      `json:"healthy"`
	Message     string    `json:"message,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	LastChecked time.Time `json:"last_checked,omitempty"`
}

// CompositeHealthChecker probes every registered dependency concurrently
// and reports the worst result. The API binary registers the database, the
// cache when enabled, and the summarizer when configured.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheckFunc
	startedAt time.Time
	version   string
	timeout   time.Duration
}

// NewCompositeHealthChecker creates an empty checker reporting the given
// service version.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		checks:    make(map[string]HealthCheckFunc),
		startedAt: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// AddCheck registers a named probe. Re-registering a name replaces it.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every probe with an individual timeout and aggregates the
// results.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    time.Since(c.startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		failing []string
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check HealthCheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)

			result := CheckResult{
				Healthy:     err == nil,
				Message:     "OK",
				Duration:    time.Since(start).Round(time.Millisecond).String(),
				LastChecked: time.Now().UTC(),
			}
			if err != nil {
				result.Message = err.Error()
			}

			mu.Lock()
			status.Checks[name] = result
			if err != nil {
				failing = append(failing, name)
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	if len(failing) > 0 {
		sort.Strings(failing)
		status.Healthy = false
		status.Ready = false
		status.Message = "Some checks failed: " + strings.Join(failing, ", ")
		return status
	}
	status.Message = "All checks passed"
	return status
}

// DatabaseChecker is the slice of the Postgres connection the health probe
// needs.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// NewDatabaseCheck probes database connectivity.
func NewDatabaseCheck(db DatabaseChecker) HealthCheckFunc {
	return func(ctx context.Context) error {
		return db.Ping(ctx)
	}
}

// CacheChecker is the slice of the Redis cache the health probe needs.
type CacheChecker interface {
	Ping(ctx context.Context) error
}

// NewCacheCheck probes cache connectivity.
func NewCacheCheck(cache CacheChecker) HealthCheckFunc {
	return func(ctx context.Context) error {
		return cache.Ping(ctx)
	}
}

// SummarizerChecker reports whether the AI summarizer currently accepts
// requests. A tripped circuit breaker reads as unhealthy; briefings fall
// back to template summaries in the meantime.
type SummarizerChecker interface {
	IsHealthy() bool
}

var errSummarizerUnavailable = errors.New("summarizer circuit open")

// NewSummarizerCheck probes the summarizer's circuit state.
func NewSummarizerCheck(s SummarizerChecker) HealthCheckFunc {
	return func(ctx context.Context) error {
		if !s.IsHealthy() {
			return errSummarizerUnavailable
		}
		return nil
	}
}
