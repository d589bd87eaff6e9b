// Package scheduler runs the worker's periodic jobs: academic cache
// refreshes, briefing warming, overview rebuilds, notification delivery and
// the nightly meeting-preparation and at-risk scans.
//
// Each registered job gets its own timer loop, so a slow nightly scan never
// delays the minute-level maintenance jobs. A job is rescheduled only after
// the previous run returns, which keeps a single job from overlapping with
// itself.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNilJob         = errors.New("scheduler: job is nil")
	ErrNilSchedule    = errors.New("scheduler: schedule is nil")
	ErrDuplicateJob   = errors.New("scheduler: job already registered")
	ErrAlreadyRunning = errors.New("scheduler: already running")
	ErrNotRunning     = errors.New("scheduler: not running")
)

// Job is a unit of periodic work. Implementations live in
// internal/application and internal/infrastructure/service.
type Job interface {
	Name() string
	Description() string
	Run(ctx context.Context) error
}

// Config configures a Scheduler.
type Config struct {
	// Logger receives job lifecycle events. Nil means slog.Default.
	Logger *slog.Logger

	// Timezone is the reference location for wall-clock schedules.
	// Nil means UTC.
	Timezone *time.Location
}

type entry struct {
	job      Job
	schedule Schedule

	mu       sync.Mutex
	lastRun  time.Time
	lastErr  error
	runs     int64
	failures int64
}

// Scheduler owns the worker's job loops. Register every job before Start;
// registration after Start is rejected.
type Scheduler struct {
	logger *slog.Logger
	tz     *time.Location

	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tz := cfg.Timezone
	if tz == nil {
		tz = time.UTC
	}
	return &Scheduler{
		logger:  logger,
		tz:      tz,
		entries: make(map[string]*entry),
	}
}

// Register adds a job with its schedule. Job names must be unique.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	name := job.Name()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	s.entries[name] = &entry{job: job, schedule: schedule}
	s.order = append(s.order, name)

	s.logger.Info("job registered",
		"job", name,
		"schedule", schedule.String(),
	)
	return nil
}

// Start launches one loop per registered job. The loops stop when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	for _, name := range s.order {
		e := s.entries[name]
		s.wg.Add(1)
		go s.runLoop(runCtx, e)
	}

	s.logger.Info("scheduler started",
		"jobs", len(s.order),
		"timezone", s.tz.String(),
	)
	return nil
}

// Stop cancels all job loops and waits for in-flight runs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()

	s.logger.Info("scheduler stopped")
	return nil
}

// JobStatus is a point-in-time snapshot of one registered job.
type JobStatus struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	Runs        int64
	Failures    int64
	LastError   string
}

// Jobs reports all registered jobs in registration order.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.order))
	for _, name := range s.order {
		e := s.entries[name]
		e.mu.Lock()
		status := JobStatus{
			Name:        name,
			Description: e.job.Description(),
			Schedule:    e.schedule.String(),
			LastRun:     e.lastRun,
			Runs:        e.runs,
			Failures:    e.failures,
		}
		if e.lastErr != nil {
			status.LastError = e.lastErr.Error()
		}
		e.mu.Unlock()
		statuses = append(statuses, status)
	}
	return statuses
}

func (s *Scheduler) runLoop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	timer := time.NewTimer(s.untilNext(e))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.runJob(ctx, e)
			timer.Reset(s.untilNext(e))
		}
	}
}

func (s *Scheduler) untilNext(e *entry) time.Duration {
	now := time.Now().In(s.tz)
	wait := e.schedule.Next(now).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (s *Scheduler) runJob(ctx context.Context, e *entry) {
	name := e.job.Name()
	started := time.Now()

	s.logger.Info("job started", "job", name)
	err := s.safeRun(ctx, e.job)
	elapsed := time.Since(started)

	e.mu.Lock()
	e.lastRun = started
	e.lastErr = err
	e.runs++
	if err != nil {
		e.failures++
	}
	e.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			"job", name,
			"duration", elapsed,
			"error", err,
		)
		return
	}
	s.logger.Info("job completed",
		"job", name,
		"duration", elapsed,
	)
}

func (s *Scheduler) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}
