// Package jobs contains implementations of scheduled jobs for Conference Hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH ACADEMICS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshAcademicsJob recomputes the academic rollup (GPA, per-subject
// averages, trends) for students whose assessment history changed recently.
// The write path already rolls up on each recorded assessment; this job is
// the safety net that repairs cards after bulk imports or missed updates.
type RefreshAcademicsJob struct {
	// Dependencies
	studentRepo    student.Repository
	recordRepo     student.RecordRepository
	cache          student.Cache
	eventPublisher shared.EventPublisher
	logger         *slog.Logger

	// Configuration
	config RefreshAcademicsConfig

	// State
	lastRunStats atomic.Value // *RefreshAcademicsStats
}

// RefreshAcademicsConfig contains configuration for the refresh job.
type RefreshAcademicsConfig struct {
	// Lookback selects students assessed within this window.
	Lookback time.Duration

	// AssessmentLimit caps how many assessments feed one rollup.
	AssessmentLimit int

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultRefreshAcademicsConfig returns sensible defaults.
func DefaultRefreshAcademicsConfig() RefreshAcademicsConfig {
	return RefreshAcademicsConfig{
		Lookback:        24 * time.Hour,
		AssessmentLimit: 50,
		Timeout:         5 * time.Minute,
	}
}

// RefreshAcademicsStats contains statistics from a refresh run.
type RefreshAcademicsStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	StudentsSelected int
	StudentsUpdated  int
	StudentsSkipped  int
	Errors           []error
}

// NewRefreshAcademicsJob creates a new refresh academics job.
// cache and eventPublisher may be nil.
func NewRefreshAcademicsJob(
	studentRepo student.Repository,
	recordRepo student.RecordRepository,
	cache student.Cache,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config RefreshAcademicsConfig,
) *RefreshAcademicsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &RefreshAcademicsJob{
		studentRepo:    studentRepo,
		recordRepo:     recordRepo,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         logger,
		config:         config,
	}
}

// Name returns the job name.
func (j *RefreshAcademicsJob) Name() string {
	return "refresh_academics"
}

// Description returns a human-readable description.
func (j *RefreshAcademicsJob) Description() string {
	return "Recomputes GPA and subject rollups for recently assessed students"
}

// Run executes the refresh job.
func (j *RefreshAcademicsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RefreshAcademicsStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting refresh_academics job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	since := startedAt.Add(-j.config.Lookback)
	students, err := j.studentRepo.FindRecentlyAssessed(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to find recently assessed students: %w", err)
	}
	stats.StudentsSelected = len(students)

	for _, s := range students {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := j.refreshStudent(ctx, s, stats); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to refresh academics",
				"student_id", s.ID,
				"error", err,
			)
		}
	}

	// Finalize stats
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	if j.eventPublisher != nil {
		event := shared.NewRefreshCompletedEvent(j.Name(), stats.StudentsUpdated, stats.Duration)
		_ = j.eventPublisher.Publish(event)
	}

	j.logger.Info("refresh_academics job completed",
		"duration", stats.Duration.String(),
		"selected", stats.StudentsSelected,
		"updated", stats.StudentsUpdated,
		"skipped", stats.StudentsSkipped,
		"errors", len(stats.Errors),
	)

	return nil
}

// refreshStudent recomputes and applies the rollup for a single student.
func (j *RefreshAcademicsJob) refreshStudent(
	ctx context.Context,
	s *student.Student,
	stats *RefreshAcademicsStats,
) error {
	assessments, err := j.recordRepo.GetAssessments(ctx, s.ID, j.config.AssessmentLimit)
	if err != nil {
		return fmt.Errorf("failed to load assessments: %w", err)
	}
	if len(assessments) == 0 {
		stats.StudentsSkipped++
		return nil
	}

	rollup := student.ComputeAcademicRollup(assessments)
	if err := s.ApplyAcademicRollup(rollup.GPA, rollup.Subjects); err != nil {
		return fmt.Errorf("failed to apply rollup: %w", err)
	}

	if err := j.studentRepo.Update(ctx, s); err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.Invalidate(ctx, s.ID); err != nil {
			j.logger.Warn("failed to invalidate student cache",
				"student_id", s.ID,
				"error", err,
			)
		}
	}

	stats.StudentsUpdated++
	return nil
}

// LastRunStats returns statistics from the last refresh run.
func (j *RefreshAcademicsJob) LastRunStats() *RefreshAcademicsStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RefreshAcademicsStats)
}
