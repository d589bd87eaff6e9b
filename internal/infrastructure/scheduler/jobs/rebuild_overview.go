package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/domain/overview"
	"github.com/brightclass/conference-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD OVERVIEW JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildOverviewJob rebuilds the grade snapshots from the current student
// cards, persists them for history, and refreshes the overview cache. Old
// snapshots past the retention window are pruned in the same run.
type RebuildOverviewJob struct {
	// Dependencies
	builder   query.SnapshotBuilder
	snapshots overview.Repository
	cache     overview.Cache
	logger    *slog.Logger

	// Configuration
	config RebuildOverviewConfig

	// State
	lastRunStats atomic.Value // *RebuildOverviewStats
}

// RebuildOverviewConfig contains configuration for the rebuild job.
type RebuildOverviewConfig struct {
	// Grades lists the grades to snapshot.
	Grades []string

	// CacheTTL is how long a rebuilt snapshot stays cached.
	CacheTTL time.Duration

	// Retention keeps snapshot history for this long. Zero disables pruning.
	Retention time.Duration

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultRebuildOverviewConfig returns sensible defaults.
func DefaultRebuildOverviewConfig() RebuildOverviewConfig {
	return RebuildOverviewConfig{
		Grades:    []string{"3", "4", "5", "6"},
		CacheTTL:  15 * time.Minute,
		Retention: 90 * 24 * time.Hour,
		Timeout:   5 * time.Minute,
	}
}

// RebuildOverviewStats contains statistics from a rebuild run.
type RebuildOverviewStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	GradesRebuilt    int
	GradesSkipped    int
	SnapshotsPruned  int64
	StudentsSnapshot int
	Errors           []error
}

// NewRebuildOverviewJob creates a new overview rebuild job.
// cache may be nil.
func NewRebuildOverviewJob(
	builder query.SnapshotBuilder,
	snapshots overview.Repository,
	cache overview.Cache,
	logger *slog.Logger,
	config RebuildOverviewConfig,
) *RebuildOverviewJob {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.Grades) == 0 {
		config.Grades = DefaultRebuildOverviewConfig().Grades
	}

	return &RebuildOverviewJob{
		builder:   builder,
		snapshots: snapshots,
		cache:     cache,
		logger:    logger,
		config:    config,
	}
}

// Name returns the job name.
func (j *RebuildOverviewJob) Name() string {
	return "rebuild_overview"
}

// Description returns a human-readable description.
func (j *RebuildOverviewJob) Description() string {
	return "Rebuilds grade snapshots and refreshes the overview cache"
}

// Run executes the rebuild job.
func (j *RebuildOverviewJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RebuildOverviewStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting rebuild_overview job", "grades", j.config.Grades)

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	academicYear := timeutil.CurrentAcademicYear()

	for _, grade := range j.config.Grades {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := j.rebuildGrade(ctx, grade, academicYear, stats); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to rebuild grade snapshot",
				"grade", grade,
				"error", err,
			)
		}
	}

	if j.config.Retention > 0 {
		cutoff := startedAt.Add(-j.config.Retention)
		pruned, err := j.snapshots.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("failed to prune snapshots: %w", err))
		} else {
			stats.SnapshotsPruned = pruned
		}
	}

	// Finalize stats
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("rebuild_overview job completed",
		"duration", stats.Duration.String(),
		"rebuilt", stats.GradesRebuilt,
		"skipped", stats.GradesSkipped,
		"pruned", stats.SnapshotsPruned,
	)

	return nil
}

// rebuildGrade builds, persists and caches the snapshot for one grade.
func (j *RebuildOverviewJob) rebuildGrade(
	ctx context.Context,
	grade, academicYear string,
	stats *RebuildOverviewStats,
) error {
	snapshot, err := j.builder.BuildSnapshot(ctx, grade, academicYear)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	if snapshot.IsEmpty() {
		stats.GradesSkipped++
		j.logger.Debug("no students in grade, snapshot skipped", "grade", grade)
		return nil
	}

	if err := j.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.SetCached(ctx, snapshot, j.config.CacheTTL); err != nil {
			j.logger.Warn("failed to cache snapshot",
				"grade", grade,
				"error", err,
			)
		}
	}

	stats.GradesRebuilt++
	stats.StudentsSnapshot += snapshot.StudentCount
	return nil
}

// LastRunStats returns statistics from the last rebuild run.
func (j *RebuildOverviewJob) LastRunStats() *RebuildOverviewStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RebuildOverviewStats)
}
