package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/domain/meeting"
)

// ══════════════════════════════════════════════════════════════════════════════
// WARM BRIEFINGS JOB
// ══════════════════════════════════════════════════════════════════════════════

// TalkingPointsBuilder builds (and caches) the briefing for a student.
// The application query handler satisfies it.
type TalkingPointsBuilder interface {
	Handle(ctx context.Context, q query.GetTalkingPointsQuery) (*query.GetTalkingPointsResult, error)
}

// WarmBriefingsJob pre-computes briefings for students with meetings inside
// the horizon so the first teacher request hits a warm cache instead of a
// full profile assembly.
type WarmBriefingsJob struct {
	// Dependencies
	meetingRepo meeting.Repository
	briefings   TalkingPointsBuilder
	logger      *slog.Logger

	// Configuration
	config WarmBriefingsConfig

	// State
	lastRunStats atomic.Value // *WarmBriefingsStats
}

// WarmBriefingsConfig contains configuration for the warming job.
type WarmBriefingsConfig struct {
	// Horizon selects meetings scheduled within this window from now.
	Horizon time.Duration

	// Refresh recomputes briefings even when a cached one exists.
	Refresh bool

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultWarmBriefingsConfig returns sensible defaults.
func DefaultWarmBriefingsConfig() WarmBriefingsConfig {
	return WarmBriefingsConfig{
		Horizon: 7 * 24 * time.Hour,
		Refresh: false,
		Timeout: 10 * time.Minute,
	}
}

// WarmBriefingsStats contains statistics from a warming run.
type WarmBriefingsStats struct {
	StartedAt       time.Time
	CompletedAt     time.Time
	Duration        time.Duration
	MeetingsFound   int
	StudentsWarmed  int
	StudentsSkipped int
	Errors          []error
}

// NewWarmBriefingsJob creates a new briefing warming job.
func NewWarmBriefingsJob(
	meetingRepo meeting.Repository,
	briefings TalkingPointsBuilder,
	logger *slog.Logger,
	config WarmBriefingsConfig,
) *WarmBriefingsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &WarmBriefingsJob{
		meetingRepo: meetingRepo,
		briefings:   briefings,
		logger:      logger,
		config:      config,
	}
}

// Name returns the job name.
func (j *WarmBriefingsJob) Name() string {
	return "warm_briefings"
}

// Description returns a human-readable description.
func (j *WarmBriefingsJob) Description() string {
	return "Pre-computes briefings for students with upcoming meetings"
}

// Run executes the warming job.
func (j *WarmBriefingsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &WarmBriefingsStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting warm_briefings job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	meetings, err := j.meetingRepo.ListUpcoming(ctx, j.config.Horizon)
	if err != nil {
		return fmt.Errorf("failed to list upcoming meetings: %w", err)
	}
	stats.MeetingsFound = len(meetings)

	// Several meetings can reference one student, warm each student once.
	seen := make(map[string]bool, len(meetings))
	for _, m := range meetings {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if seen[m.StudentID] {
			stats.StudentsSkipped++
			continue
		}
		seen[m.StudentID] = true

		if err := j.warmStudent(ctx, m.StudentID); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to warm briefing",
				"student_id", m.StudentID,
				"error", err,
			)
			continue
		}
		stats.StudentsWarmed++
	}

	// Finalize stats
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("warm_briefings job completed",
		"duration", stats.Duration.String(),
		"meetings", stats.MeetingsFound,
		"warmed", stats.StudentsWarmed,
		"errors", len(stats.Errors),
	)

	return nil
}

// warmStudent runs the briefing query for one student. The handler stores
// the result in the briefing cache as a side effect.
func (j *WarmBriefingsJob) warmStudent(ctx context.Context, studentID string) error {
	_, err := j.briefings.Handle(ctx, query.GetTalkingPointsQuery{
		StudentID: studentID,
		Refresh:   j.config.Refresh,
	})
	return err
}

// LastRunStats returns statistics from the last warming run.
func (j *WarmBriefingsJob) LastRunStats() *WarmBriefingsStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*WarmBriefingsStats)
}
