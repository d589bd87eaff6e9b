package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brightclass/conference-hub/internal/application/saga"
	"github.com/brightclass/conference-hub/internal/domain/meeting"
)

// ══════════════════════════════════════════════════════════════════════════════
// PREPARE MEETINGS JOB
// ══════════════════════════════════════════════════════════════════════════════

// PrepareMeetingsJob runs the preparation saga for every scheduled meeting
// inside the horizon that has no briefing yet. Teachers who never pressed
// "prepare" by hand still walk into the meeting with talking points ready.
type PrepareMeetingsJob struct {
	// Dependencies
	meetingRepo meeting.Repository
	prep        *saga.MeetingPrepSaga
	logger      *slog.Logger

	// Configuration
	config PrepareMeetingsConfig

	// State
	lastRunStats atomic.Value // *PrepareMeetingsStats
}

// PrepareMeetingsConfig contains configuration for the preparation job.
type PrepareMeetingsConfig struct {
	// Horizon selects meetings scheduled within this window from now.
	Horizon time.Duration

	// MaxMeetingsPerRun caps how many sagas one run executes. The AI
	// summary step is rate limited, so a backlog drains over several runs.
	MaxMeetingsPerRun int

	// SkipSummary skips the AI summary step for batch-prepared meetings.
	SkipSummary bool

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultPrepareMeetingsConfig returns sensible defaults.
func DefaultPrepareMeetingsConfig() PrepareMeetingsConfig {
	return PrepareMeetingsConfig{
		Horizon:           48 * time.Hour,
		MaxMeetingsPerRun: 20,
		SkipSummary:       false,
		Timeout:           10 * time.Minute,
	}
}

// PrepareMeetingsStats contains statistics from a preparation run.
type PrepareMeetingsStats struct {
	StartedAt        time.Time
	CompletedAt      time.Time
	Duration         time.Duration
	MeetingsFound    int
	MeetingsPrepared int
	MeetingsFailed   int
	RetryableErrors  int
	Errors           []error
}

// NewPrepareMeetingsJob creates a new meeting preparation job.
func NewPrepareMeetingsJob(
	meetingRepo meeting.Repository,
	prep *saga.MeetingPrepSaga,
	logger *slog.Logger,
	config PrepareMeetingsConfig,
) *PrepareMeetingsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &PrepareMeetingsJob{
		meetingRepo: meetingRepo,
		prep:        prep,
		logger:      logger,
		config:      config,
	}
}

// Name returns the job name.
func (j *PrepareMeetingsJob) Name() string {
	return "prepare_meetings"
}

// Description returns a human-readable description.
func (j *PrepareMeetingsJob) Description() string {
	return "Prepares briefings for upcoming meetings that have none yet"
}

// Run executes the preparation job.
func (j *PrepareMeetingsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &PrepareMeetingsStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting prepare_meetings job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	before := startedAt.Add(j.config.Horizon)
	meetings, err := j.meetingRepo.ListUnprepared(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to list unprepared meetings: %w", err)
	}
	stats.MeetingsFound = len(meetings)

	if j.config.MaxMeetingsPerRun > 0 && len(meetings) > j.config.MaxMeetingsPerRun {
		j.logger.Info("capping preparation batch",
			"found", len(meetings),
			"cap", j.config.MaxMeetingsPerRun,
		)
		meetings = meetings[:j.config.MaxMeetingsPerRun]
	}

	for _, m := range meetings {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		j.prepareMeeting(ctx, m, stats)
	}

	// Finalize stats
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("prepare_meetings job completed",
		"duration", stats.Duration.String(),
		"found", stats.MeetingsFound,
		"prepared", stats.MeetingsPrepared,
		"failed", stats.MeetingsFailed,
	)

	return nil
}

// prepareMeeting runs the saga for a single meeting.
func (j *PrepareMeetingsJob) prepareMeeting(
	ctx context.Context,
	m *meeting.ScheduledMeeting,
	stats *PrepareMeetingsStats,
) {
	result, err := j.prep.Execute(ctx, saga.MeetingPrepInput{
		MeetingID:   m.ID,
		SkipSummary: j.config.SkipSummary,
	})
	if err != nil {
		stats.MeetingsFailed++
		stats.Errors = append(stats.Errors, err)

		var prepErr *saga.MeetingPrepError
		if errors.As(err, &prepErr) && prepErr.IsRetryable() {
			// Left unprepared, the next run picks it up again.
			stats.RetryableErrors++
		}

		j.logger.Error("failed to prepare meeting",
			"meeting_id", m.ID,
			"student_id", m.StudentID,
			"error", err,
		)
		return
	}

	stats.MeetingsPrepared++
	j.logger.Info("meeting prepared",
		"meeting_id", result.MeetingID,
		"student_id", m.StudentID,
		"has_summary", result.SummaryText != "",
	)
}

// LastRunStats returns statistics from the last preparation run.
func (j *PrepareMeetingsJob) LastRunStats() *PrepareMeetingsStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*PrepareMeetingsStats)
}
