package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELIVER NOTIFICATIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// DeliverNotificationsJob drains the notification queue: it claims due
// pending notifications, hands them to the channel sender, and records the
// outcome. Failed deliveries stay in the queue until the retry budget runs
// out.
type DeliverNotificationsJob struct {
	// Dependencies
	notificationRepo notification.Repository
	sender           notification.Sender
	eventPublisher   shared.EventPublisher
	logger           *slog.Logger

	// Configuration
	config DeliverNotificationsConfig

	// State
	lastRunStats atomic.Value // *DeliverNotificationsStats
}

// DeliverNotificationsConfig contains configuration for the delivery job.
type DeliverNotificationsConfig struct {
	// BatchSize caps how many due notifications one run claims.
	BatchSize int

	// PurgeOlderThan deletes finished notifications past this age.
	// Zero disables purging.
	PurgeOlderThan time.Duration

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultDeliverNotificationsConfig returns sensible defaults.
func DefaultDeliverNotificationsConfig() DeliverNotificationsConfig {
	return DeliverNotificationsConfig{
		BatchSize:      50,
		PurgeOlderThan: 30 * 24 * time.Hour,
		Timeout:        5 * time.Minute,
	}
}

// DeliverNotificationsStats contains statistics from a delivery run.
type DeliverNotificationsStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	DueFound    int
	Sent        int
	Failed      int
	Exhausted   int // failed with no retries left
	Purged      int64
	Errors      []error
}

// NewDeliverNotificationsJob creates a new notification delivery job.
func NewDeliverNotificationsJob(
	notificationRepo notification.Repository,
	sender notification.Sender,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
	config DeliverNotificationsConfig,
) *DeliverNotificationsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeliverNotificationsJob{
		notificationRepo: notificationRepo,
		sender:           sender,
		eventPublisher:   eventPublisher,
		logger:           logger,
		config:           config,
	}
}

// Name returns the job name.
func (j *DeliverNotificationsJob) Name() string {
	return "deliver_notifications"
}

// Description returns a human-readable description.
func (j *DeliverNotificationsJob) Description() string {
	return "Delivers due notifications and retries failed ones"
}

// Run executes the delivery job.
func (j *DeliverNotificationsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &DeliverNotificationsStats{
		StartedAt: startedAt,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting deliver_notifications job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	due, err := j.notificationRepo.ListDue(ctx, startedAt, j.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due notifications: %w", err)
	}
	stats.DueFound = len(due)

	for _, n := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := j.deliver(ctx, n, stats); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to deliver notification",
				"notification_id", n.ID,
				"error", err,
			)
		}
	}

	if j.config.PurgeOlderThan > 0 {
		cutoff := startedAt.Add(-j.config.PurgeOlderThan)
		purged, err := j.notificationRepo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("failed to purge notifications: %w", err))
		} else {
			stats.Purged = purged
		}
	}

	// Finalize stats
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("deliver_notifications job completed",
		"duration", stats.Duration.String(),
		"due", stats.DueFound,
		"sent", stats.Sent,
		"failed", stats.Failed,
		"purged", stats.Purged,
	)

	return nil
}

// deliver sends a single notification and records the outcome.
func (j *DeliverNotificationsJob) deliver(
	ctx context.Context,
	n *notification.Notification,
	stats *DeliverNotificationsStats,
) error {
	if err := n.MarkSending(); err != nil {
		return fmt.Errorf("failed to claim notification: %w", err)
	}
	if err := j.notificationRepo.Update(ctx, n); err != nil {
		return fmt.Errorf("failed to persist claim: %w", err)
	}

	sendErr := j.sender.Send(ctx, n)
	if sendErr != nil {
		if err := n.MarkFailed(sendErr.Error()); err != nil {
			return fmt.Errorf("failed to record delivery failure: %w", err)
		}
		if err := j.notificationRepo.Update(ctx, n); err != nil {
			return fmt.Errorf("failed to persist delivery failure: %w", err)
		}

		stats.Failed++
		if !n.CanRetry() {
			stats.Exhausted++
		}

		if j.eventPublisher != nil {
			event := shared.NewNotificationFailedEvent(
				n.ID.String(),
				n.RecipientID.String(),
				string(n.Channel),
				sendErr.Error(),
				n.CanRetry(),
			)
			_ = j.eventPublisher.Publish(event)
		}

		j.logger.Warn("notification delivery failed",
			"notification_id", n.ID,
			"channel", n.Channel,
			"retries", n.RetryCount,
			"will_retry", n.CanRetry(),
			"error", sendErr,
		)
		return nil
	}

	if err := n.MarkSent(); err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	if err := j.notificationRepo.Update(ctx, n); err != nil {
		return fmt.Errorf("failed to persist delivery: %w", err)
	}

	stats.Sent++

	if j.eventPublisher != nil {
		event := shared.NewNotificationSentEvent(
			n.ID.String(),
			n.RecipientID.String(),
			string(n.Channel),
			string(n.Type),
		)
		_ = j.eventPublisher.Publish(event)
	}

	return nil
}

// LastRunStats returns statistics from the last delivery run.
func (j *DeliverNotificationsJob) LastRunStats() *DeliverNotificationsStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*DeliverNotificationsStats)
}
