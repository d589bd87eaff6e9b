package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// DETECT AT-RISK JOB
// ══════════════════════════════════════════════════════════════════════════════

// IDGenerator generates identifiers for notifications queued by jobs.
type IDGenerator interface {
	// NotificationID returns a new NTF_XXXXXXXX identifier.
	NotificationID() string
}

// DetectAtRiskJob scans enrolled students against grade-level expectations
// and flags those whose GPA or attendance fell below the threshold. Each
// flagged student produces an at-risk event and, when enabled, a high
// priority alert for the homeroom teacher so the next parent meeting is
// scheduled before the situation worsens.
type DetectAtRiskJob struct {
	// Dependencies
	studentRepo      student.Repository
	notificationRepo notification.Repository
	eventPublisher   shared.EventPublisher
	ids              IDGenerator
	expectations     meeting.ExpectationTable
	logger           *slog.Logger

	// Configuration
	config DetectAtRiskConfig

	// State
	lastRunStats atomic.Value // *DetectAtRiskStats
}

// DetectAtRiskConfig contains configuration for the at-risk detection job.
type DetectAtRiskConfig struct {
	// EnableNotifications enables queueing teacher alerts.
	EnableNotifications bool

	// NotificationChannel is the delivery channel for alerts.
	NotificationChannel notification.Channel

	// BatchSize is the page size for scanning students.
	BatchSize int

	// Timeout is the maximum duration for the job.
	Timeout time.Duration
}

// DefaultDetectAtRiskConfig returns sensible defaults.
func DefaultDetectAtRiskConfig() DetectAtRiskConfig {
	return DetectAtRiskConfig{
		EnableNotifications: true,
		NotificationChannel: notification.ChannelEmail,
		BatchSize:           100,
		Timeout:             5 * time.Minute,
	}
}

// DetectAtRiskStats contains statistics from a detection run.
type DetectAtRiskStats struct {
	StartedAt           time.Time
	CompletedAt         time.Time
	Duration            time.Duration
	StudentsChecked     int
	AtRiskFound         int
	NotificationsQueued int
	ReasonCounts        map[string]int
	Errors              []error
}

// atRiskFinding holds one flagged student and why.
type atRiskFinding struct {
	Student *student.Student
	Reasons []string
}

// NewDetectAtRiskJob creates a new at-risk detection job.
// notificationRepo and ids may be nil, alerts are then skipped.
func NewDetectAtRiskJob(
	studentRepo student.Repository,
	notificationRepo notification.Repository,
	eventPublisher shared.EventPublisher,
	ids IDGenerator,
	expectations meeting.ExpectationTable,
	logger *slog.Logger,
	config DetectAtRiskConfig,
) *DetectAtRiskJob {
	if logger == nil {
		logger = slog.Default()
	}
	if expectations == nil {
		expectations = meeting.DefaultExpectations()
	}

	return &DetectAtRiskJob{
		studentRepo:      studentRepo,
		notificationRepo: notificationRepo,
		eventPublisher:   eventPublisher,
		ids:              ids,
		expectations:     expectations,
		logger:           logger,
		config:           config,
	}
}

// Name returns the job name.
func (j *DetectAtRiskJob) Name() string {
	return "detect_at_risk"
}

// Description returns a human-readable description.
func (j *DetectAtRiskJob) Description() string {
	return "Flags students whose GPA or attendance fell below grade expectations"
}

// Run executes the detection job.
func (j *DetectAtRiskJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &DetectAtRiskStats{
		StartedAt:    startedAt,
		ReasonCounts: make(map[string]int),
		Errors:       make([]error, 0),
	}

	j.logger.Info("starting detect_at_risk job")

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	findings, err := j.scanStudents(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to scan students: %w", err)
	}

	j.logger.Info("at-risk scan finished",
		"checked", stats.StudentsChecked,
		"at_risk", len(findings),
	)

	for _, finding := range findings {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := j.processFinding(ctx, finding, stats); err != nil {
			stats.Errors = append(stats.Errors, err)
			j.logger.Error("failed to process at-risk student",
				"student_id", finding.Student.ID,
				"error", err,
			)
		}
	}

	// Finalize stats
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("detect_at_risk job completed",
		"duration", stats.Duration.String(),
		"checked", stats.StudentsChecked,
		"at_risk", stats.AtRiskFound,
		"notifications_queued", stats.NotificationsQueued,
	)

	return nil
}

// scanStudents pages through all enrolled students and collects findings.
func (j *DetectAtRiskJob) scanStudents(ctx context.Context, stats *DetectAtRiskStats) ([]*atRiskFinding, error) {
	findings := make([]*atRiskFinding, 0)
	opts := student.DefaultListOptions().WithLimit(j.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := j.studentRepo.GetAll(ctx, opts)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, s := range page {
			if !s.Status.IsEnrolled() {
				continue
			}
			stats.StudentsChecked++

			reasons := j.evaluate(s)
			if len(reasons) == 0 {
				continue
			}

			findings = append(findings, &atRiskFinding{Student: s, Reasons: reasons})
			stats.AtRiskFound++
			for _, r := range reasons {
				stats.ReasonCounts[r]++
			}
		}

		if len(page) < j.config.BatchSize {
			break
		}
		opts = opts.WithOffset(opts.Offset + j.config.BatchSize)
	}

	return findings, nil
}

// evaluate compares one student against the expectations for their grade.
func (j *DetectAtRiskJob) evaluate(s *student.Student) []string {
	exp := j.expectations.ForGrade(s.PersonalInfo.GradeOrDefault())

	var reasons []string
	if s.Academic.CurrentGPA > 0 && s.Academic.CurrentGPA < exp.GPAGood {
		reasons = append(reasons, fmt.Sprintf("GPA %.2f below grade expectation %.2f",
			s.Academic.CurrentGPA, exp.GPAGood))
	}
	if rate := s.Behavioral.Attendance.AttendanceRate; rate > 0 && rate < exp.AttendanceGood {
		reasons = append(reasons, fmt.Sprintf("attendance %.0f%% below grade expectation %.0f%%",
			rate*100, exp.AttendanceGood*100))
	}
	return reasons
}

// processFinding publishes the event and queues the teacher alert.
func (j *DetectAtRiskJob) processFinding(
	ctx context.Context,
	finding *atRiskFinding,
	stats *DetectAtRiskStats,
) error {
	s := finding.Student

	if j.eventPublisher != nil {
		event := shared.NewAtRiskDetectedEvent(
			s.ID,
			s.PersonalInfo.GradeOrDefault(),
			finding.Reasons,
			s.Academic.CurrentGPA,
			s.Behavioral.Attendance.AttendanceRate,
		)
		_ = j.eventPublisher.Publish(event)
	}

	if !j.config.EnableNotifications || j.notificationRepo == nil || j.ids == nil {
		return nil
	}
	if s.Metadata.TeacherID == "" {
		return nil
	}

	message := fmt.Sprintf(
		"%s (grade %s) needs attention:\n",
		s.FullName(), s.PersonalInfo.GradeOrDefault(),
	)
	for _, r := range finding.Reasons {
		message += fmt.Sprintf("  - %s\n", r)
	}
	message += "Consider scheduling a parent meeting soon."

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(j.ids.NotificationID()),
		RecipientID: notification.RecipientID(s.Metadata.TeacherID),
		Channel:     j.config.NotificationChannel,
		Type:        notification.NotificationTypeAtRiskAlert,
		Priority:    notification.PriorityHigh,
		Subject:     fmt.Sprintf("At-risk alert: %s", s.FullName()),
		Message:     message,
		StudentID:   s.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to build alert notification: %w", err)
	}

	if err := j.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to queue alert notification: %w", err)
	}

	stats.NotificationsQueued++
	return nil
}

// LastRunStats returns statistics from the last detection run.
func (j *DetectAtRiskJob) LastRunStats() *DetectAtRiskStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*DetectAtRiskStats)
}
