package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ─────────────────────────────────────────────────────────────────────────────
// At-risk evaluation
// ─────────────────────────────────────────────────────────────────────────────

func newTestStudent(grade string, gpa, attendance float64) *student.Student {
	return &student.Student{
		ID: "STU_0000AB12",
		PersonalInfo: student.PersonalInfo{
			FirstName: "Aruzhan",
			LastName:  "Satpayeva",
			Grade:     grade,
		},
		Academic: student.AcademicProfile{CurrentGPA: gpa},
		Behavioral: student.BehavioralProfile{
			Attendance: student.AttendanceRecord{AttendanceRate: attendance},
		},
		Status: student.StatusActive,
	}
}

func TestDetectAtRiskJob_Evaluate(t *testing.T) {
	job := NewDetectAtRiskJob(nil, nil, nil, nil,
		meeting.DefaultExpectations(), nil, DefaultDetectAtRiskConfig())

	t.Run("healthy student has no reasons", func(t *testing.T) {
		s := newTestStudent("5", 3.8, 0.98)
		assert.Empty(t, job.evaluate(s))
	})

	t.Run("low gpa is flagged", func(t *testing.T) {
		s := newTestStudent("5", 2.5, 0.98)
		reasons := job.evaluate(s)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "GPA 2.50")
	})

	t.Run("low attendance is flagged", func(t *testing.T) {
		s := newTestStudent("5", 3.8, 0.80)
		reasons := job.evaluate(s)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "attendance 80%")
	})

	t.Run("both thresholds produce two reasons", func(t *testing.T) {
		s := newTestStudent("5", 2.0, 0.70)
		assert.Len(t, job.evaluate(s), 2)
	})

	t.Run("zero values mean no data, not risk", func(t *testing.T) {
		s := newTestStudent("5", 0, 0)
		assert.Empty(t, job.evaluate(s))
	})

	t.Run("unknown grade falls back to grade five thresholds", func(t *testing.T) {
		s := newTestStudent("9", 3.1, 0.98)
		assert.Len(t, job.evaluate(s), 1)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Notification delivery
// ─────────────────────────────────────────────────────────────────────────────

type fakeNotificationRepo struct {
	due     []*notification.Notification
	updated []*notification.Notification
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	return nil, errors.New("not found")
}

func (r *fakeNotificationRepo) Update(ctx context.Context, n *notification.Notification) error {
	r.updated = append(r.updated, n)
	return nil
}

func (r *fakeNotificationRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	return r.due, nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID notification.RecipientID, limit int) ([]*notification.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) CountByStatus(ctx context.Context) (map[notification.Status]int64, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeSender struct {
	err  error
	sent []notification.NotificationID
}

func (s *fakeSender) Send(ctx context.Context, n *notification.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n.ID)
	return nil
}

func newPendingNotification(t *testing.T) *notification.Notification {
	t.Helper()
	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          "NTF_0000AB12",
		RecipientID: "TEACH_0000AB",
		Channel:     notification.ChannelEmail,
		Type:        notification.NotificationTypeMeetingReminder,
		Subject:     "Meeting tomorrow",
		Message:     "Meeting with the Satpayev family at 15:00.",
	})
	require.NoError(t, err)
	return n
}

func TestDeliverNotificationsJob_SendsDueNotifications(t *testing.T) {
	n := newPendingNotification(t)
	repo := &fakeNotificationRepo{due: []*notification.Notification{n}}
	sender := &fakeSender{}

	job := NewDeliverNotificationsJob(repo, sender, nil, nil, DeliverNotificationsConfig{
		BatchSize: 10,
		Timeout:   time.Second,
	})
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []notification.NotificationID{n.ID}, sender.sent)
	assert.Equal(t, notification.StatusSent, n.Status)
	require.NotNil(t, n.SentAt)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.DueFound)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 0, stats.Failed)
}

func TestDeliverNotificationsJob_FailureStaysRetryable(t *testing.T) {
	n := newPendingNotification(t)
	repo := &fakeNotificationRepo{due: []*notification.Notification{n}}
	sender := &fakeSender{err: errors.New("smtp: connection refused")}

	job := NewDeliverNotificationsJob(repo, sender, nil, nil, DeliverNotificationsConfig{
		BatchSize: 10,
		Timeout:   time.Second,
	})
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, notification.StatusFailed, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	assert.True(t, n.CanRetry())
	assert.Contains(t, n.LastError, "connection refused")

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, stats.Exhausted)
}

func TestDeliverNotificationsJob_ExhaustedAfterMaxRetries(t *testing.T) {
	n := newPendingNotification(t)
	n.RetryCount = notification.MaxRetries - 1
	repo := &fakeNotificationRepo{due: []*notification.Notification{n}}
	sender := &fakeSender{err: errors.New("smtp: permanent failure")}

	job := NewDeliverNotificationsJob(repo, sender, nil, nil, DeliverNotificationsConfig{
		BatchSize: 10,
		Timeout:   time.Second,
	})
	require.NoError(t, job.Run(context.Background()))

	assert.False(t, n.CanRetry())

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Exhausted)
}
