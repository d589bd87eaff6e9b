package meeting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestMeeting(t *testing.T) *ScheduledMeeting {
	t.Helper()
	m, err := NewScheduledMeeting(NewScheduledMeetingParams{
		ID:           "MTG_A1B2C3D4",
		StudentID:    "STU_11223344",
		TeacherID:    "TEACH_A1B2C3",
		ScheduledFor: time.Now().Add(48 * time.Hour),
		Notes:        "quarterly check-in",
	})
	assert.NoError(t, err)
	return m
}

func TestNewScheduledMeeting(t *testing.T) {
	m := newTestMeeting(t)

	assert.Equal(t, StatusScheduled, m.Status)
	assert.Nil(t, m.PreparedAt)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
	assert.True(t, m.IsUpcoming())
}

func TestNewScheduledMeeting_Validation(t *testing.T) {
	_, err := NewScheduledMeeting(NewScheduledMeetingParams{
		StudentID:    "STU_11223344",
		ScheduledFor: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidMeetingID)

	_, err = NewScheduledMeeting(NewScheduledMeetingParams{
		ID:           "MTG_A1B2C3D4",
		ScheduledFor: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidStudentRef)

	_, err = NewScheduledMeeting(NewScheduledMeetingParams{
		ID:           "MTG_A1B2C3D4",
		StudentID:    "STU_11223344",
		ScheduledFor: time.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrMeetingInPast)
}

func TestScheduledMeeting_Lifecycle(t *testing.T) {
	m := newTestMeeting(t)

	assert.NoError(t, m.MarkPrepared())
	assert.Equal(t, StatusPrepared, m.Status)
	assert.NotNil(t, m.PreparedAt)

	// Preparing twice is not allowed.
	assert.ErrorIs(t, m.MarkPrepared(), ErrInvalidStatusTransition)

	assert.NoError(t, m.Complete())
	assert.Equal(t, StatusCompleted, m.Status)

	// Completed is final.
	assert.ErrorIs(t, m.Cancel(), ErrInvalidStatusTransition)
	assert.ErrorIs(t, m.Complete(), ErrInvalidStatusTransition)
}

func TestScheduledMeeting_CancelBeforePrepared(t *testing.T) {
	m := newTestMeeting(t)

	assert.NoError(t, m.Cancel())
	assert.Equal(t, StatusCancelled, m.Status)
	assert.False(t, m.IsUpcoming())
	assert.ErrorIs(t, m.MarkPrepared(), ErrInvalidStatusTransition)
}

func TestScheduledMeeting_Reschedule(t *testing.T) {
	m := newTestMeeting(t)
	newTime := time.Now().Add(96 * time.Hour)

	assert.NoError(t, m.Reschedule(newTime))
	assert.Equal(t, newTime, m.ScheduledFor)

	assert.ErrorIs(t, m.Reschedule(time.Now().Add(-time.Hour)), ErrMeetingInPast)

	assert.NoError(t, m.Complete())
	assert.ErrorIs(t, m.Reschedule(time.Now().Add(time.Hour)), ErrInvalidStatusTransition)
}

func TestScheduledMeeting_Clone(t *testing.T) {
	m := newTestMeeting(t)
	assert.NoError(t, m.MarkPrepared())

	clone := m.Clone()
	assert.Equal(t, m, clone)

	// Mutating the clone must not touch the original.
	*clone.PreparedAt = clone.PreparedAt.Add(time.Hour)
	assert.NotEqual(t, *m.PreparedAt, *clone.PreparedAt)
}

func TestStatus_Checks(t *testing.T) {
	assert.True(t, StatusScheduled.IsValid())
	assert.True(t, StatusCancelled.IsValid())
	assert.False(t, Status("postponed").IsValid())

	assert.False(t, StatusScheduled.IsFinal())
	assert.False(t, StatusPrepared.IsFinal())
	assert.True(t, StatusCompleted.IsFinal())
	assert.True(t, StatusCancelled.IsFinal())
}
