package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

func mustMeeting(t *testing.T, id, studentID string, at time.Time) *meeting.ScheduledMeeting {
	t.Helper()
	m, err := meeting.NewScheduledMeeting(meeting.NewScheduledMeetingParams{
		ID:           id,
		StudentID:    studentID,
		TeacherID:    "TEACH_000001",
		ScheduledFor: at,
	})
	if err != nil {
		t.Fatalf("mustMeeting: %v", err)
	}
	return m
}

func TestUpdateMeeting_Validation(t *testing.T) {
	h := NewUpdateMeetingHandler(newFakeMeetingRepo(), &fakePublisher{})

	_, err := h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_00000001",
		Action:    "postpone",
	})
	assert.ErrorContains(t, err, "unknown action")

	_, err = h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_00000001",
		Action:    MeetingActionReschedule,
	})
	assert.ErrorContains(t, err, "new_time is required")
}

func TestUpdateMeeting_NotFound(t *testing.T) {
	h := NewUpdateMeetingHandler(newFakeMeetingRepo(), &fakePublisher{})

	_, err := h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_MISSING1",
		Action:    MeetingActionComplete,
	})
	assert.True(t, errors.Is(err, meeting.ErrMeetingNotFound))
}

func TestUpdateMeeting_Complete(t *testing.T) {
	booked := mustMeeting(t, "MTG_00000001", "STU_00000001", time.Now().Add(time.Hour))
	meetings := newFakeMeetingRepo(booked)
	pub := &fakePublisher{}
	h := NewUpdateMeetingHandler(meetings, pub)

	result, err := h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_00000001",
		Action:    MeetingActionComplete,
		Notes:     "Parents agreed on a tutoring plan",
	})
	assert.NoError(t, err)
	assert.Equal(t, "completed", result.Status)

	assert.Len(t, meetings.updated, 1)
	assert.Equal(t, "Parents agreed on a tutoring plan", booked.Notes)

	assert.Len(t, pub.events, 1)
	event, ok := pub.events[0].(shared.MeetingCompletedEvent)
	assert.True(t, ok)
	assert.Equal(t, "STU_00000001", event.StudentID)
}

func TestUpdateMeeting_CompleteTwice(t *testing.T) {
	booked := mustMeeting(t, "MTG_00000001", "STU_00000001", time.Now().Add(time.Hour))
	assert.NoError(t, booked.Complete())
	h := NewUpdateMeetingHandler(newFakeMeetingRepo(booked), &fakePublisher{})

	_, err := h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_00000001",
		Action:    MeetingActionComplete,
	})
	assert.True(t, errors.Is(err, meeting.ErrInvalidStatusTransition))
}

func TestUpdateMeeting_CancelWithReason(t *testing.T) {
	booked := mustMeeting(t, "MTG_00000001", "STU_00000001", time.Now().Add(time.Hour))
	pub := &fakePublisher{}
	h := NewUpdateMeetingHandler(newFakeMeetingRepo(booked), pub)

	result, err := h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_00000001",
		Action:    MeetingActionCancel,
		Reason:    "Parent requested a new date",
	})
	assert.NoError(t, err)
	assert.Equal(t, "cancelled", result.Status)

	event, ok := pub.events[0].(shared.MeetingCancelledEvent)
	assert.True(t, ok)
	assert.Equal(t, "Parent requested a new date", event.Reason)
}

func TestUpdateMeeting_RescheduleResetsPreparation(t *testing.T) {
	booked := mustMeeting(t, "MTG_00000001", "STU_00000001", time.Now().Add(time.Hour))
	assert.NoError(t, booked.MarkPrepared())
	pub := &fakePublisher{}
	h := NewUpdateMeetingHandler(newFakeMeetingRepo(booked), pub)

	newTime := time.Now().Add(96 * time.Hour)
	result, err := h.Handle(context.Background(), UpdateMeetingCommand{
		MeetingID: "MTG_00000001",
		Action:    MeetingActionReschedule,
		NewTime:   newTime,
	})
	assert.NoError(t, err)
	assert.Equal(t, "scheduled", result.Status)
	assert.True(t, result.ScheduledFor.Equal(newTime))
	assert.Nil(t, booked.PreparedAt)

	// The scheduled event goes out again so the briefing gets rebuilt
	event, ok := pub.events[0].(shared.MeetingScheduledEvent)
	assert.True(t, ok)
	assert.True(t, event.ScheduledFor.Equal(newTime))
}
