package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

type fakeMeetingRepo struct {
	meeting.Repository

	meetings map[string]*meeting.ScheduledMeeting
	created  []*meeting.ScheduledMeeting
	updated  []*meeting.ScheduledMeeting
}

func newFakeMeetingRepo(meetings ...*meeting.ScheduledMeeting) *fakeMeetingRepo {
	m := make(map[string]*meeting.ScheduledMeeting, len(meetings))
	for _, mt := range meetings {
		m[mt.ID] = mt
	}
	return &fakeMeetingRepo{meetings: m}
}

func (f *fakeMeetingRepo) Create(ctx context.Context, m *meeting.ScheduledMeeting) error {
	f.created = append(f.created, m)
	f.meetings[m.ID] = m
	return nil
}

func (f *fakeMeetingRepo) GetByID(ctx context.Context, id string) (*meeting.ScheduledMeeting, error) {
	if m, ok := f.meetings[id]; ok {
		return m, nil
	}
	return nil, meeting.ErrMeetingNotFound
}

func (f *fakeMeetingRepo) Update(ctx context.Context, m *meeting.ScheduledMeeting) error {
	f.updated = append(f.updated, m)
	f.meetings[m.ID] = m
	return nil
}

func TestScheduleMeeting_Validation(t *testing.T) {
	h := NewScheduleMeetingHandler(newFakeStudentRepo(), newFakeMeetingRepo(), &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), ScheduleMeetingCommand{
		TeacherID:    "TEACH_000001",
		ScheduledFor: time.Now().Add(48 * time.Hour),
	})
	assert.ErrorContains(t, err, "student_id is required")

	_, err = h.Handle(context.Background(), ScheduleMeetingCommand{
		StudentID: "STU_00000001",
		TeacherID: "TEACH_000001",
	})
	assert.ErrorContains(t, err, "scheduled_for is required")
}

func TestScheduleMeeting_Success(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	meetings := newFakeMeetingRepo()
	pub := &fakePublisher{}
	h := NewScheduleMeetingHandler(newFakeStudentRepo(card), meetings, &fakeIDs{}, pub)

	when := time.Now().Add(72 * time.Hour).Truncate(time.Minute)
	result, err := h.Handle(context.Background(), ScheduleMeetingCommand{
		StudentID:    "STU_00000001",
		TeacherID:    "TEACH_000001",
		ScheduledFor: when,
		Notes:        "Discuss math progress",
	})
	assert.NoError(t, err)
	assert.Equal(t, "MTG_00000001", result.MeetingID)
	assert.True(t, result.ScheduledFor.Equal(when))

	assert.Len(t, meetings.created, 1)
	booked := meetings.created[0]
	assert.Equal(t, meeting.StatusScheduled, booked.Status)
	assert.Equal(t, "Discuss math progress", booked.Notes)

	assert.Len(t, pub.events, 1)
	event, ok := pub.events[0].(shared.MeetingScheduledEvent)
	assert.True(t, ok)
	assert.Equal(t, "MTG_00000001", event.AggregateID())
	assert.Equal(t, "STU_00000001", event.StudentID)
	assert.Equal(t, "TEACH_000001", event.TeacherID)
}

func TestScheduleMeeting_PastTime(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	h := NewScheduleMeetingHandler(newFakeStudentRepo(card), newFakeMeetingRepo(), &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), ScheduleMeetingCommand{
		StudentID:    "STU_00000001",
		TeacherID:    "TEACH_000001",
		ScheduledFor: time.Now().Add(-time.Hour),
	})
	assert.True(t, errors.Is(err, meeting.ErrMeetingInPast))
}

func TestScheduleMeeting_StudentNotEnrolled(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	assert.NoError(t, card.MarkTransferred())
	h := NewScheduleMeetingHandler(newFakeStudentRepo(card), newFakeMeetingRepo(), &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), ScheduleMeetingCommand{
		StudentID:    "STU_00000001",
		TeacherID:    "TEACH_000001",
		ScheduledFor: time.Now().Add(48 * time.Hour),
	})
	assert.True(t, errors.Is(err, student.ErrStudentNotEnrolled))
}
