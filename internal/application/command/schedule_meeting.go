package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE MEETING COMMAND
// Books a parent-teacher meeting. The emitted event triggers briefing
// preparation and the reminder notification.
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleMeetingCommand contains the data needed to book a meeting.
type ScheduleMeetingCommand struct {
	// StudentID is the student the meeting is about (required).
	StudentID string

	// TeacherID is the teacher holding the meeting (required).
	TeacherID string

	// ScheduledFor is the meeting date and time (required, in the future).
	ScheduledFor time.Time

	// Notes are free-form teacher notes for the meeting.
	Notes string
}

// Validate validates the command.
func (c ScheduleMeetingCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("schedule_meeting: student_id is required")
	}
	if c.TeacherID == "" {
		return errors.New("schedule_meeting: teacher_id is required")
	}
	if c.ScheduledFor.IsZero() {
		return errors.New("schedule_meeting: scheduled_for is required")
	}
	return nil
}

// ScheduleMeetingResult contains the result of booking a meeting.
type ScheduleMeetingResult struct {
	// MeetingID is the generated ID of the new meeting.
	MeetingID string

	// ScheduledFor is the confirmed meeting time.
	ScheduledFor time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ScheduleMeetingHandler handles the ScheduleMeetingCommand.
type ScheduleMeetingHandler struct {
	studentRepo    student.Repository
	meetingRepo    meeting.Repository
	ids            IDGenerator
	eventPublisher shared.EventPublisher
}

// NewScheduleMeetingHandler creates a new ScheduleMeetingHandler.
func NewScheduleMeetingHandler(
	studentRepo student.Repository,
	meetingRepo meeting.Repository,
	ids IDGenerator,
	eventPublisher shared.EventPublisher,
) *ScheduleMeetingHandler {
	return &ScheduleMeetingHandler{
		studentRepo:    studentRepo,
		meetingRepo:    meetingRepo,
		ids:            ids,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the schedule meeting command.
func (h *ScheduleMeetingHandler) Handle(ctx context.Context, cmd ScheduleMeetingCommand) (*ScheduleMeetingResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("schedule_meeting: validation failed: %w", err)
	}

	card, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("schedule_meeting: failed to load student: %w", err)
	}
	if !card.Status.IsEnrolled() {
		return nil, fmt.Errorf("schedule_meeting: %w", student.ErrStudentNotEnrolled)
	}

	booked, err := meeting.NewScheduledMeeting(meeting.NewScheduledMeetingParams{
		ID:           h.ids.MeetingID(),
		StudentID:    card.ID,
		TeacherID:    cmd.TeacherID,
		ScheduledFor: cmd.ScheduledFor,
		Notes:        cmd.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule_meeting: failed to create meeting: %w", err)
	}

	if err := h.meetingRepo.Create(ctx, booked); err != nil {
		return nil, fmt.Errorf("schedule_meeting: failed to persist meeting: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewMeetingScheduledEvent(
		booked.ID,
		booked.StudentID,
		booked.ScheduledFor,
		booked.TeacherID,
	))

	return &ScheduleMeetingResult{
		MeetingID:    booked.ID,
		ScheduledFor: booked.ScheduledFor,
	}, nil
}
