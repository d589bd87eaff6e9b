package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE MEETING COMMAND
// Drives a booked meeting through its lifecycle: complete, cancel or move
// to a new time. Status rules live on the meeting entity.
// ══════════════════════════════════════════════════════════════════════════════

// Meeting lifecycle actions.
const (
	MeetingActionComplete   = "complete"
	MeetingActionCancel     = "cancel"
	MeetingActionReschedule = "reschedule"
)

// UpdateMeetingCommand contains the lifecycle change to apply.
type UpdateMeetingCommand struct {
	// MeetingID is the meeting to update (required).
	MeetingID string

	// Action is complete, cancel or reschedule (required).
	Action string

	// NewTime is the new meeting time (required for reschedule).
	NewTime time.Time

	// Notes replace the meeting notes when non-empty.
	Notes string

	// Reason is recorded with a cancellation.
	Reason string
}

// Validate validates the command.
func (c UpdateMeetingCommand) Validate() error {
	if c.MeetingID == "" {
		return errors.New("update_meeting: meeting_id is required")
	}
	switch c.Action {
	case MeetingActionComplete, MeetingActionCancel:
	case MeetingActionReschedule:
		if c.NewTime.IsZero() {
			return errors.New("update_meeting: new_time is required for reschedule")
		}
	default:
		return fmt.Errorf("update_meeting: unknown action %q", c.Action)
	}
	return nil
}

// UpdateMeetingResult contains the result of the lifecycle change.
type UpdateMeetingResult struct {
	// MeetingID is the updated meeting.
	MeetingID string

	// Status is the meeting status after the change.
	Status string

	// ScheduledFor is the meeting time after the change.
	ScheduledFor time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateMeetingHandler handles the UpdateMeetingCommand.
type UpdateMeetingHandler struct {
	meetingRepo    meeting.Repository
	eventPublisher shared.EventPublisher
}

// NewUpdateMeetingHandler creates a new UpdateMeetingHandler.
func NewUpdateMeetingHandler(
	meetingRepo meeting.Repository,
	eventPublisher shared.EventPublisher,
) *UpdateMeetingHandler {
	return &UpdateMeetingHandler{
		meetingRepo:    meetingRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the update meeting command.
func (h *UpdateMeetingHandler) Handle(ctx context.Context, cmd UpdateMeetingCommand) (*UpdateMeetingResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_meeting: validation failed: %w", err)
	}

	booked, err := h.meetingRepo.GetByID(ctx, cmd.MeetingID)
	if err != nil {
		return nil, fmt.Errorf("update_meeting: failed to load meeting: %w", err)
	}

	var event shared.Event
	switch cmd.Action {
	case MeetingActionComplete:
		if err := booked.Complete(); err != nil {
			return nil, fmt.Errorf("update_meeting: cannot complete: %w", err)
		}
		event = shared.NewMeetingCompletedEvent(booked.ID, booked.StudentID)

	case MeetingActionCancel:
		if err := booked.Cancel(); err != nil {
			return nil, fmt.Errorf("update_meeting: cannot cancel: %w", err)
		}
		event = shared.NewMeetingCancelledEvent(booked.ID, booked.StudentID, cmd.Reason)

	case MeetingActionReschedule:
		if err := booked.Reschedule(cmd.NewTime); err != nil {
			return nil, fmt.Errorf("update_meeting: cannot reschedule: %w", err)
		}
		// A moved meeting needs its briefing prepared again
		event = shared.NewMeetingScheduledEvent(booked.ID, booked.StudentID, booked.ScheduledFor, booked.TeacherID)
	}

	if cmd.Notes != "" {
		booked.Notes = cmd.Notes
	}

	if err := h.meetingRepo.Update(ctx, booked); err != nil {
		return nil, fmt.Errorf("update_meeting: failed to persist meeting: %w", err)
	}

	_ = h.eventPublisher.Publish(event)

	return &UpdateMeetingResult{
		MeetingID:    booked.ID,
		Status:       string(booked.Status),
		ScheduledFor: booked.ScheduledFor,
	}, nil
}
