package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD COMMUNICATION COMMAND
// Logs a parent contact (email, phone call, meeting or note). A logged
// in-person meeting also bumps the last meeting date on the student card.
// ══════════════════════════════════════════════════════════════════════════════

// RecordCommunicationCommand contains the communication data to record.
type RecordCommunicationCommand struct {
	// StudentID is the student the contact was about (required).
	StudentID string

	// Type is the channel: email, phone, meeting or note (required).
	Type string

	// InitiatedBy is "teacher" or "parent". Empty defaults to teacher.
	InitiatedBy string

	// Subject is the topic of the contact.
	Subject string

	// Content is what was discussed (required).
	Content string

	// FollowUpNeeded marks the contact for a follow-up.
	FollowUpNeeded bool

	// FollowUpDate is the planned follow-up date.
	FollowUpDate time.Time

	// TeacherID is the teacher involved.
	TeacherID string

	// Date is when the contact happened. Zero defaults to now.
	Date time.Time
}

// Validate validates the command.
func (c RecordCommunicationCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("record_communication: student_id is required")
	}
	if !student.CommunicationType(c.Type).IsValid() {
		return fmt.Errorf("record_communication: unknown communication type %q", c.Type)
	}
	if strings.TrimSpace(c.Content) == "" {
		return errors.New("record_communication: content is required")
	}
	if c.InitiatedBy != "" && c.InitiatedBy != student.InitiatorTeacher && c.InitiatedBy != student.InitiatorParent {
		return fmt.Errorf("record_communication: initiated_by must be teacher or parent, got %q", c.InitiatedBy)
	}
	return nil
}

// RecordCommunicationResult contains the result of recording a communication.
type RecordCommunicationResult struct {
	// CommunicationID is the generated ID of the stored record.
	CommunicationID string

	// RecordedAt is when the record was stored.
	RecordedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordCommunicationHandler handles the RecordCommunicationCommand.
type RecordCommunicationHandler struct {
	studentRepo    student.Repository
	recordRepo     student.RecordRepository
	ids            IDGenerator
	eventPublisher shared.EventPublisher
}

// NewRecordCommunicationHandler creates a new RecordCommunicationHandler.
func NewRecordCommunicationHandler(
	studentRepo student.Repository,
	recordRepo student.RecordRepository,
	ids IDGenerator,
	eventPublisher shared.EventPublisher,
) *RecordCommunicationHandler {
	return &RecordCommunicationHandler{
		studentRepo:    studentRepo,
		recordRepo:     recordRepo,
		ids:            ids,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the record communication command.
func (h *RecordCommunicationHandler) Handle(ctx context.Context, cmd RecordCommunicationCommand) (*RecordCommunicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_communication: validation failed: %w", err)
	}

	card, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("record_communication: failed to load student: %w", err)
	}

	date := cmd.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	initiatedBy := cmd.InitiatedBy
	if initiatedBy == "" {
		initiatedBy = student.InitiatorTeacher
	}

	communication := &student.ParentCommunication{
		ID:             h.ids.CommunicationID(),
		StudentID:      card.ID,
		Date:           date,
		Type:           student.CommunicationType(cmd.Type),
		InitiatedBy:    initiatedBy,
		Subject:        strings.TrimSpace(cmd.Subject),
		Content:        strings.TrimSpace(cmd.Content),
		FollowUpNeeded: cmd.FollowUpNeeded,
		FollowUpDate:   cmd.FollowUpDate,
		TeacherID:      cmd.TeacherID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.recordRepo.AddCommunication(ctx, communication); err != nil {
		return nil, fmt.Errorf("record_communication: failed to persist record: %w", err)
	}

	// An in-person meeting updates the engagement section of the card
	if communication.Type == student.CommunicationMeeting && date.After(card.ParentEngagement.LastMeetingDate) {
		card.ParentEngagement.LastMeetingDate = date
		if err := h.studentRepo.Update(ctx, card); err != nil {
			return nil, fmt.Errorf("record_communication: failed to update student: %w", err)
		}
	}

	_ = h.eventPublisher.Publish(shared.NewStudentUpdatedEvent(card.ID, []string{"parent_engagement"}))

	return &RecordCommunicationResult{
		CommunicationID: communication.ID,
		RecordedAt:      communication.CreatedAt,
	}, nil
}
