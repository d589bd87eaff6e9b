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
// RECORD INCIDENT COMMAND
// Stores a behavioral incident, positive or negative. Incidents feed the
// behavioral picture that teachers review before a parent meeting.
// ══════════════════════════════════════════════════════════════════════════════

// RecordIncidentCommand contains the incident data to record.
type RecordIncidentCommand struct {
	// StudentID is the student involved (required).
	StudentID string

	// Type is the incident sign: positive or negative (required).
	Type string

	// Category classifies the incident (participation, leadership,
	// discipline, ...).
	Category string

	// Description says what happened (required).
	Description string

	// Severity is low/medium/high. Empty defaults to low.
	Severity string

	// ActionTaken records the teacher's response.
	ActionTaken string

	// FollowUpRequired marks the incident for a follow-up.
	FollowUpRequired bool

	// TeacherID is who recorded the incident.
	TeacherID string

	// Date is when the incident happened. Zero defaults to now.
	Date time.Time
}

// Validate validates the command.
func (c RecordIncidentCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("record_incident: student_id is required")
	}
	if !student.IncidentType(c.Type).IsValid() {
		return fmt.Errorf("record_incident: type must be positive or negative, got %q", c.Type)
	}
	if strings.TrimSpace(c.Description) == "" {
		return errors.New("record_incident: description is required")
	}
	return nil
}

// severity returns the requested severity or the default.
func (c RecordIncidentCommand) severity() student.IncidentSeverity {
	switch student.IncidentSeverity(c.Severity) {
	case student.SeverityMedium:
		return student.SeverityMedium
	case student.SeverityHigh:
		return student.SeverityHigh
	default:
		return student.SeverityLow
	}
}

// RecordIncidentResult contains the result of recording an incident.
type RecordIncidentResult struct {
	// IncidentID is the generated ID of the stored incident.
	IncidentID string

	// IsSerious is true for high-severity negative incidents.
	IsSerious bool

	// RecordedAt is when the incident was stored.
	RecordedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordIncidentHandler handles the RecordIncidentCommand.
type RecordIncidentHandler struct {
	studentRepo    student.Repository
	recordRepo     student.RecordRepository
	ids            IDGenerator
	eventPublisher shared.EventPublisher
}

// NewRecordIncidentHandler creates a new RecordIncidentHandler.
func NewRecordIncidentHandler(
	studentRepo student.Repository,
	recordRepo student.RecordRepository,
	ids IDGenerator,
	eventPublisher shared.EventPublisher,
) *RecordIncidentHandler {
	return &RecordIncidentHandler{
		studentRepo:    studentRepo,
		recordRepo:     recordRepo,
		ids:            ids,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the record incident command.
func (h *RecordIncidentHandler) Handle(ctx context.Context, cmd RecordIncidentCommand) (*RecordIncidentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_incident: validation failed: %w", err)
	}

	exists, err := h.studentRepo.Exists(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("record_incident: failed to check student: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("record_incident: %w", student.ErrStudentNotFound)
	}

	date := cmd.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	incident := &student.BehavioralIncident{
		ID:               h.ids.IncidentID(),
		StudentID:        cmd.StudentID,
		Date:             date,
		Type:             student.IncidentType(cmd.Type),
		Category:         strings.TrimSpace(cmd.Category),
		Description:      strings.TrimSpace(cmd.Description),
		Severity:         cmd.severity(),
		ActionTaken:      strings.TrimSpace(cmd.ActionTaken),
		FollowUpRequired: cmd.FollowUpRequired,
		TeacherID:        cmd.TeacherID,
		CreatedAt:        time.Now().UTC(),
	}

	if err := h.recordRepo.AddIncident(ctx, incident); err != nil {
		return nil, fmt.Errorf("record_incident: failed to persist incident: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewStudentUpdatedEvent(cmd.StudentID, []string{"behavioral"}))

	return &RecordIncidentResult{
		IncidentID: incident.ID,
		IsSerious:  incident.IsSerious(),
		RecordedAt: incident.CreatedAt,
	}, nil
}
