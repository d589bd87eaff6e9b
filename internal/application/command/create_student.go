// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
// Each command validates its input, applies domain rules and emits
// domain events on success.
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
// CREATE STUDENT COMMAND
// Registers a single student on the roster. Bulk imports live in
// import_students.go.
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudentCommand contains the data needed to register a student.
type CreateStudentCommand struct {
	// FirstName is the student's first name (required).
	FirstName string

	// LastName is the student's last name (required).
	LastName string

	// Grade is the grade level, e.g. "5" (required).
	Grade string

	// Section is the class section, e.g. "A".
	Section string

	// RollNumber is the roll number within the section (0 = unassigned).
	RollNumber int

	// TeacherID is the homeroom teacher responsible for the student.
	TeacherID string

	// ParentEmail is the primary parent contact email.
	ParentEmail string

	// ParentPhone is the primary parent contact phone.
	ParentPhone string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c CreateStudentCommand) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return errors.New("create_student: first_name is required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		return errors.New("create_student: last_name is required")
	}
	if strings.TrimSpace(c.Grade) == "" {
		return errors.New("create_student: grade is required")
	}
	if c.RollNumber < 0 {
		return errors.New("create_student: roll_number cannot be negative")
	}
	if c.ParentEmail != "" && !strings.Contains(c.ParentEmail, "@") {
		return errors.New("create_student: parent_email is not a valid email")
	}
	return nil
}

// CreateStudentResult contains the result of the registration.
type CreateStudentResult struct {
	// StudentID is the generated ID of the new student.
	StudentID string

	// CreatedAt is when the student was registered.
	CreatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// IDGenerator issues identifiers for new entities. The handlers in this
// package share one generator; the implementation lives in
// infrastructure/service.
type IDGenerator interface {
	// StudentID returns a new STU_XXXXXXXX identifier.
	StudentID() string

	// AssessmentID returns a new ASSESS_XXXXXXXX identifier.
	AssessmentID() string

	// IncidentID returns a new INC_XXXXXXXX identifier.
	IncidentID() string

	// CommunicationID returns a new COMM_XXXXXXXX identifier.
	CommunicationID() string

	// MeetingID returns a new MTG_XXXXXXXX identifier.
	MeetingID() string

	// NotificationID returns a new NTF_XXXXXXXX identifier.
	NotificationID() string
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateStudentHandler handles the CreateStudentCommand.
type CreateStudentHandler struct {
	studentRepo    student.Repository
	ids            IDGenerator
	eventPublisher shared.EventPublisher
}

// NewCreateStudentHandler creates a new CreateStudentHandler.
func NewCreateStudentHandler(
	studentRepo student.Repository,
	ids IDGenerator,
	eventPublisher shared.EventPublisher,
) *CreateStudentHandler {
	return &CreateStudentHandler{
		studentRepo:    studentRepo,
		ids:            ids,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the create student command.
func (h *CreateStudentHandler) Handle(ctx context.Context, cmd CreateStudentCommand) (*CreateStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_student: validation failed: %w", err)
	}

	// Roll numbers are unique within a section
	if cmd.RollNumber > 0 {
		taken, err := h.studentRepo.ExistsByRollNumber(ctx, cmd.Grade, cmd.Section, cmd.RollNumber)
		if err != nil {
			return nil, fmt.Errorf("create_student: failed to check roll number: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("create_student: roll number %d is already taken in %s-%s: %w",
				cmd.RollNumber, cmd.Grade, cmd.Section, student.ErrStudentAlreadyExists)
		}
	}

	newStudent, err := student.NewStudent(student.NewStudentParams{
		ID:        h.ids.StudentID(),
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Grade:     cmd.Grade,
		Section:   cmd.Section,
		TeacherID: cmd.TeacherID,
	})
	if err != nil {
		return nil, fmt.Errorf("create_student: failed to create entity: %w", err)
	}

	newStudent.PersonalInfo.RollNumber = cmd.RollNumber
	newStudent.PersonalInfo.ParentEmail = strings.TrimSpace(cmd.ParentEmail)
	newStudent.PersonalInfo.ParentPhone = strings.TrimSpace(cmd.ParentPhone)

	if err := h.studentRepo.Create(ctx, newStudent); err != nil {
		return nil, fmt.Errorf("create_student: failed to persist student: %w", err)
	}

	event := shared.NewStudentRegisteredEvent(
		newStudent.ID,
		newStudent.PersonalInfo.FirstName,
		newStudent.PersonalInfo.LastName,
		newStudent.PersonalInfo.Grade,
		cmd.TeacherID,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	// The student is already persisted, a lost event only delays cache refresh
	_ = h.eventPublisher.Publish(event)

	return &CreateStudentResult{
		StudentID: newStudent.ID,
		CreatedAt: newStudent.CreatedAt,
	}, nil
}
