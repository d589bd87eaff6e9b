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
// IMPORT STUDENTS COMMAND
// Bulk roster import at the start of a school year. The whole batch is
// persisted in one transaction: either every row lands or none does.
// ══════════════════════════════════════════════════════════════════════════════

// maxImportBatch caps a single import request.
const maxImportBatch = 500

// ImportStudentRow is one roster row in an import request.
type ImportStudentRow struct {
	FirstName   string
	LastName    string
	Grade       string
	Section     string
	RollNumber  int
	ParentEmail string
	ParentPhone string
}

// ImportStudentsCommand contains the roster rows to import.
type ImportStudentsCommand struct {
	// Rows are the roster rows to import (required, at most maxImportBatch).
	Rows []ImportStudentRow

	// TeacherID is assigned as homeroom teacher to every imported student.
	TeacherID string
}

// Validate validates the command.
func (c ImportStudentsCommand) Validate() error {
	if len(c.Rows) == 0 {
		return errors.New("import_students: at least one row is required")
	}
	if len(c.Rows) > maxImportBatch {
		return fmt.Errorf("import_students: batch of %d exceeds limit of %d", len(c.Rows), maxImportBatch)
	}
	for i, row := range c.Rows {
		if strings.TrimSpace(row.FirstName) == "" || strings.TrimSpace(row.LastName) == "" {
			return fmt.Errorf("import_students: row %d: first and last name are required", i)
		}
		if strings.TrimSpace(row.Grade) == "" {
			return fmt.Errorf("import_students: row %d: grade is required", i)
		}
	}
	return nil
}

// ImportStudentsResult contains the result of the import.
type ImportStudentsResult struct {
	// Created is the number of students persisted.
	Created int

	// StudentIDs are the generated IDs in row order.
	StudentIDs []string

	// ImportedAt is when the batch was committed.
	ImportedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ImportStudentsHandler handles the ImportStudentsCommand.
type ImportStudentsHandler struct {
	studentRepo    student.Repository
	ids            IDGenerator
	eventPublisher shared.EventPublisher
}

// NewImportStudentsHandler creates a new ImportStudentsHandler.
func NewImportStudentsHandler(
	studentRepo student.Repository,
	ids IDGenerator,
	eventPublisher shared.EventPublisher,
) *ImportStudentsHandler {
	return &ImportStudentsHandler{
		studentRepo:    studentRepo,
		ids:            ids,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the import students command.
func (h *ImportStudentsHandler) Handle(ctx context.Context, cmd ImportStudentsCommand) (*ImportStudentsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("import_students: validation failed: %w", err)
	}

	students := make([]*student.Student, 0, len(cmd.Rows))
	ids := make([]string, 0, len(cmd.Rows))

	for i, row := range cmd.Rows {
		entity, err := student.NewStudent(student.NewStudentParams{
			ID:        h.ids.StudentID(),
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Grade:     row.Grade,
			Section:   row.Section,
			TeacherID: cmd.TeacherID,
		})
		if err != nil {
			return nil, fmt.Errorf("import_students: row %d: %w", i, err)
		}

		entity.PersonalInfo.RollNumber = row.RollNumber
		entity.PersonalInfo.ParentEmail = strings.TrimSpace(row.ParentEmail)
		entity.PersonalInfo.ParentPhone = strings.TrimSpace(row.ParentPhone)

		students = append(students, entity)
		ids = append(ids, entity.ID)
	}

	if err := h.studentRepo.BulkCreate(ctx, students); err != nil {
		return nil, fmt.Errorf("import_students: failed to persist batch: %w", err)
	}

	importedAt := time.Now().UTC()
	batchID := fmt.Sprintf("import_%d", importedAt.Unix())
	_ = h.eventPublisher.Publish(shared.NewStudentsImportedEvent(batchID, len(students), cmd.TeacherID))

	return &ImportStudentsResult{
		Created:    len(students),
		StudentIDs: ids,
		ImportedAt: importedAt,
	}, nil
}
