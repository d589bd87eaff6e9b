package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ASSESSMENT COMMAND
// The main academic write path. Stores an assessment result and recomputes
// the student's subject rollups and GPA from recent history, so the card
// stays consistent with the raw scores.
// ══════════════════════════════════════════════════════════════════════════════

// rollupAssessmentLimit bounds how much history the rollup reads back.
// A school year of weekly assessments across subjects fits well within it.
const rollupAssessmentLimit = 200

// RecordAssessmentCommand contains the assessment data to record.
type RecordAssessmentCommand struct {
	// StudentID is the student who took the assessment (required).
	StudentID string

	// Subject is the subject name, e.g. "mathematics" (required).
	Subject string

	// Type is the assessment type (quiz/test/project/assignment/exam).
	// Empty defaults to quiz.
	Type string

	// Score is the points earned.
	Score float64

	// MaxScore is the maximum possible points (required, > 0).
	MaxScore float64

	// Date is when the assessment took place. Zero defaults to now.
	Date time.Time

	// Topics lists the covered topics.
	Topics []string

	// Feedback is the teacher's comment on the result.
	Feedback string

	// CorrelationID for tracing across services.
	CorrelationID string
}

// Validate validates the command.
func (c RecordAssessmentCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("record_assessment: student_id is required")
	}
	if c.Subject == "" {
		return errors.New("record_assessment: subject is required")
	}
	if c.MaxScore <= 0 {
		return errors.New("record_assessment: max_score must be positive")
	}
	if c.Score < 0 || c.Score > c.MaxScore {
		return errors.New("record_assessment: score must be between 0 and max_score")
	}
	if c.Type != "" && !student.AssessmentType(c.Type).IsValid() {
		return fmt.Errorf("record_assessment: unknown assessment type %q", c.Type)
	}
	return nil
}

// assessmentType returns the requested type or the default.
func (c RecordAssessmentCommand) assessmentType() student.AssessmentType {
	if c.Type == "" {
		return student.AssessmentQuiz
	}
	return student.AssessmentType(c.Type)
}

// RecordAssessmentResult contains the result of recording an assessment.
type RecordAssessmentResult struct {
	// AssessmentID is the generated ID of the stored assessment.
	AssessmentID string

	// Percentage is the computed score percentage (0-100).
	Percentage float64

	// LetterGrade is the letter grade for the percentage.
	LetterGrade string

	// NewGPA is the student's GPA after the rollup.
	NewGPA float64

	// SubjectAverage is the recomputed average for the subject.
	SubjectAverage float64

	// SubjectTrend is the recomputed trend for the subject.
	SubjectTrend string

	// RecordedAt is when the assessment was stored.
	RecordedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordAssessmentHandler handles the RecordAssessmentCommand.
type RecordAssessmentHandler struct {
	studentRepo    student.Repository
	recordRepo     student.RecordRepository
	uow            student.UnitOfWorkFactory
	ids            IDGenerator
	eventPublisher shared.EventPublisher
}

// NewRecordAssessmentHandler creates a new RecordAssessmentHandler.
func NewRecordAssessmentHandler(
	studentRepo student.Repository,
	recordRepo student.RecordRepository,
	ids IDGenerator,
	eventPublisher shared.EventPublisher,
) *RecordAssessmentHandler {
	return &RecordAssessmentHandler{
		studentRepo:    studentRepo,
		recordRepo:     recordRepo,
		ids:            ids,
		eventPublisher: eventPublisher,
	}
}

// WithUnitOfWork makes the assessment insert and the card rollup update
// commit in one transaction. Without a factory the handler writes through
// the plain repositories sequentially.
func (h *RecordAssessmentHandler) WithUnitOfWork(factory student.UnitOfWorkFactory) *RecordAssessmentHandler {
	h.uow = factory
	return h
}

// Handle executes the record assessment command.
func (h *RecordAssessmentHandler) Handle(ctx context.Context, cmd RecordAssessmentCommand) (*RecordAssessmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_assessment: validation failed: %w", err)
	}

	// The card must exist before we attach records to it
	card, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("record_assessment: failed to load student: %w", err)
	}

	assessment, err := student.NewAssessment(student.NewAssessmentParams{
		ID:        h.ids.AssessmentID(),
		StudentID: card.ID,
		Subject:   cmd.Subject,
		Type:      cmd.assessmentType(),
		Date:      cmd.Date,
		Score:     cmd.Score,
		MaxScore:  cmd.MaxScore,
		Topics:    cmd.Topics,
		Feedback:  cmd.Feedback,
	})
	if err != nil {
		return nil, fmt.Errorf("record_assessment: failed to create assessment: %w", err)
	}

	var rollup student.AcademicRollup
	if h.uow != nil {
		rollup, err = h.persistTx(ctx, card, assessment)
	} else {
		rollup, err = h.persist(ctx, h.studentRepo, h.recordRepo, card, assessment)
	}
	if err != nil {
		return nil, err
	}

	event := shared.NewAssessmentRecordedEvent(
		card.ID,
		assessment.ID,
		assessment.Subject,
		string(assessment.Type),
		assessment.Percentage,
	)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	subject := rollup.Subjects[assessment.Subject]
	return &RecordAssessmentResult{
		AssessmentID:   assessment.ID,
		Percentage:     assessment.Percentage,
		LetterGrade:    assessment.LetterGrade(),
		NewGPA:         rollup.GPA,
		SubjectAverage: subject.AverageScore,
		SubjectTrend:   string(subject.Trend.OrDefault()),
		RecordedAt:     assessment.CreatedAt,
	}, nil
}

// persistTx runs persist inside a unit of work.
func (h *RecordAssessmentHandler) persistTx(ctx context.Context, card *student.Student, assessment *student.Assessment) (student.AcademicRollup, error) {
	uow, err := h.uow.Begin(ctx)
	if err != nil {
		return student.AcademicRollup{}, fmt.Errorf("record_assessment: failed to begin transaction: %w", err)
	}

	rollup, err := h.persist(ctx, uow.Students(), uow.Records(), card, assessment)
	if err != nil {
		_ = uow.Rollback(ctx)
		return student.AcademicRollup{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return student.AcademicRollup{}, fmt.Errorf("record_assessment: failed to commit transaction: %w", err)
	}
	return rollup, nil
}

// persist stores the assessment and refreshes the card's subject rollups
// and GPA from recent history through the given repositories.
func (h *RecordAssessmentHandler) persist(
	ctx context.Context,
	students student.Repository,
	records student.RecordRepository,
	card *student.Student,
	assessment *student.Assessment,
) (student.AcademicRollup, error) {
	if err := records.AddAssessment(ctx, assessment); err != nil {
		return student.AcademicRollup{}, fmt.Errorf("record_assessment: failed to persist assessment: %w", err)
	}

	history, err := records.GetAssessments(ctx, card.ID, rollupAssessmentLimit)
	if err != nil {
		return student.AcademicRollup{}, fmt.Errorf("record_assessment: failed to load history: %w", err)
	}

	rollup := student.ComputeAcademicRollup(history)
	if err := card.ApplyAcademicRollup(rollup.GPA, rollup.Subjects); err != nil {
		return student.AcademicRollup{}, fmt.Errorf("record_assessment: failed to apply rollup: %w", err)
	}

	if err := students.Update(ctx, card); err != nil {
		return student.AcademicRollup{}, fmt.Errorf("record_assessment: failed to update student: %w", err)
	}

	return rollup, nil
}
