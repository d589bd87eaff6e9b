package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

func TestRecordAssessment_Validation(t *testing.T) {
	h := NewRecordAssessmentHandler(newFakeStudentRepo(), newFakeRecordRepo(), &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), RecordAssessmentCommand{
		Subject:  "mathematics",
		MaxScore: 100,
	})
	assert.ErrorContains(t, err, "student_id is required")

	_, err = h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Score:     120,
		MaxScore:  100,
	})
	assert.ErrorContains(t, err, "score must be between")

	_, err = h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Type:      "pop-quiz",
		Score:     80,
		MaxScore:  100,
	})
	assert.ErrorContains(t, err, "unknown assessment type")
}

func TestRecordAssessment_StudentMissing(t *testing.T) {
	h := NewRecordAssessmentHandler(newFakeStudentRepo(), newFakeRecordRepo(), &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_MISSING1",
		Subject:   "mathematics",
		Score:     80,
		MaxScore:  100,
	})
	assert.True(t, errors.Is(err, student.ErrStudentNotFound))
}

func TestRecordAssessment_Success(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	repo := newFakeStudentRepo(card)
	records := newFakeRecordRepo()
	pub := &fakePublisher{}
	h := NewRecordAssessmentHandler(repo, records, &fakeIDs{}, pub)

	result, err := h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Type:      "test",
		Score:     85,
		MaxScore:  100,
		Topics:    []string{"fractions"},
		Feedback:  "Solid work",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ASSESS_00000001", result.AssessmentID)
	assert.Equal(t, 85.0, result.Percentage)
	assert.Equal(t, "B", result.LetterGrade)
	assert.InDelta(t, 3.4, result.NewGPA, 1e-9)
	assert.InDelta(t, 85.0, result.SubjectAverage, 1e-9)
	assert.Equal(t, "stable", result.SubjectTrend)

	// The card rollup was refreshed and persisted
	assert.Len(t, repo.updated, 1)
	assert.InDelta(t, 3.4, card.Academic.CurrentGPA, 1e-9)
	assert.Equal(t, "B", card.Academic.Subjects["mathematics"].CurrentGrade)

	assert.Len(t, pub.events, 1)
	event, ok := pub.events[0].(shared.AssessmentRecordedEvent)
	assert.True(t, ok)
	assert.Equal(t, "STU_00000001", event.AggregateID())
	assert.Equal(t, "mathematics", event.Subject)
	assert.Equal(t, 85.0, event.Percentage)
}

func TestRecordAssessment_RollupUsesHistory(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	repo := newFakeStudentRepo(card)
	records := newFakeRecordRepo()
	h := NewRecordAssessmentHandler(repo, records, &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Score:     60,
		MaxScore:  100,
	})
	assert.NoError(t, err)

	result, err := h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Score:     90,
		MaxScore:  100,
	})
	assert.NoError(t, err)

	// The letter grade is for the new assessment, the rollup for the history
	assert.Equal(t, "A-", result.LetterGrade)

	// Two assessments averaged: (60 + 90) / 2 = 75
	assert.InDelta(t, 75.0, result.SubjectAverage, 1e-9)
	assert.InDelta(t, 3.0, result.NewGPA, 1e-9)
	assert.Equal(t, "C", card.Academic.Subjects["mathematics"].CurrentGrade)
}

// fakeUnitOfWork hands out the shared fakes and records the outcome.
type fakeUnitOfWork struct {
	students   *fakeStudentRepo
	records    *fakeRecordRepo
	committed  bool
	rolledBack bool
}

func (u *fakeUnitOfWork) Students() student.Repository      { return u.students }
func (u *fakeUnitOfWork) Records() student.RecordRepository { return u.records }
func (u *fakeUnitOfWork) Commit(ctx context.Context) error  { u.committed = true; return nil }
func (u *fakeUnitOfWork) Rollback(ctx context.Context) error {
	u.rolledBack = true
	return nil
}

type fakeUnitOfWorkFactory struct {
	last *fakeUnitOfWork
}

func (f *fakeUnitOfWorkFactory) Begin(ctx context.Context) (student.UnitOfWork, error) {
	f.last = &fakeUnitOfWork{students: newFakeStudentRepo(), records: newFakeRecordRepo()}
	return f.last, nil
}

func TestRecordAssessment_UnitOfWorkCommits(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	repo := newFakeStudentRepo(card)
	factory := &fakeUnitOfWorkFactory{}
	h := NewRecordAssessmentHandler(repo, newFakeRecordRepo(), &fakeIDs{}, &fakePublisher{}).
		WithUnitOfWork(factory)

	result, err := h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Score:     85,
		MaxScore:  100,
	})
	assert.NoError(t, err)
	assert.Equal(t, "ASSESS_00000001", result.AssessmentID)

	// Both writes went through the transaction and it was committed
	assert.NotNil(t, factory.last)
	assert.True(t, factory.last.committed)
	assert.False(t, factory.last.rolledBack)
	assert.Len(t, factory.last.records.assessments["STU_00000001"], 1)
	assert.Len(t, factory.last.students.updated, 1)
}

func TestRecordAssessment_UnitOfWorkRollsBackOnFailure(t *testing.T) {
	card := mustStudent(t, "STU_00000001", "Aruzhan", "Bekova", "5")
	repo := newFakeStudentRepo(card)
	factory := &failingUnitOfWorkFactory{}
	h := NewRecordAssessmentHandler(repo, newFakeRecordRepo(), &fakeIDs{}, &fakePublisher{}).
		WithUnitOfWork(factory)

	_, err := h.Handle(context.Background(), RecordAssessmentCommand{
		StudentID: "STU_00000001",
		Subject:   "mathematics",
		Score:     85,
		MaxScore:  100,
	})
	assert.ErrorContains(t, err, "failed to persist assessment")
	assert.True(t, factory.last.rolledBack)
	assert.False(t, factory.last.committed)
}

// failingUnitOfWorkFactory produces units whose record repository rejects
// every write.
type failingUnitOfWorkFactory struct {
	last *fakeUnitOfWork
}

func (f *failingUnitOfWorkFactory) Begin(ctx context.Context) (student.UnitOfWork, error) {
	records := newFakeRecordRepo()
	records.addErr = errors.New("connection reset")
	f.last = &fakeUnitOfWork{students: newFakeStudentRepo(), records: records}
	return f.last, nil
}
