package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

type fakeStudentCache struct {
	student.Cache

	invalidated []string
}

func (f *fakeStudentCache) Invalidate(ctx context.Context, studentID string) error {
	f.invalidated = append(f.invalidated, studentID)
	return nil
}

type fakeBriefingCache struct {
	meeting.BriefingCache

	deleted []string
}

func (f *fakeBriefingCache) Delete(ctx context.Context, studentID string) error {
	f.deleted = append(f.deleted, studentID)
	return nil
}

type fakeStudentRepo struct {
	student.Repository

	students map[string]*student.Student
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (*student.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, student.ErrStudentNotFound
}

type fakeNotificationRepo struct {
	notification.Repository

	created []*notification.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.created = append(f.created, n)
	return nil
}

type fakeIDs struct{}

func (fakeIDs) NotificationID() string { return "NTF_00000001" }

func testStudent(t *testing.T) *student.Student {
	t.Helper()
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        "STU_00000001",
		FirstName: "Aruzhan",
		LastName:  "Bekova",
		Grade:     "5",
		Section:   "A",
		TeacherID: "TEACH_000001",
	})
	if err != nil {
		t.Fatalf("new student: %v", err)
	}
	return s
}

func newAssessmentHandler(t *testing.T) (*OnAssessmentRecordedHandler, *fakeStudentCache, *fakeBriefingCache, *fakeNotificationRepo) {
	t.Helper()
	studentCache := &fakeStudentCache{}
	briefingCache := &fakeBriefingCache{}
	notifications := &fakeNotificationRepo{}
	repo := &fakeStudentRepo{students: map[string]*student.Student{"STU_00000001": testStudent(t)}}

	h := NewOnAssessmentRecordedHandler(
		repo, notifications, studentCache, briefingCache, fakeIDs{},
		nil, DefaultAssessmentRecordedConfig(),
	)
	return h, studentCache, briefingCache, notifications
}

func TestOnAssessmentRecorded_InvalidatesCaches(t *testing.T) {
	h, studentCache, briefingCache, _ := newAssessmentHandler(t)

	event := shared.NewAssessmentRecordedEvent("STU_00000001", "ASSESS_00000001", "mathematics", "test", 85)
	assert.NoError(t, h.Handle(event))

	assert.Equal(t, []string{"STU_00000001"}, studentCache.invalidated)
	assert.Equal(t, []string{"STU_00000001"}, briefingCache.deleted)
}

func TestOnAssessmentRecorded_LowScoreAlertsTeacher(t *testing.T) {
	h, _, _, notifications := newAssessmentHandler(t)

	event := shared.NewAssessmentRecordedEvent("STU_00000001", "ASSESS_00000001", "mathematics", "test", 48)
	assert.NoError(t, h.Handle(event))

	assert.Len(t, notifications.created, 1)
	n := notifications.created[0]
	assert.Equal(t, notification.NotificationTypeAtRiskAlert, n.Type)
	assert.Equal(t, notification.PriorityHigh, n.Priority)
	assert.Equal(t, notification.RecipientID("TEACH_000001"), n.RecipientID)
	assert.Contains(t, n.Message, "48%")
	assert.Contains(t, n.Message, "mathematics")
}

func TestOnAssessmentRecorded_GoodScoreNoAlert(t *testing.T) {
	h, _, _, notifications := newAssessmentHandler(t)

	event := shared.NewAssessmentRecordedEvent("STU_00000001", "ASSESS_00000001", "mathematics", "test", 85)
	assert.NoError(t, h.Handle(event))

	assert.Empty(t, notifications.created)
}

func TestOnAssessmentRecorded_WrongEventIgnored(t *testing.T) {
	h, studentCache, _, _ := newAssessmentHandler(t)

	event := shared.NewStudentUpdatedEvent("STU_00000001", []string{"academic"})
	assert.NoError(t, h.Handle(event))

	assert.Empty(t, studentCache.invalidated)
}
