package command

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// Shared fakes for the command handler tests. Embedding the interface keeps
// them small: only the methods the handlers actually call are implemented.

type fakeStudentRepo struct {
	student.Repository

	students  map[string]*student.Student
	created   []*student.Student
	updated   []*student.Student
	rollTaken bool
}

func newFakeStudentRepo(students ...*student.Student) *fakeStudentRepo {
	m := make(map[string]*student.Student, len(students))
	for _, s := range students {
		m[s.ID] = s
	}
	return &fakeStudentRepo{students: m}
}

func (f *fakeStudentRepo) Create(ctx context.Context, s *student.Student) error {
	f.created = append(f.created, s)
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (*student.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, student.ErrStudentNotFound
}

func (f *fakeStudentRepo) Update(ctx context.Context, s *student.Student) error {
	f.updated = append(f.updated, s)
	f.students[s.ID] = s
	return nil
}

func (f *fakeStudentRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.students[id]
	return ok, nil
}

func (f *fakeStudentRepo) ExistsByRollNumber(ctx context.Context, grade, section string, rollNumber int) (bool, error) {
	return f.rollTaken, nil
}

func (f *fakeStudentRepo) BulkCreate(ctx context.Context, students []*student.Student) error {
	for _, s := range students {
		f.created = append(f.created, s)
		f.students[s.ID] = s
	}
	return nil
}

type fakeRecordRepo struct {
	student.RecordRepository

	assessments    map[string][]*student.Assessment
	incidents      []*student.BehavioralIncident
	communications []*student.ParentCommunication
	addErr         error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{assessments: make(map[string][]*student.Assessment)}
}

func (f *fakeRecordRepo) AddAssessment(ctx context.Context, a *student.Assessment) error {
	if f.addErr != nil {
		return f.addErr
	}
	// Newest first, matching the repository contract
	f.assessments[a.StudentID] = append([]*student.Assessment{a}, f.assessments[a.StudentID]...)
	return nil
}

func (f *fakeRecordRepo) GetAssessments(ctx context.Context, studentID string, limit int) ([]*student.Assessment, error) {
	list := f.assessments[studentID]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeRecordRepo) AddIncident(ctx context.Context, i *student.BehavioralIncident) error {
	f.incidents = append(f.incidents, i)
	return nil
}

func (f *fakeRecordRepo) AddCommunication(ctx context.Context, c *student.ParentCommunication) error {
	f.communications = append(f.communications, c)
	return nil
}

type fakeIDs struct {
	seq int
}

func (f *fakeIDs) next(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%08d", prefix, f.seq)
}

func (f *fakeIDs) StudentID() string       { return f.next("STU_") }
func (f *fakeIDs) AssessmentID() string    { return f.next("ASSESS_") }
func (f *fakeIDs) IncidentID() string      { return f.next("INC_") }
func (f *fakeIDs) CommunicationID() string { return f.next("COMM_") }
func (f *fakeIDs) MeetingID() string       { return f.next("MTG_") }
func (f *fakeIDs) NotificationID() string  { return f.next("NTF_") }

type fakePublisher struct {
	events []shared.Event
	err    error
}

func (f *fakePublisher) Publish(event shared.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func mustStudent(t *testing.T, id, firstName, lastName, grade string) *student.Student {
	t.Helper()
	s, err := student.NewStudent(student.NewStudentParams{
		ID:        id,
		FirstName: firstName,
		LastName:  lastName,
		Grade:     grade,
		Section:   "A",
		TeacherID: "TEACH_000001",
	})
	if err != nil {
		t.Fatalf("mustStudent: %v", err)
	}
	return s
}

func TestCreateStudent_Validation(t *testing.T) {
	h := NewCreateStudentHandler(newFakeStudentRepo(), &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), CreateStudentCommand{
		LastName: "Bekova",
		Grade:    "5",
	})
	assert.ErrorContains(t, err, "first_name is required")

	_, err = h.Handle(context.Background(), CreateStudentCommand{
		FirstName:  "Aruzhan",
		LastName:   "Bekova",
		Grade:      "5",
		RollNumber: -1,
	})
	assert.ErrorContains(t, err, "roll_number")

	_, err = h.Handle(context.Background(), CreateStudentCommand{
		FirstName:   "Aruzhan",
		LastName:    "Bekova",
		Grade:       "5",
		ParentEmail: "not-an-email",
	})
	assert.ErrorContains(t, err, "parent_email")
}

func TestCreateStudent_Success(t *testing.T) {
	repo := newFakeStudentRepo()
	pub := &fakePublisher{}
	h := NewCreateStudentHandler(repo, &fakeIDs{}, pub)

	result, err := h.Handle(context.Background(), CreateStudentCommand{
		FirstName:     "Aruzhan",
		LastName:      "Bekova",
		Grade:         "5",
		Section:       "A",
		RollNumber:    12,
		TeacherID:     "TEACH_000001",
		ParentEmail:   "  parent@example.com ",
		ParentPhone:   "+7 701 000 0000",
		CorrelationID: "corr-42",
	})
	assert.NoError(t, err)
	assert.Equal(t, "STU_00000001", result.StudentID)
	assert.False(t, result.CreatedAt.IsZero())

	assert.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, 12, created.PersonalInfo.RollNumber)
	assert.Equal(t, "parent@example.com", created.PersonalInfo.ParentEmail)
	assert.Equal(t, "TEACH_000001", created.Metadata.TeacherID)

	assert.Len(t, pub.events, 1)
	event, ok := pub.events[0].(shared.StudentRegisteredEvent)
	assert.True(t, ok)
	assert.Equal(t, shared.EventStudentRegistered, event.EventType())
	assert.Equal(t, "STU_00000001", event.AggregateID())
	assert.Equal(t, "corr-42", event.CorrelationID)
}

func TestCreateStudent_RollNumberTaken(t *testing.T) {
	repo := newFakeStudentRepo()
	repo.rollTaken = true
	h := NewCreateStudentHandler(repo, &fakeIDs{}, &fakePublisher{})

	_, err := h.Handle(context.Background(), CreateStudentCommand{
		FirstName:  "Aruzhan",
		LastName:   "Bekova",
		Grade:      "5",
		Section:    "A",
		RollNumber: 12,
	})
	assert.True(t, errors.Is(err, student.ErrStudentAlreadyExists))
	assert.Empty(t, repo.created)
}

func TestCreateStudent_PublishFailureIsNotFatal(t *testing.T) {
	repo := newFakeStudentRepo()
	pub := &fakePublisher{err: errors.New("bus down")}
	h := NewCreateStudentHandler(repo, &fakeIDs{}, pub)

	result, err := h.Handle(context.Background(), CreateStudentCommand{
		FirstName: "Aruzhan",
		LastName:  "Bekova",
		Grade:     "5",
	})
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Len(t, repo.created, 1)
}
