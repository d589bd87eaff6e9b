package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

type fakeMeetingRepo struct {
	meeting.Repository

	meetings map[string]*meeting.ScheduledMeeting
	updated  []*meeting.ScheduledMeeting
}

func newFakeMeetingRepo(meetings ...*meeting.ScheduledMeeting) *fakeMeetingRepo {
	m := make(map[string]*meeting.ScheduledMeeting, len(meetings))
	for _, mt := range meetings {
		m[mt.ID] = mt
	}
	return &fakeMeetingRepo{meetings: m}
}

func (f *fakeMeetingRepo) GetByID(ctx context.Context, id string) (*meeting.ScheduledMeeting, error) {
	if m, ok := f.meetings[id]; ok {
		return m, nil
	}
	return nil, meeting.ErrMeetingNotFound
}

func (f *fakeMeetingRepo) Update(ctx context.Context, m *meeting.ScheduledMeeting) error {
	f.updated = append(f.updated, m)
	return nil
}

type fakeStudentRepo struct {
	student.Repository

	students map[string]*student.Student
	updated  []*student.Student
}

func newFakeStudentRepo(students ...*student.Student) *fakeStudentRepo {
	m := make(map[string]*student.Student, len(students))
	for _, s := range students {
		m[s.ID] = s
	}
	return &fakeStudentRepo{students: m}
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, id string) (*student.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, student.ErrStudentNotFound
}

func (f *fakeStudentRepo) Update(ctx context.Context, s *student.Student) error {
	f.updated = append(f.updated, s)
	return nil
}

type fakeBriefings struct {
	result *query.GetTalkingPointsResult
	err    error
	calls  int
	lastQ  query.GetTalkingPointsQuery
}

func (f *fakeBriefings) Handle(ctx context.Context, q query.GetTalkingPointsQuery) (*query.GetTalkingPointsResult, error) {
	f.calls++
	f.lastQ = q
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSummaryWriter struct {
	text  string
	err   error
	calls int
}

func (f *fakeSummaryWriter) SummarizeMeeting(ctx context.Context, req command.SummaryRequest) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeNotificationRepo struct {
	notification.Repository

	created []*notification.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	f.created = append(f.created, n)
	return nil
}

type fakePublisher struct {
	events []shared.Event
}

func (f *fakePublisher) Publish(event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}

type fakeIDs struct{}

func (fakeIDs) NotificationID() string { return "NTF_00000001" }

func preparedBriefing() *query.GetTalkingPointsResult {
	return &query.GetTalkingPointsResult{
		Briefing: query.BriefingDTO{
			MeetingSummary: query.MeetingSummaryDTO{
				StudentName:        "Aruzhan Bekova",
				Grade:              "5",
				MeetingDate:        "2026-08-23",
				TotalTalkingPoints: 5,
				HighPriorityItems:  2,
				ActionItems:        1,
			},
			TalkingPointsByCategory: map[string][]query.CategoryPointDTO{
				"academic": {{Priority: "high", Title: "Excellent Academic Performance"}},
			},
		},
		GeneratedAt: "2026-08-23",
	}
}

func prepFixture(t *testing.T) (*fakeMeetingRepo, *fakeStudentRepo, *fakeBriefings, *fakeSummaryWriter, *fakeNotificationRepo, *fakePublisher) {
	t.Helper()

	st, err := student.NewStudent(student.NewStudentParams{
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

	m, err := meeting.NewScheduledMeeting(meeting.NewScheduledMeetingParams{
		ID:           "MTG_00000001",
		StudentID:    "STU_00000001",
		TeacherID:    "TEACH_000001",
		ScheduledFor: time.Now().Add(48 * time.Hour),
		Notes:        "Focus on math",
	})
	if err != nil {
		t.Fatalf("new meeting: %v", err)
	}

	return newFakeMeetingRepo(m),
		newFakeStudentRepo(st),
		&fakeBriefings{result: preparedBriefing()},
		&fakeSummaryWriter{text: "A short narrative."},
		&fakeNotificationRepo{},
		&fakePublisher{}
}

func newPrepSaga(
	meetings *fakeMeetingRepo,
	students *fakeStudentRepo,
	briefings *fakeBriefings,
	writer *fakeSummaryWriter,
	notifications *fakeNotificationRepo,
	pub *fakePublisher,
) *MeetingPrepSaga {
	return NewMeetingPrepSaga(
		meetings, students, briefings, writer, notifications, pub, fakeIDs{},
		DefaultMeetingPrepConfig(),
	)
}

func TestMeetingPrep_Success(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	result, err := s.Execute(context.Background(), MeetingPrepInput{MeetingID: "MTG_00000001"})
	assert.NoError(t, err)
	assert.Equal(t, "MTG_00000001", result.MeetingID)
	assert.Equal(t, "STU_00000001", result.StudentID)
	assert.Equal(t, "A short narrative.", result.SummaryText)
	assert.Equal(t, "NTF_00000001", result.NotificationID)

	// The saga always rebuilds the briefing instead of trusting the cache
	assert.True(t, briefings.lastQ.Refresh)

	// Meeting transitioned and was persisted
	booked := meetings.meetings["MTG_00000001"]
	assert.Equal(t, meeting.StatusPrepared, booked.Status)
	assert.NotNil(t, booked.PreparedAt)
	assert.Len(t, meetings.updated, 1)

	// Student card carries the prep timestamp
	assert.Len(t, students.updated, 1)
	assert.False(t, students.students["STU_00000001"].Metadata.LastMeetingPrep.IsZero())

	// Teacher got a briefing-ready notification
	assert.Len(t, notifications.created, 1)
	n := notifications.created[0]
	assert.Equal(t, notification.NotificationTypeBriefingReady, n.Type)
	assert.Equal(t, notification.RecipientID("TEACH_000001"), n.RecipientID)
	assert.Equal(t, "MTG_00000001", n.MeetingID)

	// The prepared event carries the briefing stats
	assert.Len(t, pub.events, 1)
	event, ok := pub.events[0].(shared.MeetingPreparedEvent)
	assert.True(t, ok)
	assert.Equal(t, 5, event.TalkingPoints)
	assert.True(t, event.HasAISummary)
}

func TestMeetingPrep_SummaryFailureIsNotFatal(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	writer.err = errors.New("model overloaded")
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	result, err := s.Execute(context.Background(), MeetingPrepInput{MeetingID: "MTG_00000001"})
	assert.NoError(t, err)
	assert.Empty(t, result.SummaryText)
	assert.Equal(t, meeting.StatusPrepared, meetings.meetings["MTG_00000001"].Status)

	event, ok := pub.events[0].(shared.MeetingPreparedEvent)
	assert.True(t, ok)
	assert.False(t, event.HasAISummary)
}

func TestMeetingPrep_SkipSummary(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	result, err := s.Execute(context.Background(), MeetingPrepInput{
		MeetingID:   "MTG_00000001",
		SkipSummary: true,
	})
	assert.NoError(t, err)
	assert.Empty(t, result.SummaryText)
	assert.Equal(t, 0, writer.calls)
}

func TestMeetingPrep_AlreadyPrepared(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	assert.NoError(t, meetings.meetings["MTG_00000001"].MarkPrepared())
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	_, err := s.Execute(context.Background(), MeetingPrepInput{MeetingID: "MTG_00000001"})
	assert.True(t, errors.Is(err, ErrMeetingAlreadyPrepared))

	var prepErr *MeetingPrepError
	assert.True(t, errors.As(err, &prepErr))
	assert.Equal(t, StepCheckStatus, prepErr.Step)
	assert.False(t, prepErr.IsRetryable())
}

func TestMeetingPrep_MeetingNotFound(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	_, err := s.Execute(context.Background(), MeetingPrepInput{MeetingID: "MTG_MISSING1"})
	assert.True(t, errors.Is(err, meeting.ErrMeetingNotFound))

	var prepErr *MeetingPrepError
	assert.True(t, errors.As(err, &prepErr))
	assert.False(t, prepErr.IsRetryable())
}

func TestMeetingPrep_StudentNoLongerEnrolled(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	assert.NoError(t, students.students["STU_00000001"].MarkTransferred())
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	_, err := s.Execute(context.Background(), MeetingPrepInput{MeetingID: "MTG_00000001"})
	assert.True(t, errors.Is(err, ErrStudentNoLongerEnrolled))

	var prepErr *MeetingPrepError
	assert.True(t, errors.As(err, &prepErr))
	assert.False(t, prepErr.IsRetryable())

	// Nothing was persisted
	assert.Empty(t, meetings.updated)
	assert.Empty(t, pub.events)
}

func TestMeetingPrep_BriefingFailureStopsSaga(t *testing.T) {
	meetings, students, briefings, writer, notifications, pub := prepFixture(t)
	briefings.err = errors.New("storage offline")
	s := newPrepSaga(meetings, students, briefings, writer, notifications, pub)

	_, err := s.Execute(context.Background(), MeetingPrepInput{MeetingID: "MTG_00000001"})
	assert.Error(t, err)

	var prepErr *MeetingPrepError
	assert.True(t, errors.As(err, &prepErr))
	assert.Equal(t, StepBuildBriefing, prepErr.Step)
	assert.True(t, prepErr.IsRetryable())

	// The meeting stays scheduled so a retry can pick it up
	assert.Equal(t, meeting.StatusScheduled, meetings.meetings["MTG_00000001"].Status)
	assert.Empty(t, notifications.created)
}
