package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

func TestUUIDGenerator_Formats(t *testing.T) {
	g := NewUUIDGenerator()

	cases := []struct {
		name    string
		id      string
		pattern string
	}{
		{"student", g.StudentID(), `^STU_[0-9A-F]{8}$`},
		{"assessment", g.AssessmentID(), `^ASSESS_[0-9A-F]{8}$`},
		{"incident", g.IncidentID(), `^INC_[0-9A-F]{8}$`},
		{"communication", g.CommunicationID(), `^COMM_[0-9A-F]{8}$`},
		{"meeting", g.MeetingID(), `^MTG_[0-9A-F]{8}$`},
		{"notification", g.NotificationID(), `^NTF_[0-9A-F]{8}$`},
		{"teacher", g.TeacherID(), `^TEACH_[0-9A-F]{6}$`},
		{"snapshot", g.SnapshotID(), `^SNAP_[0-9A-F]{8}$`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tc.pattern), tc.id)
		})
	}
}

func TestUUIDGenerator_IDsAreUnique(t *testing.T) {
	g := NewUUIDGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.StudentID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestToEngineProfile_MapsAllSections(t *testing.T) {
	s := &student.Student{
		ID: "STU_0000AB12",
		PersonalInfo: student.PersonalInfo{
			FirstName: "Dana",
			LastName:  "Omarova",
			Grade:     "4",
		},
		Academic: student.AcademicProfile{
			CurrentGPA: 3.6,
			Subjects: map[string]student.SubjectRecord{
				"mathematics": {CurrentGrade: "A-", AverageScore: 91.5, Trend: student.TrendImproving},
			},
			Strengths:     []string{"problem solving"},
			LearningStyle: student.LearningVisual,
		},
		Behavioral: student.BehavioralProfile{
			Participation: student.ParticipationRecord{Level: student.FrequencyHigh},
			SocialSkills: student.SocialSkills{
				PeerInteraction: student.SkillExcellent,
				Teamwork:        student.SkillGood,
			},
			Attendance: student.AttendanceRecord{AttendanceRate: 0.97, TardyCount: 1},
		},
		Extracurricular: student.Extracurricular{
			Sports: []string{"swimming"},
			Clubs:  []string{"chess"},
		},
		ParentEngagement: student.ParentEngagement{
			CommunicationFrequency: student.FrequencyLow,
		},
		Goals: student.Goals{
			ShortTerm: []string{"improve handwriting"},
		},
		TeacherNotes: student.TeacherNotes{
			MotivationLevel: student.FrequencyMedium,
		},
		Status: student.StatusActive,
	}

	p := toEngineProfile(s)
	require.NoError(t, p.Validate())

	assert.Equal(t, "Dana Omarova", p.PersonalInfo.FullName())
	assert.Equal(t, "4", p.PersonalInfo.Grade)
	assert.Equal(t, 3.6, p.Academic.GPA)
	assert.Equal(t, "visual", p.Academic.LearningStyle)

	math := p.Academic.Subjects["mathematics"]
	assert.Equal(t, "A-", math.Letter)
	assert.Equal(t, 91.5, math.Score)
	assert.Equal(t, meeting.TrendImproving, math.Trend)

	assert.Equal(t, meeting.FrequencyHigh, p.Behavioral.Participation.Level)
	assert.Equal(t, meeting.SkillExcellent, p.Behavioral.SocialSkills.PeerInteraction)
	assert.Equal(t, 0.97, p.Behavioral.Attendance.Rate)
	assert.Equal(t, 2, p.Extracurricular.TotalActivities())
	assert.Equal(t, meeting.FrequencyLow, p.ParentEngagement.CommunicationFrequency)
}

func TestToEngineProfile_EmptyGradeFallsBack(t *testing.T) {
	s := &student.Student{
		PersonalInfo: student.PersonalInfo{FirstName: "Timur", LastName: "Akhmetov"},
	}

	p := toEngineProfile(s)
	assert.Equal(t, "5", p.PersonalInfo.Grade)
}

type recordingSender struct {
	channel notification.Channel
	calls   int
}

func (r *recordingSender) Send(ctx context.Context, n *notification.Notification) error {
	r.calls++
	r.channel = n.Channel
	return nil
}

func TestChannelSender_RoutesByChannel(t *testing.T) {
	email := &recordingSender{}
	fallback := &recordingSender{}

	router := NewChannelSender(fallback)
	router.Register(notification.ChannelEmail, email)

	err := router.Send(context.Background(), &notification.Notification{Channel: notification.ChannelEmail})
	require.NoError(t, err)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 0, fallback.calls)

	err = router.Send(context.Background(), &notification.Notification{Channel: notification.ChannelSMS})
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
}

func TestChannelSender_NoSenderIsAnError(t *testing.T) {
	router := NewChannelSender(nil)

	err := router.Send(context.Background(), &notification.Notification{Channel: notification.ChannelSMS})
	assert.Error(t, err)
}
