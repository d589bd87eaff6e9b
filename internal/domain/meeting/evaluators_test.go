package meeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func titlesOf(points []TalkingPoint) []string {
	titles := make([]string, 0, len(points))
	for _, point := range points {
		titles = append(titles, point.Title)
	}
	return titles
}

func TestEvaluateAcademic_DecliningSubject(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Academic.GPA = 3.3
	p.Academic.Subjects = map[string]SubjectStanding{
		"social_studies": {Letter: "C", Score: 71.5, Trend: TrendDeclining},
	}

	points := g.evaluateAcademic(p)
	assert.Len(t, points, 2)

	concern := points[1]
	assert.Equal(t, "Concerns in Social_Studies", concern.Title)
	assert.Equal(t, PriorityHigh, concern.Priority)
	assert.True(t, concern.ActionRequired)
	assert.Equal(t, "Social_Studies performance shows declining trend. Current grade: C (71.5%). Let's discuss intervention strategies.", concern.Content)
	assert.Equal(t, "social_studies", concern.SupportingData["subject"])
}

func TestEvaluateAcademic_DecliningAboveThresholdIgnored(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Academic.GPA = 3.3
	p.Academic.Subjects = map[string]SubjectStanding{
		"math": {Letter: "B", Score: 82, Trend: TrendDeclining},
		"art":  {Letter: "A", Score: 95, Trend: TrendStable},
	}

	points := g.evaluateAcademic(p)
	assert.Equal(t, []string{"Solid Academic Performance"}, titlesOf(points))
}

func TestEvaluateAcademic_ImprovingSubjectContent(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Academic.GPA = 3.3
	p.Academic.Subjects = map[string]SubjectStanding{
		"science": {Letter: "B+", Score: 88, Trend: TrendImproving},
	}

	points := g.evaluateAcademic(p)
	assert.Len(t, points, 2)
	assert.Equal(t, "Improvement in Science", points[1].Title)
	assert.Equal(t, "Great progress in science with an improving trend. Current grade: B+ (88.0%)", points[1].Content)
	assert.False(t, points[1].ActionRequired)
}

func TestEvaluateBehavioral_ParticipationLevels(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Behavioral.Attendance.Rate = 0.95
	p.Behavioral.Participation.Level = FrequencyHigh
	assert.Equal(t, []string{"Excellent Class Participation"}, titlesOf(g.evaluateBehavioral(p)))

	p.Behavioral.Participation.Level = FrequencyLow
	points := g.evaluateBehavioral(p)
	assert.Equal(t, []string{"Encouraging Participation"}, titlesOf(points))
	assert.True(t, points[0].ActionRequired)

	// Medium and empty levels produce nothing.
	p.Behavioral.Participation.Level = FrequencyMedium
	assert.Empty(t, g.evaluateBehavioral(p))
	p.Behavioral.Participation.Level = ""
	assert.Empty(t, g.evaluateBehavioral(p))
}

func TestEvaluateBehavioral_SocialSkillsRequireBothExcellent(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Behavioral.Attendance.Rate = 0.95
	p.Behavioral.SocialSkills.PeerInteraction = SkillExcellent
	p.Behavioral.SocialSkills.Teamwork = SkillGood
	assert.Empty(t, g.evaluateBehavioral(p))

	p.Behavioral.SocialSkills.Teamwork = SkillExcellent
	points := g.evaluateBehavioral(p)
	assert.Equal(t, []string{"Strong Social Skills"}, titlesOf(points))
	assert.Equal(t, CategorySocial, points[0].Category)

	p.Behavioral.SocialSkills.PeerInteraction = SkillNeedsImprovement
	points = g.evaluateBehavioral(p)
	assert.Equal(t, []string{"Social Skills Development"}, titlesOf(points))
	assert.True(t, points[0].ActionRequired)
}

func TestEvaluateBehavioral_AttendanceBoundaries(t *testing.T) {
	g := NewGenerator()
	p := validProfile()

	p.Behavioral.Attendance.Rate = 0.98
	assert.Equal(t, []string{"Excellent Attendance"}, titlesOf(g.evaluateBehavioral(p)))

	// Exactly 0.90 is neither excellent nor a concern.
	p.Behavioral.Attendance.Rate = 0.90
	assert.Empty(t, g.evaluateBehavioral(p))

	p.Behavioral.Attendance.Rate = 0.899
	points := g.evaluateBehavioral(p)
	assert.Equal(t, []string{"Attendance Concerns"}, titlesOf(points))
	assert.Contains(t, points[0].Content, "89.9%")
}

func TestEvaluateBehavioral_TardyThreshold(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Behavioral.Attendance.Rate = 0.95
	p.Behavioral.Attendance.TardyCount = 5
	assert.Empty(t, g.evaluateBehavioral(p))

	p.Behavioral.Attendance.TardyCount = 6
	points := g.evaluateBehavioral(p)
	assert.Equal(t, []string{"Punctuality"}, titlesOf(points))
	assert.Contains(t, points[0].Content, "tardy 6 times")
}

func TestEvaluateExtracurricular_ActivityCounts(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	assert.Equal(t, []string{"Extracurricular Opportunities"}, titlesOf(g.evaluateExtracurricular(p)))

	// One or two activities produce no point either way.
	p.Extracurricular.Sports = []string{"football"}
	assert.Empty(t, g.evaluateExtracurricular(p))

	p.Extracurricular.Clubs = []string{"robotics", "drama"}
	points := g.evaluateExtracurricular(p)
	assert.Equal(t, []string{"Well-Rounded Engagement"}, titlesOf(points))
	assert.Equal(t, 3, points[0].SupportingData["total_activities"])
}

func TestEvaluateExtracurricular_VolunteerHours(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Extracurricular.Sports = []string{"football"}
	p.Extracurricular.VolunteerHours = 10
	assert.Empty(t, g.evaluateExtracurricular(p))

	p.Extracurricular.VolunteerHours = 11
	assert.Equal(t, []string{"Community Service"}, titlesOf(g.evaluateExtracurricular(p)))
}

func TestEvaluateParentEngagement_AllBranches(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.ParentEngagement.CommunicationFrequency = FrequencyHigh
	p.ParentEngagement.HomeworkSupport = SkillExcellent
	p.ParentEngagement.ConcernsRaised = []string{"homework load", "screen time"}

	points := g.evaluateParentEngagement(p)
	assert.Equal(t, []string{
		"Strong Parent Partnership",
		"Homework Support",
		"Addressing Parent Concerns",
	}, titlesOf(points))
	assert.Equal(t, "Let's discuss your concerns about: homework load, screen time", points[2].Content)

	p.ParentEngagement.CommunicationFrequency = FrequencyLow
	p.ParentEngagement.HomeworkSupport = SkillNeedsImprovement
	p.ParentEngagement.ConcernsRaised = nil

	points = g.evaluateParentEngagement(p)
	assert.Equal(t, []string{
		"Increasing Communication",
		"Homework Partnership",
	}, titlesOf(points))
	assert.True(t, points[0].ActionRequired)
	assert.True(t, points[1].ActionRequired)
}

func TestEvaluateGoals_AllBranches(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.Goals.ShortTerm = []string{"improve handwriting"}
	p.Goals.LongTerm = []string{"read 20 books"}
	p.TeacherNotes.RecommendedActions = []string{"daily reading log"}
	p.TeacherNotes.MotivationLevel = FrequencyLow

	points := g.evaluateGoals(p)
	assert.Equal(t, []string{
		"Short-term Goals Progress",
		"Long-term Vision",
		"Action Plan",
		"Motivation Strategies",
	}, titlesOf(points))

	assert.Equal(t, CategoryGoals, points[0].Category)
	assert.Equal(t, CategoryRecommendations, points[2].Category)
	assert.Equal(t, CategoryRecommendations, points[3].Category)

	// Unset motivation defaults to medium and produces nothing.
	p.TeacherNotes.MotivationLevel = ""
	points = g.evaluateGoals(p)
	assert.Equal(t, []string{
		"Short-term Goals Progress",
		"Long-term Vision",
		"Action Plan",
	}, titlesOf(points))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Math", titleCase("math"))
	assert.Equal(t, "Social_Studies", titleCase("social_studies"))
	assert.Equal(t, "Language Arts", titleCase("language arts"))
	assert.Equal(t, "", titleCase(""))
	assert.Equal(t, "Science", titleCase("SCIENCE"))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "97.5%", formatRate(0.975))
	assert.Equal(t, "100.0%", formatRate(1))
	assert.Equal(t, "0.0%", formatRate(0))
}
