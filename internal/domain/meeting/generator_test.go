package meeting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validProfile() *StudentProfile {
	return &StudentProfile{
		PersonalInfo: PersonalInfo{
			FirstName: "Aruzhan",
			LastName:  "Bekova",
			Grade:     "5",
		},
	}
}

func TestGenerate_MissingRequiredFields(t *testing.T) {
	g := NewGenerator()

	p := validProfile()
	p.PersonalInfo.FirstName = ""
	_, err := g.Generate(p)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequiredField))

	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "firstName", missing.Field)

	p = validProfile()
	p.PersonalInfo.LastName = ""
	_, err = g.Generate(p)
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "lastName", missing.Field)

	p = validProfile()
	p.PersonalInfo.Grade = ""
	_, err = g.Generate(p)
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "grade", missing.Field)
}

func TestGenerate_ExcellentAcademicPerformance(t *testing.T) {
	p := validProfile()
	p.Academic.GPA = 3.9

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	academic := briefing.PointsByCategory[CategoryAcademic]
	assert.Len(t, academic, 1)
	point := academic[0]
	assert.Equal(t, PriorityHigh, point.Priority)
	assert.Equal(t, "Excellent Academic Performance", point.Title)
	assert.False(t, point.ActionRequired)
	assert.Equal(t, 3.9, point.SupportingData["gpa"])
	assert.Equal(t, 3.7, point.SupportingData["expectation"])
}

func TestGenerate_AttendanceConcerns(t *testing.T) {
	p := validProfile()
	p.Behavioral.Attendance.Rate = 0.85

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	behavioral := briefing.PointsByCategory[CategoryBehavioral]
	assert.Len(t, behavioral, 1)
	point := behavioral[0]
	assert.Equal(t, PriorityHigh, point.Priority)
	assert.Equal(t, "Attendance Concerns", point.Title)
	assert.True(t, point.ActionRequired)
	assert.Contains(t, point.Content, "85.0%")
}

func TestGenerate_ExtracurricularOpportunities(t *testing.T) {
	p := validProfile()

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	social := briefing.PointsByCategory[CategorySocial]
	assert.Len(t, social, 1)
	point := social[0]
	assert.Equal(t, PriorityLow, point.Priority)
	assert.Equal(t, "Extracurricular Opportunities", point.Title)
	assert.False(t, point.ActionRequired)
}

func TestGenerate_InterventionRecommendation(t *testing.T) {
	// Three critical points: low GPA, poor attendance, parent concerns.
	p := validProfile()
	p.Academic.GPA = 2.0
	p.Behavioral.Attendance.Rate = 0.85
	p.ParentEngagement.ConcernsRaised = []string{"reading progress"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	assert.Equal(t,
		"Aruzhan would benefit from increased support and intervention in multiple areas. Let's create a comprehensive action plan.",
		briefing.Summary.OverallRecommendation)
	assert.Equal(t, 3, briefing.Summary.HighPriorityItems)
	assert.Equal(t, 3, briefing.Summary.ActionItems)
	assert.Equal(t, 4, briefing.Summary.TotalTalkingPoints)
}

func TestGenerate_ContinueStrategiesRecommendation(t *testing.T) {
	p := validProfile()
	p.Academic.GPA = 3.9
	p.Behavioral.Attendance.Rate = 0.99
	p.Extracurricular.Sports = []string{"football"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	assert.Equal(t,
		"Aruzhan is performing well overall. Continue current strategies while addressing minor areas for growth.",
		briefing.Summary.OverallRecommendation)
}

func TestGenerate_ExcellentWorkRecommendation(t *testing.T) {
	// No critical points, but GPA below the 3.5 recommendation threshold.
	p := validProfile()
	p.Academic.GPA = 3.4
	p.Behavioral.Attendance.Rate = 0.99
	p.Extracurricular.Sports = []string{"football"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	assert.Equal(t,
		"Aruzhan is doing excellent work. Focus on maintaining current performance and exploring enrichment opportunities.",
		briefing.Summary.OverallRecommendation)
}

func TestGenerate_TargetedSupportRecommendation(t *testing.T) {
	// Two critical points: not enough for intervention, too many for praise.
	p := validProfile()
	p.Academic.GPA = 2.0
	p.Behavioral.Attendance.Rate = 0.85
	p.Extracurricular.Sports = []string{"football"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	assert.Equal(t,
		"Aruzhan shows good potential. Targeted support in key areas will help maximize success.",
		briefing.Summary.OverallRecommendation)
}

func TestGenerate_AllCategoriesAlwaysPresent(t *testing.T) {
	briefing, err := NewGenerator().Generate(validProfile())
	assert.NoError(t, err)

	assert.Len(t, briefing.PointsByCategory, 5)
	for _, category := range AllCategories {
		_, ok := briefing.PointsByCategory[category]
		assert.True(t, ok, "category %s must be present", category)
	}
	assert.Empty(t, briefing.PointsByCategory[CategoryRecommendations])
}

func TestGenerate_PriorityOrderIsStable(t *testing.T) {
	// Five medium points from five different evaluators plus one high point.
	// StrengthsToCelebrate filters the globally sorted list, so it exposes
	// the tie-breaking order directly.
	p := validProfile()
	p.Academic.GPA = 3.3
	p.Academic.Strengths = []string{"mathematics"}
	p.Behavioral.Participation.Level = FrequencyHigh
	p.Behavioral.Attendance.Rate = 0.95
	p.Extracurricular.Achievements = []string{"Spelling Bee Winner"}
	p.Goals.ShortTerm = []string{"improve handwriting"}
	p.Goals.LongTerm = []string{"read 20 books"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	var strengths []string
	for _, point := range briefing.StrengthsToCelebrate {
		strengths = append(strengths, point.Title)
	}
	assert.Equal(t, []string{
		"Solid Academic Performance",
		"Academic Strengths",
		"Excellent Class Participation",
		"Recognition and Achievements",
		"Long-term Vision",
	}, strengths)

	assert.Len(t, briefing.ActionItems, 1)
	assert.Equal(t, "Short-term Goals Progress", briefing.ActionItems[0].Title)

	// Buckets are filled from the sorted list: medium before low.
	social := briefing.PointsByCategory[CategorySocial]
	assert.Len(t, social, 2)
	assert.Equal(t, "Recognition and Achievements", social[0].Title)
	assert.Equal(t, "Extracurricular Opportunities", social[1].Title)
}

func TestGenerate_SubjectsIterateAlphabetically(t *testing.T) {
	p := validProfile()
	p.Academic.GPA = 3.9
	p.Academic.Subjects = map[string]SubjectStanding{
		"science": {Letter: "B+", Score: 88, Trend: TrendImproving},
		"art":     {Letter: "A-", Score: 91, Trend: TrendImproving},
		"math":    {Letter: "B", Score: 85, Trend: TrendImproving},
	}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	academic := briefing.PointsByCategory[CategoryAcademic]
	assert.Len(t, academic, 4)
	assert.Equal(t, "Excellent Academic Performance", academic[0].Title)
	assert.Equal(t, "Improvement in Art", academic[1].Title)
	assert.Equal(t, "Improvement in Math", academic[2].Title)
	assert.Equal(t, "Improvement in Science", academic[3].Title)
}

func TestGenerate_UnknownGradeFallsBackToGrade5(t *testing.T) {
	p := validProfile()
	p.PersonalInfo.Grade = "9"
	p.Academic.GPA = 3.65

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	academic := briefing.PointsByCategory[CategoryAcademic]
	assert.Len(t, academic, 1)
	assert.Equal(t, "Solid Academic Performance", academic[0].Title)
	assert.Equal(t, 3.2, academic[0].SupportingData["expectation"])
}

func TestGenerate_StrengthsExcludeActionAndLowPriority(t *testing.T) {
	p := validProfile()
	p.Academic.GPA = 3.3
	p.Academic.AreasForImprovement = []string{"spelling"}
	p.Behavioral.Attendance.Rate = 0.99
	p.Extracurricular.Sports = []string{"football"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	// Solid Academic Performance is the only medium point without action.
	assert.Len(t, briefing.StrengthsToCelebrate, 1)
	assert.Equal(t, "Solid Academic Performance", briefing.StrengthsToCelebrate[0].Title)

	// Growth Opportunities is medium but requires action.
	assert.Len(t, briefing.ActionItems, 1)
	assert.Equal(t, "Growth Opportunities", briefing.ActionItems[0].Title)
}

func TestGenerate_DeterministicForSameProfile(t *testing.T) {
	p := validProfile()
	p.Academic.GPA = 3.1
	p.Academic.Subjects = map[string]SubjectStanding{
		"math":    {Letter: "C", Score: 72, Trend: TrendDeclining},
		"science": {Letter: "A", Score: 94, Trend: TrendImproving},
	}
	p.Academic.Strengths = []string{"curiosity"}
	p.Behavioral.Participation.Level = FrequencyLow
	p.Behavioral.Attendance.Rate = 0.93
	p.Behavioral.Attendance.TardyCount = 7
	p.Goals.ShortTerm = []string{"finish science project"}
	p.TeacherNotes.RecommendedActions = []string{"weekly check-ins"}

	g := NewGenerator()
	first, err := g.Generate(p)
	assert.NoError(t, err)
	second, err := g.Generate(p)
	assert.NoError(t, err)

	assert.Equal(t, first.PointsByCategory, second.PointsByCategory)
	assert.Equal(t, first.ActionItems, second.ActionItems)
	assert.Equal(t, first.StrengthsToCelebrate, second.StrengthsToCelebrate)
	assert.Equal(t, first.DataSummary, second.DataSummary)
	assert.Equal(t, first.Summary.OverallRecommendation, second.Summary.OverallRecommendation)
	assert.Equal(t, first.Summary.TotalTalkingPoints, second.Summary.TotalTalkingPoints)
	assert.WithinDuration(t, first.Summary.MeetingDate, second.Summary.MeetingDate, time.Minute)
}

func TestGenerate_DataSummaryReportsRawValues(t *testing.T) {
	p := validProfile()
	p.Academic.GPA = 3.2
	p.Behavioral.Attendance.Rate = 0.94
	p.Extracurricular.Sports = []string{"chess"}
	p.Extracurricular.Clubs = []string{"robotics", "drama"}

	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	summary := briefing.DataSummary
	assert.Equal(t, 3.2, summary.CurrentGPA)
	assert.Equal(t, 0.94, summary.AttendanceRate)
	assert.Equal(t, 3, summary.ExtracurricularCount)

	// Empty enum fields surface as "unknown", not as evaluator defaults.
	assert.Equal(t, "unknown", summary.ParticipationLevel)
	assert.Equal(t, "unknown", summary.LearningStyle)
	assert.Equal(t, "unknown", summary.CommunicationFrequency)
}

func TestGenerate_SummaryIdentity(t *testing.T) {
	p := validProfile()
	briefing, err := NewGenerator().Generate(p)
	assert.NoError(t, err)

	assert.Equal(t, "Aruzhan Bekova", briefing.Summary.StudentName)
	assert.Equal(t, "5", briefing.Summary.Grade)
	assert.WithinDuration(t, time.Now(), briefing.Summary.MeetingDate, time.Minute)
}

func TestWithExpectations_OverridesThresholds(t *testing.T) {
	table := ExpectationTable{
		"5": {GPAExcellent: 2.0, GPAGood: 1.5, AttendanceGood: 0.9},
	}
	p := validProfile()
	p.Academic.GPA = 2.5

	briefing, err := NewGenerator(WithExpectations(table)).Generate(p)
	assert.NoError(t, err)

	academic := briefing.PointsByCategory[CategoryAcademic]
	assert.Len(t, academic, 1)
	assert.Equal(t, "Excellent Academic Performance", academic[0].Title)
	assert.Equal(t, 2.0, academic[0].SupportingData["expectation"])
}
