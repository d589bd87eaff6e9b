package presenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/application/query"
)

func sampleBriefing() query.BriefingDTO {
	return query.BriefingDTO{
		MeetingSummary: query.MeetingSummaryDTO{
			StudentName:           "Aruzhan Satpayeva",
			Grade:                 "5",
			MeetingDate:           "2026-03-12 15:00",
			TotalTalkingPoints:    4,
			HighPriorityItems:     1,
			ActionItems:           2,
			OverallRecommendation: "Focus on mathematics support while celebrating reading progress.",
		},
		TalkingPointsByCategory: map[string][]query.CategoryPointDTO{
			"academic": {
				{Priority: "high", Title: "Mathematics needs attention", ActionRequired: true},
				{Priority: "low", Title: "Strong reading comprehension"},
			},
			"behavioral": {
				{Priority: "medium", Title: "Occasional tardiness", ActionRequired: true},
			},
			"goals": {
				{Priority: "medium", Title: "Set short-term math goal"},
			},
		},
	}
}

func TestFormatAgenda(t *testing.T) {
	agenda := NewAgendaPresenter().FormatAgenda(sampleBriefing())

	assert.Contains(t, agenda, "PARENT-TEACHER MEETING AGENDA")
	assert.Contains(t, agenda, "Student: Aruzhan Satpayeva (Grade 5)")
	assert.Contains(t, agenda, "• Total Discussion Points: 4")
	assert.Contains(t, agenda, "• High Priority Items: 1")
	assert.Contains(t, agenda, "1. ACADEMIC PERFORMANCE")
	assert.Contains(t, agenda, "🔴 Mathematics needs attention ⚡")
	assert.Contains(t, agenda, "🟢 Strong reading comprehension")
	assert.Contains(t, agenda, "2. BEHAVIORAL & SOCIAL DEVELOPMENT")
	assert.Contains(t, agenda, "🟡 Occasional tardiness ⚡")
	assert.Contains(t, agenda, "3. GOALS & ACTION PLAN")
	assert.Contains(t, agenda, "OVERALL RECOMMENDATION:\nFocus on mathematics support")
	assert.True(t, strings.HasSuffix(agenda,
		"LEGEND: 🔴 High Priority | 🟡 Medium Priority | 🟢 Low Priority | ⚡ Action Required"))
}

func TestFormatAgenda_SectionOrderIsStable(t *testing.T) {
	agenda := NewAgendaPresenter().FormatAgenda(sampleBriefing())

	academic := strings.Index(agenda, "1. ACADEMIC PERFORMANCE")
	behavioral := strings.Index(agenda, "2. BEHAVIORAL & SOCIAL DEVELOPMENT")
	goals := strings.Index(agenda, "3. GOALS & ACTION PLAN")

	assert.True(t, academic < behavioral && behavioral < goals)
}

func TestAgendaFilename(t *testing.T) {
	name := AgendaFilename("Aruzhan", "Satpayeva", "2026-03-12 15:00")
	assert.Equal(t, "meeting_agenda_Aruzhan_Satpayeva_2026-03-12_15-00.txt", name)
}
