// Package presenter formats briefings for delivery outside the JSON API.
// The agenda presenter renders a briefing as the printable text file
// teachers take into the meeting room.
package presenter

import (
	"fmt"
	"strings"

	"github.com/brightclass/conference-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEETING AGENDA PRESENTER
// Печатная повестка встречи: шапка с обзором, тезисы по трём секциям с
// маркерами приоритета и финальная рекомендация.
// ══════════════════════════════════════════════════════════════════════════════

// Priority markers used in the printed agenda.
const (
	markerHighPriority   = "🔴"
	markerMediumPriority = "🟡"
	markerLowPriority    = "🟢"
	markerActionRequired = "⚡"
)

// AgendaPresenter renders briefings as plain-text meeting agendas.
type AgendaPresenter struct{}

// NewAgendaPresenter creates a new agenda presenter.
func NewAgendaPresenter() *AgendaPresenter {
	return &AgendaPresenter{}
}

// FormatAgenda renders the full agenda text for a briefing.
func (p *AgendaPresenter) FormatAgenda(b query.BriefingDTO) string {
	summary := b.MeetingSummary

	var sb strings.Builder
	sb.WriteString("\nPARENT-TEACHER MEETING AGENDA\n")
	fmt.Fprintf(&sb, "Student: %s (Grade %s)\n", summary.StudentName, summary.Grade)
	fmt.Fprintf(&sb, "Date: %s\n\n", summary.MeetingDate)

	sb.WriteString("MEETING OVERVIEW:\n")
	fmt.Fprintf(&sb, "• Total Discussion Points: %d\n", summary.TotalTalkingPoints)
	fmt.Fprintf(&sb, "• High Priority Items: %d\n", summary.HighPriorityItems)
	fmt.Fprintf(&sb, "• Action Items: %d\n\n", summary.ActionItems)

	sb.WriteString("AGENDA ITEMS:\n\n")

	sb.WriteString("1. ACADEMIC PERFORMANCE\n")
	writePoints(&sb, b.TalkingPointsByCategory["academic"])

	sb.WriteString("\n2. BEHAVIORAL & SOCIAL DEVELOPMENT\n")
	writePoints(&sb, b.TalkingPointsByCategory["behavioral"])
	writePoints(&sb, b.TalkingPointsByCategory["social"])

	sb.WriteString("\n3. GOALS & ACTION PLAN\n")
	writePoints(&sb, b.TalkingPointsByCategory["goals"])
	writePoints(&sb, b.TalkingPointsByCategory["recommendations"])

	fmt.Fprintf(&sb, "\nOVERALL RECOMMENDATION:\n%s\n", summary.OverallRecommendation)
	sb.WriteString("\nLEGEND: 🔴 High Priority | 🟡 Medium Priority | 🟢 Low Priority | ⚡ Action Required")

	return sb.String()
}

// writePoints appends one category's points as agenda lines.
func writePoints(sb *strings.Builder, points []query.CategoryPointDTO) {
	for _, point := range points {
		action := ""
		if point.ActionRequired {
			action = " " + markerActionRequired
		}
		fmt.Fprintf(sb, "   %s %s%s\n", priorityMarker(point.Priority), point.Title, action)
	}
}

// priorityMarker maps a priority level to its agenda glyph.
func priorityMarker(priority string) string {
	switch priority {
	case "high":
		return markerHighPriority
	case "medium":
		return markerMediumPriority
	default:
		return markerLowPriority
	}
}

// AgendaFilename builds the download filename for an agenda.
// Colons and spaces in the meeting date are replaced so the name stays
// filesystem-safe: meeting_agenda_Aruzhan_Satpayeva_2026-03-12.txt.
func AgendaFilename(firstName, lastName, meetingDate string) string {
	date := strings.ReplaceAll(meetingDate, ":", "-")
	date = strings.ReplaceAll(date, " ", "_")
	return fmt.Sprintf("meeting_agenda_%s_%s_%s.txt", firstName, lastName, date)
}
