package gemini

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROMPT BUILDER
// The model narrates a briefing the rule engine already produced. The prompt
// therefore carries the briefing verbatim and asks only for prose on top.
// ══════════════════════════════════════════════════════════════════════════════

// MeetingSummaryInput carries everything the prompt needs. TalkingPointsJSON
// is the talking_points_by_category document, pre-serialized by the caller.
type MeetingSummaryInput struct {
	FirstName          string
	LastName           string
	Grade              string
	CurrentGPA         float64
	AttendanceRate     float64
	LearningStyle      string
	ParticipationLevel string
	TalkingPointsJSON  string
	Notes              string
}

// buildMeetingSummaryPrompt renders the meeting summary prompt. Wording is
// stable: the five numbered asks and the closing tone line are part of the
// product, not decoration.
func buildMeetingSummaryPrompt(in MeetingSummaryInput) string {
	var b strings.Builder

	b.WriteString("As an experienced teacher, create a comprehensive parent-teacher meeting summary for:\n")
	fmt.Fprintf(&b, "Student: %s %s (Grade %s)\n\n", in.FirstName, in.LastName, in.Grade)

	b.WriteString("Student Data Summary:\n")
	fmt.Fprintf(&b, "- Current GPA: %.2f\n", in.CurrentGPA)
	fmt.Fprintf(&b, "- Attendance Rate: %.2f\n", in.AttendanceRate)
	fmt.Fprintf(&b, "- Learning Style: %s\n", orNA(in.LearningStyle))
	fmt.Fprintf(&b, "- Participation Level: %s\n\n", orNA(in.ParticipationLevel))

	b.WriteString("Key Talking Points:\n")
	b.WriteString(in.TalkingPointsJSON)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Additional Teacher Notes: %s\n\n", in.Notes)

	b.WriteString("Please create:\n")
	b.WriteString("1. A warm, professional meeting summary\n")
	b.WriteString("2. Key strengths to celebrate\n")
	b.WriteString("3. Areas for growth with specific strategies\n")
	b.WriteString("4. Action items for parents and teacher\n")
	b.WriteString("5. Next steps and follow-up timeline\n\n")

	b.WriteString("Keep the tone positive, constructive, and focused on the student's success.\n")

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
