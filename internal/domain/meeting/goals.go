package meeting

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOALS & PROGRESS EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// evaluateGoals формирует тезисы по целям ученика и заметкам учителя.
// Краткосрочные цели всегда требуют обсуждения, поэтому идут с высоким
// приоритетом; рекомендации учителя превращаются в план действий.
func (g *Generator) evaluateGoals(p *StudentProfile) []TalkingPoint {
	points := make([]TalkingPoint, 0, 3)
	first := p.PersonalInfo.FirstName

	if len(p.Goals.ShortTerm) > 0 {
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityHigh,
			Title:    "Short-term Goals Progress",
			Content:  fmt.Sprintf("Let's review progress on %s's short-term goals: %s", first, strings.Join(p.Goals.ShortTerm, ", ")),
			SupportingData: map[string]interface{}{
				"short_term_goals": p.Goals.ShortTerm,
			},
			ActionRequired: true,
		})
	}

	if len(p.Goals.LongTerm) > 0 {
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityMedium,
			Title:    "Long-term Vision",
			Content:  fmt.Sprintf("Working towards long-term goals: %s", strings.Join(p.Goals.LongTerm, ", ")),
			SupportingData: map[string]interface{}{
				"long_term_goals": p.Goals.LongTerm,
			},
		})
	}

	if len(p.TeacherNotes.RecommendedActions) > 0 {
		points = append(points, TalkingPoint{
			Category: CategoryRecommendations,
			Priority: PriorityHigh,
			Title:    "Action Plan",
			Content:  fmt.Sprintf("Recommended next steps for %s: %s", first, strings.Join(p.TeacherNotes.RecommendedActions, ", ")),
			SupportingData: map[string]interface{}{
				"recommended_actions": p.TeacherNotes.RecommendedActions,
			},
			ActionRequired: true,
		})
	}

	motivation := p.TeacherNotes.MotivationLevel.OrDefault()
	if motivation == FrequencyLow {
		points = append(points, TalkingPoint{
			Category: CategoryRecommendations,
			Priority: PriorityHigh,
			Title:    "Motivation Strategies",
			Content:  fmt.Sprintf("Let's discuss strategies to increase %s's motivation and engagement in learning.", first),
			SupportingData: map[string]interface{}{
				"motivation_level": string(motivation),
			},
			ActionRequired: true,
		})
	}

	return points
}
