package meeting

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARENT ENGAGEMENT EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// evaluateParentEngagement формирует тезисы по партнёрству с родителями:
// частота общения, помощь с домашними заданиями, озвученные опасения.
// Все тезисы попадают в категорию целей.
func (g *Generator) evaluateParentEngagement(p *StudentProfile) []TalkingPoint {
	points := make([]TalkingPoint, 0, 3)
	first := p.PersonalInfo.FirstName

	frequency := p.ParentEngagement.CommunicationFrequency.OrDefault()
	switch frequency {
	case FrequencyHigh:
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityLow,
			Title:    "Strong Parent Partnership",
			Content:  fmt.Sprintf("Your consistent communication and involvement greatly supports %s's success.", first),
			SupportingData: map[string]interface{}{
				"communication_frequency": string(frequency),
			},
		})
	case FrequencyLow:
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityMedium,
			Title:    "Increasing Communication",
			Content:  fmt.Sprintf("More frequent communication between home and school would benefit %s's progress.", first),
			SupportingData: map[string]interface{}{
				"communication_frequency": string(frequency),
			},
			ActionRequired: true,
		})
	}

	support := p.ParentEngagement.HomeworkSupport.OrDefault()
	switch support {
	case SkillExcellent:
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityLow,
			Title:    "Homework Support",
			Content:  fmt.Sprintf("Thank you for providing excellent homework support. It shows in %s's consistent work quality.", first),
			SupportingData: map[string]interface{}{
				"homework_support": string(support),
			},
		})
	case SkillNeedsImprovement:
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityMedium,
			Title:    "Homework Partnership",
			Content:  fmt.Sprintf("Let's discuss strategies for supporting %s's homework routine at home.", first),
			SupportingData: map[string]interface{}{
				"homework_support": string(support),
			},
			ActionRequired: true,
		})
	}

	if len(p.ParentEngagement.ConcernsRaised) > 0 {
		points = append(points, TalkingPoint{
			Category: CategoryGoals,
			Priority: PriorityHigh,
			Title:    "Addressing Parent Concerns",
			Content:  fmt.Sprintf("Let's discuss your concerns about: %s", strings.Join(p.ParentEngagement.ConcernsRaised, ", ")),
			SupportingData: map[string]interface{}{
				"concerns_raised": p.ParentEngagement.ConcernsRaised,
			},
			ActionRequired: true,
		})
	}

	return points
}
