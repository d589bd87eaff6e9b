package meeting

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXTRACURRICULAR EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

const (
	balancedActivityCount = 3
	volunteerRecognition  = 10
)

// evaluateExtracurricular формирует тезисы по секциям, кружкам, достижениям
// и волонтёрству. Все тезисы относятся к социальной категории.
func (g *Generator) evaluateExtracurricular(p *StudentProfile) []TalkingPoint {
	points := make([]TalkingPoint, 0, 3)
	first := p.PersonalInfo.FirstName
	total := p.Extracurricular.TotalActivities()

	switch {
	case total >= balancedActivityCount:
		points = append(points, TalkingPoint{
			Category: CategorySocial,
			Priority: PriorityMedium,
			Title:    "Well-Rounded Engagement",
			Content:  fmt.Sprintf("%s is actively involved in %d extracurricular activities, showing great balance.", first, total),
			SupportingData: map[string]interface{}{
				"sports":           p.Extracurricular.Sports,
				"clubs":            p.Extracurricular.Clubs,
				"total_activities": total,
			},
		})
	case total == 0:
		points = append(points, TalkingPoint{
			Category: CategorySocial,
			Priority: PriorityLow,
			Title:    "Extracurricular Opportunities",
			Content:  fmt.Sprintf("Consider encouraging %s to explore extracurricular activities to develop new interests and skills.", first),
			SupportingData: map[string]interface{}{
				"total_activities": total,
			},
		})
	}

	if len(p.Extracurricular.Achievements) > 0 {
		points = append(points, TalkingPoint{
			Category: CategorySocial,
			Priority: PriorityMedium,
			Title:    "Recognition and Achievements",
			Content:  fmt.Sprintf("%s has earned recognition: %s", first, strings.Join(p.Extracurricular.Achievements, ", ")),
			SupportingData: map[string]interface{}{
				"achievements": p.Extracurricular.Achievements,
			},
		})
	}

	if p.Extracurricular.VolunteerHours > volunteerRecognition {
		points = append(points, TalkingPoint{
			Category: CategorySocial,
			Priority: PriorityMedium,
			Title:    "Community Service",
			Content:  fmt.Sprintf("%s has contributed %d volunteer hours, showing strong community engagement.", first, p.Extracurricular.VolunteerHours),
			SupportingData: map[string]interface{}{
				"volunteer_hours": p.Extracurricular.VolunteerHours,
			},
		})
	}

	return points
}
