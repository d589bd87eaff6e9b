package meeting

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// BEHAVIORAL EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// Пороги посещаемости и опозданий едины для всех классов.
const (
	attendanceExcellent = 0.98
	attendanceConcern   = 0.90
	tardyTolerance      = 5
)

// evaluateBehavioral формирует тезисы по участию в работе класса,
// социальным навыкам, посещаемости и пунктуальности.
func (g *Generator) evaluateBehavioral(p *StudentProfile) []TalkingPoint {
	points := make([]TalkingPoint, 0, 4)
	first := p.PersonalInfo.FirstName

	participation := p.Behavioral.Participation.Level.OrDefault()
	switch participation {
	case FrequencyHigh:
		points = append(points, TalkingPoint{
			Category: CategoryBehavioral,
			Priority: PriorityMedium,
			Title:    "Excellent Class Participation",
			Content:  fmt.Sprintf("%s demonstrates excellent class participation and engagement.", first),
			SupportingData: map[string]interface{}{
				"participation_level": string(participation),
			},
		})
	case FrequencyLow:
		points = append(points, TalkingPoint{
			Category: CategoryBehavioral,
			Priority: PriorityMedium,
			Title:    "Encouraging Participation",
			Content:  fmt.Sprintf("We're working on encouraging %s to participate more actively in class discussions.", first),
			SupportingData: map[string]interface{}{
				"participation_level": string(participation),
			},
			ActionRequired: true,
		})
	}

	peer := p.Behavioral.SocialSkills.PeerInteraction.OrDefault()
	teamwork := p.Behavioral.SocialSkills.Teamwork.OrDefault()
	switch {
	case peer == SkillExcellent && teamwork == SkillExcellent:
		points = append(points, TalkingPoint{
			Category: CategorySocial,
			Priority: PriorityMedium,
			Title:    "Strong Social Skills",
			Content:  fmt.Sprintf("%s demonstrates excellent peer interaction and teamwork abilities.", first),
			SupportingData: map[string]interface{}{
				"peer_interaction": string(peer),
				"teamwork":         string(teamwork),
			},
		})
	case peer == SkillNeedsImprovement || teamwork == SkillNeedsImprovement:
		points = append(points, TalkingPoint{
			Category: CategorySocial,
			Priority: PriorityMedium,
			Title:    "Social Skills Development",
			Content:  fmt.Sprintf("We're focusing on developing %s's social interaction skills through group activities.", first),
			SupportingData: map[string]interface{}{
				"peer_interaction": string(peer),
				"teamwork":         string(teamwork),
			},
			ActionRequired: true,
		})
	}

	rate := p.Behavioral.Attendance.Rate
	tardy := p.Behavioral.Attendance.TardyCount
	switch {
	case rate >= attendanceExcellent:
		points = append(points, TalkingPoint{
			Category: CategoryBehavioral,
			Priority: PriorityLow,
			Title:    "Excellent Attendance",
			Content:  fmt.Sprintf("%s has excellent attendance with %s attendance rate.", first, formatRate(rate)),
			SupportingData: map[string]interface{}{
				"attendance_rate": rate,
				"tardy_count":     tardy,
			},
		})
	case rate < attendanceConcern:
		points = append(points, TalkingPoint{
			Category: CategoryBehavioral,
			Priority: PriorityHigh,
			Title:    "Attendance Concerns",
			Content:  fmt.Sprintf("Attendance needs attention: %s rate. Regular attendance is crucial for academic success.", formatRate(rate)),
			SupportingData: map[string]interface{}{
				"attendance_rate": rate,
				"tardy_count":     tardy,
			},
			ActionRequired: true,
		})
	}

	if tardy > tardyTolerance {
		points = append(points, TalkingPoint{
			Category: CategoryBehavioral,
			Priority: PriorityMedium,
			Title:    "Punctuality",
			Content:  fmt.Sprintf("%s has been tardy %d times. Let's work together on morning routines.", first, tardy),
			SupportingData: map[string]interface{}{
				"tardy_count": tardy,
			},
			ActionRequired: true,
		})
	}

	return points
}

// formatRate записывает долю 0.0-1.0 в проценты: 0.975 -> "97.5%".
func formatRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
