package meeting

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC EVALUATOR
// ══════════════════════════════════════════════════════════════════════════════

// evaluateAcademic формирует тезисы по успеваемости: общий GPA относительно
// нормативов класса, динамика по предметам, сильные стороны и зоны роста.
func (g *Generator) evaluateAcademic(p *StudentProfile) []TalkingPoint {
	points := make([]TalkingPoint, 0, 4)
	first := p.PersonalInfo.FirstName
	exp := g.expectations.ForGrade(p.PersonalInfo.Grade)
	gpa := p.Academic.GPA

	switch {
	case gpa >= exp.GPAExcellent:
		points = append(points, TalkingPoint{
			Category: CategoryAcademic,
			Priority: PriorityHigh,
			Title:    "Excellent Academic Performance",
			Content:  fmt.Sprintf("%s is performing exceptionally well with a GPA of %.2f, which exceeds grade-level expectations.", first, gpa),
			SupportingData: map[string]interface{}{
				"gpa":         gpa,
				"expectation": exp.GPAExcellent,
			},
		})
	case gpa >= exp.GPAGood:
		points = append(points, TalkingPoint{
			Category: CategoryAcademic,
			Priority: PriorityMedium,
			Title:    "Solid Academic Performance",
			Content:  fmt.Sprintf("%s maintains good academic standing with a GPA of %.2f.", first, gpa),
			SupportingData: map[string]interface{}{
				"gpa":         gpa,
				"expectation": exp.GPAGood,
			},
		})
	default:
		points = append(points, TalkingPoint{
			Category: CategoryAcademic,
			Priority: PriorityHigh,
			Title:    "Academic Support Needed",
			Content:  fmt.Sprintf("%s's GPA of %.2f indicates need for additional academic support.", first, gpa),
			SupportingData: map[string]interface{}{
				"gpa":         gpa,
				"expectation": exp.GPAGood,
			},
			ActionRequired: true,
		})
	}

	// Предметы обходим по алфавиту, чтобы порядок тезисов был воспроизводим.
	names := make([]string, 0, len(p.Academic.Subjects))
	for name := range p.Academic.Subjects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		standing := p.Academic.Subjects[name]
		trend := standing.Trend.OrDefault()

		switch {
		case trend == TrendImproving:
			points = append(points, TalkingPoint{
				Category: CategoryAcademic,
				Priority: PriorityMedium,
				Title:    "Improvement in " + titleCase(name),
				Content:  fmt.Sprintf("Great progress in %s with an improving trend. Current grade: %s (%.1f%%)", name, standing.Letter, standing.Score),
				SupportingData: map[string]interface{}{
					"subject": name,
					"trend":   string(trend),
					"score":   standing.Score,
					"grade":   standing.Letter,
				},
			})
		case trend == TrendDeclining && standing.Score < 75:
			points = append(points, TalkingPoint{
				Category: CategoryAcademic,
				Priority: PriorityHigh,
				Title:    "Concerns in " + titleCase(name),
				Content:  fmt.Sprintf("%s performance shows declining trend. Current grade: %s (%.1f%%). Let's discuss intervention strategies.", titleCase(name), standing.Letter, standing.Score),
				SupportingData: map[string]interface{}{
					"subject": name,
					"trend":   string(trend),
					"score":   standing.Score,
					"grade":   standing.Letter,
				},
				ActionRequired: true,
			})
		}
	}

	if len(p.Academic.Strengths) > 0 {
		points = append(points, TalkingPoint{
			Category: CategoryAcademic,
			Priority: PriorityMedium,
			Title:    "Academic Strengths",
			Content:  fmt.Sprintf("%s excels in: %s. We can leverage these strengths in challenging areas.", first, strings.Join(p.Academic.Strengths, ", ")),
			SupportingData: map[string]interface{}{
				"strengths": p.Academic.Strengths,
			},
		})
	}

	if len(p.Academic.AreasForImprovement) > 0 {
		points = append(points, TalkingPoint{
			Category: CategoryAcademic,
			Priority: PriorityMedium,
			Title:    "Growth Opportunities",
			Content:  fmt.Sprintf("Areas where %s can grow: %s", first, strings.Join(p.Academic.AreasForImprovement, ", ")),
			SupportingData: map[string]interface{}{
				"areas_for_improvement": p.Academic.AreasForImprovement,
			},
			ActionRequired: true,
		})
	}

	return points
}

// titleCase переводит название предмета в заголовочный регистр, сохраняя
// разделители: "social_studies" -> "Social_Studies".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
			prevLetter = false
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}
