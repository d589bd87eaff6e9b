package meeting

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// BRIEFING
// Итог работы движка: сводка встречи, тезисы по категориям, план действий.
// ══════════════════════════════════════════════════════════════════════════════

// Порог GPA для рекомендации "performing well overall". Единый для всех
// классов, в отличие от нормативов оценщиков.
const recommendationGPAThreshold = 3.5

// Минимум критичных тезисов (высокий приоритет + требуется действие),
// после которого рекомендуется комплексный план вмешательства.
const interventionThreshold = 3

// MeetingSummary - сводка для шапки брифинга и повестки.
type MeetingSummary struct {
	// StudentName - полное имя ученика.
	StudentName string

	// Grade - класс обучения, как записан в карточке.
	Grade string

	// MeetingDate - дата подготовки брифинга.
	MeetingDate time.Time

	// TotalTalkingPoints - общее количество тезисов.
	TotalTalkingPoints int

	// HighPriorityItems - количество тезисов высокого приоритета.
	HighPriorityItems int

	// ActionItems - количество тезисов, требующих действий.
	ActionItems int

	// OverallRecommendation - итоговая рекомендация учителю.
	OverallRecommendation string
}

// DataSummary - ключевые показатели ученика одним взглядом.
// Пустые текстовые поля отражаются как "unknown", а не значениями
// по умолчанию оценщиков.
type DataSummary struct {
	CurrentGPA             float64
	AttendanceRate         float64
	ParticipationLevel     string
	ExtracurricularCount   int
	LearningStyle          string
	CommunicationFrequency string
}

// Briefing - полный результат подготовки к родительской встрече.
type Briefing struct {
	// Summary - сводка встречи.
	Summary MeetingSummary

	// PointsByCategory - тезисы, сгруппированные по категориям.
	// Внутри категории сохраняется порядок по приоритету.
	PointsByCategory map[Category][]TalkingPoint

	// ActionItems - тезисы, требующие действий, по убыванию приоритета.
	ActionItems []TalkingPoint

	// StrengthsToCelebrate - сильные стороны для позитивной части встречи.
	StrengthsToCelebrate []TalkingPoint

	// DataSummary - показатели ученика.
	DataSummary DataSummary
}

// HasCriticalItems сообщает, есть ли в брифинге тезисы высокого
// приоритета, требующие действий.
func (b *Briefing) HasCriticalItems() bool {
	for _, point := range b.ActionItems {
		if point.Priority == PriorityHigh {
			return true
		}
	}
	return false
}

// buildSummary считает агрегаты по тезисам и выбирает общую рекомендацию.
func (g *Generator) buildSummary(p *StudentProfile, points []TalkingPoint) MeetingSummary {
	var high, action, critical int
	for _, point := range points {
		if point.Priority == PriorityHigh {
			high++
		}
		if point.ActionRequired {
			action++
		}
		if point.Priority == PriorityHigh && point.ActionRequired {
			critical++
		}
	}

	return MeetingSummary{
		StudentName:           p.PersonalInfo.FullName(),
		Grade:                 p.PersonalInfo.Grade,
		MeetingDate:           time.Now(),
		TotalTalkingPoints:    len(points),
		HighPriorityItems:     high,
		ActionItems:           action,
		OverallRecommendation: overallRecommendation(p.PersonalInfo.FirstName, p.Academic.GPA, critical),
	}
}

// overallRecommendation выбирает итоговую рекомендацию по количеству
// критичных тезисов и GPA. Ветки проверяются сверху вниз, первая
// подошедшая выигрывает.
func overallRecommendation(first string, gpa float64, critical int) string {
	switch {
	case critical >= interventionThreshold:
		return first + " would benefit from increased support and intervention in multiple areas. Let's create a comprehensive action plan."
	case gpa >= recommendationGPAThreshold && critical <= 1:
		return first + " is performing well overall. Continue current strategies while addressing minor areas for growth."
	case critical == 0:
		return first + " is doing excellent work. Focus on maintaining current performance and exploring enrichment opportunities."
	default:
		return first + " shows good potential. Targeted support in key areas will help maximize success."
	}
}

// buildDataSummary собирает показатели как они записаны в профиле,
// без интерпретации оценщиками.
func buildDataSummary(p *StudentProfile) DataSummary {
	return DataSummary{
		CurrentGPA:             p.Academic.GPA,
		AttendanceRate:         p.Behavioral.Attendance.Rate,
		ParticipationLevel:     stringOrUnknown(string(p.Behavioral.Participation.Level)),
		ExtracurricularCount:   p.Extracurricular.TotalActivities(),
		LearningStyle:          stringOrUnknown(p.Academic.LearningStyle),
		CommunicationFrequency: stringOrUnknown(string(p.ParentEngagement.CommunicationFrequency)),
	}
}

func stringOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
