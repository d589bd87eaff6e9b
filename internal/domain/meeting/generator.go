package meeting

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// GENERATOR
// Оркестратор: прогоняет профиль через оценщики и собирает брифинг.
// ══════════════════════════════════════════════════════════════════════════════

// Generator строит брифинги к родительским встречам. Безопасен для
// конкурентного использования: после создания состояние не меняется.
type Generator struct {
	expectations ExpectationTable
}

// Option настраивает Generator при создании.
type Option func(*Generator)

// WithExpectations заменяет встроенную таблицу нормативов.
func WithExpectations(table ExpectationTable) Option {
	return func(g *Generator) {
		g.expectations = table
	}
}

// NewGenerator создаёт движок с нормативами по умолчанию.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{expectations: DefaultExpectations()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate строит полный брифинг по профилю ученика.
//
// Оценщики запускаются в фиксированном порядке (успеваемость, поведение,
// внеклассная активность, родители, цели), затем тезисы устойчиво
// сортируются по приоритету. Для одного профиля результат всегда один
// и тот же, с точностью до даты встречи.
func (g *Generator) Generate(profile *StudentProfile) (*Briefing, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	points := make([]TalkingPoint, 0, 16)
	points = append(points, g.evaluateAcademic(profile)...)
	points = append(points, g.evaluateBehavioral(profile)...)
	points = append(points, g.evaluateExtracurricular(profile)...)
	points = append(points, g.evaluateParentEngagement(profile)...)
	points = append(points, g.evaluateGoals(profile)...)

	sortByPriority(points)

	return &Briefing{
		Summary:              g.buildSummary(profile, points),
		PointsByCategory:     bucketByCategory(points),
		ActionItems:          filterActionItems(points),
		StrengthsToCelebrate: filterStrengths(points),
		DataSummary:          buildDataSummary(profile),
	}, nil
}

// sortByPriority упорядочивает тезисы по убыванию важности. Сортировка
// устойчивая: внутри одного приоритета сохраняется порядок оценщиков.
func sortByPriority(points []TalkingPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Priority.rank() < points[j].Priority.rank()
	})
}

// bucketByCategory раскладывает тезисы по категориям. Все пять категорий
// присутствуют в результате, даже пустые.
func bucketByCategory(points []TalkingPoint) map[Category][]TalkingPoint {
	buckets := make(map[Category][]TalkingPoint, len(AllCategories))
	for _, category := range AllCategories {
		buckets[category] = []TalkingPoint{}
	}
	for _, point := range points {
		buckets[point.Category] = append(buckets[point.Category], point)
	}
	return buckets
}

// filterActionItems возвращает тезисы, требующие действий.
func filterActionItems(points []TalkingPoint) []TalkingPoint {
	items := []TalkingPoint{}
	for _, point := range points {
		if point.ActionRequired {
			items = append(items, point)
		}
	}
	return items
}

// filterStrengths возвращает тезисы для позитивной части встречи: средний
// приоритет и никаких требуемых действий.
func filterStrengths(points []TalkingPoint) []TalkingPoint {
	strengths := []TalkingPoint{}
	for _, point := range points {
		if point.Priority == PriorityMedium && !point.ActionRequired {
			strengths = append(strengths, point)
		}
	}
	return strengths
}
