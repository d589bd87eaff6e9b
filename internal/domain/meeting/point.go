// Package meeting содержит движок подготовки к родительским встречам.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package meeting

// ══════════════════════════════════════════════════════════════════════════════
// TALKING POINT
// Пункт обсуждения - атомарная рекомендация для встречи с родителями.
// Создаётся оценщиками и после этого не изменяется.
// ══════════════════════════════════════════════════════════════════════════════

// Category классифицирует пункт обсуждения по секции встречи.
type Category string

const (
	// CategoryAcademic - успеваемость.
	CategoryAcademic Category = "academic"
	// CategoryBehavioral - поведение и посещаемость.
	CategoryBehavioral Category = "behavioral"
	// CategorySocial - социальные навыки и внеклассная активность.
	CategorySocial Category = "social"
	// CategoryGoals - цели и партнёрство с родителями.
	CategoryGoals Category = "goals"
	// CategoryRecommendations - рекомендации учителя.
	CategoryRecommendations Category = "recommendations"
)

// AllCategories - канонический порядок категорий в брифинге и повестке.
var AllCategories = []Category{
	CategoryAcademic,
	CategoryBehavioral,
	CategorySocial,
	CategoryGoals,
	CategoryRecommendations,
}

// IsValid проверяет, что категория принадлежит закрытому множеству.
func (c Category) IsValid() bool {
	switch c {
	case CategoryAcademic, CategoryBehavioral, CategorySocial, CategoryGoals, CategoryRecommendations:
		return true
	default:
		return false
	}
}

// Priority определяет важность пункта обсуждения.
type Priority string

const (
	// PriorityHigh - обсудить обязательно.
	PriorityHigh Priority = "high"
	// PriorityMedium - обсудить при наличии времени.
	PriorityMedium Priority = "medium"
	// PriorityLow - упомянуть по возможности.
	PriorityLow Priority = "low"
)

// IsValid проверяет, что приоритет принадлежит закрытому множеству.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// rank возвращает порядковый ключ приоритета для сортировки.
// Меньше - важнее. Неизвестный приоритет уходит в конец.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// TalkingPoint - один пункт обсуждения для встречи с родителями.
type TalkingPoint struct {
	// Category - секция встречи, к которой относится пункт.
	Category Category

	// Priority - важность пункта.
	Priority Priority

	// Title - краткий заголовок для повестки.
	Title string

	// Content - готовая формулировка для разговора с родителями.
	Content string

	// SupportingData - данные, на которых основан пункт
	// (ключи в snake_case, как в API).
	SupportingData map[string]interface{}

	// ActionRequired - требуется ли действие по итогам обсуждения.
	ActionRequired bool
}
