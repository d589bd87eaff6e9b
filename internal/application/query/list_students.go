package query

import (
	"context"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENTS QUERY
// Список учеников с фильтрами по классу, учителю и поисковой строке.
// Фильтры взаимоисключающие, приоритет: teacher_id, grade, search.
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsQuery содержит параметры списка учеников.
type ListStudentsQuery struct {
	// Grade - фильтр по классу.
	Grade string

	// TeacherID - фильтр по классному руководителю.
	TeacherID string

	// Search - поиск по имени или фамилии.
	Search string

	// Limit - максимум записей (по умолчанию 50, максимум 200).
	Limit int

	// Offset - смещение для пагинации.
	Offset int

	// IncludeInactive - включать выбывших учеников.
	IncludeInactive bool
}

// Validate проверяет и нормализует параметры запроса.
func (q *ListStudentsQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// ListStudentsResult содержит результат списка учеников.
type ListStudentsResult struct {
	// Students - карточки в формате API.
	Students []StudentDTO `json:"students"`

	// Count - количество записей в ответе.
	Count int `json:"count"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsHandler обрабатывает запросы списка учеников.
type ListStudentsHandler struct {
	studentRepo student.Repository
}

// NewListStudentsHandler создаёт новый обработчик списка учеников.
func NewListStudentsHandler(studentRepo student.Repository) *ListStudentsHandler {
	return &ListStudentsHandler{studentRepo: studentRepo}
}

// Handle выполняет запрос списка.
func (h *ListStudentsHandler) Handle(ctx context.Context, query ListStudentsQuery) (*ListStudentsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListStudents", shared.ErrValidation, err.Error(), err)
	}

	opts := student.DefaultListOptions().
		WithLimit(query.Limit).
		WithOffset(query.Offset)
	if query.IncludeInactive {
		opts = opts.WithInactive()
	}

	cards, err := h.fetch(ctx, query, opts)
	if err != nil {
		return nil, shared.WrapError("query", "ListStudents", shared.ErrInternal, "failed to list students", err)
	}

	return h.buildResult(cards), nil
}

// fetch выбирает способ выборки в зависимости от заданных фильтров.
func (h *ListStudentsHandler) fetch(ctx context.Context, query ListStudentsQuery, opts student.ListOptions) ([]*student.Student, error) {
	switch {
	case query.TeacherID != "":
		return h.studentRepo.GetByTeacher(ctx, query.TeacherID, opts)
	case query.Grade != "":
		return h.studentRepo.GetByGrade(ctx, query.Grade, opts)
	case query.Search != "":
		return h.studentRepo.Search(ctx, query.Search, opts)
	default:
		return h.studentRepo.GetAll(ctx, opts)
	}
}

// buildResult формирует результат запроса.
func (h *ListStudentsHandler) buildResult(cards []*student.Student) *ListStudentsResult {
	dtos := make([]StudentDTO, 0, len(cards))
	for _, card := range cards {
		dtos = append(dtos, NewStudentDTO(card))
	}
	return &ListStudentsResult{
		Students: dtos,
		Count:    len(dtos),
	}
}
