package query

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT QUERY
// Возвращает полную карточку ученика. Карточки кешируются на короткое
// время - их читают чаще, чем меняют.
// ══════════════════════════════════════════════════════════════════════════════

// studentCacheTTL - время жизни карточки в кеше.
const studentCacheTTL = 15 * time.Minute

// GetStudentQuery содержит параметры запроса карточки.
type GetStudentQuery struct {
	// StudentID - идентификатор ученика.
	StudentID string
}

// Validate проверяет корректность параметров запроса.
func (q *GetStudentQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("student_id is required")
	}
	return nil
}

// GetStudentResult содержит результат запроса карточки.
type GetStudentResult struct {
	// Student - карточка ученика в формате API.
	Student StudentDTO `json:"student"`

	// FromCache - карточка взята из кеша.
	FromCache bool `json:"-"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentHandler обрабатывает запросы карточки ученика.
type GetStudentHandler struct {
	studentRepo student.Repository
	cache       student.Cache
}

// NewGetStudentHandler создаёт новый обработчик запроса карточки.
// cache может быть nil - тогда кеширование отключено.
func NewGetStudentHandler(studentRepo student.Repository, cache student.Cache) *GetStudentHandler {
	return &GetStudentHandler{
		studentRepo: studentRepo,
		cache:       cache,
	}
}

// Handle выполняет запрос карточки.
func (h *GetStudentHandler) Handle(ctx context.Context, query GetStudentQuery) (*GetStudentResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStudent", shared.ErrValidation, err.Error(), err)
	}

	// Попытка получить из кеша
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, query.StudentID); err == nil && cached != nil {
			return &GetStudentResult{
				Student:   NewStudentDTO(cached),
				FromCache: true,
			}, nil
		}
	}

	card, err := h.studentRepo.GetByID(ctx, query.StudentID)
	if err != nil {
		if errors.Is(err, student.ErrStudentNotFound) {
			return nil, shared.WrapError("query", "GetStudent", shared.ErrNotFound, "student not found", err)
		}
		return nil, shared.WrapError("query", "GetStudent", shared.ErrInternal, "failed to load student", err)
	}

	// Кеш не критичен: ошибку записи игнорируем
	if h.cache != nil {
		_ = h.cache.Set(ctx, card, studentCacheTTL)
	}

	return &GetStudentResult{Student: NewStudentDTO(card)}, nil
}
