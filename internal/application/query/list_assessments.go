package query

import (
	"context"
	"errors"

	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ASSESSMENTS QUERY
// История оценочных работ ученика, новые первыми.
// ══════════════════════════════════════════════════════════════════════════════

// ListAssessmentsQuery содержит параметры запроса истории работ.
type ListAssessmentsQuery struct {
	// StudentID - идентификатор ученика.
	StudentID string

	// Subject - фильтр по предмету (опционально).
	Subject string

	// Limit - максимум записей (по умолчанию 10, максимум 100).
	Limit int
}

// Validate проверяет и нормализует параметры запроса.
func (q *ListAssessmentsQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("student_id is required")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// AssessmentDTO - оценочная работа в формате API.
type AssessmentDTO struct {
	AssessmentID     string   `json:"assessment_id"`
	Subject          string   `json:"subject"`
	Type             string   `json:"type"`
	Date             string   `json:"date"`
	Score            float64  `json:"score"`
	MaxScore         float64  `json:"max_score"`
	Percentage       float64  `json:"percentage"`
	LetterGrade      string   `json:"letter_grade"`
	Topics           []string `json:"topics"`
	TeacherFeedback  string   `json:"teacher_feedback"`
	Difficulty       string   `json:"difficulty"`
	TimeSpentMinutes int      `json:"time_spent_minutes"`
}

// ListAssessmentsResult содержит результат запроса истории.
type ListAssessmentsResult struct {
	// Assessments - работы в формате API, новые первыми.
	Assessments []AssessmentDTO `json:"assessments"`

	// Count - количество записей в ответе.
	Count int `json:"count"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListAssessmentsHandler обрабатывает запросы истории оценочных работ.
type ListAssessmentsHandler struct {
	studentRepo student.Repository
	recordRepo  student.RecordRepository
}

// NewListAssessmentsHandler создаёт новый обработчик истории работ.
func NewListAssessmentsHandler(
	studentRepo student.Repository,
	recordRepo student.RecordRepository,
) *ListAssessmentsHandler {
	return &ListAssessmentsHandler{
		studentRepo: studentRepo,
		recordRepo:  recordRepo,
	}
}

// Handle выполняет запрос истории работ.
func (h *ListAssessmentsHandler) Handle(ctx context.Context, query ListAssessmentsQuery) (*ListAssessmentsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListAssessments", shared.ErrValidation, err.Error(), err)
	}

	exists, err := h.studentRepo.Exists(ctx, query.StudentID)
	if err != nil {
		return nil, shared.WrapError("query", "ListAssessments", shared.ErrInternal, "failed to check student", err)
	}
	if !exists {
		return nil, shared.WrapError("query", "ListAssessments", shared.ErrNotFound, "student not found", student.ErrStudentNotFound)
	}

	assessments, err := h.fetch(ctx, query)
	if err != nil {
		return nil, shared.WrapError("query", "ListAssessments", shared.ErrInternal, "failed to load assessments", err)
	}

	dtos := make([]AssessmentDTO, 0, len(assessments))
	for _, a := range assessments {
		dtos = append(dtos, AssessmentDTO{
			AssessmentID:     a.ID,
			Subject:          a.Subject,
			Type:             string(a.Type),
			Date:             a.Date.Format("2006-01-02"),
			Score:            a.Score,
			MaxScore:         a.MaxScore,
			Percentage:       a.Percentage,
			LetterGrade:      a.LetterGrade(),
			Topics:           emptyIfNil(a.Topics),
			TeacherFeedback:  a.TeacherFeedback,
			Difficulty:       string(a.Difficulty),
			TimeSpentMinutes: a.TimeSpentMinutes,
		})
	}

	return &ListAssessmentsResult{
		Assessments: dtos,
		Count:       len(dtos),
	}, nil
}

// fetch выбирает работы с учётом фильтра по предмету.
func (h *ListAssessmentsHandler) fetch(ctx context.Context, query ListAssessmentsQuery) ([]*student.Assessment, error) {
	if query.Subject != "" {
		all, err := h.recordRepo.GetAssessmentsBySubject(ctx, query.StudentID, query.Subject)
		if err != nil {
			return nil, err
		}
		if len(all) > query.Limit {
			all = all[:query.Limit]
		}
		return all, nil
	}
	return h.recordRepo.GetAssessments(ctx, query.StudentID, query.Limit)
}
