// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TALKING POINTS QUERY
// Собирает профиль ученика, прогоняет его через движок и возвращает брифинг
// к родительской встрече. Готовые брифинги кешируются.
// ══════════════════════════════════════════════════════════════════════════════

// briefingCacheTTL - время жизни брифинга в кеше. Брифинг устаревает
// вместе с карточкой, поэтому кеш дополнительно инвалидируется при записи
// новых оценок.
const briefingCacheTTL = time.Hour

// ProfileAssembler собирает входной профиль движка из карточки ученика
// и её подколлекций. Реализация живёт в infrastructure/service.
type ProfileAssembler interface {
	// AssembleProfile возвращает полностью слитый профиль ученика.
	AssembleProfile(ctx context.Context, studentID string) (*meeting.StudentProfile, error)
}

// GetTalkingPointsQuery содержит параметры запроса брифинга.
type GetTalkingPointsQuery struct {
	// StudentID - ученик, для которого готовится встреча.
	StudentID string

	// Refresh - пересчитать брифинг, минуя кеш.
	Refresh bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetTalkingPointsQuery) Validate() error {
	if q.StudentID == "" {
		return errors.New("student_id is required")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DTO
// Формат полностью повторяет контракт API: snake_case, категория задаётся
// ключом карты в talking_points_by_category и полем в плоских списках.
// ══════════════════════════════════════════════════════════════════════════════

// TalkingPointDTO - тезис в плоских списках (action_items, strengths).
type TalkingPointDTO struct {
	Category       string                 `json:"category"`
	Priority       string                 `json:"priority"`
	Title          string                 `json:"title"`
	Content        string                 `json:"content"`
	SupportingData map[string]interface{} `json:"supporting_data"`
	ActionRequired bool                   `json:"action_required"`
}

// CategoryPointDTO - тезис внутри корзины категории (без поля category).
type CategoryPointDTO struct {
	Priority       string                 `json:"priority"`
	Title          string                 `json:"title"`
	Content        string                 `json:"content"`
	SupportingData map[string]interface{} `json:"supporting_data"`
	ActionRequired bool                   `json:"action_required"`
}

// MeetingSummaryDTO - сводка встречи.
type MeetingSummaryDTO struct {
	StudentName           string `json:"student_name"`
	Grade                 string `json:"grade"`
	MeetingDate           string `json:"meeting_date"`
	TotalTalkingPoints    int    `json:"total_talking_points"`
	HighPriorityItems     int    `json:"high_priority_items"`
	ActionItems           int    `json:"action_items"`
	OverallRecommendation string `json:"overall_recommendation"`
}

// DataSummaryDTO - ключевые показатели ученика.
type DataSummaryDTO struct {
	CurrentGPA             float64 `json:"current_gpa"`
	AttendanceRate         float64 `json:"attendance_rate"`
	ParticipationLevel     string  `json:"participation_level"`
	ExtracurricularCount   int     `json:"extracurricular_count"`
	LearningStyle          string  `json:"learning_style"`
	CommunicationFrequency string  `json:"communication_frequency"`
}

// BriefingDTO - полный брифинг в формате API.
type BriefingDTO struct {
	MeetingSummary          MeetingSummaryDTO             `json:"meeting_summary"`
	TalkingPointsByCategory map[string][]CategoryPointDTO `json:"talking_points_by_category"`
	ActionItems             []TalkingPointDTO             `json:"action_items"`
	StrengthsToCelebrate    []TalkingPointDTO             `json:"strengths_to_celebrate"`
	StudentDataSummary      DataSummaryDTO                `json:"student_data_summary"`
}

// GetTalkingPointsResult содержит результат запроса брифинга.
type GetTalkingPointsResult struct {
	// Briefing - брифинг в формате API.
	Briefing BriefingDTO `json:"talking_points"`

	// GeneratedAt - дата генерации (совпадает с meeting_date).
	GeneratedAt string `json:"generated_at"`

	// FromCache - брифинг взят из кеша, а не пересчитан.
	FromCache bool `json:"-"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetTalkingPointsHandler обрабатывает запросы брифинга.
type GetTalkingPointsHandler struct {
	assembler     ProfileAssembler
	generator     *meeting.Generator
	briefingCache meeting.BriefingCache
}

// NewGetTalkingPointsHandler создаёт новый обработчик запроса брифинга.
// briefingCache может быть nil - тогда кеширование отключено.
func NewGetTalkingPointsHandler(
	assembler ProfileAssembler,
	generator *meeting.Generator,
	briefingCache meeting.BriefingCache,
) *GetTalkingPointsHandler {
	return &GetTalkingPointsHandler{
		assembler:     assembler,
		generator:     generator,
		briefingCache: briefingCache,
	}
}

// Handle выполняет запрос брифинга.
func (h *GetTalkingPointsHandler) Handle(ctx context.Context, query GetTalkingPointsQuery) (*GetTalkingPointsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetTalkingPoints", shared.ErrValidation, err.Error(), err)
	}

	// Попытка получить из кеша
	if !query.Refresh {
		if briefing, err := h.tryGetFromCache(ctx, query.StudentID); err == nil {
			result := h.buildResult(briefing)
			result.FromCache = true
			return result, nil
		}
	}

	profile, err := h.assembler.AssembleProfile(ctx, query.StudentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, shared.WrapError("query", "GetTalkingPoints", shared.ErrInternal, "failed to assemble profile", err)
	}

	briefing, err := h.generator.Generate(profile)
	if err != nil {
		return nil, shared.WrapError("query", "GetTalkingPoints", shared.ErrValidation, "profile is incomplete", err)
	}

	// Кеш не критичен: ошибку записи игнорируем
	if h.briefingCache != nil {
		_ = h.briefingCache.Set(ctx, query.StudentID, briefing, briefingCacheTTL)
	}

	return h.buildResult(briefing), nil
}

// tryGetFromCache пытается получить готовый брифинг из кеша.
func (h *GetTalkingPointsHandler) tryGetFromCache(ctx context.Context, studentID string) (*meeting.Briefing, error) {
	if h.briefingCache == nil {
		return nil, meeting.ErrBriefingNotFound
	}
	return h.briefingCache.Get(ctx, studentID)
}

// buildResult переводит доменный брифинг в формат API.
func (h *GetTalkingPointsHandler) buildResult(briefing *meeting.Briefing) *GetTalkingPointsResult {
	dto := NewBriefingDTO(briefing)
	return &GetTalkingPointsResult{
		Briefing:    dto,
		GeneratedAt: dto.MeetingSummary.MeetingDate,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// NewBriefingDTO переводит доменный брифинг в формат API.
// Используется также генерацией AI-сводки и повесткой.
func NewBriefingDTO(briefing *meeting.Briefing) BriefingDTO {
	byCategory := make(map[string][]CategoryPointDTO, len(briefing.PointsByCategory))
	for category, points := range briefing.PointsByCategory {
		bucket := make([]CategoryPointDTO, 0, len(points))
		for _, point := range points {
			bucket = append(bucket, CategoryPointDTO{
				Priority:       string(point.Priority),
				Title:          point.Title,
				Content:        point.Content,
				SupportingData: point.SupportingData,
				ActionRequired: point.ActionRequired,
			})
		}
		byCategory[string(category)] = bucket
	}

	return BriefingDTO{
		MeetingSummary: MeetingSummaryDTO{
			StudentName:           briefing.Summary.StudentName,
			Grade:                 briefing.Summary.Grade,
			MeetingDate:           briefing.Summary.MeetingDate.Format("2006-01-02"),
			TotalTalkingPoints:    briefing.Summary.TotalTalkingPoints,
			HighPriorityItems:     briefing.Summary.HighPriorityItems,
			ActionItems:           briefing.Summary.ActionItems,
			OverallRecommendation: briefing.Summary.OverallRecommendation,
		},
		TalkingPointsByCategory: byCategory,
		ActionItems:             mapTalkingPoints(briefing.ActionItems),
		StrengthsToCelebrate:    mapTalkingPoints(briefing.StrengthsToCelebrate),
		StudentDataSummary: DataSummaryDTO{
			CurrentGPA:             briefing.DataSummary.CurrentGPA,
			AttendanceRate:         briefing.DataSummary.AttendanceRate,
			ParticipationLevel:     briefing.DataSummary.ParticipationLevel,
			ExtracurricularCount:   briefing.DataSummary.ExtracurricularCount,
			LearningStyle:          briefing.DataSummary.LearningStyle,
			CommunicationFrequency: briefing.DataSummary.CommunicationFrequency,
		},
	}
}

func mapTalkingPoints(points []meeting.TalkingPoint) []TalkingPointDTO {
	dtos := make([]TalkingPointDTO, 0, len(points))
	for _, point := range points {
		dtos = append(dtos, TalkingPointDTO{
			Category:       string(point.Category),
			Priority:       string(point.Priority),
			Title:          point.Title,
			Content:        point.Content,
			SupportingData: point.SupportingData,
			ActionRequired: point.ActionRequired,
		})
	}
	return dtos
}
