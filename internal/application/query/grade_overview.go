package query

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/overview"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE OVERVIEW QUERY
// Сводка по классу перед циклом родительских встреч: средние показатели,
// лучшие ученики и список требующих внимания. Читает последний снимок,
// при его отсутствии собирает срез на лету.
// ══════════════════════════════════════════════════════════════════════════════

// overviewCacheTTL - время жизни сводки в кеше.
const overviewCacheTTL = 10 * time.Minute

// topPerformersCount - сколько лучших учеников попадает в сводку.
const topPerformersCount = 5

// GetGradeOverviewQuery содержит параметры запроса сводки.
type GetGradeOverviewQuery struct {
	// Grade - класс, по которому нужна сводка.
	Grade string

	// AcademicYear - учебный год. Пустое значение - текущий год.
	AcademicYear string

	// Refresh - собрать срез заново, минуя кеш и снимки.
	Refresh bool
}

// Validate проверяет корректность параметров запроса.
func (q *GetGradeOverviewQuery) Validate() error {
	if q.Grade == "" {
		return errors.New("grade is required")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DTO
// ══════════════════════════════════════════════════════════════════════════════

// StandingDTO - позиция ученика в сводке.
type StandingDTO struct {
	StudentID      string   `json:"student_id"`
	FullName       string   `json:"full_name"`
	GPA            float64  `json:"gpa"`
	AttendanceRate float64  `json:"attendance_rate"`
	Rank           int      `json:"rank"`
	AtRiskReasons  []string `json:"at_risk_reasons,omitempty"`
}

// GradeOverviewDTO - сводка по классу в формате API.
type GradeOverviewDTO struct {
	Grade             string             `json:"grade"`
	AcademicYear      string             `json:"academic_year"`
	SnapshotAt        string             `json:"snapshot_at"`
	StudentCount      int                `json:"student_count"`
	AverageGPA        float64            `json:"average_gpa"`
	AverageAttendance float64            `json:"average_attendance"`
	AtRiskCount       int                `json:"at_risk_count"`
	SubjectAverages   map[string]float64 `json:"subject_averages"`
	TopPerformers     []StandingDTO      `json:"top_performers"`
	AtRiskStudents    []StandingDTO      `json:"at_risk_students"`
}

// GetGradeOverviewResult содержит результат запроса сводки.
type GetGradeOverviewResult struct {
	// Overview - сводка в формате API.
	Overview GradeOverviewDTO `json:"overview"`

	// FromCache - сводка взята из кеша.
	FromCache bool `json:"-"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotBuilder собирает срез класса из текущих карточек учеников.
// Реализация живёт в infrastructure/service, тот же билдер использует
// фоновое обновление снимков.
type SnapshotBuilder interface {
	// BuildSnapshot собирает свежий срез класса.
	BuildSnapshot(ctx context.Context, grade, academicYear string) (*overview.GradeSnapshot, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetGradeOverviewHandler обрабатывает запросы сводки по классу.
type GetGradeOverviewHandler struct {
	snapshots   overview.Repository
	cache       overview.Cache
	builder     SnapshotBuilder
	defaultYear string
}

// NewGetGradeOverviewHandler создаёт новый обработчик сводки.
// cache и builder могут быть nil.
func NewGetGradeOverviewHandler(
	snapshots overview.Repository,
	cache overview.Cache,
	builder SnapshotBuilder,
	defaultYear string,
) *GetGradeOverviewHandler {
	return &GetGradeOverviewHandler{
		snapshots:   snapshots,
		cache:       cache,
		builder:     builder,
		defaultYear: defaultYear,
	}
}

// Handle выполняет запрос сводки.
func (h *GetGradeOverviewHandler) Handle(ctx context.Context, query GetGradeOverviewQuery) (*GetGradeOverviewResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetGradeOverview", shared.ErrValidation, err.Error(), err)
	}

	academicYear := query.AcademicYear
	if academicYear == "" {
		academicYear = h.defaultYear
	}

	// Попытка получить из кеша
	if !query.Refresh && h.cache != nil {
		if snapshot, err := h.cache.GetCached(ctx, query.Grade); err == nil && snapshot != nil {
			return &GetGradeOverviewResult{
				Overview:  h.buildDTO(snapshot),
				FromCache: true,
			}, nil
		}
	}

	snapshot, err := h.loadSnapshot(ctx, query, academicYear)
	if err != nil {
		return nil, err
	}

	// Кеш не критичен: ошибку записи игнорируем
	if h.cache != nil {
		_ = h.cache.SetCached(ctx, snapshot, overviewCacheTTL)
	}

	return &GetGradeOverviewResult{Overview: h.buildDTO(snapshot)}, nil
}

// loadSnapshot читает последний снимок, при необходимости собирает срез заново.
func (h *GetGradeOverviewHandler) loadSnapshot(ctx context.Context, query GetGradeOverviewQuery, academicYear string) (*overview.GradeSnapshot, error) {
	if !query.Refresh {
		snapshot, err := h.snapshots.GetLatest(ctx, query.Grade, academicYear)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, overview.ErrSnapshotNotFound) {
			return nil, shared.WrapError("query", "GetGradeOverview", shared.ErrInternal, "failed to load snapshot", err)
		}
	}

	if h.builder == nil {
		return nil, shared.WrapError("query", "GetGradeOverview", shared.ErrNotFound, "no snapshot for grade", overview.ErrSnapshotNotFound)
	}

	snapshot, err := h.builder.BuildSnapshot(ctx, query.Grade, academicYear)
	if err != nil {
		return nil, shared.WrapError("query", "GetGradeOverview", shared.ErrInternal, "failed to build snapshot", err)
	}
	return snapshot, nil
}

// buildDTO переводит снимок в формат API.
func (h *GetGradeOverviewHandler) buildDTO(snapshot *overview.GradeSnapshot) GradeOverviewDTO {
	dto := GradeOverviewDTO{
		Grade:             snapshot.Grade,
		AcademicYear:      snapshot.AcademicYear,
		SnapshotAt:        snapshot.SnapshotAt.Format(time.RFC3339),
		StudentCount:      snapshot.StudentCount,
		AverageGPA:        snapshot.AverageGPA,
		AverageAttendance: snapshot.AverageAttendance,
		AtRiskCount:       snapshot.AtRiskCount,
		SubjectAverages:   snapshot.SubjectAverages,
		TopPerformers:     make([]StandingDTO, 0, topPerformersCount),
		AtRiskStudents:    []StandingDTO{},
	}

	for _, standing := range snapshot.TopPerformers(topPerformersCount) {
		dto.TopPerformers = append(dto.TopPerformers, h.standingDTO(snapshot, standing))
	}
	for _, standing := range snapshot.AtRiskStudents() {
		dto.AtRiskStudents = append(dto.AtRiskStudents, h.standingDTO(snapshot, standing))
	}

	return dto
}

func (h *GetGradeOverviewHandler) standingDTO(snapshot *overview.GradeSnapshot, standing *overview.StudentStanding) StandingDTO {
	return StandingDTO{
		StudentID:      standing.StudentID,
		FullName:       standing.FullName,
		GPA:            standing.GPA,
		AttendanceRate: standing.AttendanceRate,
		Rank:           snapshot.Rank(standing.StudentID),
		AtRiskReasons:  standing.AtRiskReasons,
	}
}
