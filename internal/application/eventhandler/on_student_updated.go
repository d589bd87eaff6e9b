package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STUDENT UPDATED HANDLER
// Обрабатывает событие изменения карточки ученика.
//
// Ключевые функции:
// 1. Инвалидация карточки в кеше — всегда
// 2. Инвалидация брифинга — только если изменённые секции на него влияют
//
// Событие несёт список изменённых секций: запись инцидента меняет
// "behavioral", отметка о подготовке — только "metadata".
// ═══════════════════════════════════════════════════════════════════════════

// OnStudentUpdatedHandler обрабатывает событие изменения карточки.
type OnStudentUpdatedHandler struct {
	// Caches (могут быть nil — тогда шаг пропускается)
	studentCache  student.Cache
	briefingCache meeting.BriefingCache

	// Logger для структурированного логирования
	logger *slog.Logger

	// Configuration
	config StudentUpdatedConfig
}

// StudentUpdatedConfig содержит конфигурацию обработчика.
type StudentUpdatedConfig struct {
	// SkipBriefingSections — секции, изменение которых не трогает брифинг.
	// Служебные отметки вроде времени последней подготовки не влияют
	// на содержание разговора с родителями.
	SkipBriefingSections []string
}

// DefaultStudentUpdatedConfig возвращает конфигурацию по умолчанию.
func DefaultStudentUpdatedConfig() StudentUpdatedConfig {
	return StudentUpdatedConfig{
		SkipBriefingSections: []string{"metadata"},
	}
}

// NewOnStudentUpdatedHandler создаёт новый обработчик события изменения карточки.
func NewOnStudentUpdatedHandler(
	studentCache student.Cache,
	briefingCache meeting.BriefingCache,
	logger *slog.Logger,
	config StudentUpdatedConfig,
) *OnStudentUpdatedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnStudentUpdatedHandler{
		studentCache:  studentCache,
		briefingCache: briefingCache,
		logger:        logger.With("handler", "on_student_updated"),
		config:        config,
	}
}

// Handle обрабатывает событие изменения карточки.
func (h *OnStudentUpdatedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	updateEvent, ok := event.(shared.StudentUpdatedEvent)
	if !ok {
		h.logger.Warn("received non-StudentUpdatedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	studentID := updateEvent.AggregateID()

	h.logger.Info("processing student updated event",
		"student_id", studentID,
		"changed_sections", updateEvent.ChangedSections,
	)

	// 1. Карточка в кеше устарела всегда
	if h.studentCache != nil {
		if err := h.studentCache.Invalidate(ctx, studentID); err != nil {
			h.logger.Error("failed to invalidate student cache",
				"student_id", studentID,
				"error", err,
			)
			return fmt.Errorf("invalidate student cache: %w", err)
		}
	}

	// 2. Брифинг — только если что-то содержательное поменялось
	if h.briefingCache != nil && h.affectsBriefing(updateEvent.ChangedSections) {
		if err := h.briefingCache.Delete(ctx, studentID); err != nil {
			h.logger.Error("failed to invalidate briefing cache",
				"student_id", studentID,
				"error", err,
			)
			// Продолжаем выполнение — брифинг истечёт по TTL
		}
	}

	h.logger.Debug("student updated event processed",
		"student_id", studentID,
	)

	return nil
}

// affectsBriefing проверяет, влияют ли изменённые секции на брифинг.
func (h *OnStudentUpdatedHandler) affectsBriefing(sections []string) bool {
	if len(sections) == 0 {
		// Пустой список означает неизвестный объём изменений
		return true
	}

	for _, section := range sections {
		if !h.isSkipped(section) {
			return true
		}
	}
	return false
}

func (h *OnStudentUpdatedHandler) isSkipped(section string) bool {
	for _, skipped := range h.config.SkipBriefingSections {
		if section == skipped {
			return true
		}
	}
	return false
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnStudentUpdatedHandler) EventType() shared.EventType {
	return shared.EventStudentUpdated
}
