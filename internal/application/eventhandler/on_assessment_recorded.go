// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ASSESSMENT RECORDED HANDLER
// Обрабатывает событие записи новой оценки.
//
// Ключевые функции:
// 1. Инвалидация кеша — карточка и брифинг ученика устарели
// 2. Контроль провалов — уведомление учителю при низком балле
//
// Кеш инвалидируется, а не перестраивается: следующий запрос брифинга
// соберёт его заново уже с учётом новой оценки.
// ═══════════════════════════════════════════════════════════════════════════

// IDGenerator выдаёт идентификаторы для создаваемых уведомлений.
// Реализация живёт в infrastructure/service.
type IDGenerator interface {
	// NotificationID генерирует новый ID уведомления.
	NotificationID() string
}

// OnAssessmentRecordedHandler обрабатывает событие записи оценки.
type OnAssessmentRecordedHandler struct {
	// Repositories (интерфейсы из domain layer)
	studentRepo      student.Repository
	notificationRepo notification.Repository

	// Caches (могут быть nil — тогда шаг пропускается)
	studentCache  student.Cache
	briefingCache meeting.BriefingCache

	// ID generator
	idGenerator IDGenerator

	// Logger для структурированного логирования
	logger *slog.Logger

	// Configuration
	config AssessmentRecordedConfig
}

// AssessmentRecordedConfig содержит конфигурацию обработчика.
type AssessmentRecordedConfig struct {
	// NotifyOnLowScore — уведомлять ли учителя о низком балле.
	NotifyOnLowScore bool

	// LowScoreThreshold — порог в процентах, ниже которого балл считается
	// тревожным. 65 соответствует границе оценки D.
	LowScoreThreshold float64
}

// DefaultAssessmentRecordedConfig возвращает конфигурацию по умолчанию.
func DefaultAssessmentRecordedConfig() AssessmentRecordedConfig {
	return AssessmentRecordedConfig{
		NotifyOnLowScore:  true,
		LowScoreThreshold: 65,
	}
}

// NewOnAssessmentRecordedHandler создаёт новый обработчик события записи оценки.
func NewOnAssessmentRecordedHandler(
	studentRepo student.Repository,
	notificationRepo notification.Repository,
	studentCache student.Cache,
	briefingCache meeting.BriefingCache,
	idGenerator IDGenerator,
	logger *slog.Logger,
	config AssessmentRecordedConfig,
) *OnAssessmentRecordedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnAssessmentRecordedHandler{
		studentRepo:      studentRepo,
		notificationRepo: notificationRepo,
		studentCache:     studentCache,
		briefingCache:    briefingCache,
		idGenerator:      idGenerator,
		logger:           logger.With("handler", "on_assessment_recorded"),
		config:           config,
	}
}

// Handle обрабатывает событие записи оценки.
func (h *OnAssessmentRecordedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	// Type assertion для получения конкретного типа события
	assessmentEvent, ok := event.(shared.AssessmentRecordedEvent)
	if !ok {
		h.logger.Warn("received non-AssessmentRecordedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	studentID := assessmentEvent.AggregateID()

	h.logger.Info("processing assessment recorded event",
		"student_id", studentID,
		"assessment_id", assessmentEvent.AssessmentID,
		"subject", assessmentEvent.Subject,
		"percentage", assessmentEvent.Percentage,
	)

	// 1. Инвалидируем кеш — карточка и брифинг устарели
	if err := h.invalidateCaches(ctx, studentID); err != nil {
		h.logger.Error("failed to invalidate caches",
			"student_id", studentID,
			"error", err,
		)
		// Продолжаем выполнение — кеш истечёт по TTL
	}

	// 2. Низкий балл — уведомляем учителя (если включено)
	if h.config.NotifyOnLowScore && assessmentEvent.Percentage < h.config.LowScoreThreshold {
		if err := h.notifyLowScore(ctx, assessmentEvent); err != nil {
			h.logger.Warn("failed to notify about low score",
				"student_id", studentID,
				"error", err,
			)
		}
	}

	h.logger.Info("assessment recorded event processed successfully",
		"student_id", studentID,
		"assessment_id", assessmentEvent.AssessmentID,
	)

	return nil
}

// invalidateCaches сбрасывает карточку и брифинг ученика.
func (h *OnAssessmentRecordedHandler) invalidateCaches(ctx context.Context, studentID string) error {
	if h.studentCache != nil {
		if err := h.studentCache.Invalidate(ctx, studentID); err != nil {
			return fmt.Errorf("invalidate student cache: %w", err)
		}
	}

	if h.briefingCache != nil {
		if err := h.briefingCache.Delete(ctx, studentID); err != nil {
			return fmt.Errorf("invalidate briefing cache: %w", err)
		}
	}

	h.logger.Debug("caches invalidated",
		"student_id", studentID,
	)

	return nil
}

// notifyLowScore создаёт уведомление учителю о тревожном балле.
func (h *OnAssessmentRecordedHandler) notifyLowScore(
	ctx context.Context,
	event shared.AssessmentRecordedEvent,
) error {
	if h.notificationRepo == nil || h.idGenerator == nil {
		h.logger.Debug("notifications not configured, skipping")
		return nil
	}

	studentEntity, err := h.studentRepo.GetByID(ctx, event.AggregateID())
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}

	teacherID := studentEntity.Metadata.TeacherID
	if teacherID == "" {
		h.logger.Debug("student has no assigned teacher, skipping",
			"student_id", event.AggregateID(),
		)
		return nil
	}

	message := fmt.Sprintf(
		"%s scored %.0f%% on a %s %s, below the %.0f%% alert threshold. The meeting briefing will flag this subject.",
		studentEntity.FullName(),
		event.Percentage,
		event.Subject,
		event.Type,
		h.config.LowScoreThreshold,
	)

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(h.idGenerator.NotificationID()),
		RecipientID: notification.RecipientID(teacherID),
		Channel:     notification.ChannelEmail,
		Type:        notification.NotificationTypeAtRiskAlert,
		Priority:    notification.PriorityHigh,
		Subject:     fmt.Sprintf("Low score alert: %s", studentEntity.FullName()),
		Message:     message,
		StudentID:   event.AggregateID(),
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if err := h.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnAssessmentRecordedHandler) EventType() shared.EventType {
	return shared.EventAssessmentRecorded
}
