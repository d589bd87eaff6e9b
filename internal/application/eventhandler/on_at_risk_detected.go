package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON AT RISK DETECTED HANDLER
// Обрабатывает событие попадания ученика в зону риска.
//
// Ключевые функции:
// 1. Оповещение учителя — high-priority уведомление с причинами
//
// Событие эмитит ночной проход детектора, и только для учеников,
// которых в зоне риска раньше не было. Повторных оповещений
// по одному и тому же ученику детектор не шлёт.
// ═══════════════════════════════════════════════════════════════════════════

// OnAtRiskDetectedHandler обрабатывает событие обнаружения риска.
type OnAtRiskDetectedHandler struct {
	// Repositories (интерфейсы из domain layer)
	studentRepo      student.Repository
	notificationRepo notification.Repository

	// ID generator
	idGenerator IDGenerator

	// Logger для структурированного логирования
	logger *slog.Logger

	// Configuration
	config AtRiskDetectedConfig
}

// AtRiskDetectedConfig содержит конфигурацию обработчика.
type AtRiskDetectedConfig struct {
	// AlertChannel — канал доставки оповещения.
	AlertChannel notification.Channel

	// AlertPriority — приоритет оповещения.
	AlertPriority notification.Priority
}

// DefaultAtRiskDetectedConfig возвращает конфигурацию по умолчанию.
func DefaultAtRiskDetectedConfig() AtRiskDetectedConfig {
	return AtRiskDetectedConfig{
		AlertChannel:  notification.ChannelEmail,
		AlertPriority: notification.PriorityHigh,
	}
}

// NewOnAtRiskDetectedHandler создаёт новый обработчик события обнаружения риска.
func NewOnAtRiskDetectedHandler(
	studentRepo student.Repository,
	notificationRepo notification.Repository,
	idGenerator IDGenerator,
	logger *slog.Logger,
	config AtRiskDetectedConfig,
) *OnAtRiskDetectedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnAtRiskDetectedHandler{
		studentRepo:      studentRepo,
		notificationRepo: notificationRepo,
		idGenerator:      idGenerator,
		logger:           logger.With("handler", "on_at_risk_detected"),
		config:           config,
	}
}

// Handle обрабатывает событие обнаружения риска.
func (h *OnAtRiskDetectedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	riskEvent, ok := event.(shared.AtRiskDetectedEvent)
	if !ok {
		h.logger.Warn("received non-AtRiskDetectedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	studentID := riskEvent.AggregateID()

	h.logger.Info("processing at-risk detected event",
		"student_id", studentID,
		"reasons", riskEvent.Reasons,
		"gpa", riskEvent.CurrentGPA,
		"attendance_rate", riskEvent.AttendanceRate,
	)

	if err := h.alertTeacher(ctx, riskEvent); err != nil {
		h.logger.Error("failed to alert teacher",
			"student_id", studentID,
			"error", err,
		)
		return fmt.Errorf("alert teacher: %w", err)
	}

	h.logger.Info("at-risk alert created",
		"student_id", studentID,
	)

	return nil
}

// alertTeacher создаёт high-priority уведомление закреплённому учителю.
func (h *OnAtRiskDetectedHandler) alertTeacher(
	ctx context.Context,
	event shared.AtRiskDetectedEvent,
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

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(h.idGenerator.NotificationID()),
		RecipientID: notification.RecipientID(teacherID),
		Channel:     h.config.AlertChannel,
		Type:        notification.NotificationTypeAtRiskAlert,
		Priority:    h.config.AlertPriority,
		Subject:     fmt.Sprintf("Student needs attention: %s", studentEntity.FullName()),
		Message:     h.buildAlertMessage(studentEntity, event),
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

// buildAlertMessage собирает текст оповещения с причинами риска.
func (h *OnAtRiskDetectedHandler) buildAlertMessage(
	studentEntity *student.Student,
	event shared.AtRiskDetectedEvent,
) string {
	message := fmt.Sprintf(
		"%s (grade %s) has entered the at-risk list. Current GPA %.2f, attendance %.0f%%.",
		studentEntity.FullName(),
		event.Grade,
		event.CurrentGPA,
		event.AttendanceRate,
	)

	if len(event.Reasons) > 0 {
		message += fmt.Sprintf(" Reasons: %s.", strings.Join(event.Reasons, "; "))
	}

	message += " Consider scheduling a parent meeting soon."

	return message
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnAtRiskDetectedHandler) EventType() shared.EventType {
	return shared.EventAtRiskDetected
}
