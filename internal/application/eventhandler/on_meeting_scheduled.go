package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MEETING SCHEDULED HANDLER
// Обрабатывает событие назначения встречи с родителями.
//
// Ключевые функции:
// 1. Напоминание учителю — отложенное уведомление перед встречей
//
// Подготовку брифинга запускает не этот handler, а планировщик:
// он сам находит встречи в окне подготовки и ведёт сагу.
// ═══════════════════════════════════════════════════════════════════════════

// OnMeetingScheduledHandler обрабатывает событие назначения встречи.
type OnMeetingScheduledHandler struct {
	// Repositories (интерфейсы из domain layer)
	studentRepo      student.Repository
	notificationRepo notification.Repository

	// ID generator
	idGenerator IDGenerator

	// Logger для структурированного логирования
	logger *slog.Logger

	// Configuration
	config MeetingScheduledConfig
}

// MeetingScheduledConfig содержит конфигурацию обработчика.
type MeetingScheduledConfig struct {
	// SendReminder — создавать ли напоминание о встрече.
	SendReminder bool

	// ReminderLead — за сколько до встречи доставить напоминание.
	ReminderLead time.Duration
}

// DefaultMeetingScheduledConfig возвращает конфигурацию по умолчанию.
func DefaultMeetingScheduledConfig() MeetingScheduledConfig {
	return MeetingScheduledConfig{
		SendReminder: true,
		ReminderLead: 24 * time.Hour,
	}
}

// NewOnMeetingScheduledHandler создаёт новый обработчик события назначения встречи.
func NewOnMeetingScheduledHandler(
	studentRepo student.Repository,
	notificationRepo notification.Repository,
	idGenerator IDGenerator,
	logger *slog.Logger,
	config MeetingScheduledConfig,
) *OnMeetingScheduledHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnMeetingScheduledHandler{
		studentRepo:      studentRepo,
		notificationRepo: notificationRepo,
		idGenerator:      idGenerator,
		logger:           logger.With("handler", "on_meeting_scheduled"),
		config:           config,
	}
}

// Handle обрабатывает событие назначения встречи.
func (h *OnMeetingScheduledHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	meetingEvent, ok := event.(shared.MeetingScheduledEvent)
	if !ok {
		h.logger.Warn("received non-MeetingScheduledEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	meetingID := meetingEvent.AggregateID()

	h.logger.Info("processing meeting scheduled event",
		"meeting_id", meetingID,
		"student_id", meetingEvent.StudentID,
		"scheduled_for", meetingEvent.ScheduledFor,
	)

	if !h.config.SendReminder {
		return nil
	}

	if err := h.scheduleReminder(ctx, meetingEvent); err != nil {
		h.logger.Warn("failed to schedule meeting reminder",
			"meeting_id", meetingID,
			"error", err,
		)
		// Напоминание не критично, встреча остаётся в расписании
		return nil
	}

	h.logger.Info("meeting reminder scheduled",
		"meeting_id", meetingID,
	)

	return nil
}

// scheduleReminder создаёт отложенное напоминание учителю.
func (h *OnMeetingScheduledHandler) scheduleReminder(
	ctx context.Context,
	event shared.MeetingScheduledEvent,
) error {
	if h.notificationRepo == nil || h.idGenerator == nil {
		h.logger.Debug("notifications not configured, skipping")
		return nil
	}

	if event.TeacherID == "" {
		h.logger.Debug("meeting has no teacher, skipping reminder",
			"meeting_id", event.AggregateID(),
		)
		return nil
	}

	studentEntity, err := h.studentRepo.GetByID(ctx, event.StudentID)
	if err != nil {
		return fmt.Errorf("get student: %w", err)
	}

	message := fmt.Sprintf(
		"Parent-teacher meeting for %s (grade %s) on %s. Check the briefing before you go.",
		studentEntity.FullName(),
		studentEntity.PersonalInfo.Grade,
		event.ScheduledFor.Format("Mon, 02 Jan 2006 at 15:04"),
	)

	// Напоминание за ReminderLead до встречи; если встреча раньше,
	// уведомление уходит сразу (ScheduledFor == nil)
	var scheduledFor *time.Time
	remindAt := event.ScheduledFor.Add(-h.config.ReminderLead)
	if remindAt.After(time.Now()) {
		scheduledFor = &remindAt
	}

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:           notification.NotificationID(h.idGenerator.NotificationID()),
		RecipientID:  notification.RecipientID(event.TeacherID),
		Channel:      notification.ChannelEmail,
		Type:         notification.NotificationTypeMeetingReminder,
		Priority:     notification.PriorityNormal,
		Subject:      fmt.Sprintf("Upcoming meeting: %s", studentEntity.FullName()),
		Message:      message,
		StudentID:    event.StudentID,
		MeetingID:    event.AggregateID(),
		ScheduledFor: scheduledFor,
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
func (h *OnMeetingScheduledHandler) EventType() shared.EventType {
	return shared.EventMeetingScheduled
}
