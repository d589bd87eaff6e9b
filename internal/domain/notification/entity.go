// Package notification содержит доменную модель уведомлений BrightClass.
// Уведомления держат учителя в курсе подготовки к встречам: напоминания,
// готовые брифинги и сигналы об учениках в зоне риска.
package notification

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// NotificationID представляет уникальный идентификатор уведомления.
type NotificationID string

// IsValid проверяет, что ID не пустой.
func (id NotificationID) IsValid() bool {
	return len(id) > 0
}

// String возвращает строковое представление ID.
func (id NotificationID) String() string {
	return string(id)
}

// RecipientID представляет идентификатор получателя: учителя или родителя.
type RecipientID string

// IsValid проверяет, что ID получателя не пустой.
func (id RecipientID) IsValid() bool {
	return len(id) > 0
}

// String возвращает строковое представление ID получателя.
func (id RecipientID) String() string {
	return string(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// NotificationType определяет тип уведомления.
type NotificationType string

const (
	// NotificationTypeMeetingReminder - напоминание о предстоящей встрече.
	// "Встреча с родителями Аружан завтра в 15:00"
	NotificationTypeMeetingReminder NotificationType = "meeting_reminder"

	// NotificationTypeBriefingReady - брифинг к встрече подготовлен.
	NotificationTypeBriefingReady NotificationType = "briefing_ready"

	// NotificationTypeAtRiskAlert - ученик попал в зону риска.
	NotificationTypeAtRiskAlert NotificationType = "at_risk_alert"

	// NotificationTypeWeeklyDigest - еженедельная сводка по классу.
	NotificationTypeWeeklyDigest NotificationType = "weekly_digest"
)

// IsValid проверяет корректность типа.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypeMeetingReminder,
		NotificationTypeBriefingReady,
		NotificationTypeAtRiskAlert,
		NotificationTypeWeeklyDigest:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// CHANNEL & PRIORITY
// ══════════════════════════════════════════════════════════════════════════════

// Channel определяет канал доставки уведомления.
type Channel string

const (
	// ChannelEmail - доставка на email.
	ChannelEmail Channel = "email"

	// ChannelSMS - доставка по SMS на телефон родителя.
	ChannelSMS Channel = "sms"
)

// IsValid проверяет корректность канала.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS
}

// Priority определяет приоритет доставки.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// OrDefault возвращает приоритет или "normal", если не задан.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityNormal
	}
	return p
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет состояние уведомления в жизненном цикле доставки.
type Status string

const (
	// StatusPending - создано, ждёт отправки.
	StatusPending Status = "pending"

	// StatusSending - отправляется прямо сейчас.
	StatusSending Status = "sending"

	// StatusSent - успешно отправлено.
	StatusSent Status = "sent"

	// StatusFailed - отправка не удалась.
	StatusFailed Status = "failed"

	// StatusCancelled - отменено до отправки.
	StatusCancelled Status = "cancelled"
)

// IsFinal возвращает true для конечных статусов.
func (s Status) IsFinal() bool {
	return s == StatusSent || s == StatusCancelled
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// MaxRetries - максимальное количество попыток доставки.
const MaxRetries = 3

var (
	// ErrInvalidNotificationID - невалидный ID уведомления.
	ErrInvalidNotificationID = errors.New("invalid notification id: cannot be empty")

	// ErrInvalidNotificationType - невалидный тип уведомления.
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// ErrInvalidRecipientID - невалидный ID получателя.
	ErrInvalidRecipientID = errors.New("invalid recipient id: cannot be empty")

	// ErrInvalidChannel - невалидный канал доставки.
	ErrInvalidChannel = errors.New("invalid notification channel")

	// ErrEmptyMessage - пустое сообщение.
	ErrEmptyMessage = errors.New("notification message cannot be empty")

	// ErrInvalidStatusTransition - недопустимый переход статуса.
	ErrInvalidStatusTransition = errors.New("invalid notification status transition")

	// ErrMaxRetriesExceeded - исчерпаны попытки доставки.
	ErrMaxRetriesExceeded = errors.New("notification max retries exceeded")

	// ErrNotificationNotFound - уведомление не найдено.
	ErrNotificationNotFound = errors.New("notification not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Notification представляет одно уведомление получателю.
type Notification struct {
	// ID - уникальный идентификатор.
	ID NotificationID

	// RecipientID - получатель (учитель или родитель).
	RecipientID RecipientID

	// Channel - канал доставки.
	Channel Channel

	// Type - тип уведомления.
	Type NotificationType

	// Priority - приоритет доставки.
	Priority Priority

	// Subject - тема сообщения.
	Subject string

	// Message - текст сообщения.
	Message string

	// StudentID - ученик, к которому относится уведомление.
	StudentID string

	// MeetingID - встреча, к которой относится уведомление (опционально).
	MeetingID string

	// Status - текущий статус доставки.
	Status Status

	// RetryCount - количество неудачных попыток.
	RetryCount int

	// LastError - текст последней ошибки доставки.
	LastError string

	// ScheduledFor - не отправлять раньше этого момента (nil = сразу).
	ScheduledFor *time.Time

	// SentAt - момент успешной отправки.
	SentAt *time.Time

	// CreatedAt - момент создания.
	CreatedAt time.Time

	// UpdatedAt - момент последнего изменения.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewNotificationParams - параметры создания уведомления.
type NewNotificationParams struct {
	ID           NotificationID
	RecipientID  RecipientID
	Channel      Channel
	Type         NotificationType
	Priority     Priority
	Subject      string
	Message      string
	StudentID    string
	MeetingID    string
	ScheduledFor *time.Time
}

// NewNotification создаёт уведомление в статусе pending.
func NewNotification(params NewNotificationParams) (*Notification, error) {
	if !params.ID.IsValid() {
		return nil, ErrInvalidNotificationID
	}
	if !params.RecipientID.IsValid() {
		return nil, ErrInvalidRecipientID
	}
	if !params.Channel.IsValid() {
		return nil, ErrInvalidChannel
	}
	if !params.Type.IsValid() {
		return nil, ErrInvalidNotificationType
	}
	if params.Message == "" {
		return nil, ErrEmptyMessage
	}

	now := time.Now().UTC()
	return &Notification{
		ID:           params.ID,
		RecipientID:  params.RecipientID,
		Channel:      params.Channel,
		Type:         params.Type,
		Priority:     params.Priority.OrDefault(),
		Subject:      params.Subject,
		Message:      params.Message,
		StudentID:    params.StudentID,
		MeetingID:    params.MeetingID,
		Status:       StatusPending,
		ScheduledFor: params.ScheduledFor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// MarkSending переводит уведомление в статус "отправляется".
func (n *Notification) MarkSending() error {
	if n.Status != StatusPending && n.Status != StatusFailed {
		return ErrInvalidStatusTransition
	}
	n.Status = StatusSending
	n.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkSent помечает уведомление как отправленное.
func (n *Notification) MarkSent() error {
	if n.Status != StatusSending {
		return ErrInvalidStatusTransition
	}
	n.Status = StatusSent
	now := time.Now().UTC()
	n.SentAt = &now
	n.UpdatedAt = now
	return nil
}

// MarkFailed помечает попытку доставки как неудачную.
func (n *Notification) MarkFailed(errText string) error {
	if n.Status != StatusSending {
		return ErrInvalidStatusTransition
	}
	n.Status = StatusFailed
	n.LastError = errText
	n.RetryCount++
	n.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCancelled отменяет уведомление до отправки.
func (n *Notification) MarkCancelled() error {
	if n.Status.IsFinal() {
		return ErrInvalidStatusTransition
	}
	n.Status = StatusCancelled
	n.UpdatedAt = time.Now().UTC()
	return nil
}

// CanRetry возвращает true, если можно повторить доставку.
func (n *Notification) CanRetry() bool {
	return n.Status == StatusFailed && n.RetryCount < MaxRetries
}

// IsDue возвращает true, если уведомление пора отправлять.
func (n *Notification) IsDue(now time.Time) bool {
	if n.Status != StatusPending && !n.CanRetry() {
		return false
	}
	if n.ScheduledFor == nil {
		return true
	}
	return !now.Before(*n.ScheduledFor)
}

// String возвращает читаемое представление уведомления.
func (n *Notification) String() string {
	return fmt.Sprintf("Notification{%s: %s via %s to %s, status=%s}",
		n.ID, n.Type, n.Channel, n.RecipientID, n.Status)
}
