package notification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт хранилища уведомлений.
type Repository interface {
	// Create сохраняет новое уведомление.
	Create(ctx context.Context, n *Notification) error

	// GetByID возвращает уведомление по ID.
	// Возвращает ErrNotificationNotFound, если уведомление не существует.
	GetByID(ctx context.Context, id NotificationID) (*Notification, error)

	// Update обновляет уведомление (статус, счётчик попыток).
	Update(ctx context.Context, n *Notification) error

	// ListDue возвращает уведомления, готовые к отправке: pending или
	// failed с неисчерпанными попытками, у которых наступило ScheduledFor.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Notification, error)

	// ListByRecipient возвращает уведомления получателя, новые первыми.
	ListByRecipient(ctx context.Context, recipientID RecipientID, limit int) ([]*Notification, error)

	// CountByStatus возвращает количество уведомлений в каждом статусе.
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	// DeleteOlderThan удаляет конечные уведомления старше отметки.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sender доставляет уведомление по его каналу.
// Реализации живут в infrastructure (email, sms, дев-заглушка в лог).
type Sender interface {
	// Send выполняет одну попытку доставки.
	Send(ctx context.Context, n *Notification) error
}
