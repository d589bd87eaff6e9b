package meeting

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Контракты хранилищ. Реализации живут в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт хранилища встреч.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create сохраняет новую встречу.
	// Возвращает ErrMeetingAlreadyExists при конфликте ID.
	Create(ctx context.Context, meeting *ScheduledMeeting) error

	// GetByID возвращает встречу по ID.
	// Возвращает ErrMeetingNotFound, если встреча не существует.
	GetByID(ctx context.Context, id string) (*ScheduledMeeting, error)

	// Update обновляет существующую встречу.
	Update(ctx context.Context, meeting *ScheduledMeeting) error

	// Delete удаляет встречу.
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────────────────────────────────
	// Listing
	// ─────────────────────────────────────────────────────────────────────────

	// GetByStudent возвращает встречи ученика, новые первыми.
	GetByStudent(ctx context.Context, studentID string) ([]*ScheduledMeeting, error)

	// GetByTeacher возвращает встречи учителя, ближайшие первыми.
	GetByTeacher(ctx context.Context, teacherID string) ([]*ScheduledMeeting, error)

	// ListUpcoming возвращает незавершённые встречи в пределах горизонта.
	ListUpcoming(ctx context.Context, within time.Duration) ([]*ScheduledMeeting, error)

	// ListUnprepared возвращает встречи в статусе scheduled, назначенные
	// до указанного момента. Используется фоновой подготовкой брифингов.
	ListUnprepared(ctx context.Context, before time.Time) ([]*ScheduledMeeting, error)

	// Count возвращает общее количество встреч.
	Count(ctx context.Context) (int64, error)
}

// BriefingCache определяет контракт кеша готовых брифингов по ученикам.
type BriefingCache interface {
	// Get возвращает брифинг из кеша.
	// Возвращает ErrBriefingNotFound при промахе.
	Get(ctx context.Context, studentID string) (*Briefing, error)

	// Set сохраняет брифинг с заданным TTL.
	Set(ctx context.Context, studentID string, briefing *Briefing, ttl time.Duration) error

	// Delete инвалидирует брифинг ученика.
	Delete(ctx context.Context, studentID string) error

	// DeleteAll инвалидирует все брифинги.
	DeleteAll(ctx context.Context) error
}
