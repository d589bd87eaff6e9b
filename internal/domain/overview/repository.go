package overview

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет контракт хранилища снимков класса.
type Repository interface {
	// SaveSnapshot сохраняет новый снимок.
	SaveSnapshot(ctx context.Context, snapshot *GradeSnapshot) error

	// GetLatest возвращает последний снимок класса за учебный год.
	// Возвращает ErrSnapshotNotFound, если снимков ещё нет.
	GetLatest(ctx context.Context, grade, academicYear string) (*GradeSnapshot, error)

	// GetHistory возвращает последние снимки класса, новые первыми.
	GetHistory(ctx context.Context, grade, academicYear string, limit int) ([]*GradeSnapshot, error)

	// DeleteOlderThan удаляет снимки старше отметки.
	// Возвращает количество удалённых снимков.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Cache определяет контракт кеша последнего снимка.
type Cache interface {
	// GetCached возвращает закешированный снимок класса.
	// Возвращает ErrSnapshotNotFound при промахе.
	GetCached(ctx context.Context, grade string) (*GradeSnapshot, error)

	// SetCached сохраняет снимок с заданным TTL.
	SetCached(ctx context.Context, snapshot *GradeSnapshot, ttl time.Duration) error

	// Invalidate сбрасывает кеш класса.
	Invalidate(ctx context.Context, grade string) error
}
