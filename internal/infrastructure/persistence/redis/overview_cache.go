package redis

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/overview"
)

// OverviewCache implements overview.Cache on top of the generic Redis
// Cache. Only the latest snapshot per grade is cached; history reads go
// straight to PostgreSQL.
type OverviewCache struct {
	cache *Cache
}

// NewOverviewCache creates a new OverviewCache.
func NewOverviewCache(cache *Cache) *OverviewCache {
	return &OverviewCache{
		cache: cache,
	}
}

// GetCached returns the cached snapshot for a grade.
// Returns overview.ErrSnapshotNotFound on a cache miss.
func (o *OverviewCache) GetCached(ctx context.Context, grade string) (*overview.GradeSnapshot, error) {
	var snapshot overview.GradeSnapshot
	err := o.cache.Get(ctx, OverviewKey(grade), &snapshot)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, overview.ErrSnapshotNotFound
		}
		return nil, err
	}

	// The standing index is not serialized; rebuild it after deserialization.
	snapshot.RebuildIndex()
	return &snapshot, nil
}

// SetCached stores a snapshot with the given TTL.
func (o *OverviewCache) SetCached(ctx context.Context, snapshot *overview.GradeSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	return o.cache.Set(ctx, OverviewKey(snapshot.Grade), snapshot, ttl)
}

// Invalidate drops the cached snapshot for a grade.
func (o *OverviewCache) Invalidate(ctx context.Context, grade string) error {
	return o.cache.Delete(ctx, OverviewKey(grade))
}
