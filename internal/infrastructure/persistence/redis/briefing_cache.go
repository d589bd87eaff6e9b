package redis

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
)

// BriefingCache implements meeting.BriefingCache on top of the generic
// Redis Cache. Briefings are expensive to assemble (profile read plus
// evaluator pass), so a prepared briefing is kept hot until the student's
// data changes or the TTL expires.
type BriefingCache struct {
	cache *Cache
}

// NewBriefingCache creates a new BriefingCache.
func NewBriefingCache(cache *Cache) *BriefingCache {
	return &BriefingCache{
		cache: cache,
	}
}

// Get returns a cached briefing.
// Returns meeting.ErrBriefingNotFound on a cache miss.
func (b *BriefingCache) Get(ctx context.Context, studentID string) (*meeting.Briefing, error) {
	var briefing meeting.Briefing
	err := b.cache.Get(ctx, BriefingKey(studentID), &briefing)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, meeting.ErrBriefingNotFound
		}
		return nil, err
	}
	return &briefing, nil
}

// Set stores a briefing with the given TTL.
func (b *BriefingCache) Set(ctx context.Context, studentID string, briefing *meeting.Briefing, ttl time.Duration) error {
	if briefing == nil {
		return nil
	}
	return b.cache.Set(ctx, BriefingKey(studentID), briefing, ttl)
}

// Delete invalidates a student's briefing.
func (b *BriefingCache) Delete(ctx context.Context, studentID string) error {
	return b.cache.Delete(ctx, BriefingKey(studentID))
}

// DeleteAll invalidates every cached briefing.
func (b *BriefingCache) DeleteAll(ctx context.Context) error {
	return b.cache.DeleteByPattern(ctx, PrefixBriefing+"*")
}
