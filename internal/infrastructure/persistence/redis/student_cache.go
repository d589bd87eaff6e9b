package redis

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/student"
)

// StudentCache implements student.Cache on top of the generic Redis Cache.
type StudentCache struct {
	cache *Cache
}

// NewStudentCache creates a new StudentCache.
func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{
		cache: cache,
	}
}

// Get returns a cached student card.
// Returns student.ErrStudentNotFound on a cache miss.
func (s *StudentCache) Get(ctx context.Context, studentID string) (*student.Student, error) {
	var st student.Student
	err := s.cache.Get(ctx, StudentKey(studentID), &st)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, student.ErrStudentNotFound
		}
		return nil, err
	}
	return &st, nil
}

// Set stores a student card with the given TTL.
func (s *StudentCache) Set(ctx context.Context, st *student.Student, ttl time.Duration) error {
	if st == nil {
		return nil
	}
	return s.cache.Set(ctx, StudentKey(st.ID), st, ttl)
}

// Delete removes a student card from cache.
func (s *StudentCache) Delete(ctx context.Context, studentID string) error {
	return s.cache.Delete(ctx, StudentKey(studentID))
}

// Invalidate drops every cached key derived from the student: the card,
// the assembled profile, and the prepared briefing. Write-side handlers
// call this after any mutation so stale derived data never survives.
func (s *StudentCache) Invalidate(ctx context.Context, studentID string) error {
	return s.cache.Delete(ctx,
		StudentKey(studentID),
		ProfileKey(studentID),
		BriefingKey(studentID),
	)
}

// InvalidateAll clears all student cards and their derived keys.
func (s *StudentCache) InvalidateAll(ctx context.Context) error {
	for _, prefix := range []string{PrefixStudent, PrefixProfile, PrefixBriefing} {
		if err := s.cache.DeleteByPattern(ctx, prefix+"*"); err != nil {
			return err
		}
	}
	return nil
}
