package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

type fakeAssembler struct {
	profile *meeting.StudentProfile
	err     error
	calls   int
}

func (f *fakeAssembler) AssembleProfile(ctx context.Context, studentID string) (*meeting.StudentProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeBriefingCache struct {
	briefings map[string]*meeting.Briefing
	sets      int
}

func newFakeBriefingCache() *fakeBriefingCache {
	return &fakeBriefingCache{briefings: make(map[string]*meeting.Briefing)}
}

func (f *fakeBriefingCache) Get(ctx context.Context, studentID string) (*meeting.Briefing, error) {
	if b, ok := f.briefings[studentID]; ok {
		return b, nil
	}
	return nil, meeting.ErrBriefingNotFound
}

func (f *fakeBriefingCache) Set(ctx context.Context, studentID string, b *meeting.Briefing, ttl time.Duration) error {
	f.sets++
	f.briefings[studentID] = b
	return nil
}

func (f *fakeBriefingCache) Delete(ctx context.Context, studentID string) error {
	delete(f.briefings, studentID)
	return nil
}

func (f *fakeBriefingCache) DeleteAll(ctx context.Context) error {
	f.briefings = make(map[string]*meeting.Briefing)
	return nil
}

func briefingProfile() *meeting.StudentProfile {
	return &meeting.StudentProfile{
		PersonalInfo: meeting.PersonalInfo{
			FirstName: "Aruzhan",
			LastName:  "Bekova",
			Grade:     "5",
		},
		Academic: meeting.AcademicProfile{
			GPA: 3.9,
		},
	}
}

func TestGetTalkingPoints_Validation(t *testing.T) {
	h := NewGetTalkingPointsHandler(&fakeAssembler{}, meeting.NewGenerator(), nil)

	_, err := h.Handle(context.Background(), GetTalkingPointsQuery{})
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestGetTalkingPoints_GeneratesAndCaches(t *testing.T) {
	assembler := &fakeAssembler{profile: briefingProfile()}
	cache := newFakeBriefingCache()
	h := NewGetTalkingPointsHandler(assembler, meeting.NewGenerator(), cache)

	result, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001"})
	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, "Aruzhan Bekova", result.Briefing.MeetingSummary.StudentName)
	assert.Equal(t, time.Now().Format("2006-01-02"), result.GeneratedAt)
	assert.Equal(t, 1, assembler.calls)
	assert.Equal(t, 1, cache.sets)

	// GPA 3.9 produces the excellence point in the academic bucket
	academic := result.Briefing.TalkingPointsByCategory["academic"]
	assert.Len(t, academic, 1)
	assert.Equal(t, "high", academic[0].Priority)

	// Second read is served from cache without reassembling
	again, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001"})
	assert.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.Equal(t, 1, assembler.calls)
}

func TestGetTalkingPoints_RefreshBypassesCache(t *testing.T) {
	assembler := &fakeAssembler{profile: briefingProfile()}
	cache := newFakeBriefingCache()
	h := NewGetTalkingPointsHandler(assembler, meeting.NewGenerator(), cache)

	_, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001"})
	assert.NoError(t, err)

	result, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001", Refresh: true})
	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, assembler.calls)
	assert.Equal(t, 2, cache.sets)
}

func TestGetTalkingPoints_NotFoundPassesThrough(t *testing.T) {
	assembler := &fakeAssembler{err: shared.ErrStudentNotFound}
	h := NewGetTalkingPointsHandler(assembler, meeting.NewGenerator(), nil)

	_, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_MISSING1"})
	assert.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestGetTalkingPoints_IncompleteProfile(t *testing.T) {
	profile := briefingProfile()
	profile.PersonalInfo.Grade = ""
	h := NewGetTalkingPointsHandler(&fakeAssembler{profile: profile}, meeting.NewGenerator(), nil)

	_, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001"})
	assert.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}

func TestGetTalkingPoints_WithoutCache(t *testing.T) {
	assembler := &fakeAssembler{profile: briefingProfile()}
	h := NewGetTalkingPointsHandler(assembler, meeting.NewGenerator(), nil)

	first, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001"})
	assert.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := h.Handle(context.Background(), GetTalkingPointsQuery{StudentID: "STU_00000001"})
	assert.NoError(t, err)
	assert.False(t, second.FromCache)
	assert.Equal(t, 2, assembler.calls)
}
