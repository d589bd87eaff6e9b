package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMeetingSummaryPrompt(t *testing.T) {
	prompt := buildMeetingSummaryPrompt(MeetingSummaryInput{
		FirstName:          "Aliya",
		LastName:           "Bekova",
		Grade:              "5",
		CurrentGPA:         3.42,
		AttendanceRate:     0.95,
		LearningStyle:      "visual",
		ParticipationLevel: "high",
		TalkingPointsJSON:  `{"academic": []}`,
		Notes:              "Parents asked about math tutoring.",
	})

	assert.Contains(t, prompt, "Student: Aliya Bekova (Grade 5)")
	assert.Contains(t, prompt, "- Current GPA: 3.42")
	assert.Contains(t, prompt, "- Attendance Rate: 0.95")
	assert.Contains(t, prompt, "- Learning Style: visual")
	assert.Contains(t, prompt, "- Participation Level: high")
	assert.Contains(t, prompt, `{"academic": []}`)
	assert.Contains(t, prompt, "Additional Teacher Notes: Parents asked about math tutoring.")
	assert.Contains(t, prompt, "5. Next steps and follow-up timeline")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(prompt),
		"Keep the tone positive, constructive, and focused on the student's success."))
}

func TestBuildMeetingSummaryPrompt_MissingFieldsRenderAsNA(t *testing.T) {
	prompt := buildMeetingSummaryPrompt(MeetingSummaryInput{
		FirstName: "Timur",
		LastName:  "Akhmetov",
		Grade:     "3",
	})

	assert.Contains(t, prompt, "- Learning Style: N/A")
	assert.Contains(t, prompt, "- Participation Level: N/A")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), ClientConfig{})
	assert.ErrorIs(t, err, ErrAPIKeyMissing)
}

func TestRateLimiter_BurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 60,
		BurstSize:         2,
		WaitTimeout:       10 * time.Millisecond,
	})

	assert.True(t, rl.TryAllow())
	assert.True(t, rl.TryAllow())
	assert.False(t, rl.TryAllow(), "bucket should be empty after the burst")
}

func TestRateLimiter_QuotaHitEmptiesBucket(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 60,
		BurstSize:         3,
	})

	require.True(t, rl.TryAllow())
	rl.RecordQuotaHit()
	assert.False(t, rl.TryAllow())

	rl.Reset()
	assert.True(t, rl.TryAllow())
}

func TestRateLimiter_AllowRespectsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerMinute: 1,
		BurstSize:         1,
		WaitTimeout:       time.Minute,
	})
	require.True(t, rl.TryAllow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Allow(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(errors.New("rpc error: code 503 UNAVAILABLE")))
	assert.True(t, isRetryable(errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")))
	assert.True(t, isRetryable(errors.New("read tcp: connection reset by peer")))
	assert.True(t, isRetryable(ErrEmptyResponse))

	assert.False(t, isRetryable(nil))
	assert.False(t, isRetryable(errors.New("googleapi: Error 400: invalid argument")))
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, isQuotaError(errors.New("googleapi: Error 429: too many requests")))
	assert.True(t, isQuotaError(errors.New("quota exceeded for model")))
	assert.False(t, isQuotaError(errors.New("context deadline exceeded")))
}
