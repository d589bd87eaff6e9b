package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/infrastructure/external/gemini"
)

// GeminiSummarizer adapts the Gemini client to the application's summarizer
// contracts. One SummarizeMeeting method serves both the summary command
// handler and the preparation saga.
type GeminiSummarizer struct {
	client *gemini.Client
}

// NewGeminiSummarizer creates a new Gemini-backed summarizer.
func NewGeminiSummarizer(client *gemini.Client) *GeminiSummarizer {
	return &GeminiSummarizer{client: client}
}

// SummarizeMeeting narrates the briefing into meeting prose.
func (s *GeminiSummarizer) SummarizeMeeting(ctx context.Context, req command.SummaryRequest) (string, error) {
	points, err := json.MarshalIndent(req.PointsByCategory, "", "  ")
	if err != nil {
		return "", fmt.Errorf("summarizer: encode talking points: %w", err)
	}

	return s.client.WriteMeetingSummary(ctx, gemini.MeetingSummaryInput{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Grade:              req.Grade,
		CurrentGPA:         req.DataSummary.CurrentGPA,
		AttendanceRate:     req.DataSummary.AttendanceRate,
		LearningStyle:      req.DataSummary.LearningStyle,
		ParticipationLevel: req.DataSummary.ParticipationLevel,
		TalkingPointsJSON:  string(points),
		Notes:              req.Notes,
	})
}

// IsHealthy reports whether the underlying client currently accepts requests.
func (s *GeminiSummarizer) IsHealthy() bool {
	return s.client.IsHealthy()
}
