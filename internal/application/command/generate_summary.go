package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATE SUMMARY COMMAND
// Produces an AI-written meeting summary on top of the rule-based briefing.
// The briefing always comes first: the model narrates it, it never decides
// what to discuss.
// ══════════════════════════════════════════════════════════════════════════════

// GenerateSummaryCommand contains the data needed to generate a summary.
type GenerateSummaryCommand struct {
	// StudentID is the student the meeting is about (required).
	StudentID string

	// Notes are additional teacher notes woven into the summary.
	Notes string
}

// Validate validates the command.
func (c GenerateSummaryCommand) Validate() error {
	if c.StudentID == "" {
		return errors.New("generate_summary: student_id is required")
	}
	return nil
}

// GenerateSummaryResult contains the generated summary and its inputs.
type GenerateSummaryResult struct {
	// SummaryText is the AI-written meeting summary.
	SummaryText string

	// StudentID identifies the student.
	StudentID string

	// StudentName is the student's full name.
	StudentName string

	// Grade is the student's grade level.
	Grade string

	// TalkingPoints is the briefing the summary was written from.
	TalkingPoints query.BriefingDTO

	// GeneratedAt is the briefing date (YYYY-MM-DD).
	GeneratedAt string
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// SummaryRequest carries everything the language model needs to write
// a meeting summary.
type SummaryRequest struct {
	FirstName        string
	LastName         string
	Grade            string
	DataSummary      query.DataSummaryDTO
	PointsByCategory map[string][]query.CategoryPointDTO
	Notes            string
}

// Summarizer writes meeting summaries. The Gemini-backed implementation
// lives in infrastructure/external.
type Summarizer interface {
	// SummarizeMeeting returns the summary text for the request.
	SummarizeMeeting(ctx context.Context, req SummaryRequest) (string, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GenerateSummaryHandler handles the GenerateSummaryCommand.
type GenerateSummaryHandler struct {
	studentRepo   student.Repository
	talkingPoints *query.GetTalkingPointsHandler
	summarizer    Summarizer

	// Configuration
	summarizeTimeout time.Duration
}

// GenerateSummaryHandlerConfig contains configuration for the handler.
type GenerateSummaryHandlerConfig struct {
	SummarizeTimeout time.Duration
}

// DefaultGenerateSummaryHandlerConfig returns default configuration.
func DefaultGenerateSummaryHandlerConfig() GenerateSummaryHandlerConfig {
	return GenerateSummaryHandlerConfig{
		SummarizeTimeout: 30 * time.Second,
	}
}

// NewGenerateSummaryHandler creates a new GenerateSummaryHandler.
// summarizer may be nil when AI summaries are disabled.
func NewGenerateSummaryHandler(
	studentRepo student.Repository,
	talkingPoints *query.GetTalkingPointsHandler,
	summarizer Summarizer,
	config GenerateSummaryHandlerConfig,
) *GenerateSummaryHandler {
	if config.SummarizeTimeout == 0 {
		config = DefaultGenerateSummaryHandlerConfig()
	}

	return &GenerateSummaryHandler{
		studentRepo:      studentRepo,
		talkingPoints:    talkingPoints,
		summarizer:       summarizer,
		summarizeTimeout: config.SummarizeTimeout,
	}
}

// Handle executes the generate summary command.
func (h *GenerateSummaryHandler) Handle(ctx context.Context, cmd GenerateSummaryCommand) (*GenerateSummaryResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("generate_summary: validation failed: %w", err)
	}

	if h.summarizer == nil {
		return nil, fmt.Errorf("generate_summary: %w", shared.ErrServiceUnavailable)
	}

	card, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("generate_summary: failed to load student: %w", err)
	}

	briefing, err := h.talkingPoints.Handle(ctx, query.GetTalkingPointsQuery{StudentID: card.ID})
	if err != nil {
		return nil, fmt.Errorf("generate_summary: failed to build briefing: %w", err)
	}

	summarizeCtx, cancel := context.WithTimeout(ctx, h.summarizeTimeout)
	defer cancel()

	text, err := h.summarizer.SummarizeMeeting(summarizeCtx, SummaryRequest{
		FirstName:        card.PersonalInfo.FirstName,
		LastName:         card.PersonalInfo.LastName,
		Grade:            card.PersonalInfo.Grade,
		DataSummary:      briefing.Briefing.StudentDataSummary,
		PointsByCategory: briefing.Briefing.TalkingPointsByCategory,
		Notes:            cmd.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("generate_summary: summarizer failed: %w", err)
	}

	return &GenerateSummaryResult{
		SummaryText:   text,
		StudentID:     card.ID,
		StudentName:   card.FullName(),
		Grade:         card.PersonalInfo.Grade,
		TalkingPoints: briefing.Briefing,
		GeneratedAt:   briefing.GeneratedAt,
	}, nil
}
