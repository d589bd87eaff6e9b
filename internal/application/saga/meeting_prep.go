// Package saga contains complex business processes that orchestrate
// multiple domain operations in a coordinated manner.
// Sagas ensure consistency across operations and handle compensation on failures.
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/shared"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEETING PREP SAGA
// Complex business process: Preparing a scheduled parent-teacher meeting
// Flow: Load Meeting → Check Status → Load Student → Build Briefing →
//
//	Write Summary → Mark Prepared → Notify Teacher → Publish Event
//
// ══════════════════════════════════════════════════════════════════════════════

// MeetingPrepInput contains all data required to prepare a meeting.
type MeetingPrepInput struct {
	// MeetingID - identifier of the scheduled meeting (required).
	MeetingID string

	// SkipSummary - skip the AI summary step even when a writer is configured.
	SkipSummary bool
}

// Validate checks if the input is valid for preparation.
func (i MeetingPrepInput) Validate() error {
	if i.MeetingID == "" {
		return errors.New("meeting_prep: meeting ID is required")
	}
	return nil
}

// MeetingPrepResult contains the result of a successful preparation.
type MeetingPrepResult struct {
	// MeetingID - the prepared meeting.
	MeetingID string

	// StudentID - the student the meeting is about.
	StudentID string

	// Briefing - the generated talking points briefing.
	Briefing query.BriefingDTO

	// SummaryText - AI narration of the briefing, empty when skipped or failed.
	SummaryText string

	// NotificationID - ID of the teacher notification, empty when not sent.
	NotificationID string

	// PreparedAt - timestamp of successful preparation.
	PreparedAt time.Time
}

// MeetingPrepStep represents a step in the preparation process.
type MeetingPrepStep string

const (
	StepValidateInput MeetingPrepStep = "validate_input"
	StepLoadMeeting   MeetingPrepStep = "load_meeting"
	StepCheckStatus   MeetingPrepStep = "check_status"
	StepLoadStudent   MeetingPrepStep = "load_student"
	StepBuildBriefing MeetingPrepStep = "build_briefing"
	StepWriteSummary  MeetingPrepStep = "write_summary"
	StepMarkPrepared  MeetingPrepStep = "mark_prepared"
	StepNotifyTeacher MeetingPrepStep = "notify_teacher"
	StepPublishEvent  MeetingPrepStep = "publish_event"
	StepComplete      MeetingPrepStep = "complete"
)

// MeetingPrepState tracks the current state of the preparation saga.
type MeetingPrepState struct {
	CurrentStep MeetingPrepStep
	Input       MeetingPrepInput
	Meeting     *meeting.ScheduledMeeting
	Student     *student.Student
	Briefing    *query.GetTalkingPointsResult
	SummaryText string
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       error
	FailedStep  MeetingPrepStep
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// BriefingBuilder assembles the talking points briefing for a student.
// *query.GetTalkingPointsHandler satisfies it.
type BriefingBuilder interface {
	// Handle builds and returns the briefing for the given query.
	Handle(ctx context.Context, q query.GetTalkingPointsQuery) (*query.GetTalkingPointsResult, error)
}

// SummaryWriter narrates a prepared briefing into short meeting prose.
// The Gemini-backed client in infrastructure satisfies it.
type SummaryWriter interface {
	// SummarizeMeeting turns the briefing request into a few paragraphs of text.
	SummarizeMeeting(ctx context.Context, req command.SummaryRequest) (string, error)
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	// NotificationID generates a new notification ID.
	NotificationID() string
}

// ══════════════════════════════════════════════════════════════════════════════
// MEETING PREP SAGA IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MeetingPrepSaga orchestrates the complete meeting preparation process.
// It follows the Saga pattern to ensure consistency across multiple operations.
//
// Philosophy: a teacher walking into a parent meeting should already hold
// everything worth discussing. The saga front-loads that work so the meeting
// itself can be about the student, not about pulling up records.
type MeetingPrepSaga struct {
	// Dependencies (injected via constructor)
	meetingRepo      meeting.Repository
	studentRepo      student.Repository
	briefings        BriefingBuilder
	summaryWriter    SummaryWriter
	notificationRepo notification.Repository
	eventBus         shared.EventPublisher
	idGenerator      IDGenerator

	// Configuration
	refreshBriefing bool
	summaryEnabled  bool
	summaryTimeout  time.Duration
}

// MeetingPrepConfig contains configuration for the preparation saga.
type MeetingPrepConfig struct {
	// RefreshBriefing bypasses the briefing cache so preparation always
	// reflects the latest assessments and incidents.
	RefreshBriefing bool

	// SummaryEnabled toggles the AI summary step globally.
	SummaryEnabled bool

	// SummaryTimeout bounds the AI summary step.
	SummaryTimeout time.Duration
}

// DefaultMeetingPrepConfig returns default configuration.
func DefaultMeetingPrepConfig() MeetingPrepConfig {
	return MeetingPrepConfig{
		RefreshBriefing: true,
		SummaryEnabled:  true,
		SummaryTimeout:  30 * time.Second,
	}
}

// NewMeetingPrepSaga creates a new preparation saga with all dependencies.
// summaryWriter and notificationRepo may be nil, the corresponding steps
// are then skipped.
func NewMeetingPrepSaga(
	meetingRepo meeting.Repository,
	studentRepo student.Repository,
	briefings BriefingBuilder,
	summaryWriter SummaryWriter,
	notificationRepo notification.Repository,
	eventBus shared.EventPublisher,
	idGenerator IDGenerator,
	config MeetingPrepConfig,
) *MeetingPrepSaga {
	return &MeetingPrepSaga{
		meetingRepo:      meetingRepo,
		studentRepo:      studentRepo,
		briefings:        briefings,
		summaryWriter:    summaryWriter,
		notificationRepo: notificationRepo,
		eventBus:         eventBus,
		idGenerator:      idGenerator,
		refreshBriefing:  config.RefreshBriefing,
		summaryEnabled:   config.SummaryEnabled,
		summaryTimeout:   config.SummaryTimeout,
	}
}

// Execute runs the complete preparation process.
// It returns the result on success or an error with context about the failure.
func (s *MeetingPrepSaga) Execute(ctx context.Context, input MeetingPrepInput) (*MeetingPrepResult, error) {
	state := &MeetingPrepState{
		CurrentStep: StepValidateInput,
		Input:       input,
		StartedAt:   time.Now().UTC(),
	}

	// Step 1: Validate input
	if err := s.stepValidateInput(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 2: Load the meeting
	state.CurrentStep = StepLoadMeeting
	if err := s.stepLoadMeeting(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 3: Check the meeting is awaiting preparation
	state.CurrentStep = StepCheckStatus
	if err := s.stepCheckStatus(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 4: Load the student card
	state.CurrentStep = StepLoadStudent
	if err := s.stepLoadStudent(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 5: Build the talking points briefing
	state.CurrentStep = StepBuildBriefing
	if err := s.stepBuildBriefing(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 6: Write the AI summary
	state.CurrentStep = StepWriteSummary
	if err := s.stepWriteSummary(ctx, state); err != nil {
		// Non-critical - the briefing alone is a complete preparation,
		// the meeting proceeds without the narrated summary
		state.SummaryText = ""
	}

	// Step 7: Mark the meeting prepared
	state.CurrentStep = StepMarkPrepared
	if err := s.stepMarkPrepared(ctx, state); err != nil {
		return nil, s.wrapError(state, err)
	}

	// Step 8: Notify the teacher
	state.CurrentStep = StepNotifyTeacher
	notificationID, err := s.stepNotifyTeacher(ctx, state)
	if err != nil {
		// Non-critical - the briefing is ready either way
		notificationID = ""
	}

	// Step 9: Publish domain event
	state.CurrentStep = StepPublishEvent
	if err := s.stepPublishEvent(ctx, state); err != nil {
		// Non-critical - events can be replayed later
	}

	// Complete
	state.CurrentStep = StepComplete
	now := time.Now().UTC()
	state.CompletedAt = &now

	return &MeetingPrepResult{
		MeetingID:      state.Meeting.ID,
		StudentID:      state.Meeting.StudentID,
		Briefing:       state.Briefing.Briefing,
		SummaryText:    state.SummaryText,
		NotificationID: notificationID,
		PreparedAt:     now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SAGA STEPS
// ══════════════════════════════════════════════════════════════════════════════

// stepValidateInput validates all input parameters.
func (s *MeetingPrepSaga) stepValidateInput(ctx context.Context, state *MeetingPrepState) error {
	if err := state.Input.Validate(); err != nil {
		state.FailedStep = StepValidateInput
		state.Error = err
		return err
	}
	return nil
}

// stepLoadMeeting fetches the meeting from the repository.
func (s *MeetingPrepSaga) stepLoadMeeting(ctx context.Context, state *MeetingPrepState) error {
	m, err := s.meetingRepo.GetByID(ctx, state.Input.MeetingID)
	if err != nil {
		state.FailedStep = StepLoadMeeting
		if errors.Is(err, meeting.ErrMeetingNotFound) {
			state.Error = fmt.Errorf("meeting_prep: %w", err)
		} else {
			state.Error = fmt.Errorf("failed to load meeting: %w", err)
		}
		return state.Error
	}

	state.Meeting = m
	return nil
}

// stepCheckStatus verifies the meeting is in a preparable state.
func (s *MeetingPrepSaga) stepCheckStatus(ctx context.Context, state *MeetingPrepState) error {
	switch state.Meeting.Status {
	case meeting.StatusScheduled:
		return nil
	case meeting.StatusPrepared:
		state.FailedStep = StepCheckStatus
		state.Error = ErrMeetingAlreadyPrepared
	default:
		state.FailedStep = StepCheckStatus
		state.Error = ErrMeetingNotPreparable
	}
	return state.Error
}

// stepLoadStudent fetches the student card the meeting is about.
func (s *MeetingPrepSaga) stepLoadStudent(ctx context.Context, state *MeetingPrepState) error {
	st, err := s.studentRepo.GetByID(ctx, state.Meeting.StudentID)
	if err != nil {
		state.FailedStep = StepLoadStudent
		state.Error = fmt.Errorf("failed to load student: %w", err)
		return state.Error
	}

	if !st.Status.IsEnrolled() {
		state.FailedStep = StepLoadStudent
		state.Error = ErrStudentNoLongerEnrolled
		return state.Error
	}

	state.Student = st
	return nil
}

// stepBuildBriefing runs the talking points pipeline for the student.
func (s *MeetingPrepSaga) stepBuildBriefing(ctx context.Context, state *MeetingPrepState) error {
	result, err := s.briefings.Handle(ctx, query.GetTalkingPointsQuery{
		StudentID: state.Meeting.StudentID,
		Refresh:   s.refreshBriefing,
	})
	if err != nil {
		state.FailedStep = StepBuildBriefing
		state.Error = fmt.Errorf("failed to build briefing: %w", err)
		return state.Error
	}

	state.Briefing = result
	return nil
}

// stepWriteSummary asks the AI writer to narrate the briefing.
func (s *MeetingPrepSaga) stepWriteSummary(ctx context.Context, state *MeetingPrepState) error {
	if s.summaryWriter == nil || !s.summaryEnabled || state.Input.SkipSummary {
		return nil
	}

	summaryCtx, cancel := context.WithTimeout(ctx, s.summaryTimeout)
	defer cancel()

	text, err := s.summaryWriter.SummarizeMeeting(summaryCtx, command.SummaryRequest{
		FirstName:        state.Student.PersonalInfo.FirstName,
		LastName:         state.Student.PersonalInfo.LastName,
		Grade:            state.Student.PersonalInfo.Grade,
		DataSummary:      state.Briefing.Briefing.StudentDataSummary,
		PointsByCategory: state.Briefing.Briefing.TalkingPointsByCategory,
		Notes:            state.Meeting.Notes,
	})
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	state.SummaryText = text
	return nil
}

// stepMarkPrepared transitions the meeting and stamps the student card.
func (s *MeetingPrepSaga) stepMarkPrepared(ctx context.Context, state *MeetingPrepState) error {
	if err := state.Meeting.MarkPrepared(); err != nil {
		state.FailedStep = StepMarkPrepared
		state.Error = fmt.Errorf("failed to mark meeting prepared: %w", err)
		return state.Error
	}

	if err := s.meetingRepo.Update(ctx, state.Meeting); err != nil {
		state.FailedStep = StepMarkPrepared
		state.Error = fmt.Errorf("failed to persist meeting: %w", err)
		return state.Error
	}

	// The meeting status is the source of truth, a stale card timestamp
	// only affects the "last prep" display
	state.Student.MarkMeetingPrepared(*state.Meeting.PreparedAt)
	_ = s.studentRepo.Update(ctx, state.Student)

	return nil
}

// stepNotifyTeacher creates a briefing-ready notification for the teacher.
func (s *MeetingPrepSaga) stepNotifyTeacher(ctx context.Context, state *MeetingPrepState) (string, error) {
	if s.notificationRepo == nil {
		return "", nil
	}

	n, err := notification.NewNotification(notification.NewNotificationParams{
		ID:          notification.NotificationID(s.idGenerator.NotificationID()),
		RecipientID: notification.RecipientID(state.Meeting.TeacherID),
		Channel:     notification.ChannelEmail,
		Type:        notification.NotificationTypeBriefingReady,
		Priority:    notification.PriorityNormal,
		Subject:     fmt.Sprintf("Briefing ready: %s", state.Student.FullName()),
		Message:     s.buildBriefingReadyMessage(state),
		StudentID:   state.Meeting.StudentID,
		MeetingID:   state.Meeting.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return "", fmt.Errorf("failed to schedule notification: %w", err)
	}

	return string(n.ID), nil
}

// stepPublishEvent publishes the MeetingPrepared domain event.
func (s *MeetingPrepSaga) stepPublishEvent(ctx context.Context, state *MeetingPrepState) error {
	event := shared.NewMeetingPreparedEvent(
		state.Meeting.ID,
		state.Meeting.StudentID,
		state.Briefing.Briefing.MeetingSummary.TotalTalkingPoints,
		state.SummaryText != "",
	)

	if err := s.eventBus.Publish(event); err != nil {
		return fmt.Errorf("failed to publish meeting prepared event: %w", err)
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// buildBriefingReadyMessage creates the notification body for the teacher.
func (s *MeetingPrepSaga) buildBriefingReadyMessage(state *MeetingPrepState) string {
	summary := state.Briefing.Briefing.MeetingSummary

	message := fmt.Sprintf(
		"The briefing for %s (grade %s) is ready: %d talking points, %d high priority, %d requiring action.",
		state.Student.FullName(),
		state.Student.PersonalInfo.Grade,
		summary.TotalTalkingPoints,
		summary.HighPriorityItems,
		summary.ActionItems,
	)

	if state.SummaryText != "" {
		message += " An AI meeting summary is attached to the briefing."
	}

	message += fmt.Sprintf(
		" The meeting is scheduled for %s.",
		state.Meeting.ScheduledFor.Format("Mon, 02 Jan 2006 at 15:04"),
	)

	return message
}

// wrapError wraps an error with saga context.
func (s *MeetingPrepSaga) wrapError(state *MeetingPrepState, err error) error {
	return &MeetingPrepError{
		Step:    state.FailedStep,
		Input:   state.Input,
		Cause:   err,
		Message: fmt.Sprintf("meeting prep failed at step '%s': %v", state.FailedStep, err),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// MeetingPrepError represents an error during the preparation process.
type MeetingPrepError struct {
	Step    MeetingPrepStep
	Input   MeetingPrepInput
	Cause   error
	Message string
}

// Error implements the error interface.
func (e *MeetingPrepError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *MeetingPrepError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error can be retried.
func (e *MeetingPrepError) IsRetryable() bool {
	// Validation and state errors are not retryable
	if e.Step == StepValidateInput || e.Step == StepCheckStatus {
		return false
	}
	// A missing meeting or student will not appear on retry
	if shared.IsNotFound(e.Cause) || errors.Is(e.Cause, meeting.ErrMeetingNotFound) {
		return false
	}
	// An incomplete profile needs data entry, not a retry
	if e.Step == StepBuildBriefing {
		return !shared.IsValidation(e.Cause)
	}
	if e.Step == StepLoadStudent {
		return !errors.Is(e.Cause, ErrStudentNoLongerEnrolled) &&
			!errors.Is(e.Cause, student.ErrStudentNotFound)
	}
	return true
}

// Saga-specific errors.
var (
	// ErrMeetingAlreadyPrepared - the briefing for this meeting is already done.
	ErrMeetingAlreadyPrepared = errors.New("meeting_prep: meeting already prepared")

	// ErrMeetingNotPreparable - the meeting is completed or cancelled.
	ErrMeetingNotPreparable = errors.New("meeting_prep: meeting is not awaiting preparation")

	// ErrStudentNoLongerEnrolled - the student left the school after scheduling.
	ErrStudentNoLongerEnrolled = errors.New("meeting_prep: student is no longer enrolled")
)
