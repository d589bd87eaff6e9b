// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Student events
	EventStudentRegistered  EventType = "student.registered"
	EventStudentUpdated     EventType = "student.updated"
	EventStudentsImported   EventType = "student.imported"
	EventStudentDeactivated EventType = "student.deactivated"

	// Academic record events
	EventAssessmentRecorded    EventType = "academic.assessment_recorded"
	EventIncidentRecorded      EventType = "academic.incident_recorded"
	EventCommunicationRecorded EventType = "academic.communication_recorded"

	// Meeting events
	EventMeetingScheduled EventType = "meeting.scheduled"
	EventMeetingPrepared  EventType = "meeting.prepared"
	EventMeetingCompleted EventType = "meeting.completed"
	EventMeetingCancelled EventType = "meeting.cancelled"

	// Briefing events
	EventBriefingGenerated EventType = "briefing.generated"
	EventAtRiskDetected    EventType = "briefing.at_risk_detected"

	// Notification events
	EventNotificationSent   EventType = "notification.sent"
	EventNotificationFailed EventType = "notification.failed"

	// System events
	EventRefreshCompleted EventType = "system.refresh_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentRegisteredEvent is emitted when a new student is added to the roster.
type StudentRegisteredEvent struct {
	BaseEvent
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     string `json:"grade"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// Payload implements Event interface.
func (e StudentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"first_name": e.FirstName,
		"last_name":  e.LastName,
		"grade":      e.Grade,
		"teacher_id": e.TeacherID,
	}
}

// NewStudentRegisteredEvent creates a new StudentRegisteredEvent.
func NewStudentRegisteredEvent(studentID, firstName, lastName, grade, teacherID string) StudentRegisteredEvent {
	return StudentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventStudentRegistered, studentID),
		FirstName: firstName,
		LastName:  lastName,
		Grade:     grade,
		TeacherID: teacherID,
	}
}

// StudentUpdatedEvent is emitted when a student's profile changes. Consumers
// use it to invalidate cached profiles and briefings.
type StudentUpdatedEvent struct {
	BaseEvent
	ChangedSections []string `json:"changed_sections"`
}

// Payload implements Event interface.
func (e StudentUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"changed_sections": e.ChangedSections,
	}
}

// NewStudentUpdatedEvent creates a new StudentUpdatedEvent.
func NewStudentUpdatedEvent(studentID string, changedSections []string) StudentUpdatedEvent {
	return StudentUpdatedEvent{
		BaseEvent:       NewBaseEvent(EventStudentUpdated, studentID),
		ChangedSections: changedSections,
	}
}

// StudentsImportedEvent is emitted after a bulk roster import commits.
type StudentsImportedEvent struct {
	BaseEvent
	Count     int    `json:"count"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// Payload implements Event interface.
func (e StudentsImportedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"count":      e.Count,
		"teacher_id": e.TeacherID,
	}
}

// NewStudentsImportedEvent creates a new StudentsImportedEvent. The batch ID
// serves as the aggregate.
func NewStudentsImportedEvent(batchID string, count int, teacherID string) StudentsImportedEvent {
	return StudentsImportedEvent{
		BaseEvent: NewBaseEvent(EventStudentsImported, batchID),
		Count:     count,
		TeacherID: teacherID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Academic Record Events
// ═══════════════════════════════════════════════════════════════════════════

// AssessmentRecordedEvent is emitted when a new assessment result is stored.
// Handlers recompute the student's subject rollups and GPA from it.
type AssessmentRecordedEvent struct {
	BaseEvent
	AssessmentID string  `json:"assessment_id"`
	Subject      string  `json:"subject"`
	Type         string  `json:"assessment_type"`
	Percentage   float64 `json:"percentage"`
}

// Payload implements Event interface.
func (e AssessmentRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"assessment_id":   e.AssessmentID,
		"subject":         e.Subject,
		"assessment_type": e.Type,
		"percentage":      e.Percentage,
	}
}

// NewAssessmentRecordedEvent creates a new AssessmentRecordedEvent.
func NewAssessmentRecordedEvent(studentID, assessmentID, subject, assessmentType string, percentage float64) AssessmentRecordedEvent {
	return AssessmentRecordedEvent{
		BaseEvent:    NewBaseEvent(EventAssessmentRecorded, studentID),
		AssessmentID: assessmentID,
		Subject:      subject,
		Type:         assessmentType,
		Percentage:   percentage,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Meeting Events
// ═══════════════════════════════════════════════════════════════════════════

// MeetingScheduledEvent is emitted when a parent-teacher meeting is booked.
// It triggers the preparation saga.
type MeetingScheduledEvent struct {
	BaseEvent
	StudentID    string    `json:"student_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	TeacherID    string    `json:"teacher_id,omitempty"`
}

// Payload implements Event interface.
func (e MeetingScheduledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":    e.StudentID,
		"scheduled_for": e.ScheduledFor.Format(time.RFC3339),
		"teacher_id":    e.TeacherID,
	}
}

// NewMeetingScheduledEvent creates a new MeetingScheduledEvent.
func NewMeetingScheduledEvent(meetingID, studentID string, scheduledFor time.Time, teacherID string) MeetingScheduledEvent {
	return MeetingScheduledEvent{
		BaseEvent:    NewBaseEvent(EventMeetingScheduled, meetingID),
		StudentID:    studentID,
		ScheduledFor: scheduledFor,
		TeacherID:    teacherID,
	}
}

// MeetingCompletedEvent is emitted when a meeting is marked as held.
type MeetingCompletedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
}

// Payload implements Event interface.
func (e MeetingCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
	}
}

// NewMeetingCompletedEvent creates a new MeetingCompletedEvent.
func NewMeetingCompletedEvent(meetingID, studentID string) MeetingCompletedEvent {
	return MeetingCompletedEvent{
		BaseEvent: NewBaseEvent(EventMeetingCompleted, meetingID),
		StudentID: studentID,
	}
}

// MeetingCancelledEvent is emitted when a meeting is called off.
type MeetingCancelledEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Reason    string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e MeetingCancelledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"reason":     e.Reason,
	}
}

// NewMeetingCancelledEvent creates a new MeetingCancelledEvent.
func NewMeetingCancelledEvent(meetingID, studentID, reason string) MeetingCancelledEvent {
	return MeetingCancelledEvent{
		BaseEvent: NewBaseEvent(EventMeetingCancelled, meetingID),
		StudentID: studentID,
		Reason:    reason,
	}
}

// MeetingPreparedEvent is emitted when the preparation saga finishes and the
// briefing for the meeting is ready.
type MeetingPreparedEvent struct {
	BaseEvent
	StudentID     string `json:"student_id"`
	TalkingPoints int    `json:"talking_points"`
	HasAISummary  bool   `json:"has_ai_summary"`
}

// Payload implements Event interface.
func (e MeetingPreparedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":     e.StudentID,
		"talking_points": e.TalkingPoints,
		"has_ai_summary": e.HasAISummary,
	}
}

// NewMeetingPreparedEvent creates a new MeetingPreparedEvent.
func NewMeetingPreparedEvent(meetingID, studentID string, talkingPoints int, hasAISummary bool) MeetingPreparedEvent {
	return MeetingPreparedEvent{
		BaseEvent:     NewBaseEvent(EventMeetingPrepared, meetingID),
		StudentID:     studentID,
		TalkingPoints: talkingPoints,
		HasAISummary:  hasAISummary,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Briefing Events
// ═══════════════════════════════════════════════════════════════════════════

// BriefingGeneratedEvent is emitted after the recommendation engine produces
// a briefing for a student.
type BriefingGeneratedEvent struct {
	BaseEvent
	TotalPoints  int `json:"total_points"`
	HighPriority int `json:"high_priority"`
	ActionItems  int `json:"action_items"`
}

// Payload implements Event interface.
func (e BriefingGeneratedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"total_points":  e.TotalPoints,
		"high_priority": e.HighPriority,
		"action_items":  e.ActionItems,
	}
}

// NewBriefingGeneratedEvent creates a new BriefingGeneratedEvent.
func NewBriefingGeneratedEvent(studentID string, totalPoints, highPriority, actionItems int) BriefingGeneratedEvent {
	return BriefingGeneratedEvent{
		BaseEvent:    NewBaseEvent(EventBriefingGenerated, studentID),
		TotalPoints:  totalPoints,
		HighPriority: highPriority,
		ActionItems:  actionItems,
	}
}

// AtRiskDetectedEvent is emitted when the nightly scan flags a student whose
// GPA or attendance fell below grade-level expectations.
type AtRiskDetectedEvent struct {
	BaseEvent
	Grade          string   `json:"grade"`
	Reasons        []string `json:"reasons"`
	CurrentGPA     float64  `json:"current_gpa"`
	AttendanceRate float64  `json:"attendance_rate"`
}

// Payload implements Event interface.
func (e AtRiskDetectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"grade":           e.Grade,
		"reasons":         e.Reasons,
		"current_gpa":     e.CurrentGPA,
		"attendance_rate": e.AttendanceRate,
	}
}

// NewAtRiskDetectedEvent creates a new AtRiskDetectedEvent.
func NewAtRiskDetectedEvent(studentID, grade string, reasons []string, gpa, attendanceRate float64) AtRiskDetectedEvent {
	return AtRiskDetectedEvent{
		BaseEvent:      NewBaseEvent(EventAtRiskDetected, studentID),
		Grade:          grade,
		Reasons:        reasons,
		CurrentGPA:     gpa,
		AttendanceRate: attendanceRate,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Notification Events
// ═══════════════════════════════════════════════════════════════════════════

// NotificationSentEvent is emitted after a notification is delivered.
type NotificationSentEvent struct {
	BaseEvent
	RecipientID string `json:"recipient_id"`
	Channel     string `json:"channel"`
	Type        string `json:"notification_type"`
}

// Payload implements Event interface.
func (e NotificationSentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"recipient_id":      e.RecipientID,
		"channel":           e.Channel,
		"notification_type": e.Type,
	}
}

// NewNotificationSentEvent creates a new NotificationSentEvent.
func NewNotificationSentEvent(notificationID, recipientID, channel, notifType string) NotificationSentEvent {
	return NotificationSentEvent{
		BaseEvent:   NewBaseEvent(EventNotificationSent, notificationID),
		RecipientID: recipientID,
		Channel:     channel,
		Type:        notifType,
	}
}

// NotificationFailedEvent is emitted when a delivery attempt fails.
type NotificationFailedEvent struct {
	BaseEvent
	RecipientID string `json:"recipient_id"`
	Channel     string `json:"channel"`
	Reason      string `json:"reason"`
	WillRetry   bool   `json:"will_retry"`
}

// Payload implements Event interface.
func (e NotificationFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"recipient_id": e.RecipientID,
		"channel":      e.Channel,
		"reason":       e.Reason,
		"will_retry":   e.WillRetry,
	}
}

// NewNotificationFailedEvent creates a new NotificationFailedEvent.
func NewNotificationFailedEvent(notificationID, recipientID, channel, reason string, willRetry bool) NotificationFailedEvent {
	return NotificationFailedEvent{
		BaseEvent:   NewBaseEvent(EventNotificationFailed, notificationID),
		RecipientID: recipientID,
		Channel:     channel,
		Reason:      reason,
		WillRetry:   willRetry,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// RefreshCompletedEvent is emitted when a background refresh job finishes.
type RefreshCompletedEvent struct {
	BaseEvent
	Job      string        `json:"job"`
	Students int           `json:"students"`
	Duration time.Duration `json:"duration"`
}

// Payload implements Event interface.
func (e RefreshCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"job":      e.Job,
		"students": e.Students,
		"duration": e.Duration.String(),
	}
}

// NewRefreshCompletedEvent creates a new RefreshCompletedEvent.
func NewRefreshCompletedEvent(job string, students int, duration time.Duration) RefreshCompletedEvent {
	return RefreshCompletedEvent{
		BaseEvent: NewBaseEvent(EventRefreshCompleted, job),
		Job:       job,
		Students:  students,
		Duration:  duration,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
