package meeting

import (
	"errors"
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULED MEETING
// Запись о назначенной встрече с родителями. Жизненный цикл:
// scheduled -> prepared -> completed, отмена возможна до завершения.
// ══════════════════════════════════════════════════════════════════════════════

// Status представляет состояние встречи.
type Status string

const (
	// StatusScheduled - встреча назначена, брифинг ещё не готов.
	StatusScheduled Status = "scheduled"

	// StatusPrepared - брифинг подготовлен, встреча впереди.
	StatusPrepared Status = "prepared"

	// StatusCompleted - встреча состоялась.
	StatusCompleted Status = "completed"

	// StatusCancelled - встреча отменена.
	StatusCancelled Status = "cancelled"
)

// IsValid проверяет корректность статуса.
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusPrepared, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsFinal возвращает true для конечных статусов.
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMeetingNotFound - встреча не найдена.
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrMeetingAlreadyExists - встреча с таким ID уже существует.
	ErrMeetingAlreadyExists = errors.New("meeting already exists")

	// ErrInvalidMeetingID - невалидный ID встречи.
	ErrInvalidMeetingID = errors.New("invalid meeting id: cannot be empty")

	// ErrInvalidStudentRef - невалидная ссылка на ученика.
	ErrInvalidStudentRef = errors.New("invalid student reference: cannot be empty")

	// ErrMeetingInPast - попытка назначить встречу задним числом.
	ErrMeetingInPast = errors.New("meeting cannot be scheduled in the past")

	// ErrInvalidStatusTransition - недопустимый переход статуса.
	ErrInvalidStatusTransition = errors.New("invalid meeting status transition")

	// ErrBriefingNotFound - брифинг для встречи ещё не подготовлен.
	ErrBriefingNotFound = errors.New("briefing not found")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// ScheduledMeeting - назначенная встреча учителя с родителями ученика.
type ScheduledMeeting struct {
	// ID - уникальный идентификатор встречи.
	ID string

	// StudentID - ученик, о котором пойдёт разговор.
	StudentID string

	// TeacherID - учитель, проводящий встречу.
	TeacherID string

	// ScheduledFor - дата и время встречи.
	ScheduledFor time.Time

	// Status - текущее состояние встречи.
	Status Status

	// Notes - произвольные заметки учителя к встрече.
	Notes string

	// PreparedAt - момент подготовки брифинга, nil пока не готов.
	PreparedAt *time.Time

	// CreatedAt - момент создания записи.
	CreatedAt time.Time

	// UpdatedAt - момент последнего изменения.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewScheduledMeetingParams - параметры создания встречи.
type NewScheduledMeetingParams struct {
	ID           string
	StudentID    string
	TeacherID    string
	ScheduledFor time.Time
	Notes        string
}

// NewScheduledMeeting создаёт встречу в статусе scheduled.
func NewScheduledMeeting(params NewScheduledMeetingParams) (*ScheduledMeeting, error) {
	if params.ID == "" {
		return nil, ErrInvalidMeetingID
	}
	if params.StudentID == "" {
		return nil, ErrInvalidStudentRef
	}
	if params.ScheduledFor.Before(time.Now()) {
		return nil, ErrMeetingInPast
	}

	now := time.Now().UTC()
	return &ScheduledMeeting{
		ID:           params.ID,
		StudentID:    params.StudentID,
		TeacherID:    params.TeacherID,
		ScheduledFor: params.ScheduledFor,
		Status:       StatusScheduled,
		Notes:        params.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// MarkPrepared фиксирует, что брифинг к встрече готов.
func (m *ScheduledMeeting) MarkPrepared() error {
	if m.Status != StatusScheduled {
		return ErrInvalidStatusTransition
	}
	m.Status = StatusPrepared
	now := time.Now().UTC()
	m.PreparedAt = &now
	m.UpdatedAt = now
	return nil
}

// Complete помечает встречу как состоявшуюся.
func (m *ScheduledMeeting) Complete() error {
	if m.Status.IsFinal() {
		return ErrInvalidStatusTransition
	}
	m.Status = StatusCompleted
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel отменяет встречу.
func (m *ScheduledMeeting) Cancel() error {
	if m.Status.IsFinal() {
		return ErrInvalidStatusTransition
	}
	m.Status = StatusCancelled
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Reschedule переносит встречу на новое время. Допустимо только для
// незавершённых встреч; подготовка сбрасывается, брифинг собирается заново.
func (m *ScheduledMeeting) Reschedule(newTime time.Time) error {
	if m.Status.IsFinal() {
		return ErrInvalidStatusTransition
	}
	if newTime.Before(time.Now()) {
		return ErrMeetingInPast
	}
	m.ScheduledFor = newTime
	m.Status = StatusScheduled
	m.PreparedAt = nil
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// IsUpcoming возвращает true, если встреча впереди и не отменена.
func (m *ScheduledMeeting) IsUpcoming() bool {
	return !m.Status.IsFinal() && m.ScheduledFor.After(time.Now())
}

// String возвращает читаемое представление встречи.
func (m *ScheduledMeeting) String() string {
	return fmt.Sprintf("Meeting{%s: student=%s at=%s status=%s}",
		m.ID, m.StudentID, m.ScheduledFor.Format("2006-01-02 15:04"), m.Status)
}

// Clone возвращает глубокую копию встречи.
func (m *ScheduledMeeting) Clone() *ScheduledMeeting {
	clone := *m
	if m.PreparedAt != nil {
		preparedAt := *m.PreparedAt
		clone.PreparedAt = &preparedAt
	}
	return &clone
}
