package query

import (
	"context"
	"errors"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST MEETINGS QUERY
// Встречи ученика, учителя или все ближайшие.
// ══════════════════════════════════════════════════════════════════════════════

// upcomingWindow - горизонт выборки ближайших встреч.
const upcomingWindow = 7 * 24 * time.Hour

// ListMeetingsQuery содержит параметры запроса встреч.
type ListMeetingsQuery struct {
	// StudentID - встречи по ученику.
	StudentID string

	// TeacherID - встречи по учителю.
	TeacherID string

	// UpcomingOnly - все ближайшие встречи за неделю.
	UpcomingOnly bool
}

// Validate проверяет корректность параметров запроса.
func (q *ListMeetingsQuery) Validate() error {
	if q.StudentID == "" && q.TeacherID == "" && !q.UpcomingOnly {
		return errors.New("one of student_id, teacher_id or upcoming is required")
	}
	return nil
}

// MeetingDTO - встреча в формате API.
type MeetingDTO struct {
	MeetingID    string `json:"meeting_id"`
	StudentID    string `json:"student_id"`
	TeacherID    string `json:"teacher_id"`
	ScheduledFor string `json:"scheduled_for"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	PreparedAt   string `json:"prepared_at,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// ListMeetingsResult содержит результат запроса встреч.
type ListMeetingsResult struct {
	// Meetings - встречи в формате API.
	Meetings []MeetingDTO `json:"meetings"`

	// Count - количество записей в ответе.
	Count int `json:"count"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// ListMeetingsHandler обрабатывает запросы списка встреч.
type ListMeetingsHandler struct {
	meetingRepo meeting.Repository
}

// NewListMeetingsHandler создаёт новый обработчик списка встреч.
func NewListMeetingsHandler(meetingRepo meeting.Repository) *ListMeetingsHandler {
	return &ListMeetingsHandler{meetingRepo: meetingRepo}
}

// Handle выполняет запрос списка встреч.
func (h *ListMeetingsHandler) Handle(ctx context.Context, query ListMeetingsQuery) (*ListMeetingsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "ListMeetings", shared.ErrValidation, err.Error(), err)
	}

	meetings, err := h.fetch(ctx, query)
	if err != nil {
		return nil, shared.WrapError("query", "ListMeetings", shared.ErrInternal, "failed to list meetings", err)
	}

	dtos := make([]MeetingDTO, 0, len(meetings))
	for _, m := range meetings {
		dto := MeetingDTO{
			MeetingID:    m.ID,
			StudentID:    m.StudentID,
			TeacherID:    m.TeacherID,
			ScheduledFor: m.ScheduledFor.Format(time.RFC3339),
			Status:       string(m.Status),
			Notes:        m.Notes,
			CreatedAt:    m.CreatedAt.Format(time.RFC3339),
		}
		if m.PreparedAt != nil {
			dto.PreparedAt = m.PreparedAt.Format(time.RFC3339)
		}
		dtos = append(dtos, dto)
	}

	return &ListMeetingsResult{
		Meetings: dtos,
		Count:    len(dtos),
	}, nil
}

// fetch выбирает способ выборки в зависимости от заданных фильтров.
func (h *ListMeetingsHandler) fetch(ctx context.Context, query ListMeetingsQuery) ([]*meeting.ScheduledMeeting, error) {
	switch {
	case query.StudentID != "":
		return h.meetingRepo.GetByStudent(ctx, query.StudentID)
	case query.TeacherID != "":
		return h.meetingRepo.GetByTeacher(ctx, query.TeacherID)
	default:
		return h.meetingRepo.ListUpcoming(ctx, upcomingWindow)
	}
}
