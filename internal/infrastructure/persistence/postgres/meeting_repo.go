package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEETING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const meetingColumns = `
	id, student_id, teacher_id, scheduled_for, status, notes,
	prepared_at, created_at, updated_at
`

// MeetingRepository implements meeting.Repository for PostgreSQL.
type MeetingRepository struct {
	conn *Connection
}

// NewMeetingRepository creates a new MeetingRepository.
func NewMeetingRepository(conn *Connection) *MeetingRepository {
	return &MeetingRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create stores a new meeting.
func (r *MeetingRepository) Create(ctx context.Context, m *meeting.ScheduledMeeting) error {
	query := `
		INSERT INTO meetings (
			id, student_id, teacher_id, scheduled_for, status, notes,
			prepared_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		m.ID,
		m.StudentID,
		m.TeacherID,
		m.ScheduledFor,
		string(m.Status),
		m.Notes,
		m.PreparedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return meeting.ErrMeetingAlreadyExists
		}
		if IsForeignKeyViolation(err) {
			return meeting.ErrInvalidStudentRef
		}
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	return nil
}

// GetByID returns a meeting by ID.
func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*meeting.ScheduledMeeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanMeeting(row)
}

// Update updates an existing meeting.
func (r *MeetingRepository) Update(ctx context.Context, m *meeting.ScheduledMeeting) error {
	query := `
		UPDATE meetings SET
			student_id = $1,
			teacher_id = $2,
			scheduled_for = $3,
			status = $4,
			notes = $5,
			prepared_at = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		m.StudentID,
		m.TeacherID,
		m.ScheduledFor,
		string(m.Status),
		m.Notes,
		m.PreparedAt,
		time.Now().UTC(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	if result.RowsAffected() == 0 {
		return meeting.ErrMeetingNotFound
	}

	return nil
}

// Delete removes a meeting.
func (r *MeetingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM meetings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	if result.RowsAffected() == 0 {
		return meeting.ErrMeetingNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Listing
// ─────────────────────────────────────────────────────────────────────────────

// GetByStudent returns a student's meetings, newest first.
func (r *MeetingRepository) GetByStudent(ctx context.Context, studentID string) ([]*meeting.ScheduledMeeting, error) {
	query := `SELECT ` + meetingColumns + `
		FROM meetings
		WHERE student_id = $1
		ORDER BY scheduled_for DESC
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meetings by student: %w", err)
	}
	defer rows.Close()

	return r.scanMeetings(rows)
}

// GetByTeacher returns a teacher's meetings, soonest first.
func (r *MeetingRepository) GetByTeacher(ctx context.Context, teacherID string) ([]*meeting.ScheduledMeeting, error) {
	query := `SELECT ` + meetingColumns + `
		FROM meetings
		WHERE teacher_id = $1
		ORDER BY scheduled_for ASC
	`

	rows, err := r.conn.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get meetings by teacher: %w", err)
	}
	defer rows.Close()

	return r.scanMeetings(rows)
}

// ListUpcoming returns non-final meetings within the horizon.
func (r *MeetingRepository) ListUpcoming(ctx context.Context, within time.Duration) ([]*meeting.ScheduledMeeting, error) {
	now := time.Now().UTC()

	query := `SELECT ` + meetingColumns + `
		FROM meetings
		WHERE status IN ('scheduled', 'prepared')
		  AND scheduled_for >= $1 AND scheduled_for <= $2
		ORDER BY scheduled_for ASC
	`

	rows, err := r.conn.Query(ctx, query, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming meetings: %w", err)
	}
	defer rows.Close()

	return r.scanMeetings(rows)
}

// ListUnprepared returns scheduled meetings due before the given moment
// whose briefing has not been prepared yet.
func (r *MeetingRepository) ListUnprepared(ctx context.Context, before time.Time) ([]*meeting.ScheduledMeeting, error) {
	query := `SELECT ` + meetingColumns + `
		FROM meetings
		WHERE status = 'scheduled' AND scheduled_for <= $1
		ORDER BY scheduled_for ASC
	`

	rows, err := r.conn.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprepared meetings: %w", err)
	}
	defer rows.Close()

	return r.scanMeetings(rows)
}

// Count returns the total number of meetings.
func (r *MeetingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM meetings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count meetings: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanners
// ─────────────────────────────────────────────────────────────────────────────

func (r *MeetingRepository) scanMeetings(rows pgx.Rows) ([]*meeting.ScheduledMeeting, error) {
	meetings := []*meeting.ScheduledMeeting{}
	for rows.Next() {
		m, err := r.scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (r *MeetingRepository) scanMeeting(row pgx.Row) (*meeting.ScheduledMeeting, error) {
	var (
		m      meeting.ScheduledMeeting
		status string
	)

	err := row.Scan(
		&m.ID,
		&m.StudentID,
		&m.TeacherID,
		&m.ScheduledFor,
		&status,
		&m.Notes,
		&m.PreparedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, meeting.ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan meeting: %w", err)
	}

	m.Status = meeting.Status(status)
	return &m, nil
}
