package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD REPOSITORY IMPLEMENTATION
// Assessments, behavioral incidents, and parent communications.
// ══════════════════════════════════════════════════════════════════════════════

const assessmentColumns = `
	id, student_id, subject, type, date, score, max_score, percentage,
	topics, teacher_feedback, difficulty, time_spent_minutes, created_at
`

const incidentColumns = `
	id, student_id, date, type, category, description, severity,
	action_taken, follow_up_required, teacher_id, created_at
`

const communicationColumns = `
	id, student_id, date, type, initiated_by, subject, content,
	follow_up_needed, follow_up_date, teacher_id, created_at
`

// RecordRepository implements student.RecordRepository for PostgreSQL.
type RecordRepository struct {
	db Querier
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(conn *Connection) *RecordRepository {
	return &RecordRepository{db: conn}
}

// newRecordRepositoryTx binds a repository to an open transaction.
func newRecordRepositoryTx(tx pgx.Tx) *RecordRepository {
	return &RecordRepository{db: tx}
}

// ─────────────────────────────────────────────────────────────────────────────
// Assessments
// ─────────────────────────────────────────────────────────────────────────────

// AddAssessment stores an assessment.
func (r *RecordRepository) AddAssessment(ctx context.Context, a *student.Assessment) error {
	topicsJSON, err := json.Marshal(topicsOrEmpty(a.Topics))
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}

	query := `
		INSERT INTO assessments (
			id, student_id, subject, type, date, score, max_score, percentage,
			topics, teacher_feedback, difficulty, time_spent_minutes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.Exec(ctx, query,
		a.ID,
		a.StudentID,
		a.Subject,
		string(a.Type),
		a.Date,
		a.Score,
		a.MaxScore,
		a.Percentage,
		topicsJSON,
		a.TeacherFeedback,
		string(a.Difficulty),
		a.TimeSpentMinutes,
		a.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return student.ErrStudentNotFound
		}
		return fmt.Errorf("failed to add assessment: %w", err)
	}

	return nil
}

// GetAssessments returns a student's assessments, newest first.
func (r *RecordRepository) GetAssessments(ctx context.Context, studentID string, limit int) ([]*student.Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE student_id = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessments: %w", err)
	}
	defer rows.Close()

	return r.scanAssessments(rows)
}

// GetAssessmentsBySubject returns a student's assessments for one subject.
func (r *RecordRepository) GetAssessmentsBySubject(ctx context.Context, studentID, subject string) ([]*student.Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE student_id = $1 AND subject = $2
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, studentID, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessments by subject: %w", err)
	}
	defer rows.Close()

	return r.scanAssessments(rows)
}

// GetAssessmentsSince returns a student's assessments after the given date.
func (r *RecordRepository) GetAssessmentsSince(ctx context.Context, studentID string, since time.Time) ([]*student.Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE student_id = $1 AND date > $2
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessments since: %w", err)
	}
	defer rows.Close()

	return r.scanAssessments(rows)
}

func (r *RecordRepository) scanAssessments(rows pgx.Rows) ([]*student.Assessment, error) {
	assessments := []*student.Assessment{}
	for rows.Next() {
		var (
			a          student.Assessment
			aType      string
			difficulty string
			topicsJSON []byte
		)

		err := rows.Scan(
			&a.ID,
			&a.StudentID,
			&a.Subject,
			&aType,
			&a.Date,
			&a.Score,
			&a.MaxScore,
			&a.Percentage,
			&topicsJSON,
			&a.TeacherFeedback,
			&difficulty,
			&a.TimeSpentMinutes,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}

		a.Type = student.AssessmentType(aType)
		a.Difficulty = student.Difficulty(difficulty)
		if err := json.Unmarshal(topicsJSON, &a.Topics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
		}

		assessments = append(assessments, &a)
	}
	return assessments, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Behavioral Incidents
// ─────────────────────────────────────────────────────────────────────────────

// AddIncident stores a behavioral incident.
func (r *RecordRepository) AddIncident(ctx context.Context, incident *student.BehavioralIncident) error {
	query := `
		INSERT INTO incidents (
			id, student_id, date, type, category, description, severity,
			action_taken, follow_up_required, teacher_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.StudentID,
		incident.Date,
		string(incident.Type),
		incident.Category,
		incident.Description,
		string(incident.Severity),
		incident.ActionTaken,
		incident.FollowUpRequired,
		incident.TeacherID,
		incident.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return student.ErrStudentNotFound
		}
		return fmt.Errorf("failed to add incident: %w", err)
	}

	return nil
}

// GetIncidents returns a student's incidents, newest first.
func (r *RecordRepository) GetIncidents(ctx context.Context, studentID string, limit int) ([]*student.BehavioralIncident, error) {
	query := `SELECT ` + incidentColumns + `
		FROM incidents
		WHERE student_id = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get incidents: %w", err)
	}
	defer rows.Close()

	incidents := []*student.BehavioralIncident{}
	for rows.Next() {
		var (
			incident student.BehavioralIncident
			iType    string
			severity string
		)

		err := rows.Scan(
			&incident.ID,
			&incident.StudentID,
			&incident.Date,
			&iType,
			&incident.Category,
			&incident.Description,
			&severity,
			&incident.ActionTaken,
			&incident.FollowUpRequired,
			&incident.TeacherID,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}

		incident.Type = student.IncidentType(iType)
		incident.Severity = student.IncidentSeverity(severity)
		incidents = append(incidents, &incident)
	}
	return incidents, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Parent Communications
// ─────────────────────────────────────────────────────────────────────────────

// AddCommunication stores a parent communication entry.
func (r *RecordRepository) AddCommunication(ctx context.Context, comm *student.ParentCommunication) error {
	query := `
		INSERT INTO communications (
			id, student_id, date, type, initiated_by, subject, content,
			follow_up_needed, follow_up_date, teacher_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		comm.ID,
		comm.StudentID,
		comm.Date,
		string(comm.Type),
		comm.InitiatedBy,
		comm.Subject,
		comm.Content,
		comm.FollowUpNeeded,
		nullableTime(comm.FollowUpDate),
		comm.TeacherID,
		comm.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return student.ErrStudentNotFound
		}
		return fmt.Errorf("failed to add communication: %w", err)
	}

	return nil
}

// GetCommunications returns communication entries, newest first.
func (r *RecordRepository) GetCommunications(ctx context.Context, studentID string, limit int) ([]*student.ParentCommunication, error) {
	query := `SELECT ` + communicationColumns + `
		FROM communications
		WHERE student_id = $1
		ORDER BY date DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get communications: %w", err)
	}
	defer rows.Close()

	return r.scanCommunications(rows)
}

// GetOpenFollowUps returns entries that still need a follow-up before the
// given date.
func (r *RecordRepository) GetOpenFollowUps(ctx context.Context, before time.Time) ([]*student.ParentCommunication, error) {
	query := `SELECT ` + communicationColumns + `
		FROM communications
		WHERE follow_up_needed AND follow_up_date IS NOT NULL AND follow_up_date <= $1
		ORDER BY follow_up_date ASC
	`

	rows, err := r.db.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get open follow-ups: %w", err)
	}
	defer rows.Close()

	return r.scanCommunications(rows)
}

func (r *RecordRepository) scanCommunications(rows pgx.Rows) ([]*student.ParentCommunication, error) {
	communications := []*student.ParentCommunication{}
	for rows.Next() {
		var (
			comm         student.ParentCommunication
			cType        string
			followUpDate *time.Time
		)

		err := rows.Scan(
			&comm.ID,
			&comm.StudentID,
			&comm.Date,
			&cType,
			&comm.InitiatedBy,
			&comm.Subject,
			&comm.Content,
			&comm.FollowUpNeeded,
			&followUpDate,
			&comm.TeacherID,
			&comm.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan communication: %w", err)
		}

		comm.Type = student.CommunicationType(cType)
		if followUpDate != nil {
			comm.FollowUpDate = *followUpDate
		}
		communications = append(communications, &comm)
	}
	return communications, rows.Err()
}

// topicsOrEmpty keeps topics as a JSON array even when nil.
func topicsOrEmpty(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}
