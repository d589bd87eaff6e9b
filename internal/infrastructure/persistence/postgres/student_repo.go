// Package postgres implements PostgreSQL persistence layer for Conference Hub.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// studentColumns is the column list shared by all student SELECTs.
const studentColumns = `
	id, first_name, last_name, grade, section, date_of_birth, roll_number,
	parent_email, parent_phone, teacher_id, academic_year, status,
	current_gpa, attendance_rate, last_meeting_prep,
	academic, behavioral, extracurricular, parent_engagement, goals, teacher_notes,
	created_at, updated_at
`

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	db Querier

	// conn is nil when the repository is bound to a transaction.
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{db: conn, conn: conn}
}

// newStudentRepositoryTx binds a repository to an open transaction.
func newStudentRepositoryTx(tx pgx.Tx) *StudentRepository {
	return &StudentRepository{db: tx}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student card.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, first_name, last_name, grade, section, date_of_birth, roll_number,
			parent_email, parent_phone, teacher_id, academic_year, status,
			current_gpa, attendance_rate, last_meeting_prep,
			academic, behavioral, extracurricular, parent_engagement, goals, teacher_notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	args, err := r.studentArgs(s)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return student.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// Update updates a student card.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			first_name = $1,
			last_name = $2,
			grade = $3,
			section = $4,
			date_of_birth = $5,
			roll_number = $6,
			parent_email = $7,
			parent_phone = $8,
			teacher_id = $9,
			academic_year = $10,
			status = $11,
			current_gpa = $12,
			attendance_rate = $13,
			last_meeting_prep = $14,
			academic = $15,
			behavioral = $16,
			extracurricular = $17,
			parent_engagement = $18,
			goals = $19,
			teacher_notes = $20,
			updated_at = $21
		WHERE id = $22 AND deleted_at IS NULL
	`

	academic, behavioral, extracurricular, engagement, goals, notes, err := marshalSections(s)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(ctx, query,
		s.PersonalInfo.FirstName,
		s.PersonalInfo.LastName,
		s.PersonalInfo.Grade,
		s.PersonalInfo.Section,
		nullableTime(s.PersonalInfo.DateOfBirth),
		s.PersonalInfo.RollNumber,
		s.PersonalInfo.ParentEmail,
		s.PersonalInfo.ParentPhone,
		s.Metadata.TeacherID,
		s.Metadata.AcademicYear,
		string(s.Status),
		s.Academic.CurrentGPA,
		s.Behavioral.Attendance.AttendanceRate,
		nullableTime(s.Metadata.LastMeetingPrep),
		academic,
		behavioral,
		extracurricular,
		engagement,
		goals,
		notes,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// Delete performs a soft delete on a student card.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE students
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns all students with pagination.
func (r *StudentRepository) GetAll(ctx context.Context, opts student.ListOptions) ([]*student.Student, error) {
	query := r.buildListQuery(opts, "")
	return r.queryStudents(ctx, query, opts.Limit, opts.Offset)
}

// GetByGrade returns students of the given grade.
func (r *StudentRepository) GetByGrade(ctx context.Context, grade string, opts student.ListOptions) ([]*student.Student, error) {
	query := r.buildListQuery(opts, "grade = $3")
	return r.queryStudents(ctx, query, opts.Limit, opts.Offset, grade)
}

// GetByTeacher returns students of the given homeroom teacher.
func (r *StudentRepository) GetByTeacher(ctx context.Context, teacherID string, opts student.ListOptions) ([]*student.Student, error) {
	query := r.buildListQuery(opts, "teacher_id = $3")
	return r.queryStudents(ctx, query, opts.Limit, opts.Offset, teacherID)
}

// GetByIDs returns students by a list of IDs.
func (r *StudentRepository) GetByIDs(ctx context.Context, ids []string) ([]*student.Student, error) {
	if len(ids) == 0 {
		return []*student.Student{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT %s FROM students WHERE id IN (%s) AND deleted_at IS NULL`,
		studentColumns, strings.Join(placeholders, ", "),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students by ids: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// BulkCreate creates several student cards in one transaction.
func (r *StudentRepository) BulkCreate(ctx context.Context, students []*student.Student) error {
	if len(students) == 0 {
		return nil
	}

	insert := func(q Querier) error {
		for _, s := range students {
			args, err := r.studentArgs(s)
			if err != nil {
				return err
			}
			_, err = q.Exec(ctx, `
				INSERT INTO students (
					id, first_name, last_name, grade, section, date_of_birth, roll_number,
					parent_email, parent_phone, teacher_id, academic_year, status,
					current_gpa, attendance_rate, last_meeting_prep,
					academic, behavioral, extracurricular, parent_engagement, goals, teacher_notes,
					created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				          $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
			`, args...)
			if err != nil {
				if IsUniqueViolation(err) {
					return student.ErrStudentAlreadyExists
				}
				return fmt.Errorf("failed to create student %s: %w", s.ID, err)
			}
		}
		return nil
	}

	// Already inside a transaction when bound to one.
	if r.conn == nil {
		return insert(r.db)
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return insert(tx)
	})
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM students WHERE deleted_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

// CountByGrade returns the number of students in a grade.
func (r *StudentRepository) CountByGrade(ctx context.Context, grade string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM students WHERE grade = $1 AND deleted_at IS NULL",
		grade,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count students by grade: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Search & Filter
// ─────────────────────────────────────────────────────────────────────────────

// Search searches students by first or last name.
func (r *StudentRepository) Search(ctx context.Context, query string, opts student.ListOptions) ([]*student.Student, error) {
	searchPattern := "%" + strings.ToLower(query) + "%"

	sqlQuery := `SELECT ` + studentColumns + `
		FROM students
		WHERE (LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1)
		  AND deleted_at IS NULL
	`

	if !opts.IncludeInactive {
		sqlQuery += " AND status = 'active'"
	}

	sqlQuery += r.buildOrderBy(opts)
	sqlQuery += " LIMIT $2 OFFSET $3"

	rows, err := r.db.Query(ctx, sqlQuery, searchPattern, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// FindRecentlyAssessed finds students with new assessments after the given time.
func (r *StudentRepository) FindRecentlyAssessed(ctx context.Context, since time.Time) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + `
		FROM students
		WHERE deleted_at IS NULL AND id IN (
			SELECT DISTINCT student_id FROM assessments WHERE created_at > $1
		)
		ORDER BY updated_at ASC
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to find recently assessed students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// FindStale finds students whose cards have not been updated for longer than
// the threshold.
func (r *StudentRepository) FindStale(ctx context.Context, threshold time.Duration) ([]*student.Student, error) {
	cutoff := time.Now().UTC().Add(-threshold)

	query := `SELECT ` + studentColumns + `
		FROM students
		WHERE updated_at < $1 AND status = 'active' AND deleted_at IS NULL
		ORDER BY updated_at ASC
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find stale students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// Exists checks if a student exists by ID.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1 AND deleted_at IS NULL)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// ExistsByRollNumber checks if a roll number is taken within a class section.
func (r *StudentRepository) ExistsByRollNumber(ctx context.Context, grade, section string, rollNumber int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM students
			WHERE grade = $1 AND section = $2 AND roll_number = $3 AND deleted_at IS NULL
		)`,
		grade, section, rollNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check roll number: %w", err)
	}
	return exists, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query Builders & Scanners
// ─────────────────────────────────────────────────────────────────────────────

// buildListQuery builds a paginated SELECT with an optional extra condition.
// $1 and $2 are reserved for LIMIT/OFFSET, conditions start at $3.
func (r *StudentRepository) buildListQuery(opts student.ListOptions, condition string) string {
	query := `SELECT ` + studentColumns + ` FROM students WHERE deleted_at IS NULL`

	if condition != "" {
		query += " AND " + condition
	}
	if !opts.IncludeInactive {
		query += " AND status = 'active'"
	}

	query += r.buildOrderBy(opts)
	query += " LIMIT $1 OFFSET $2"

	return query
}

// buildOrderBy builds an ORDER BY clause from a whitelist of sortable fields.
func (r *StudentRepository) buildOrderBy(opts student.ListOptions) string {
	column := "last_name"
	switch opts.SortBy {
	case "first_name", "last_name", "grade", "roll_number", "current_gpa", "created_at", "updated_at":
		column = opts.SortBy
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}

	// Secondary sort keeps pagination stable.
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction)
}

func (r *StudentRepository) queryStudents(ctx context.Context, query string, args ...interface{}) ([]*student.Student, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	students := []*student.Student{}
	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// scanStudent scans a single student row from either pgx.Row or pgx.Rows.
func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var (
		s               student.Student
		dateOfBirth     *time.Time
		lastMeetingPrep *time.Time
		status          string
		attendanceRate  float64
		academicJSON    []byte
		behavioralJSON  []byte
		extraJSON       []byte
		engagementJSON  []byte
		goalsJSON       []byte
		notesJSON       []byte
	)

	err := row.Scan(
		&s.ID,
		&s.PersonalInfo.FirstName,
		&s.PersonalInfo.LastName,
		&s.PersonalInfo.Grade,
		&s.PersonalInfo.Section,
		&dateOfBirth,
		&s.PersonalInfo.RollNumber,
		&s.PersonalInfo.ParentEmail,
		&s.PersonalInfo.ParentPhone,
		&s.Metadata.TeacherID,
		&s.Metadata.AcademicYear,
		&status,
		&s.Academic.CurrentGPA,
		&attendanceRate,
		&lastMeetingPrep,
		&academicJSON,
		&behavioralJSON,
		&extraJSON,
		&engagementJSON,
		&goalsJSON,
		&notesJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, student.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	s.Status = student.Status(status)
	if dateOfBirth != nil {
		s.PersonalInfo.DateOfBirth = *dateOfBirth
	}
	if lastMeetingPrep != nil {
		s.Metadata.LastMeetingPrep = *lastMeetingPrep
	}

	if err := unmarshalSections(&s, academicJSON, behavioralJSON, extraJSON, engagementJSON, goalsJSON, notesJSON); err != nil {
		return nil, err
	}

	// The column is the indexed source of truth for attendance rate.
	s.Behavioral.Attendance.AttendanceRate = attendanceRate

	return &s, nil
}

// studentArgs builds the INSERT argument list for a student card.
func (r *StudentRepository) studentArgs(s *student.Student) ([]interface{}, error) {
	academic, behavioral, extracurricular, engagement, goals, notes, err := marshalSections(s)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		s.ID,
		s.PersonalInfo.FirstName,
		s.PersonalInfo.LastName,
		s.PersonalInfo.Grade,
		s.PersonalInfo.Section,
		nullableTime(s.PersonalInfo.DateOfBirth),
		s.PersonalInfo.RollNumber,
		s.PersonalInfo.ParentEmail,
		s.PersonalInfo.ParentPhone,
		s.Metadata.TeacherID,
		s.Metadata.AcademicYear,
		string(s.Status),
		s.Academic.CurrentGPA,
		s.Behavioral.Attendance.AttendanceRate,
		nullableTime(s.Metadata.LastMeetingPrep),
		academic,
		behavioral,
		extracurricular,
		engagement,
		goals,
		notes,
		s.CreatedAt,
		s.UpdatedAt,
	}, nil
}

// nullableTime maps a zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ══════════════════════════════════════════════════════════════════════════════
// JSONB SECTION DTOs
// Domain structs carry no serialization tags, so the wire shape lives here.
// ══════════════════════════════════════════════════════════════════════════════

type subjectRecordDTO struct {
	CurrentGrade string  `json:"current_grade"`
	AverageScore float64 `json:"average_score"`
	Trend        string  `json:"trend"`
}

type academicDTO struct {
	Subjects            map[string]subjectRecordDTO `json:"subjects,omitempty"`
	Strengths           []string                    `json:"strengths,omitempty"`
	AreasForImprovement []string                    `json:"areas_for_improvement,omitempty"`
	LearningStyle       string                      `json:"learning_style,omitempty"`
}

type behavioralDTO struct {
	ParticipationLevel string `json:"participation_level,omitempty"`
	PeerInteraction    string `json:"peer_interaction,omitempty"`
	Teamwork           string `json:"teamwork,omitempty"`
	TardyCount         int    `json:"tardy_count,omitempty"`
	PresentDays        int    `json:"present_days,omitempty"`
	TotalDays          int    `json:"total_days,omitempty"`
}

type extracurricularDTO struct {
	Sports         []string `json:"sports,omitempty"`
	Clubs          []string `json:"clubs,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
	Competitions   []string `json:"competitions,omitempty"`
	VolunteerHours int      `json:"volunteer_hours,omitempty"`
}

type parentEngagementDTO struct {
	CommunicationFrequency string     `json:"communication_frequency,omitempty"`
	HomeworkSupport        string     `json:"homework_support,omitempty"`
	ConcernsRaised         []string   `json:"concerns_raised,omitempty"`
	LastMeetingDate        *time.Time `json:"last_meeting_date,omitempty"`
}

type goalsDTO struct {
	ShortTerm    []string `json:"short_term,omitempty"`
	LongTerm     []string `json:"long_term,omitempty"`
	ParentGoals  []string `json:"parent_goals,omitempty"`
	TeacherGoals []string `json:"teacher_goals,omitempty"`
}

type teacherNotesDTO struct {
	RecommendedActions  []string `json:"recommended_actions,omitempty"`
	MotivationLevel     string   `json:"motivation_level,omitempty"`
	GeneralObservations string   `json:"general_observations,omitempty"`
	HomeworkCompletion  string   `json:"homework_completion,omitempty"`
	ClassroomBehavior   string   `json:"classroom_behavior,omitempty"`
	SpecialNeeds        string   `json:"special_needs,omitempty"`
}

func marshalSections(s *student.Student) (academic, behavioral, extracurricular, engagement, goals, notes []byte, err error) {
	subjects := make(map[string]subjectRecordDTO, len(s.Academic.Subjects))
	for name, record := range s.Academic.Subjects {
		subjects[name] = subjectRecordDTO{
			CurrentGrade: record.CurrentGrade,
			AverageScore: record.AverageScore,
			Trend:        string(record.Trend),
		}
	}

	academic, err = json.Marshal(academicDTO{
		Subjects:            subjects,
		Strengths:           s.Academic.Strengths,
		AreasForImprovement: s.Academic.AreasForImprovement,
		LearningStyle:       string(s.Academic.LearningStyle),
	})
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal academic section: %w", err)
	}

	behavioral, err = json.Marshal(behavioralDTO{
		ParticipationLevel: string(s.Behavioral.Participation.Level),
		PeerInteraction:    string(s.Behavioral.SocialSkills.PeerInteraction),
		Teamwork:           string(s.Behavioral.SocialSkills.Teamwork),
		TardyCount:         s.Behavioral.Attendance.TardyCount,
		PresentDays:        s.Behavioral.Attendance.PresentDays,
		TotalDays:          s.Behavioral.Attendance.TotalDays,
	})
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal behavioral section: %w", err)
	}

	extracurricular, err = json.Marshal(extracurricularDTO{
		Sports:         s.Extracurricular.Sports,
		Clubs:          s.Extracurricular.Clubs,
		Achievements:   s.Extracurricular.Achievements,
		Competitions:   s.Extracurricular.Competitions,
		VolunteerHours: s.Extracurricular.VolunteerHours,
	})
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal extracurricular section: %w", err)
	}

	engagement, err = json.Marshal(parentEngagementDTO{
		CommunicationFrequency: string(s.ParentEngagement.CommunicationFrequency),
		HomeworkSupport:        string(s.ParentEngagement.HomeworkSupport),
		ConcernsRaised:         s.ParentEngagement.ConcernsRaised,
		LastMeetingDate:        nullableTime(s.ParentEngagement.LastMeetingDate),
	})
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal parent engagement section: %w", err)
	}

	goals, err = json.Marshal(goalsDTO{
		ShortTerm:    s.Goals.ShortTerm,
		LongTerm:     s.Goals.LongTerm,
		ParentGoals:  s.Goals.ParentGoals,
		TeacherGoals: s.Goals.TeacherGoals,
	})
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal goals section: %w", err)
	}

	notes, err = json.Marshal(teacherNotesDTO{
		RecommendedActions:  s.TeacherNotes.RecommendedActions,
		MotivationLevel:     string(s.TeacherNotes.MotivationLevel),
		GeneralObservations: s.TeacherNotes.GeneralObservations,
		HomeworkCompletion:  string(s.TeacherNotes.HomeworkCompletion),
		ClassroomBehavior:   string(s.TeacherNotes.ClassroomBehavior),
		SpecialNeeds:        s.TeacherNotes.SpecialNeeds,
	})
	if err != nil {
		return nil, nil, nil, nil, nil, nil, fmt.Errorf("failed to marshal teacher notes section: %w", err)
	}

	return academic, behavioral, extracurricular, engagement, goals, notes, nil
}

func unmarshalSections(s *student.Student, academicJSON, behavioralJSON, extraJSON, engagementJSON, goalsJSON, notesJSON []byte) error {
	var academic academicDTO
	if err := json.Unmarshal(academicJSON, &academic); err != nil {
		return fmt.Errorf("failed to unmarshal academic section: %w", err)
	}
	s.Academic.Subjects = make(map[string]student.SubjectRecord, len(academic.Subjects))
	for name, record := range academic.Subjects {
		s.Academic.Subjects[name] = student.SubjectRecord{
			CurrentGrade: record.CurrentGrade,
			AverageScore: record.AverageScore,
			Trend:        student.Trend(record.Trend),
		}
	}
	s.Academic.Strengths = academic.Strengths
	s.Academic.AreasForImprovement = academic.AreasForImprovement
	s.Academic.LearningStyle = student.LearningStyle(academic.LearningStyle)

	var behavioral behavioralDTO
	if err := json.Unmarshal(behavioralJSON, &behavioral); err != nil {
		return fmt.Errorf("failed to unmarshal behavioral section: %w", err)
	}
	s.Behavioral.Participation.Level = student.FrequencyLevel(behavioral.ParticipationLevel)
	s.Behavioral.SocialSkills.PeerInteraction = student.SkillLevel(behavioral.PeerInteraction)
	s.Behavioral.SocialSkills.Teamwork = student.SkillLevel(behavioral.Teamwork)
	s.Behavioral.Attendance.TardyCount = behavioral.TardyCount
	s.Behavioral.Attendance.PresentDays = behavioral.PresentDays
	s.Behavioral.Attendance.TotalDays = behavioral.TotalDays

	var extra extracurricularDTO
	if err := json.Unmarshal(extraJSON, &extra); err != nil {
		return fmt.Errorf("failed to unmarshal extracurricular section: %w", err)
	}
	s.Extracurricular = student.Extracurricular{
		Sports:         extra.Sports,
		Clubs:          extra.Clubs,
		Achievements:   extra.Achievements,
		Competitions:   extra.Competitions,
		VolunteerHours: extra.VolunteerHours,
	}

	var engagement parentEngagementDTO
	if err := json.Unmarshal(engagementJSON, &engagement); err != nil {
		return fmt.Errorf("failed to unmarshal parent engagement section: %w", err)
	}
	s.ParentEngagement.CommunicationFrequency = student.FrequencyLevel(engagement.CommunicationFrequency)
	s.ParentEngagement.HomeworkSupport = student.SkillLevel(engagement.HomeworkSupport)
	s.ParentEngagement.ConcernsRaised = engagement.ConcernsRaised
	if engagement.LastMeetingDate != nil {
		s.ParentEngagement.LastMeetingDate = *engagement.LastMeetingDate
	}

	var goals goalsDTO
	if err := json.Unmarshal(goalsJSON, &goals); err != nil {
		return fmt.Errorf("failed to unmarshal goals section: %w", err)
	}
	s.Goals = student.Goals{
		ShortTerm:    goals.ShortTerm,
		LongTerm:     goals.LongTerm,
		ParentGoals:  goals.ParentGoals,
		TeacherGoals: goals.TeacherGoals,
	}

	var notes teacherNotesDTO
	if err := json.Unmarshal(notesJSON, &notes); err != nil {
		return fmt.Errorf("failed to unmarshal teacher notes section: %w", err)
	}
	s.TeacherNotes = student.TeacherNotes{
		RecommendedActions:  notes.RecommendedActions,
		MotivationLevel:     student.FrequencyLevel(notes.MotivationLevel),
		GeneralObservations: notes.GeneralObservations,
		HomeworkCompletion:  student.SkillLevel(notes.HomeworkCompletion),
		ClassroomBehavior:   student.SkillLevel(notes.ClassroomBehavior),
		SpecialNeeds:        notes.SpecialNeeds,
	}

	return nil
}
