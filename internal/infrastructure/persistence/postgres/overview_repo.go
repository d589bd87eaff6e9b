package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/overview"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// OVERVIEW REPOSITORY IMPLEMENTATION
// Grade snapshots are a read model: written whole, read whole. Standings are
// stored as a JSONB document next to the indexed aggregate columns.
// ══════════════════════════════════════════════════════════════════════════════

const snapshotColumns = `
	id, grade, academic_year, snapshot_at, student_count,
	average_gpa, average_attendance, at_risk_count, subject_averages, standings
`

// OverviewRepository implements overview.Repository for PostgreSQL.
type OverviewRepository struct {
	conn *Connection
}

// NewOverviewRepository creates a new OverviewRepository.
func NewOverviewRepository(conn *Connection) *OverviewRepository {
	return &OverviewRepository{conn: conn}
}

// SaveSnapshot stores a new grade snapshot.
func (r *OverviewRepository) SaveSnapshot(ctx context.Context, snapshot *overview.GradeSnapshot) error {
	subjectsJSON, err := json.Marshal(snapshot.SubjectAverages)
	if err != nil {
		return fmt.Errorf("failed to marshal subject averages: %w", err)
	}

	standingsJSON, err := json.Marshal(standingsToDTO(snapshot.Standings))
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}

	query := `
		INSERT INTO grade_snapshots (
			id, grade, academic_year, snapshot_at, student_count,
			average_gpa, average_attendance, at_risk_count, subject_averages, standings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.conn.Exec(ctx, query,
		snapshot.ID,
		snapshot.Grade,
		snapshot.AcademicYear,
		snapshot.SnapshotAt,
		snapshot.StudentCount,
		snapshot.AverageGPA,
		snapshot.AverageAttendance,
		snapshot.AtRiskCount,
		subjectsJSON,
		standingsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save grade snapshot: %w", err)
	}

	return nil
}

// GetLatest returns the most recent snapshot for a grade and academic year.
func (r *OverviewRepository) GetLatest(ctx context.Context, grade, academicYear string) (*overview.GradeSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM grade_snapshots
		WHERE grade = $1 AND academic_year = $2
		ORDER BY snapshot_at DESC
		LIMIT 1
	`

	row := r.conn.QueryRow(ctx, query, grade, academicYear)
	return r.scanSnapshot(row)
}

// GetHistory returns the most recent snapshots for a grade, newest first.
func (r *OverviewRepository) GetHistory(ctx context.Context, grade, academicYear string, limit int) ([]*overview.GradeSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM grade_snapshots
		WHERE grade = $1 AND academic_year = $2
		ORDER BY snapshot_at DESC
		LIMIT $3
	`

	rows, err := r.conn.Query(ctx, query, grade, academicYear, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %w", err)
	}
	defer rows.Close()

	snapshots := []*overview.GradeSnapshot{}
	for rows.Next() {
		snapshot, err := r.scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// DeleteOlderThan removes snapshots older than the cutoff.
func (r *OverviewRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.conn.Exec(ctx, "DELETE FROM grade_snapshots WHERE snapshot_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return result.RowsAffected(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanners & DTOs
// ─────────────────────────────────────────────────────────────────────────────

type standingDTO struct {
	StudentID       string             `json:"student_id"`
	FullName        string             `json:"full_name"`
	GPA             float64            `json:"gpa"`
	AttendanceRate  float64            `json:"attendance_rate"`
	SubjectAverages map[string]float64 `json:"subject_averages,omitempty"`
	AtRisk          bool               `json:"at_risk,omitempty"`
	AtRiskReasons   []string           `json:"at_risk_reasons,omitempty"`
}

func standingsToDTO(standings []*overview.StudentStanding) []standingDTO {
	dtos := make([]standingDTO, 0, len(standings))
	for _, s := range standings {
		dtos = append(dtos, standingDTO{
			StudentID:       s.StudentID,
			FullName:        s.FullName,
			GPA:             s.GPA,
			AttendanceRate:  s.AttendanceRate,
			SubjectAverages: s.SubjectAverages,
			AtRisk:          s.AtRisk,
			AtRiskReasons:   s.AtRiskReasons,
		})
	}
	return dtos
}

func standingsFromDTO(dtos []standingDTO) []*overview.StudentStanding {
	standings := make([]*overview.StudentStanding, 0, len(dtos))
	for _, dto := range dtos {
		standings = append(standings, &overview.StudentStanding{
			StudentID:       dto.StudentID,
			FullName:        dto.FullName,
			GPA:             dto.GPA,
			AttendanceRate:  dto.AttendanceRate,
			SubjectAverages: dto.SubjectAverages,
			AtRisk:          dto.AtRisk,
			AtRiskReasons:   dto.AtRiskReasons,
		})
	}
	return standings
}

func (r *OverviewRepository) scanSnapshot(row pgx.Row) (*overview.GradeSnapshot, error) {
	var (
		snapshot      overview.GradeSnapshot
		subjectsJSON  []byte
		standingsJSON []byte
	)

	err := row.Scan(
		&snapshot.ID,
		&snapshot.Grade,
		&snapshot.AcademicYear,
		&snapshot.SnapshotAt,
		&snapshot.StudentCount,
		&snapshot.AverageGPA,
		&snapshot.AverageAttendance,
		&snapshot.AtRiskCount,
		&subjectsJSON,
		&standingsJSON,
	)
	if IsNoRows(err) {
		return nil, overview.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan grade snapshot: %w", err)
	}

	if err := json.Unmarshal(subjectsJSON, &snapshot.SubjectAverages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subject averages: %w", err)
	}

	var dtos []standingDTO
	if err := json.Unmarshal(standingsJSON, &dtos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings: %w", err)
	}
	snapshot.Standings = standingsFromDTO(dtos)
	snapshot.RebuildIndex()

	return &snapshot, nil
}
