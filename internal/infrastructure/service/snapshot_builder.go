package service

import (
	"context"
	"fmt"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/overview"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// snapshotPageSize is the page size for reading a grade's students.
const snapshotPageSize = 200

// SnapshotIDs issues identifiers for new snapshots.
type SnapshotIDs interface {
	SnapshotID() string
}

// SnapshotBuilder assembles a grade overview snapshot from the current
// student cards. At-risk flags come from the same grade-level expectations
// the briefing engine uses, so the overview and the briefings never
// disagree about who needs attention.
type SnapshotBuilder struct {
	studentRepo  student.Repository
	expectations meeting.ExpectationTable
	ids          SnapshotIDs
}

// NewSnapshotBuilder creates a new snapshot builder.
func NewSnapshotBuilder(studentRepo student.Repository, expectations meeting.ExpectationTable, ids SnapshotIDs) *SnapshotBuilder {
	if expectations == nil {
		expectations = meeting.DefaultExpectations()
	}
	return &SnapshotBuilder{
		studentRepo:  studentRepo,
		expectations: expectations,
		ids:          ids,
	}
}

// BuildSnapshot collects all enrolled students of the grade into a snapshot.
func (b *SnapshotBuilder) BuildSnapshot(ctx context.Context, grade, academicYear string) (*overview.GradeSnapshot, error) {
	standings := make([]*overview.StudentStanding, 0)
	opts := student.DefaultListOptions().WithLimit(snapshotPageSize)

	for {
		page, err := b.studentRepo.GetByGrade(ctx, grade, opts)
		if err != nil {
			return nil, fmt.Errorf("snapshot builder: load grade %s: %w", grade, err)
		}

		for _, s := range page {
			if !s.Status.IsEnrolled() {
				continue
			}
			standings = append(standings, b.toStanding(s))
		}

		if len(page) < snapshotPageSize {
			break
		}
		opts = opts.WithOffset(opts.Offset + snapshotPageSize)
	}

	snapshot, err := overview.NewGradeSnapshot(b.ids.SnapshotID(), grade, academicYear, standings)
	if err != nil {
		return nil, fmt.Errorf("snapshot builder: build snapshot: %w", err)
	}
	return snapshot, nil
}

// toStanding projects one student card onto its overview standing.
func (b *SnapshotBuilder) toStanding(s *student.Student) *overview.StudentStanding {
	subjects := make(map[string]float64, len(s.Academic.Subjects))
	for name, rec := range s.Academic.Subjects {
		subjects[name] = rec.AverageScore
	}

	exp := b.expectations.ForGrade(s.PersonalInfo.GradeOrDefault())

	var reasons []string
	if s.Academic.CurrentGPA > 0 && s.Academic.CurrentGPA < exp.GPAGood {
		reasons = append(reasons, "gpa below grade expectation")
	}
	if rate := s.Behavioral.Attendance.AttendanceRate; rate > 0 && rate < exp.AttendanceGood {
		reasons = append(reasons, "attendance below grade expectation")
	}

	return &overview.StudentStanding{
		StudentID:       s.ID,
		FullName:        s.FullName(),
		GPA:             s.Academic.CurrentGPA,
		AttendanceRate:  s.Behavioral.Attendance.AttendanceRate,
		SubjectAverages: subjects,
		AtRisk:          len(reasons) > 0,
		AtRiskReasons:   reasons,
	}
}
