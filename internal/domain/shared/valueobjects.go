// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Prefixed ID format used across the school records system:
// an upper-case prefix, an underscore, and 8 upper-case hex characters.
// Examples: STU_A1B2C3D4, MTG_00FF12AB.
var prefixedIDRegex = regexp.MustCompile(`^[A-Z]{3}_[0-9A-F]{8}$`)

// StudentID represents a unique student identifier (STU_ prefix).
type StudentID string

// IsValid checks if the student ID has the expected prefixed format.
func (s StudentID) IsValid() bool {
	return strings.HasPrefix(string(s), "STU_") && prefixedIDRegex.MatchString(string(s))
}

// String returns the string representation.
func (s StudentID) String() string {
	return string(s)
}

// IsEmpty checks if the ID is empty.
func (s StudentID) IsEmpty() bool {
	return s == ""
}

// NewStudentID creates a new StudentID with validation.
func NewStudentID(id string) (StudentID, error) {
	sid := StudentID(strings.ToUpper(strings.TrimSpace(id)))
	if !sid.IsValid() {
		return "", NewDomainError("shared", "NewStudentID", ErrInvalidID, "invalid student ID format, expected STU_XXXXXXXX")
	}
	return sid, nil
}

// MeetingID represents a unique meeting identifier (MTG_ prefix).
type MeetingID string

// IsValid checks if the meeting ID has the expected prefixed format.
func (m MeetingID) IsValid() bool {
	return strings.HasPrefix(string(m), "MTG_") && prefixedIDRegex.MatchString(string(m))
}

// String returns the string representation.
func (m MeetingID) String() string {
	return string(m)
}

// IsEmpty checks if the ID is empty.
func (m MeetingID) IsEmpty() bool {
	return m == ""
}

// NewMeetingID creates a new MeetingID with validation.
func NewMeetingID(id string) (MeetingID, error) {
	mid := MeetingID(strings.ToUpper(strings.TrimSpace(id)))
	if !mid.IsValid() {
		return "", NewDomainError("shared", "NewMeetingID", ErrInvalidID, "invalid meeting ID format, expected MTG_XXXXXXXX")
	}
	return mid, nil
}

// TeacherID represents a teacher identifier (TEACH_ prefix, 6 hex characters).
type TeacherID string

var teacherIDRegex = regexp.MustCompile(`^TEACH_[0-9A-F]{6}$`)

// IsValid checks if the teacher ID has the expected format.
func (t TeacherID) IsValid() bool {
	return teacherIDRegex.MatchString(string(t))
}

// String returns the string representation.
func (t TeacherID) String() string {
	return string(t)
}

// ═══════════════════════════════════════════════════════════════════════════
// GradeLevel Value Object
// ═══════════════════════════════════════════════════════════════════════════

// GradeLevel represents the grade a student is enrolled in ("1" through "12").
// The recommendation engine has calibrated expectations for grades 3-6; other
// grades fall back to a default expectation profile.
type GradeLevel string

var gradeLevelRegex = regexp.MustCompile(`^([1-9]|1[0-2])$`)

// IsValid checks if the grade level is within the supported school range.
func (g GradeLevel) IsValid() bool {
	return gradeLevelRegex.MatchString(string(g))
}

// String returns the string representation.
func (g GradeLevel) String() string {
	return string(g)
}

// Int returns the numeric grade, or 0 when the value is not numeric.
func (g GradeLevel) Int() int {
	n := 0
	fmt.Sscanf(string(g), "%d", &n)
	return n
}

// NewGradeLevel creates a new GradeLevel with validation.
func NewGradeLevel(value string) (GradeLevel, error) {
	g := GradeLevel(strings.TrimSpace(value))
	if !g.IsValid() {
		return "", ErrInvalidGradeLevel
	}
	return g, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// GPA Value Object
// ═══════════════════════════════════════════════════════════════════════════

// GPA represents a grade point average on the standard 4.0 scale.
type GPA float64

const (
	MinGPA GPA = 0.0
	MaxGPA GPA = 4.0
)

// IsValid checks if the GPA is within the 4.0 scale.
func (g GPA) IsValid() bool {
	return g >= MinGPA && g <= MaxGPA
}

// Float64 returns the underlying float value.
func (g GPA) Float64() float64 {
	return float64(g)
}

// Format returns the GPA formatted to two decimal places, e.g. "3.75".
func (g GPA) Format() string {
	return fmt.Sprintf("%.2f", float64(g))
}

// NewGPA creates a new GPA with validation. Values above the scale are capped
// rather than rejected, since rounding in upstream systems can overshoot.
func NewGPA(value float64) (GPA, error) {
	if value < 0 {
		return 0, NewDomainError("shared", "NewGPA", ErrNegativeValue, "GPA cannot be negative")
	}
	if value > float64(MaxGPA) {
		return MaxGPA, nil
	}
	return GPA(value), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// AttendanceRate Value Object
// ═══════════════════════════════════════════════════════════════════════════

// AttendanceRate represents attendance as a fraction in [0, 1].
type AttendanceRate float64

// IsValid checks if the rate is a valid fraction.
func (a AttendanceRate) IsValid() bool {
	return a >= 0 && a <= 1
}

// Float64 returns the underlying float value.
func (a AttendanceRate) Float64() float64 {
	return float64(a)
}

// Percent formats the rate as a percentage with one decimal, e.g. "95.6%".
func (a AttendanceRate) Percent() string {
	return fmt.Sprintf("%.1f%%", float64(a)*100)
}

// NewAttendanceRate creates a new AttendanceRate with validation.
func NewAttendanceRate(value float64) (AttendanceRate, error) {
	r := AttendanceRate(value)
	if !r.IsValid() {
		return 0, NewDomainError("shared", "NewAttendanceRate", ErrValueOutOfRange, "attendance rate must be between 0 and 1")
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Percentage Value Object (assessment scores)
// ═══════════════════════════════════════════════════════════════════════════

// Percentage represents a score percentage in [0, 100].
type Percentage float64

// IsValid checks if the percentage is within range.
func (p Percentage) IsValid() bool {
	return p >= 0 && p <= 100
}

// Float64 returns the underlying float value.
func (p Percentage) Float64() float64 {
	return float64(p)
}

// LetterGrade converts the percentage to the school's letter grade scale.
func (p Percentage) LetterGrade() string {
	switch {
	case p >= 97:
		return "A+"
	case p >= 93:
		return "A"
	case p >= 90:
		return "A-"
	case p >= 87:
		return "B+"
	case p >= 83:
		return "B"
	case p >= 80:
		return "B-"
	case p >= 77:
		return "C+"
	case p >= 73:
		return "C"
	case p >= 70:
		return "C-"
	case p >= 67:
		return "D+"
	case p >= 65:
		return "D"
	default:
		return "F"
	}
}

// NewPercentage creates a new Percentage with validation.
func NewPercentage(value float64) (Percentage, error) {
	p := Percentage(value)
	if !p.IsValid() {
		return 0, ErrInvalidScore
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// AcademicYear Value Object
// ═══════════════════════════════════════════════════════════════════════════

// AcademicYear represents a school year in the "2024-2025" format.
type AcademicYear string

var academicYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

// IsValid checks if the academic year format is valid and the years are
// consecutive.
func (a AcademicYear) IsValid() bool {
	if !academicYearRegex.MatchString(string(a)) {
		return false
	}
	return a.EndYear() == a.StartYear()+1
}

// String returns the string representation.
func (a AcademicYear) String() string {
	return string(a)
}

// StartYear extracts the first calendar year.
func (a AcademicYear) StartYear() int {
	if len(a) < 4 {
		return 0
	}
	year := 0
	fmt.Sscanf(string(a[:4]), "%d", &year)
	return year
}

// EndYear extracts the second calendar year.
func (a AcademicYear) EndYear() int {
	parts := strings.Split(string(a), "-")
	if len(parts) != 2 {
		return 0
	}
	year := 0
	fmt.Sscanf(parts[1], "%d", &year)
	return year
}

// NewAcademicYear creates a new AcademicYear with validation.
func NewAcademicYear(value string) (AcademicYear, error) {
	a := AcademicYear(strings.TrimSpace(value))
	if !a.IsValid() {
		return "", NewDomainError("shared", "NewAcademicYear", ErrInvalidFormat, "invalid academic year, expected YYYY-YYYY")
	}
	return a, nil
}

// CurrentAcademicYear returns the academic year for the current date.
// The school year rolls over in August.
func CurrentAcademicYear() AcademicYear {
	now := time.Now()
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	return AcademicYear(fmt.Sprintf("%d-%d", year, year+1))
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// Today returns a TimeRange for today (local time).
func Today() TimeRange {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour).Add(-time.Nanosecond)
	return TimeRange{From: start, To: end}
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
