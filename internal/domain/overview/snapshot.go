// Package overview содержит доменную модель сводки по классу.
// Снимок класса - это read model: агрегаты по успеваемости и посещаемости,
// которые учитель видит перед циклом родительских встреч.
package overview

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrSnapshotNotFound - снимок не найден.
	ErrSnapshotNotFound = errors.New("grade snapshot not found")

	// ErrInvalidSnapshotID - невалидный ID снимка.
	ErrInvalidSnapshotID = errors.New("invalid snapshot id: cannot be empty")

	// ErrInvalidGrade - невалидный класс.
	ErrInvalidGrade = errors.New("invalid grade: cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT STANDING
// ══════════════════════════════════════════════════════════════════════════════

// StudentStanding - позиция одного ученика внутри снимка класса.
type StudentStanding struct {
	// StudentID - идентификатор ученика.
	StudentID string

	// FullName - полное имя для отображения.
	FullName string

	// GPA - текущий средний балл по шкале 4.0.
	GPA float64

	// AttendanceRate - доля посещённых дней (0.0-1.0).
	AttendanceRate float64

	// SubjectAverages - средний процент по каждому предмету.
	SubjectAverages map[string]float64

	// AtRisk - помечен ли ученик как требующий внимания.
	AtRisk bool

	// AtRiskReasons - причины пометки (низкий GPA, посещаемость и т.д.).
	AtRiskReasons []string
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// GradeSnapshot представляет состояние класса в определённый момент времени.
// Снимки используются для:
// 1. Обзора класса перед циклом встреч
// 2. Отслеживания динамики между снимками (Diff)
// 3. Быстрого чтения (CQRS Read Model)
type GradeSnapshot struct {
	// ID - уникальный идентификатор снимка.
	ID string

	// Grade - класс, для которого создан снимок.
	Grade string

	// AcademicYear - учебный год снимка.
	AcademicYear string

	// SnapshotAt - время создания снимка.
	SnapshotAt time.Time

	// StudentCount - количество учеников в снимке.
	StudentCount int

	// AverageGPA - средний GPA по классу.
	AverageGPA float64

	// AverageAttendance - средняя посещаемость по классу.
	AverageAttendance float64

	// AtRiskCount - количество учеников, требующих внимания.
	AtRiskCount int

	// SubjectAverages - средний процент по предметам среди всего класса.
	SubjectAverages map[string]float64

	// Standings - позиции учеников, отсортированы по GPA по убыванию.
	Standings []*StudentStanding

	// byID - индекс для быстрого поиска по ID ученика.
	byID map[string]*StudentStanding
}

// NewGradeSnapshot создаёт снимок класса из позиций учеников.
// Позиции сортируются по GPA по убыванию, при равенстве - по имени.
func NewGradeSnapshot(id, grade, academicYear string, standings []*StudentStanding) (*GradeSnapshot, error) {
	if id == "" {
		return nil, ErrInvalidSnapshotID
	}
	if grade == "" {
		return nil, ErrInvalidGrade
	}

	sorted := make([]*StudentStanding, len(standings))
	copy(sorted, standings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].GPA != sorted[j].GPA {
			return sorted[i].GPA > sorted[j].GPA
		}
		return sorted[i].FullName < sorted[j].FullName
	})

	snapshot := &GradeSnapshot{
		ID:              id,
		Grade:           grade,
		AcademicYear:    academicYear,
		SnapshotAt:      time.Now().UTC(),
		StudentCount:    len(sorted),
		SubjectAverages: make(map[string]float64),
		Standings:       sorted,
		byID:            make(map[string]*StudentStanding, len(sorted)),
	}

	if len(sorted) == 0 {
		return snapshot, nil
	}

	var totalGPA, totalAttendance float64
	subjectTotals := make(map[string]float64)
	subjectCounts := make(map[string]int)

	for _, standing := range sorted {
		snapshot.byID[standing.StudentID] = standing
		totalGPA += standing.GPA
		totalAttendance += standing.AttendanceRate
		if standing.AtRisk {
			snapshot.AtRiskCount++
		}
		for subject, average := range standing.SubjectAverages {
			subjectTotals[subject] += average
			subjectCounts[subject]++
		}
	}

	snapshot.AverageGPA = totalGPA / float64(len(sorted))
	snapshot.AverageAttendance = totalAttendance / float64(len(sorted))
	for subject, total := range subjectTotals {
		snapshot.SubjectAverages[subject] = total / float64(subjectCounts[subject])
	}

	return snapshot, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// GetByStudent возвращает позицию ученика или nil.
func (s *GradeSnapshot) GetByStudent(studentID string) *StudentStanding {
	if s.byID == nil {
		return nil
	}
	return s.byID[studentID]
}

// Rank возвращает позицию ученика по GPA (начиная с 1).
// Возвращает 0, если ученик не найден в снимке.
func (s *GradeSnapshot) Rank(studentID string) int {
	for i, standing := range s.Standings {
		if standing.StudentID == studentID {
			return i + 1
		}
	}
	return 0
}

// TopPerformers возвращает первые n позиций.
func (s *GradeSnapshot) TopPerformers(n int) []*StudentStanding {
	if n <= 0 || len(s.Standings) == 0 {
		return nil
	}
	if n > len(s.Standings) {
		n = len(s.Standings)
	}
	return s.Standings[:n]
}

// AtRiskStudents возвращает позиции учеников, требующих внимания.
func (s *GradeSnapshot) AtRiskStudents() []*StudentStanding {
	atRisk := make([]*StudentStanding, 0, s.AtRiskCount)
	for _, standing := range s.Standings {
		if standing.AtRisk {
			atRisk = append(atRisk, standing)
		}
	}
	return atRisk
}

// IsEmpty возвращает true для снимка без учеников.
func (s *GradeSnapshot) IsEmpty() bool {
	return s.StudentCount == 0
}

// RebuildIndex перестраивает внутренний индекс byID.
// Вызывается после десериализации снимка из кеша или БД.
func (s *GradeSnapshot) RebuildIndex() {
	s.byID = make(map[string]*StudentStanding, len(s.Standings))
	for _, standing := range s.Standings {
		s.byID[standing.StudentID] = standing
	}
}

// String возвращает читаемое представление снимка.
func (s *GradeSnapshot) String() string {
	return fmt.Sprintf("GradeSnapshot{grade=%s students=%d avgGPA=%.2f atRisk=%d}",
		s.Grade, s.StudentCount, s.AverageGPA, s.AtRiskCount)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT DIFF
// ══════════════════════════════════════════════════════════════════════════════

// OverviewDiff описывает изменения между двумя снимками одного класса.
type OverviewDiff struct {
	// GPADelta - изменение среднего GPA.
	GPADelta float64

	// AttendanceDelta - изменение средней посещаемости.
	AttendanceDelta float64

	// AtRiskDelta - изменение количества учеников в зоне риска.
	AtRiskDelta int

	// NewlyAtRisk - ID учеников, попавших в зону риска с прошлого снимка.
	NewlyAtRisk []string

	// Recovered - ID учеников, вышедших из зоны риска.
	Recovered []string
}

// Diff сравнивает снимок с предыдущим. При nil previous все ученики
// в зоне риска считаются новыми.
func (s *GradeSnapshot) Diff(previous *GradeSnapshot) *OverviewDiff {
	diff := &OverviewDiff{
		NewlyAtRisk: []string{},
		Recovered:   []string{},
	}

	if previous == nil {
		diff.GPADelta = s.AverageGPA
		diff.AttendanceDelta = s.AverageAttendance
		diff.AtRiskDelta = s.AtRiskCount
		for _, standing := range s.Standings {
			if standing.AtRisk {
				diff.NewlyAtRisk = append(diff.NewlyAtRisk, standing.StudentID)
			}
		}
		return diff
	}

	diff.GPADelta = s.AverageGPA - previous.AverageGPA
	diff.AttendanceDelta = s.AverageAttendance - previous.AverageAttendance
	diff.AtRiskDelta = s.AtRiskCount - previous.AtRiskCount

	for _, standing := range s.Standings {
		wasAtRisk := false
		if prev := previous.GetByStudent(standing.StudentID); prev != nil {
			wasAtRisk = prev.AtRisk
		}
		if standing.AtRisk && !wasAtRisk {
			diff.NewlyAtRisk = append(diff.NewlyAtRisk, standing.StudentID)
		}
	}

	for _, standing := range previous.Standings {
		if !standing.AtRisk {
			continue
		}
		current := s.GetByStudent(standing.StudentID)
		if current != nil && !current.AtRisk {
			diff.Recovered = append(diff.Recovered, standing.StudentID)
		}
	}

	return diff
}
