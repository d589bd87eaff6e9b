// Package student содержит доменную модель ученика BrightClass Conference Hub.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// SkillLevel представляет качественную оценку навыка ученика.
type SkillLevel string

const (
	// SkillExcellent - отличный уровень.
	SkillExcellent SkillLevel = "excellent"
	// SkillGood - хороший уровень (значение по умолчанию).
	SkillGood SkillLevel = "good"
	// SkillNeedsImprovement - требует развития.
	SkillNeedsImprovement SkillLevel = "needs_improvement"
)

// IsValid проверяет, что уровень навыка корректен.
func (s SkillLevel) IsValid() bool {
	switch s {
	case SkillExcellent, SkillGood, SkillNeedsImprovement:
		return true
	default:
		return false
	}
}

// OrDefault возвращает уровень или "good", если значение не заполнено.
func (s SkillLevel) OrDefault() SkillLevel {
	if s == "" {
		return SkillGood
	}
	return s
}

// FrequencyLevel представляет градацию "высокий/средний/низкий".
// Используется для участия в уроках, частоты общения с родителями и мотивации.
type FrequencyLevel string

const (
	// FrequencyHigh - высокий уровень.
	FrequencyHigh FrequencyLevel = "high"
	// FrequencyMedium - средний уровень (значение по умолчанию).
	FrequencyMedium FrequencyLevel = "medium"
	// FrequencyLow - низкий уровень.
	FrequencyLow FrequencyLevel = "low"
)

// IsValid проверяет, что уровень корректен.
func (f FrequencyLevel) IsValid() bool {
	switch f {
	case FrequencyHigh, FrequencyMedium, FrequencyLow:
		return true
	default:
		return false
	}
}

// OrDefault возвращает уровень или "medium", если значение не заполнено.
func (f FrequencyLevel) OrDefault() FrequencyLevel {
	if f == "" {
		return FrequencyMedium
	}
	return f
}

// Trend представляет динамику успеваемости по предмету.
type Trend string

const (
	// TrendImproving - успеваемость растёт.
	TrendImproving Trend = "improving"
	// TrendStable - успеваемость стабильна (значение по умолчанию).
	TrendStable Trend = "stable"
	// TrendDeclining - успеваемость падает.
	TrendDeclining Trend = "declining"
)

// IsValid проверяет, что динамика корректна.
func (t Trend) IsValid() bool {
	switch t {
	case TrendImproving, TrendStable, TrendDeclining:
		return true
	default:
		return false
	}
}

// OrDefault возвращает динамику или "stable", если значение не заполнено.
func (t Trend) OrDefault() Trend {
	if t == "" {
		return TrendStable
	}
	return t
}

// LearningStyle представляет ведущий стиль обучения ученика.
type LearningStyle string

const (
	LearningVisual      LearningStyle = "visual"
	LearningAuditory    LearningStyle = "auditory"
	LearningKinesthetic LearningStyle = "kinesthetic"
	LearningMixed       LearningStyle = "mixed"
)

// IsValid проверяет, что стиль обучения корректен.
func (l LearningStyle) IsValid() bool {
	switch l {
	case LearningVisual, LearningAuditory, LearningKinesthetic, LearningMixed:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус ученика в школе.
type Status string

const (
	// StatusActive - ученик учится.
	StatusActive Status = "active"
	// StatusInactive - ученик длительно отсутствует.
	StatusInactive Status = "inactive"
	// StatusTransferred - ученик переведён в другую школу.
	StatusTransferred Status = "transferred"
	// StatusGraduated - ученик закончил школу.
	StatusGraduated Status = "graduated"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTransferred, StatusGraduated:
		return true
	default:
		return false
	}
}

// IsEnrolled возвращает true, если ученик всё ещё числится в школе.
func (s Status) IsEnrolled() bool {
	return s == StatusActive || s == StatusInactive
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE SECTIONS
// Секции зеркалируют структуру карточки ученика: личные данные, успеваемость,
// поведение, внеклассная активность, вовлечённость родителей, цели и заметки.
// Незаполненная секция - это нулевое значение, движок рекомендаций
// интерпретирует его через методы *OrDefault.
// ══════════════════════════════════════════════════════════════════════════════

// PersonalInfo содержит личные данные ученика.
type PersonalInfo struct {
	// FirstName - имя (обязательное поле).
	FirstName string

	// LastName - фамилия (обязательное поле).
	LastName string

	// Grade - класс обучения, например "5" (обязательное поле).
	Grade string

	// Section - литера класса, например "A".
	Section string

	// DateOfBirth - дата рождения.
	DateOfBirth time.Time

	// RollNumber - номер в классном журнале.
	RollNumber int

	// ParentEmail - электронная почта родителя.
	ParentEmail string

	// ParentPhone - телефон родителя.
	ParentPhone string
}

// GradeOrDefault возвращает класс или "5", если он не заполнен.
func (p PersonalInfo) GradeOrDefault() string {
	if p.Grade == "" {
		return "5"
	}
	return p.Grade
}

// SubjectRecord содержит сводку успеваемости по одному предмету.
type SubjectRecord struct {
	// CurrentGrade - текущая буквенная оценка ("A-", "B+", ...).
	CurrentGrade string

	// AverageScore - средний балл в процентах (0-100).
	AverageScore float64

	// Trend - динамика за последние работы.
	Trend Trend
}

// AcademicProfile содержит академическую сводку ученика.
type AcademicProfile struct {
	// CurrentGPA - средний балл по шкале 4.0.
	CurrentGPA float64

	// Subjects - сводки по предметам, ключ - название предмета
	// ("mathematics", "science", ...).
	Subjects map[string]SubjectRecord

	// Strengths - сильные стороны ("problem solving", ...).
	Strengths []string

	// AreasForImprovement - зоны роста.
	AreasForImprovement []string

	// LearningStyle - ведущий стиль обучения.
	LearningStyle LearningStyle
}

// ParticipationRecord описывает участие ученика в работе класса.
type ParticipationRecord struct {
	// Level - уровень участия (high/medium/low).
	Level FrequencyLevel
}

// SocialSkills описывает социальные навыки ученика.
type SocialSkills struct {
	// PeerInteraction - взаимодействие со сверстниками.
	PeerInteraction SkillLevel

	// Teamwork - работа в команде.
	Teamwork SkillLevel
}

// AttendanceRecord содержит данные о посещаемости.
type AttendanceRecord struct {
	// AttendanceRate - доля посещённых дней (0.0-1.0).
	AttendanceRate float64

	// TardyCount - количество опозданий.
	TardyCount int

	// PresentDays - посещено дней.
	PresentDays int

	// TotalDays - всего учебных дней.
	TotalDays int
}

// BehavioralProfile содержит поведенческую сводку ученика.
type BehavioralProfile struct {
	Participation ParticipationRecord
	SocialSkills  SocialSkills
	Attendance    AttendanceRecord
}

// Extracurricular содержит внеклассную активность ученика.
type Extracurricular struct {
	// Sports - спортивные секции.
	Sports []string

	// Clubs - кружки и клубы.
	Clubs []string

	// Achievements - награды и признания.
	Achievements []string

	// Competitions - участие в конкурсах и олимпиадах.
	Competitions []string

	// VolunteerHours - часы волонтёрства.
	VolunteerHours int
}

// TotalActivities возвращает суммарное количество секций и кружков.
func (e Extracurricular) TotalActivities() int {
	return len(e.Sports) + len(e.Clubs)
}

// ParentEngagement описывает вовлечённость родителей.
type ParentEngagement struct {
	// CommunicationFrequency - частота общения со школой.
	CommunicationFrequency FrequencyLevel

	// HomeworkSupport - качество помощи с домашними заданиями.
	HomeworkSupport SkillLevel

	// ConcernsRaised - вопросы, поднятые родителями.
	ConcernsRaised []string

	// LastMeetingDate - дата последней встречи с учителем.
	LastMeetingDate time.Time
}

// Goals содержит цели ученика.
type Goals struct {
	// ShortTerm - краткосрочные цели (текущая четверть).
	ShortTerm []string

	// LongTerm - долгосрочные цели (учебный год и дальше).
	LongTerm []string

	// ParentGoals - цели, сформулированные родителями.
	ParentGoals []string

	// TeacherGoals - цели, сформулированные учителем.
	TeacherGoals []string
}

// TeacherNotes содержит заметки учителя об ученике.
type TeacherNotes struct {
	// RecommendedActions - рекомендованные следующие шаги.
	RecommendedActions []string

	// MotivationLevel - уровень мотивации (high/medium/low).
	MotivationLevel FrequencyLevel

	// GeneralObservations - свободные наблюдения.
	GeneralObservations string

	// HomeworkCompletion - качество выполнения домашних заданий.
	HomeworkCompletion SkillLevel

	// ClassroomBehavior - поведение на уроках.
	ClassroomBehavior SkillLevel

	// SpecialNeeds - особые образовательные потребности.
	SpecialNeeds string
}

// Metadata содержит служебные данные записи.
type Metadata struct {
	// TeacherID - идентификатор классного руководителя (TEACH_XXXXXX).
	TeacherID string

	// AcademicYear - учебный год в формате "2024-2025".
	AcademicYear string

	// LastMeetingPrep - время последней подготовки брифинга к встрече.
	LastMeetingPrep time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы, карточка ученика.
type Student struct {
	// ID - уникальный идентификатор в формате STU_XXXXXXXX.
	ID string

	// PersonalInfo - личные данные.
	PersonalInfo PersonalInfo

	// Academic - академическая сводка.
	Academic AcademicProfile

	// Behavioral - поведенческая сводка.
	Behavioral BehavioralProfile

	// Extracurricular - внеклассная активность.
	Extracurricular Extracurricular

	// ParentEngagement - вовлечённость родителей.
	ParentEngagement ParentEngagement

	// Goals - цели ученика.
	Goals Goals

	// TeacherNotes - заметки учителя.
	TeacherNotes TeacherNotes

	// Metadata - служебные данные.
	Metadata Metadata

	// Status - текущий статус ученика.
	Status Status

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidStudentID - невалидный идентификатор ученика.
	ErrInvalidStudentID = errors.New("invalid student id: expected STU_ prefix with 8 hex chars")

	// ErrMissingFirstName - не заполнено имя.
	ErrMissingFirstName = errors.New("missing first name")

	// ErrMissingLastName - не заполнена фамилия.
	ErrMissingLastName = errors.New("missing last name")

	// ErrMissingGrade - не заполнен класс.
	ErrMissingGrade = errors.New("missing grade")

	// ErrInvalidGPA - GPA вне шкалы 0.0-4.0.
	ErrInvalidGPA = errors.New("invalid gpa: must be between 0.0 and 4.0")

	// ErrInvalidAttendanceRate - доля посещаемости вне диапазона 0-1.
	ErrInvalidAttendanceRate = errors.New("invalid attendance rate: must be between 0.0 and 1.0")

	// ErrInvalidStatus - невалидный статус.
	ErrInvalidStatus = errors.New("invalid student status")

	// ErrStudentNotFound - ученик не найден.
	ErrStudentNotFound = errors.New("student not found")

	// ErrStudentAlreadyExists - ученик уже существует.
	ErrStudentAlreadyExists = errors.New("student already exists")

	// ErrStudentNotEnrolled - ученик больше не числится в школе.
	ErrStudentNotEnrolled = errors.New("student is not enrolled")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams содержит параметры для создания новой карточки ученика.
type NewStudentParams struct {
	ID        string
	FirstName string
	LastName  string
	Grade     string
	Section   string
	TeacherID string
}

// NewStudent создаёт новую карточку ученика с валидацией обязательных полей.
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, ErrInvalidStudentID
	}

	firstName := strings.TrimSpace(params.FirstName)
	if firstName == "" {
		return nil, ErrMissingFirstName
	}

	lastName := strings.TrimSpace(params.LastName)
	if lastName == "" {
		return nil, ErrMissingLastName
	}

	if strings.TrimSpace(params.Grade) == "" {
		return nil, ErrMissingGrade
	}

	now := time.Now().UTC()

	return &Student{
		ID: params.ID,
		PersonalInfo: PersonalInfo{
			FirstName: firstName,
			LastName:  lastName,
			Grade:     strings.TrimSpace(params.Grade),
			Section:   strings.TrimSpace(params.Section),
		},
		Academic: AcademicProfile{
			Subjects: make(map[string]SubjectRecord),
		},
		Metadata: Metadata{
			TeacherID: params.TeacherID,
		},
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// FullName возвращает полное имя ученика.
func (s *Student) FullName() string {
	return strings.TrimSpace(s.PersonalInfo.FirstName + " " + s.PersonalInfo.LastName)
}

// Validate проверяет инварианты карточки.
func (s *Student) Validate() error {
	if s.PersonalInfo.FirstName == "" {
		return ErrMissingFirstName
	}
	if s.PersonalInfo.LastName == "" {
		return ErrMissingLastName
	}
	if s.PersonalInfo.Grade == "" {
		return ErrMissingGrade
	}
	if s.Academic.CurrentGPA < 0 || s.Academic.CurrentGPA > 4.0 {
		return ErrInvalidGPA
	}
	if r := s.Behavioral.Attendance.AttendanceRate; r < 0 || r > 1 {
		return ErrInvalidAttendanceRate
	}
	if s.Status != "" && !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// ApplyAcademicRollup заменяет академическую сводку результатом пересчёта
// по свежим оценкам. Сильные стороны и зоны роста при этом сохраняются:
// их ведёт учитель вручную.
func (s *Student) ApplyAcademicRollup(gpa float64, subjects map[string]SubjectRecord) error {
	if gpa < 0 || gpa > 4.0 {
		return ErrInvalidGPA
	}

	s.Academic.CurrentGPA = gpa
	s.Academic.Subjects = subjects
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordAttendance обновляет данные посещаемости.
func (s *Student) RecordAttendance(presentDays, totalDays, tardyCount int) error {
	if totalDays <= 0 || presentDays < 0 || presentDays > totalDays {
		return ErrInvalidAttendanceRate
	}

	s.Behavioral.Attendance = AttendanceRecord{
		AttendanceRate: float64(presentDays) / float64(totalDays),
		TardyCount:     tardyCount,
		PresentDays:    presentDays,
		TotalDays:      totalDays,
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkMeetingPrepared фиксирует время последней подготовки брифинга.
func (s *Student) MarkMeetingPrepared(at time.Time) {
	s.Metadata.LastMeetingPrep = at
	s.UpdatedAt = time.Now().UTC()
}

// Deactivate помечает ученика как длительно отсутствующего.
func (s *Student) Deactivate() error {
	if !s.Status.IsEnrolled() {
		return ErrStudentNotEnrolled
	}

	s.Status = StatusInactive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Reactivate возвращает ученика в активный статус.
func (s *Student) Reactivate() error {
	if s.Status != StatusInactive {
		return errors.New("can only reactivate inactive students")
	}

	s.Status = StatusActive
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkTransferred помечает ученика как переведённого в другую школу.
func (s *Student) MarkTransferred() error {
	if !s.Status.IsEnrolled() {
		return ErrStudentNotEnrolled
	}

	s.Status = StatusTransferred
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkGraduated помечает ученика как выпускника.
func (s *Student) MarkGraduated() error {
	if !s.Status.IsEnrolled() {
		return ErrStudentNotEnrolled
	}

	s.Status = StatusGraduated
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// String возвращает строковое представление ученика для логирования.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Name: %s, Grade: %s, GPA: %.2f, Status: %s}",
		s.ID, s.FullName(), s.PersonalInfo.Grade, s.Academic.CurrentGPA, s.Status,
	)
}

// Clone создаёт глубокую копию карточки ученика.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s

	if s.Academic.Subjects != nil {
		clone.Academic.Subjects = make(map[string]SubjectRecord, len(s.Academic.Subjects))
		for name, record := range s.Academic.Subjects {
			clone.Academic.Subjects[name] = record
		}
	}

	clone.Academic.Strengths = append([]string(nil), s.Academic.Strengths...)
	clone.Academic.AreasForImprovement = append([]string(nil), s.Academic.AreasForImprovement...)
	clone.Extracurricular.Sports = append([]string(nil), s.Extracurricular.Sports...)
	clone.Extracurricular.Clubs = append([]string(nil), s.Extracurricular.Clubs...)
	clone.Extracurricular.Achievements = append([]string(nil), s.Extracurricular.Achievements...)
	clone.Extracurricular.Competitions = append([]string(nil), s.Extracurricular.Competitions...)
	clone.ParentEngagement.ConcernsRaised = append([]string(nil), s.ParentEngagement.ConcernsRaised...)
	clone.Goals.ShortTerm = append([]string(nil), s.Goals.ShortTerm...)
	clone.Goals.LongTerm = append([]string(nil), s.Goals.LongTerm...)
	clone.Goals.ParentGoals = append([]string(nil), s.Goals.ParentGoals...)
	clone.Goals.TeacherGoals = append([]string(nil), s.Goals.TeacherGoals...)
	clone.TeacherNotes.RecommendedActions = append([]string(nil), s.TeacherNotes.RecommendedActions...)

	return &clone
}
