package meeting

import (
	"errors"
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROFILE (входной контракт движка)
// Типизированный снимок карточки ученика - ровно те данные, которые читают
// оценщики. Profile assembler собирает его из системы записей.
// Незаполненное поле - это нулевое значение; обязательны только имя,
// фамилия и класс, остальное интерпретируется методами *OrDefault.
// ══════════════════════════════════════════════════════════════════════════════

// FrequencyLevel представляет градацию "высокий/средний/низкий".
type FrequencyLevel string

const (
	FrequencyHigh   FrequencyLevel = "high"
	FrequencyMedium FrequencyLevel = "medium"
	FrequencyLow    FrequencyLevel = "low"
)

// OrDefault возвращает уровень или "medium", если значение не заполнено.
func (f FrequencyLevel) OrDefault() FrequencyLevel {
	if f == "" {
		return FrequencyMedium
	}
	return f
}

// SkillLevel представляет качественную оценку навыка.
type SkillLevel string

const (
	SkillExcellent        SkillLevel = "excellent"
	SkillGood             SkillLevel = "good"
	SkillNeedsImprovement SkillLevel = "needs_improvement"
)

// OrDefault возвращает уровень или "good", если значение не заполнено.
func (s SkillLevel) OrDefault() SkillLevel {
	if s == "" {
		return SkillGood
	}
	return s
}

// Trend представляет динамику успеваемости по предмету.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// OrDefault возвращает динамику или "stable", если значение не заполнено.
func (t Trend) OrDefault() Trend {
	if t == "" {
		return TrendStable
	}
	return t
}

// PersonalInfo содержит личные данные ученика.
type PersonalInfo struct {
	// FirstName - имя (обязательное поле).
	FirstName string

	// LastName - фамилия (обязательное поле).
	LastName string

	// Grade - класс обучения (обязательное поле).
	Grade string
}

// FullName возвращает полное имя ученика.
func (p PersonalInfo) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// SubjectStanding содержит сводку по одному предмету.
type SubjectStanding struct {
	// Letter - текущая буквенная оценка ("A-", "B+", ...).
	Letter string

	// Score - средний балл в процентах (0-100).
	Score float64

	// Trend - динамика за последние работы.
	Trend Trend
}

// AcademicProfile содержит академическую сводку.
type AcademicProfile struct {
	// GPA - средний балл по шкале 4.0. Незаполненный GPA равен нулю и
	// честно проходит по ветке "нужна поддержка".
	GPA float64

	// Subjects - сводки по предметам, ключ - название предмета.
	Subjects map[string]SubjectStanding

	// Strengths - сильные стороны.
	Strengths []string

	// AreasForImprovement - зоны роста.
	AreasForImprovement []string

	// LearningStyle - ведущий стиль обучения (для сводки данных).
	LearningStyle string
}

// Participation описывает участие в работе класса.
type Participation struct {
	Level FrequencyLevel
}

// SocialSkills описывает социальные навыки.
type SocialSkills struct {
	PeerInteraction SkillLevel
	Teamwork        SkillLevel
}

// Attendance содержит данные о посещаемости.
type Attendance struct {
	// Rate - доля посещённых дней (0.0-1.0).
	Rate float64

	// TardyCount - количество опозданий.
	TardyCount int
}

// BehavioralProfile содержит поведенческую сводку.
type BehavioralProfile struct {
	Participation Participation
	SocialSkills  SocialSkills
	Attendance    Attendance
}

// Extracurricular содержит внеклассную активность.
type Extracurricular struct {
	Sports         []string
	Clubs          []string
	Achievements   []string
	VolunteerHours int
}

// TotalActivities возвращает суммарное количество секций и кружков.
func (e Extracurricular) TotalActivities() int {
	return len(e.Sports) + len(e.Clubs)
}

// ParentEngagement описывает вовлечённость родителей.
type ParentEngagement struct {
	CommunicationFrequency FrequencyLevel
	HomeworkSupport        SkillLevel
	ConcernsRaised         []string
}

// Goals содержит цели ученика. Родительские цели хранятся в карточке
// (student.Goals), но движок брифингов их не читает, поэтому сюда они
// намеренно не входят.
type Goals struct {
	ShortTerm []string
	LongTerm  []string
}

// TeacherNotes содержит заметки учителя.
type TeacherNotes struct {
	RecommendedActions []string
	MotivationLevel    FrequencyLevel
}

// StudentProfile - входные данные движка подготовки брифинга.
type StudentProfile struct {
	PersonalInfo     PersonalInfo
	Academic         AcademicProfile
	Behavioral       BehavioralProfile
	Extracurricular  Extracurricular
	ParentEngagement ParentEngagement
	Goals            Goals
	TeacherNotes     TeacherNotes
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// ErrMissingRequiredField - базовая ошибка отсутствия обязательного поля.
// Используйте errors.Is для проверки.
var ErrMissingRequiredField = errors.New("missing required field")

// MissingFieldError указывает, какое именно обязательное поле не заполнено.
type MissingFieldError struct {
	// Field - имя поля в терминах API: "firstName", "lastName", "grade".
	Field string
}

// Error реализует интерфейс error.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Unwrap позволяет errors.Is(err, ErrMissingRequiredField).
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingRequiredField
}

// Validate проверяет обязательные поля профиля. Все остальные поля
// необязательны и молча получают значения по умолчанию в оценщиках.
func (p *StudentProfile) Validate() error {
	if p.PersonalInfo.FirstName == "" {
		return &MissingFieldError{Field: "firstName"}
	}
	if p.PersonalInfo.LastName == "" {
		return &MissingFieldError{Field: "lastName"}
	}
	if p.PersonalInfo.Grade == "" {
		return &MissingFieldError{Field: "grade"}
	}
	return nil
}
