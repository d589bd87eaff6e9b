package student

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSESSMENTS
// Оценочные работы - первичный источник академических данных. Из них
// пересчитываются сводки по предметам и GPA в карточке ученика.
// ══════════════════════════════════════════════════════════════════════════════

// AssessmentType представляет тип оценочной работы.
type AssessmentType string

const (
	AssessmentQuiz       AssessmentType = "quiz"
	AssessmentTest       AssessmentType = "test"
	AssessmentProject    AssessmentType = "project"
	AssessmentAssignment AssessmentType = "assignment"
	AssessmentExam       AssessmentType = "exam"
)

// IsValid проверяет, что тип работы корректен.
func (a AssessmentType) IsValid() bool {
	switch a {
	case AssessmentQuiz, AssessmentTest, AssessmentProject, AssessmentAssignment, AssessmentExam:
		return true
	default:
		return false
	}
}

// Difficulty представляет сложность работы.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Assessment представляет одну оценочную работу ученика.
type Assessment struct {
	// ID - идентификатор в формате ASSESS_XXXXXXXX.
	ID string

	// StudentID - идентификатор ученика.
	StudentID string

	// Subject - предмет ("mathematics", "science", ...).
	Subject string

	// Type - тип работы.
	Type AssessmentType

	// Date - дата проведения.
	Date time.Time

	// Score - набранные баллы.
	Score float64

	// MaxScore - максимальные баллы.
	MaxScore float64

	// Percentage - результат в процентах (0-100).
	Percentage float64

	// Topics - покрытые темы.
	Topics []string

	// TeacherFeedback - комментарий учителя.
	TeacherFeedback string

	// Difficulty - сложность работы.
	Difficulty Difficulty

	// TimeSpentMinutes - затраченное время в минутах.
	TimeSpentMinutes int

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Ошибки записей ученика.
var (
	// ErrInvalidAssessmentScore - баллы вне допустимого диапазона.
	ErrInvalidAssessmentScore = errors.New("invalid assessment score: must be between 0 and max score")

	// ErrInvalidAssessmentType - неизвестный тип работы.
	ErrInvalidAssessmentType = errors.New("invalid assessment type")

	// ErrMissingSubject - не указан предмет.
	ErrMissingSubject = errors.New("missing subject")

	// ErrAssessmentNotFound - работа не найдена.
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// NewAssessmentParams содержит параметры для регистрации оценочной работы.
type NewAssessmentParams struct {
	ID        string
	StudentID string
	Subject   string
	Type      AssessmentType
	Date      time.Time
	Score     float64
	MaxScore  float64
	Topics    []string
	Feedback  string
}

// NewAssessment создаёт запись оценочной работы. Процент вычисляется
// из баллов, дата по умолчанию - сейчас.
func NewAssessment(params NewAssessmentParams) (*Assessment, error) {
	if strings.TrimSpace(params.Subject) == "" {
		return nil, ErrMissingSubject
	}
	if !params.Type.IsValid() {
		return nil, ErrInvalidAssessmentType
	}
	if params.MaxScore <= 0 || params.Score < 0 || params.Score > params.MaxScore {
		return nil, ErrInvalidAssessmentScore
	}

	date := params.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return &Assessment{
		ID:              params.ID,
		StudentID:       params.StudentID,
		Subject:         strings.ToLower(strings.TrimSpace(params.Subject)),
		Type:            params.Type,
		Date:            date,
		Score:           params.Score,
		MaxScore:        params.MaxScore,
		Percentage:      params.Score / params.MaxScore * 100,
		Topics:          params.Topics,
		TeacherFeedback: strings.TrimSpace(params.Feedback),
		Difficulty:      DifficultyMedium,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// LetterGrade возвращает буквенную оценку работы.
func (a *Assessment) LetterGrade() string {
	return LetterGradeForScore(a.Percentage)
}

// LetterGradeForScore переводит процент в буквенную оценку по школьной шкале.
func LetterGradeForScore(percentage float64) string {
	switch {
	case percentage >= 97:
		return "A+"
	case percentage >= 93:
		return "A"
	case percentage >= 90:
		return "A-"
	case percentage >= 87:
		return "B+"
	case percentage >= 83:
		return "B"
	case percentage >= 80:
		return "B-"
	case percentage >= 77:
		return "C+"
	case percentage >= 73:
		return "C"
	case percentage >= 70:
		return "C-"
	case percentage >= 67:
		return "D+"
	case percentage >= 65:
		return "D"
	default:
		return "F"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ACADEMIC ROLLUP
// Пересчёт академической сводки из сырых оценок. GPA считается как среднее
// по предметным средним, приведённое к шкале 4.0 (процент / 25).
// ══════════════════════════════════════════════════════════════════════════════

// Окно динамики: сколько последних работ сравниваем с предыдущими.
const trendWindow = 3

// Минимальная разница средних, чтобы считать динамику значимой.
const trendThreshold = 2.0

// AcademicRollup содержит результат пересчёта успеваемости.
type AcademicRollup struct {
	// GPA - средний балл по шкале 4.0.
	GPA float64

	// Subjects - пересчитанные сводки по предметам.
	Subjects map[string]SubjectRecord
}

// ComputeAcademicRollup пересчитывает сводки по предметам и GPA из списка
// оценочных работ. Работы могут приходить в любом порядке.
func ComputeAcademicRollup(assessments []*Assessment) AcademicRollup {
	bySubject := make(map[string][]*Assessment)
	for _, a := range assessments {
		if a == nil || a.Subject == "" {
			continue
		}
		bySubject[a.Subject] = append(bySubject[a.Subject], a)
	}

	subjects := make(map[string]SubjectRecord, len(bySubject))
	totalAverage := 0.0

	for subject, list := range bySubject {
		sort.Slice(list, func(i, j int) bool {
			return list[i].Date.Before(list[j].Date)
		})

		average := 0.0
		for _, a := range list {
			average += a.Percentage
		}
		average /= float64(len(list))

		subjects[subject] = SubjectRecord{
			CurrentGrade: LetterGradeForScore(average),
			AverageScore: average,
			Trend:        detectTrend(list),
		}
		totalAverage += average
	}

	rollup := AcademicRollup{Subjects: subjects}
	if len(subjects) > 0 {
		// Процентная шкала 0-100 соответствует GPA 0.0-4.0.
		rollup.GPA = totalAverage / float64(len(subjects)) / 25
	}
	return rollup
}

// detectTrend сравнивает среднее последних работ со средним предыдущих.
// Если работ меньше двух окон, динамика считается стабильной.
func detectTrend(sorted []*Assessment) Trend {
	if len(sorted) < trendWindow*2 {
		return TrendStable
	}

	recent := sorted[len(sorted)-trendWindow:]
	previous := sorted[len(sorted)-trendWindow*2 : len(sorted)-trendWindow]

	recentAvg := 0.0
	for _, a := range recent {
		recentAvg += a.Percentage
	}
	recentAvg /= float64(len(recent))

	previousAvg := 0.0
	for _, a := range previous {
		previousAvg += a.Percentage
	}
	previousAvg /= float64(len(previous))

	switch {
	case recentAvg-previousAvg > trendThreshold:
		return TrendImproving
	case previousAvg-recentAvg > trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BEHAVIORAL INCIDENTS
// ══════════════════════════════════════════════════════════════════════════════

// IncidentType представляет знак поведенческого эпизода.
type IncidentType string

const (
	// IncidentPositive - положительный эпизод (лидерство, помощь другим).
	IncidentPositive IncidentType = "positive"
	// IncidentNegative - отрицательный эпизод (нарушение дисциплины).
	IncidentNegative IncidentType = "negative"
)

// IsValid проверяет, что знак эпизода корректен.
func (i IncidentType) IsValid() bool {
	return i == IncidentPositive || i == IncidentNegative
}

// IncidentSeverity представляет серьёзность эпизода.
type IncidentSeverity string

const (
	SeverityLow    IncidentSeverity = "low"
	SeverityMedium IncidentSeverity = "medium"
	SeverityHigh   IncidentSeverity = "high"
)

// Категории поведенческих эпизодов.
const (
	CategoryParticipation = "participation"
	CategoryLeadership    = "leadership"
	CategoryHelpingOthers = "helping_others"
	CategoryDiscipline    = "discipline"
	CategoryDisruption    = "disruption"
	CategoryTardiness     = "tardiness"
)

// BehavioralIncident представляет один поведенческий эпизод.
type BehavioralIncident struct {
	// ID - идентификатор в формате INC_XXXXXXXX.
	ID string

	// StudentID - идентификатор ученика.
	StudentID string

	// Date - дата эпизода.
	Date time.Time

	// Type - знак эпизода (positive/negative).
	Type IncidentType

	// Category - категория эпизода.
	Category string

	// Description - описание произошедшего.
	Description string

	// Severity - серьёзность.
	Severity IncidentSeverity

	// ActionTaken - принятые меры.
	ActionTaken string

	// FollowUpRequired - требуется ли продолжение работы.
	FollowUpRequired bool

	// TeacherID - кто зафиксировал эпизод.
	TeacherID string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// IsSerious возвращает true для серьёзных отрицательных эпизодов.
func (b *BehavioralIncident) IsSerious() bool {
	return b.Type == IncidentNegative && b.Severity == SeverityHigh
}

// ══════════════════════════════════════════════════════════════════════════════
// PARENT COMMUNICATIONS
// ══════════════════════════════════════════════════════════════════════════════

// CommunicationType представляет канал общения с родителями.
type CommunicationType string

const (
	CommunicationEmail   CommunicationType = "email"
	CommunicationPhone   CommunicationType = "phone"
	CommunicationMeeting CommunicationType = "meeting"
	CommunicationNote    CommunicationType = "note"
)

// IsValid проверяет, что канал общения корректен.
func (c CommunicationType) IsValid() bool {
	switch c {
	case CommunicationEmail, CommunicationPhone, CommunicationMeeting, CommunicationNote:
		return true
	default:
		return false
	}
}

// Инициатор общения.
const (
	InitiatorTeacher = "teacher"
	InitiatorParent  = "parent"
)

// ParentCommunication представляет одну запись общения с родителями.
type ParentCommunication struct {
	// ID - идентификатор в формате COMM_XXXXXXXX.
	ID string

	// StudentID - идентификатор ученика.
	StudentID string

	// Date - дата общения.
	Date time.Time

	// Type - канал общения.
	Type CommunicationType

	// InitiatedBy - кто инициировал ("teacher" или "parent").
	InitiatedBy string

	// Subject - тема общения.
	Subject string

	// Content - содержание.
	Content string

	// FollowUpNeeded - требуется ли продолжение.
	FollowUpNeeded bool

	// FollowUpDate - планируемая дата продолжения.
	FollowUpDate time.Time

	// TeacherID - учитель, участвовавший в общении.
	TeacherID string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// IsRecent возвращает true, если общение было в последние N дней.
func (p *ParentCommunication) IsRecent(days int) bool {
	return time.Since(p.Date) <= time.Duration(days)*24*time.Hour
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE PROFILE
// Полная карточка ученика с историей записей - то, что собирает
// profile assembler для подготовки к встрече.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteProfile объединяет карточку ученика с историей записей.
type CompleteProfile struct {
	// Student - карточка ученика.
	Student *Student

	// Assessments - последние оценочные работы (от новых к старым).
	Assessments []*Assessment

	// Incidents - последние поведенческие эпизоды (от новых к старым).
	Incidents []*BehavioralIncident

	// Communications - последние записи общения (от новых к старым).
	Communications []*ParentCommunication
}

// RecentAssessments возвращает не более limit последних работ.
func (c *CompleteProfile) RecentAssessments(limit int) []*Assessment {
	if limit <= 0 || limit >= len(c.Assessments) {
		return c.Assessments
	}
	return c.Assessments[:limit]
}

// OpenFollowUps возвращает записи общения, требующие продолжения.
func (c *CompleteProfile) OpenFollowUps() []*ParentCommunication {
	var open []*ParentCommunication
	for _, comm := range c.Communications {
		if comm.FollowUpNeeded {
			open = append(open, comm)
		}
	}
	return open
}
