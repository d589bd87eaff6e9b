package query

import (
	"time"

	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT DTO
// Полная карточка ученика в формате API. Используется запросами get_student
// и list_students.
// ══════════════════════════════════════════════════════════════════════════════

// PersonalInfoDTO - секция личных данных.
type PersonalInfoDTO struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Grade       string `json:"grade"`
	Section     string `json:"section"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	RollNumber  int    `json:"roll_number"`
	ParentEmail string `json:"parent_email"`
	ParentPhone string `json:"parent_phone"`
}

// SubjectRecordDTO - сводка по одному предмету.
type SubjectRecordDTO struct {
	CurrentGrade string  `json:"current_grade"`
	AverageScore float64 `json:"average_score"`
	Trend        string  `json:"trend"`
}

// AcademicDTO - академическая секция.
type AcademicDTO struct {
	CurrentGPA          float64                     `json:"current_gpa"`
	Subjects            map[string]SubjectRecordDTO `json:"subjects"`
	Strengths           []string                    `json:"strengths"`
	AreasForImprovement []string                    `json:"areas_for_improvement"`
	LearningStyle       string                      `json:"learning_style"`
}

// BehavioralDTO - поведенческая секция.
type BehavioralDTO struct {
	Participation struct {
		Level string `json:"level"`
	} `json:"participation"`
	SocialSkills struct {
		PeerInteraction string `json:"peer_interaction"`
		Teamwork        string `json:"teamwork"`
	} `json:"social_skills"`
	Attendance struct {
		AttendanceRate float64 `json:"attendance_rate"`
		TardyCount     int     `json:"tardy_count"`
		PresentDays    int     `json:"present_days"`
		TotalDays      int     `json:"total_days"`
	} `json:"attendance"`
}

// ExtracurricularDTO - секция внеклассной активности.
type ExtracurricularDTO struct {
	Sports         []string `json:"sports"`
	Clubs          []string `json:"clubs"`
	Achievements   []string `json:"achievements"`
	Competitions   []string `json:"competitions"`
	VolunteerHours int      `json:"volunteer_hours"`
}

// ParentEngagementDTO - секция вовлечённости родителей.
type ParentEngagementDTO struct {
	CommunicationFrequency string   `json:"communication_frequency"`
	HomeworkSupport        string   `json:"homework_support"`
	ConcernsRaised         []string `json:"concerns_raised"`
	LastMeetingDate        string   `json:"last_meeting_date,omitempty"`
}

// GoalsDTO - секция целей.
type GoalsDTO struct {
	ShortTerm    []string `json:"short_term"`
	LongTerm     []string `json:"long_term"`
	ParentGoals  []string `json:"parent_goals"`
	TeacherGoals []string `json:"teacher_goals"`
}

// TeacherNotesDTO - секция заметок учителя.
type TeacherNotesDTO struct {
	RecommendedActions  []string `json:"recommended_actions"`
	MotivationLevel     string   `json:"motivation_level"`
	GeneralObservations string   `json:"general_observations"`
	HomeworkCompletion  string   `json:"homework_completion"`
	ClassroomBehavior   string   `json:"classroom_behavior"`
	SpecialNeeds        string   `json:"special_needs,omitempty"`
}

// MetadataDTO - служебная секция.
type MetadataDTO struct {
	TeacherID       string `json:"teacher_id"`
	AcademicYear    string `json:"academic_year"`
	LastMeetingPrep string `json:"last_meeting_prep,omitempty"`
}

// StudentDTO - полная карточка ученика в формате API.
type StudentDTO struct {
	StudentID        string              `json:"student_id"`
	PersonalInfo     PersonalInfoDTO     `json:"personal_info"`
	Academic         AcademicDTO         `json:"academic"`
	Behavioral       BehavioralDTO       `json:"behavioral"`
	Extracurricular  ExtracurricularDTO  `json:"extracurricular"`
	ParentEngagement ParentEngagementDTO `json:"parent_engagement"`
	Goals            GoalsDTO            `json:"goals"`
	TeacherNotes     TeacherNotesDTO     `json:"teacher_notes"`
	Metadata         MetadataDTO         `json:"metadata"`
	Status           string              `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// NewStudentDTO переводит доменную карточку в формат API.
func NewStudentDTO(s *student.Student) StudentDTO {
	dto := StudentDTO{
		StudentID: s.ID,
		PersonalInfo: PersonalInfoDTO{
			FirstName:   s.PersonalInfo.FirstName,
			LastName:    s.PersonalInfo.LastName,
			Grade:       s.PersonalInfo.Grade,
			Section:     s.PersonalInfo.Section,
			DateOfBirth: formatDate(s.PersonalInfo.DateOfBirth),
			RollNumber:  s.PersonalInfo.RollNumber,
			ParentEmail: s.PersonalInfo.ParentEmail,
			ParentPhone: s.PersonalInfo.ParentPhone,
		},
		Academic: AcademicDTO{
			CurrentGPA:          s.Academic.CurrentGPA,
			Subjects:            make(map[string]SubjectRecordDTO, len(s.Academic.Subjects)),
			Strengths:           emptyIfNil(s.Academic.Strengths),
			AreasForImprovement: emptyIfNil(s.Academic.AreasForImprovement),
			LearningStyle:       string(s.Academic.LearningStyle),
		},
		Extracurricular: ExtracurricularDTO{
			Sports:         emptyIfNil(s.Extracurricular.Sports),
			Clubs:          emptyIfNil(s.Extracurricular.Clubs),
			Achievements:   emptyIfNil(s.Extracurricular.Achievements),
			Competitions:   emptyIfNil(s.Extracurricular.Competitions),
			VolunteerHours: s.Extracurricular.VolunteerHours,
		},
		ParentEngagement: ParentEngagementDTO{
			CommunicationFrequency: string(s.ParentEngagement.CommunicationFrequency),
			HomeworkSupport:        string(s.ParentEngagement.HomeworkSupport),
			ConcernsRaised:         emptyIfNil(s.ParentEngagement.ConcernsRaised),
			LastMeetingDate:        formatDate(s.ParentEngagement.LastMeetingDate),
		},
		Goals: GoalsDTO{
			ShortTerm:    emptyIfNil(s.Goals.ShortTerm),
			LongTerm:     emptyIfNil(s.Goals.LongTerm),
			ParentGoals:  emptyIfNil(s.Goals.ParentGoals),
			TeacherGoals: emptyIfNil(s.Goals.TeacherGoals),
		},
		TeacherNotes: TeacherNotesDTO{
			RecommendedActions:  emptyIfNil(s.TeacherNotes.RecommendedActions),
			MotivationLevel:     string(s.TeacherNotes.MotivationLevel),
			GeneralObservations: s.TeacherNotes.GeneralObservations,
			HomeworkCompletion:  string(s.TeacherNotes.HomeworkCompletion),
			ClassroomBehavior:   string(s.TeacherNotes.ClassroomBehavior),
			SpecialNeeds:        s.TeacherNotes.SpecialNeeds,
		},
		Metadata: MetadataDTO{
			TeacherID:       s.Metadata.TeacherID,
			AcademicYear:    s.Metadata.AcademicYear,
			LastMeetingPrep: formatTime(s.Metadata.LastMeetingPrep),
		},
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}

	for name, record := range s.Academic.Subjects {
		dto.Academic.Subjects[name] = SubjectRecordDTO{
			CurrentGrade: record.CurrentGrade,
			AverageScore: record.AverageScore,
			Trend:        string(record.Trend),
		}
	}

	dto.Behavioral.Participation.Level = string(s.Behavioral.Participation.Level)
	dto.Behavioral.SocialSkills.PeerInteraction = string(s.Behavioral.SocialSkills.PeerInteraction)
	dto.Behavioral.SocialSkills.Teamwork = string(s.Behavioral.SocialSkills.Teamwork)
	dto.Behavioral.Attendance.AttendanceRate = s.Behavioral.Attendance.AttendanceRate
	dto.Behavioral.Attendance.TardyCount = s.Behavioral.Attendance.TardyCount
	dto.Behavioral.Attendance.PresentDays = s.Behavioral.Attendance.PresentDays
	dto.Behavioral.Attendance.TotalDays = s.Behavioral.Attendance.TotalDays

	return dto
}

// formatDate даёт дату в формате YYYY-MM-DD, пустую строку для нулевой даты.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatTime даёт момент времени в RFC 3339, пустую строку для нулевого.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// emptyIfNil заменяет nil-срез пустым, чтобы в JSON уходил [], а не null.
func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
