package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/student"
)

// ProfileAssembler builds the engine's typed profile from the system of
// record. It reads through the student cache when one is configured.
type ProfileAssembler struct {
	studentRepo student.Repository
	cache       student.Cache
	cacheTTL    time.Duration
}

// NewProfileAssembler creates a new profile assembler.
// cache may be nil, reads then always hit the repository.
func NewProfileAssembler(studentRepo student.Repository, cache student.Cache, cacheTTL time.Duration) *ProfileAssembler {
	return &ProfileAssembler{
		studentRepo: studentRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

// AssembleProfile loads the student card and converts it into the engine's
// input profile.
func (a *ProfileAssembler) AssembleProfile(ctx context.Context, studentID string) (*meeting.StudentProfile, error) {
	s, err := a.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toEngineProfile(s), nil
}

// loadStudent reads through the cache into the repository.
func (a *ProfileAssembler) loadStudent(ctx context.Context, studentID string) (*student.Student, error) {
	if a.cache != nil {
		if cached, err := a.cache.Get(ctx, studentID); err == nil {
			return cached, nil
		} else if !errors.Is(err, student.ErrStudentNotFound) {
			return nil, fmt.Errorf("profile assembler: cache read: %w", err)
		}
	}

	s, err := a.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		// Best effort, a failed cache write never fails the read.
		_ = a.cache.Set(ctx, s, a.cacheTTL)
	}
	return s, nil
}

// toEngineProfile maps the student card onto the engine's input contract.
// The two structures mirror each other on purpose: the card is the system
// of record, the profile is the subset the evaluators read.
func toEngineProfile(s *student.Student) *meeting.StudentProfile {
	subjects := make(map[string]meeting.SubjectStanding, len(s.Academic.Subjects))
	for name, rec := range s.Academic.Subjects {
		subjects[name] = meeting.SubjectStanding{
			Letter: rec.CurrentGrade,
			Score:  rec.AverageScore,
			Trend:  meeting.Trend(rec.Trend),
		}
	}

	return &meeting.StudentProfile{
		PersonalInfo: meeting.PersonalInfo{
			FirstName: s.PersonalInfo.FirstName,
			LastName:  s.PersonalInfo.LastName,
			Grade:     s.PersonalInfo.GradeOrDefault(),
		},
		Academic: meeting.AcademicProfile{
			GPA:                 s.Academic.CurrentGPA,
			Subjects:            subjects,
			Strengths:           s.Academic.Strengths,
			AreasForImprovement: s.Academic.AreasForImprovement,
			LearningStyle:       string(s.Academic.LearningStyle),
		},
		Behavioral: meeting.BehavioralProfile{
			Participation: meeting.Participation{
				Level: meeting.FrequencyLevel(s.Behavioral.Participation.Level),
			},
			SocialSkills: meeting.SocialSkills{
				PeerInteraction: meeting.SkillLevel(s.Behavioral.SocialSkills.PeerInteraction),
				Teamwork:        meeting.SkillLevel(s.Behavioral.SocialSkills.Teamwork),
			},
			Attendance: meeting.Attendance{
				Rate:       s.Behavioral.Attendance.AttendanceRate,
				TardyCount: s.Behavioral.Attendance.TardyCount,
			},
		},
		Extracurricular: meeting.Extracurricular{
			Sports:         s.Extracurricular.Sports,
			Clubs:          s.Extracurricular.Clubs,
			Achievements:   s.Extracurricular.Achievements,
			VolunteerHours: s.Extracurricular.VolunteerHours,
		},
		ParentEngagement: meeting.ParentEngagement{
			CommunicationFrequency: meeting.FrequencyLevel(s.ParentEngagement.CommunicationFrequency),
			HomeworkSupport:        meeting.SkillLevel(s.ParentEngagement.HomeworkSupport),
			ConcernsRaised:         s.ParentEngagement.ConcernsRaised,
		},
		Goals: meeting.Goals{
			ShortTerm: s.Goals.ShortTerm,
			LongTerm:  s.Goals.LongTerm,
		},
		TeacherNotes: meeting.TeacherNotes{
			RecommendedActions: s.TeacherNotes.RecommendedActions,
			MotivationLevel:    meeting.FrequencyLevel(s.TeacherNotes.MotivationLevel),
		},
	}
}
