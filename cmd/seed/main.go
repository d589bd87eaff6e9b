// Package main is the seed CLI for Conference Hub.
//
// It fills a development database with a realistic synthetic roster:
// students across several grades, each with a history of assessments,
// behavioral incidents, parent communications and an upcoming meeting.
// Everything goes through the regular command handlers, so rollups,
// events and validation behave exactly as in production.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brightclass/conference-hub/config"
	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/infrastructure/messaging"
	"github.com/brightclass/conference-hub/internal/infrastructure/persistence/postgres"
	"github.com/brightclass/conference-hub/internal/infrastructure/service"
)

// ══════════════════════════════════════════════════════════════════════════════
// NAME AND SUBJECT POOLS
// ══════════════════════════════════════════════════════════════════════════════

var firstNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan", "Sophia", "Mason",
	"Isabella", "William", "Mia", "James", "Charlotte", "Benjamin", "Amelia",
	"Lucas", "Harper", "Henry", "Evelyn", "Alexander", "Abigail", "Michael",
	"Emily", "Daniel", "Elizabeth", "Jacob", "Sofia", "Logan", "Avery",
	"Jackson", "Ella", "Sebastian", "Madison", "Jack", "Scarlett", "Aiden",
	"Victoria", "Owen", "Aria", "Samuel", "Grace", "Matthew", "Chloe",
	"Joseph", "Camila", "Levi", "Penelope", "Mateo", "Riley", "David",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
	"Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores", "Green",
	"Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	"Carter", "Roberts",
}

var subjects = []string{
	"mathematics", "english", "science", "social_studies", "art", "physical_education",
}

var assessmentTypes = []string{"quiz", "test", "project", "assignment", "exam"}

var feedbackTemplates = []string{
	"Shows excellent problem-solving skills",
	"Needs more confidence in oral presentations",
	"Great collaborative worker",
	"Sometimes struggles with time management",
	"Demonstrates strong leadership qualities",
	"Benefits from visual learning aids",
	"Excellent attention to detail",
	"Could improve organization skills",
	"Shows creativity in assignments",
	"Needs encouragement to participate more",
}

var communicationSubjects = []string{
	"Academic Progress Update",
	"Behavioral Concerns",
	"Parent-Teacher Conference",
	"Assignment Missing",
	"Positive Recognition",
	"Attendance Issue",
}

var positiveCategories = []string{"participation", "leadership", "helping_others"}
var negativeCategories = []string{"discipline", "disruption", "tardiness"}

// ══════════════════════════════════════════════════════════════════════════════
// CLI
// ══════════════════════════════════════════════════════════════════════════════

type seedOptions struct {
	grades             []string
	studentsPerGrade   int
	assessmentsEach    int
	incidentsEach      int
	communicationsEach int
	scheduleMeetings   bool
	seed               int64
}

func main() {
	opts := seedOptions{}

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the Conference Hub database with synthetic roster data",
		Long: `Generates a synthetic elementary-school roster for development and demos.

Students, assessments, incidents and parent communications are created
through the same command handlers the API uses, so academic rollups and
domain events fire as they would in production.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringSliceVar(&opts.grades, "grades", []string{"3", "4", "5"}, "grade levels to populate")
	rootCmd.Flags().IntVar(&opts.studentsPerGrade, "students", 5, "students per grade")
	rootCmd.Flags().IntVar(&opts.assessmentsEach, "assessments", 10, "assessments per student")
	rootCmd.Flags().IntVar(&opts.incidentsEach, "incidents", 3, "behavioral incidents per student")
	rootCmd.Flags().IntVar(&opts.communicationsEach, "communications", 3, "parent communications per student")
	rootCmd.Flags().BoolVar(&opts.scheduleMeetings, "meetings", true, "schedule an upcoming meeting per student")
	rootCmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 = time-based)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SEEDING
// ══════════════════════════════════════════════════════════════════════════════

func runSeed(ctx context.Context, opts seedOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(opts.seed))
	slogger.Info("seeding database", "seed", opts.seed, "grades", strings.Join(opts.grades, ","))

	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	studentRepo := postgres.NewStudentRepository(dbConn)
	recordRepo := postgres.NewRecordRepository(dbConn)
	meetingRepo := postgres.NewMeetingRepository(dbConn)

	// Synchronous in-process bus: handlers fire but nothing consumes them,
	// seeding only needs the write side.
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = slogger
	busConfig.AsyncMode = false
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer eventBus.Close()

	ids := service.NewUUIDGenerator()

	createStudent := command.NewCreateStudentHandler(studentRepo, ids, eventBus)
	recordAssessment := command.NewRecordAssessmentHandler(studentRepo, recordRepo, ids, eventBus).
		WithUnitOfWork(postgres.NewUnitOfWorkFactory(dbConn))
	recordIncident := command.NewRecordIncidentHandler(studentRepo, recordRepo, ids, eventBus)
	recordCommunication := command.NewRecordCommunicationHandler(studentRepo, recordRepo, ids, eventBus)
	scheduleMeeting := command.NewScheduleMeetingHandler(studentRepo, meetingRepo, ids, eventBus)

	totals := struct {
		students, assessments, incidents, communications, meetings int
	}{}

	for _, grade := range opts.grades {
		teacherID := ids.TeacherID()

		for i := 0; i < opts.studentsPerGrade; i++ {
			first := pick(rng, firstNames)
			last := pick(rng, lastNames)

			created, err := createStudent.Handle(ctx, command.CreateStudentCommand{
				FirstName:   first,
				LastName:    last,
				Grade:       grade,
				Section:     pick(rng, []string{"A", "B", "C"}),
				RollNumber:  i + 1,
				TeacherID:   teacherID,
				ParentEmail: parentEmail(rng, first, last),
				ParentPhone: phone(rng),
			})
			if err != nil {
				return fmt.Errorf("create student %s %s: %w", first, last, err)
			}
			totals.students++

			// Each student gets a base performance level so scores cluster
			// the way a real class does instead of being uniformly random.
			base := 60 + rng.Float64()*35

			for a := 0; a < opts.assessmentsEach; a++ {
				kind := pick(rng, assessmentTypes)
				maxScore := 100.0
				if kind != "test" && kind != "exam" {
					maxScore = pick(rng, []float64{50, 75, 100})
				}
				pct := clamp(base+rng.Float64()*20-10, 40, 100)
				subject := pick(rng, subjects)

				_, err := recordAssessment.Handle(ctx, command.RecordAssessmentCommand{
					StudentID: created.StudentID,
					Subject:   subject,
					Type:      kind,
					Score:     round1(pct / 100 * maxScore),
					MaxScore:  maxScore,
					Date:      daysAgo(rng, 1, 90),
					Topics:    topicsFor(rng, subject),
					Feedback:  pick(rng, feedbackTemplates),
				})
				if err != nil {
					return fmt.Errorf("record assessment for %s: %w", created.StudentID, err)
				}
				totals.assessments++
			}

			for n := 0; n < opts.incidentsEach; n++ {
				kind := "positive"
				category := pick(rng, positiveCategories)
				severity := "low"
				if rng.Intn(2) == 0 {
					kind = "negative"
					category = pick(rng, negativeCategories)
					severity = pick(rng, []string{"low", "medium", "high"})
				}

				_, err := recordIncident.Handle(ctx, command.RecordIncidentCommand{
					StudentID:        created.StudentID,
					Type:             kind,
					Category:         category,
					Description:      fmt.Sprintf("%s incident related to %s", capitalize(kind), strings.ReplaceAll(category, "_", " ")),
					Severity:         severity,
					ActionTaken:      "Documented and discussed with student",
					FollowUpRequired: rng.Intn(2) == 0,
					TeacherID:        teacherID,
					Date:             daysAgo(rng, 1, 60),
				})
				if err != nil {
					return fmt.Errorf("record incident for %s: %w", created.StudentID, err)
				}
				totals.incidents++
			}

			for c := 0; c < opts.communicationsEach; c++ {
				subject := pick(rng, communicationSubjects)

				_, err := recordCommunication.Handle(ctx, command.RecordCommunicationCommand{
					StudentID:      created.StudentID,
					Type:           pick(rng, []string{"email", "phone", "meeting", "note"}),
					InitiatedBy:    pick(rng, []string{"teacher", "parent"}),
					Subject:        subject,
					Content:        fmt.Sprintf("Discussion about %s", strings.ToLower(subject)),
					FollowUpNeeded: rng.Intn(2) == 0,
					TeacherID:      teacherID,
					Date:           daysAgo(rng, 1, 45),
				})
				if err != nil {
					return fmt.Errorf("record communication for %s: %w", created.StudentID, err)
				}
				totals.communications++
			}

			if opts.scheduleMeetings {
				_, err := scheduleMeeting.Handle(ctx, command.ScheduleMeetingCommand{
					StudentID:    created.StudentID,
					TeacherID:    teacherID,
					ScheduledFor: daysAhead(rng, 1, 14),
					Notes:        "Quarterly parent-teacher conference",
				})
				if err != nil {
					return fmt.Errorf("schedule meeting for %s: %w", created.StudentID, err)
				}
				totals.meetings++
			}
		}

		slogger.Info("seeded grade", "grade", grade, "teacher_id", teacherID)
	}

	slogger.Info("seeding complete",
		"students", totals.students,
		"assessments", totals.assessments,
		"incidents", totals.incidents,
		"communications", totals.communications,
		"meetings", totals.meetings,
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func daysAgo(rng *rand.Rand, min, max int) time.Time {
	return time.Now().AddDate(0, 0, -(min + rng.Intn(max-min+1)))
}

func daysAhead(rng *rand.Rand, min, max int) time.Time {
	// Pin to a school-day hour so schedules look plausible.
	day := time.Now().AddDate(0, 0, min+rng.Intn(max-min+1))
	return time.Date(day.Year(), day.Month(), day.Day(), 9+rng.Intn(7), 0, 0, 0, day.Location())
}

func parentEmail(rng *rand.Rand, first, last string) string {
	domains := []string{"gmail.com", "yahoo.com", "outlook.com", "hotmail.com"}
	return fmt.Sprintf("%s.%s@%s", strings.ToLower(first), strings.ToLower(last), pick(rng, domains))
}

func phone(rng *rand.Rand) string {
	return fmt.Sprintf("(%d) %d-%d", 200+rng.Intn(800), 200+rng.Intn(800), 1000+rng.Intn(9000))
}

func topicsFor(rng *rand.Rand, subject string) []string {
	n := 1 + rng.Intn(3)
	topics := make([]string, 0, n)
	words := strings.Split(strings.ReplaceAll(subject, "_", " "), " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	label := strings.Join(words, " ")
	for i := 0; i < n; i++ {
		topics = append(topics, fmt.Sprintf("%s Topic %d", label, i+1))
	}
	return topics
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
