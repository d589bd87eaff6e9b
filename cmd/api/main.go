// Package main is the entry point for the Conference Hub API server.
//
// The API serves teachers preparing for parent-teacher conferences:
// student profiles, prioritized talking points, printable agendas and
// AI-generated meeting summaries.
//
// Architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries/Sagas)
// - Infrastructure: repositories, Gemini client, event bus
// - Interface: REST API handlers
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application layer
	"github.com/brightclass/conference-hub/internal/application/command"
	"github.com/brightclass/conference-hub/internal/application/eventhandler"
	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/application/saga"

	// Domain layer
	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/overview"
	"github.com/brightclass/conference-hub/internal/domain/student"

	// Infrastructure layer
	"github.com/brightclass/conference-hub/internal/infrastructure/external/gemini"
	"github.com/brightclass/conference-hub/internal/infrastructure/messaging"
	"github.com/brightclass/conference-hub/internal/infrastructure/persistence/postgres"
	"github.com/brightclass/conference-hub/internal/infrastructure/persistence/redis"
	"github.com/brightclass/conference-hub/internal/infrastructure/service"

	// Interface layer
	httpserver "github.com/brightclass/conference-hub/internal/interface/http"
	"github.com/brightclass/conference-hub/internal/interface/http/handlers"
	"github.com/brightclass/conference-hub/internal/interface/http/presenter"

	// Packages
	"github.com/brightclass/conference-hub/config"
	"github.com/brightclass/conference-hub/pkg/logger"
	"github.com/brightclass/conference-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	slogger := setupLogger(cfg)
	apiLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  loggerLevel(cfg.Observability.LogLevel),
	})

	slogger.Info("starting Conference Hub API",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	slogger.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		slogger.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	slogger.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	slogger.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slogger.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional, caching)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var studentCache student.Cache
	var briefingCache meeting.BriefingCache
	var overviewCache overview.Cache

	if !cfg.Redis.Disabled {
		slogger.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			slogger.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			studentCache = redis.NewStudentCache(redisCache)
			briefingCache = redis.NewBriefingCache(redisCache)
			overviewCache = redis.NewOverviewCache(redisCache)
			slogger.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	slogger.Info("initializing repositories...")
	studentRepo := postgres.NewStudentRepository(dbConn)
	recordRepo := postgres.NewRecordRepository(dbConn)
	meetingRepo := postgres.NewMeetingRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	overviewRepo := postgres.NewOverviewRepository(dbConn)
	uowFactory := postgres.NewUnitOfWorkFactory(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. EVENT BUS + DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	slogger.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = slogger
	eventBusConfig.AsyncMode = true
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		slogger.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	dispatcherConfig := messaging.DefaultDispatcherConfig(eventBus)
	dispatcherConfig.Logger = slogger
	dispatcher := messaging.NewDispatcher(dispatcherConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EXTERNAL CLIENTS (Gemini summarizer, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var summarizer command.Summarizer
	var summaryWriter saga.SummaryWriter
	var geminiSummarizer *service.GeminiSummarizer

	if cfg.Gemini.Enabled() {
		slogger.Info("initializing Gemini client...", "model", cfg.Gemini.Model)
		geminiCfg := gemini.DefaultClientConfig(cfg.Gemini.APIKey)
		geminiCfg.Model = cfg.Gemini.Model
		geminiCfg.RequestTimeout = cfg.Gemini.RequestTimeout
		geminiCfg.RateLimiterConfig = gemini.RateLimiterConfig{
			RequestsPerMinute: cfg.Gemini.RateLimit,
			BurstSize:         cfg.Gemini.RateLimitBurst,
			WaitTimeout:       cfg.Gemini.RequestTimeout,
		}
		geminiCfg.MaxOutputTokens = cfg.Gemini.MaxOutputTokens
		geminiCfg.Temperature = cfg.Gemini.Temperature
		geminiCfg.Logger = apiLog

		geminiClient, err := gemini.NewClient(ctx, geminiCfg)
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}

		geminiSummarizer = service.NewGeminiSummarizer(geminiClient)
		summarizer = geminiSummarizer
		summaryWriter = geminiSummarizer
	} else {
		slogger.Info("Gemini API key not set, meeting summaries disabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	expectations, err := config.LoadExpectations(cfg.Expectations.Path)
	if err != nil {
		return fmt.Errorf("failed to load expectations: %w", err)
	}
	generator := meeting.NewGenerator(meeting.WithExpectations(expectations))

	ids := service.NewUUIDGenerator()
	assembler := service.NewProfileAssembler(studentRepo, studentCache, 10*time.Minute)
	snapshotBuilder := service.NewSnapshotBuilder(studentRepo, expectations, ids)

	academicYear := cfg.App.AcademicYear
	if academicYear == "" {
		academicYear = timeutil.CurrentAcademicYear()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. APPLICATION LAYER (CQRS handlers + saga)
	// ─────────────────────────────────────────────────────────────────────────
	slogger.Info("initializing application handlers...")

	// Queries
	getStudent := query.NewGetStudentHandler(studentRepo, studentCache)
	listStudents := query.NewListStudentsHandler(studentRepo)
	getTalkingPoints := query.NewGetTalkingPointsHandler(assembler, generator, briefingCache)
	getGradeOverview := query.NewGetGradeOverviewHandler(overviewRepo, overviewCache, snapshotBuilder, academicYear)
	listMeetings := query.NewListMeetingsHandler(meetingRepo)
	listAssessments := query.NewListAssessmentsHandler(studentRepo, recordRepo)

	// Commands
	createStudent := command.NewCreateStudentHandler(studentRepo, ids, eventBus)
	importStudents := command.NewImportStudentsHandler(studentRepo, ids, eventBus)
	recordAssessment := command.NewRecordAssessmentHandler(studentRepo, recordRepo, ids, eventBus).
		WithUnitOfWork(uowFactory)
	recordIncident := command.NewRecordIncidentHandler(studentRepo, recordRepo, ids, eventBus)
	recordCommunication := command.NewRecordCommunicationHandler(studentRepo, recordRepo, ids, eventBus)
	scheduleMeeting := command.NewScheduleMeetingHandler(studentRepo, meetingRepo, ids, eventBus)
	updateMeeting := command.NewUpdateMeetingHandler(meetingRepo, eventBus)
	generateSummary := command.NewGenerateSummaryHandler(studentRepo, getTalkingPoints, summarizer,
		command.GenerateSummaryHandlerConfig{SummarizeTimeout: cfg.Gemini.RequestTimeout})

	// Saga: full meeting preparation (briefing + summary + notification).
	// The summary step needs both a configured Gemini key and the rollout flag.
	prepConfig := saga.DefaultMeetingPrepConfig()
	prepConfig.SummaryEnabled = cfg.Gemini.Enabled() &&
		cfg.Features.IsEnabled(config.FeatureAISummary, nil)
	prepSaga := saga.NewMeetingPrepSaga(
		meetingRepo,
		studentRepo,
		getTalkingPoints,
		summaryWriter,
		notificationRepo,
		eventBus,
		ids,
		prepConfig,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	onAssessment := eventhandler.NewOnAssessmentRecordedHandler(
		studentRepo, notificationRepo, studentCache, briefingCache, ids,
		slogger, eventhandler.DefaultAssessmentRecordedConfig())
	onAtRisk := eventhandler.NewOnAtRiskDetectedHandler(
		studentRepo, notificationRepo, ids,
		slogger, eventhandler.DefaultAtRiskDetectedConfig())
	onMeetingScheduled := eventhandler.NewOnMeetingScheduledHandler(
		studentRepo, notificationRepo, ids,
		slogger, eventhandler.DefaultMeetingScheduledConfig())
	onStudentUpdated := eventhandler.NewOnStudentUpdatedHandler(
		studentCache, briefingCache,
		slogger, eventhandler.DefaultStudentUpdatedConfig())

	if err := dispatcher.Register(onAssessment.EventType(), "on_assessment_recorded", onAssessment.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}
	if err := dispatcher.Register(onAtRisk.EventType(), "on_at_risk_detected", onAtRisk.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}
	if err := dispatcher.Register(onMeetingScheduled.EventType(), "on_meeting_scheduled", onMeetingScheduled.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}
	if err := dispatcher.Register(onStudentUpdated.EventType(), "on_student_updated", onStudentUpdated.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	defer func() {
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 12. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if geminiSummarizer != nil {
		healthChecker.AddCheck("summarizer", handlers.NewSummarizerCheck(geminiSummarizer))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 13. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverConfig := httpserver.DefaultConfig()
	serverConfig.Host = cfg.HTTP.Host
	serverConfig.Port = cfg.HTTP.Port
	serverConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	serverConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	serverConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	serverConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverConfig.RateLimitPerMinute = cfg.HTTP.RateLimit
	serverConfig.APIKeys = cfg.HTTP.APIKeyHashes
	serverConfig.EnableMetrics = cfg.Observability.MetricsEnabled
	serverConfig.EnablePprof = cfg.App.Debug

	server := httpserver.NewServer(serverConfig, httpserver.Dependencies{
		CreateStudentHandler:       createStudent,
		ImportStudentsHandler:      importStudents,
		RecordAssessmentHandler:    recordAssessment,
		RecordIncidentHandler:      recordIncident,
		RecordCommunicationHandler: recordCommunication,
		ScheduleMeetingHandler:     scheduleMeeting,
		UpdateMeetingHandler:       updateMeeting,
		GenerateSummaryHandler:     generateSummary,

		GetStudentHandler:       getStudent,
		GetTalkingPointsHandler: getTalkingPoints,
		GetGradeOverviewHandler: getGradeOverview,
		ListStudentsHandler:     listStudents,
		ListMeetingsHandler:     listMeetings,
		ListAssessmentsHandler:  listAssessments,

		MeetingPrepSaga: prepSaga,
		AgendaPresenter: presenter.NewAgendaPresenter(),
		Logger:          apiLog,
		HealthChecker:   healthChecker,
	})

	errCh := server.StartAsync()

	slogger.Info("Conference Hub API is running",
		"address", server.Address(),
		"academic_year", academicYear,
		"summaries", cfg.Gemini.Enabled(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		slogger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		slogger.Info("context cancelled")
	}

	slogger.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	slogger.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slogLevel(cfg.Observability.LogLevel),
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// slogLevel maps the configured log level onto slog levels.
func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loggerLevel maps the configured log level onto pkg/logger levels.
func loggerLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
