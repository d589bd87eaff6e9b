// Package main is the entry point for the Conference Hub background worker.
//
// The worker owns the periodic jobs:
// - Refreshing academic rollups from newly recorded assessments
// - Warming briefing caches ahead of upcoming meetings
// - Rebuilding grade overview snapshots
// - Nightly at-risk detection against grade-level expectations
// - Preparing tomorrow's meetings (briefing + AI summary)
// - Delivering due notifications
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
	"github.com/brightclass/conference-hub/internal/application/eventhandler"
	"github.com/brightclass/conference-hub/internal/application/query"
	"github.com/brightclass/conference-hub/internal/application/saga"

	// Domain layer
	"github.com/brightclass/conference-hub/internal/domain/meeting"
	"github.com/brightclass/conference-hub/internal/domain/notification"
	"github.com/brightclass/conference-hub/internal/domain/overview"
	"github.com/brightclass/conference-hub/internal/domain/student"

	// Infrastructure layer
	"github.com/brightclass/conference-hub/internal/infrastructure/external/gemini"
	"github.com/brightclass/conference-hub/internal/infrastructure/messaging"
	"github.com/brightclass/conference-hub/internal/infrastructure/persistence/postgres"
	"github.com/brightclass/conference-hub/internal/infrastructure/persistence/redis"
	"github.com/brightclass/conference-hub/internal/infrastructure/scheduler"
	"github.com/brightclass/conference-hub/internal/infrastructure/scheduler/jobs"
	"github.com/brightclass/conference-hub/internal/infrastructure/service"

	// Packages
	"github.com/brightclass/conference-hub/config"
	"github.com/brightclass/conference-hub/pkg/logger"
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
	slogger.Info("starting Conference Hub Worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
		"scheduler_enabled", cfg.Scheduler.Enabled,
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
	// 4. MIGRATIONS (the worker also needs the current schema)
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
	var summaryWriter saga.SummaryWriter

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
		geminiCfg.Logger = logger.Default()

		geminiClient, err := gemini.NewClient(ctx, geminiCfg)
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}

		summaryWriter = service.NewGeminiSummarizer(geminiClient)
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

	getTalkingPoints := query.NewGetTalkingPointsHandler(assembler, generator, briefingCache)

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

	// Notification delivery routes per channel; unrouted channels fall back
	// to the structured log sender.
	sender := service.NewChannelSender(service.NewLogSender(slogger))
	sender.Register(notification.ChannelEmail, service.NewLogSender(slogger))

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS
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
	// 11. SCHEDULER + JOBS
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Scheduler.Enabled {
		slogger.Info("scheduler disabled, worker will only process events")
		return waitForShutdown(ctx, cfg, slogger, nil)
	}

	slogger.Info("initializing scheduler...")
	sched := scheduler.NewScheduler(scheduler.Config{
		Logger:   slogger,
		Timezone: cfg.App.Location,
	})

	refreshConfig := jobs.DefaultRefreshAcademicsConfig()
	refreshConfig.Timeout = cfg.Scheduler.JobTimeout
	refreshJob := jobs.NewRefreshAcademicsJob(
		studentRepo, recordRepo, studentCache, eventBus, slogger, refreshConfig)

	warmConfig := jobs.DefaultWarmBriefingsConfig()
	warmJob := jobs.NewWarmBriefingsJob(meetingRepo, getTalkingPoints, slogger, warmConfig)

	rebuildConfig := jobs.DefaultRebuildOverviewConfig()
	rebuildJob := jobs.NewRebuildOverviewJob(
		snapshotBuilder, overviewRepo, overviewCache, slogger, rebuildConfig)

	deliverConfig := jobs.DefaultDeliverNotificationsConfig()
	deliverConfig.PurgeOlderThan = cfg.Scheduler.NotificationKeepFor
	deliverJob := jobs.NewDeliverNotificationsJob(
		notificationRepo, sender, eventBus, slogger, deliverConfig)

	atRiskConfig := jobs.DefaultDetectAtRiskConfig()
	atRiskJob := jobs.NewDetectAtRiskJob(
		studentRepo, notificationRepo, eventBus, ids, expectations, slogger, atRiskConfig)

	prepareConfig := jobs.DefaultPrepareMeetingsConfig()
	prepareConfig.Horizon = cfg.Scheduler.MeetingPrepHorizon
	prepareJob := jobs.NewPrepareMeetingsJob(meetingRepo, prepSaga, slogger, prepareConfig)

	atRiskSchedule, err := scheduler.NewDailySchedule(
		cfg.Scheduler.AtRiskScanHour, cfg.Scheduler.AtRiskScanMinute, cfg.App.Location)
	if err != nil {
		return fmt.Errorf("invalid at-risk scan schedule: %w", err)
	}
	prepareSchedule, err := scheduler.NewDailySchedule(
		cfg.Scheduler.MeetingPrepHour, cfg.Scheduler.MeetingPrepMinute, cfg.App.Location)
	if err != nil {
		return fmt.Errorf("invalid meeting prep schedule: %w", err)
	}

	type jobRegistration struct {
		job      scheduler.Job
		schedule scheduler.Schedule
	}
	registrations := []jobRegistration{
		{refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshAcademicsInterval)},
		{rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildOverviewInterval)},
		{deliverJob, scheduler.NewIntervalSchedule(cfg.Scheduler.DeliverInterval)},
		{prepareJob, prepareSchedule},
	}
	if cfg.Features.IsEnabled(config.FeatureBriefingWarming, nil) {
		registrations = append(registrations,
			jobRegistration{warmJob, scheduler.NewIntervalSchedule(cfg.Scheduler.WarmBriefingsInterval)})
	} else {
		slogger.Info("briefing warming disabled, skipping job", "job", warmJob.Name())
	}
	if cfg.Features.IsEnabled(config.FeatureAtRiskAlerts, nil) {
		registrations = append(registrations, jobRegistration{atRiskJob, atRiskSchedule})
	} else {
		slogger.Info("at-risk alerts disabled, skipping job", "job", atRiskJob.Name())
	}

	for _, reg := range registrations {
		if err := sched.Register(reg.job, reg.schedule); err != nil {
			return fmt.Errorf("failed to register job %s: %w", reg.job.Name(), err)
		}
		slogger.Info("registered job",
			"job", reg.job.Name(),
			"schedule", reg.schedule.String(),
		)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	return waitForShutdown(ctx, cfg, slogger, sched)
}

// waitForShutdown blocks until a termination signal arrives, then stops the
// scheduler within the configured timeout.
func waitForShutdown(ctx context.Context, cfg *config.Config, slogger *slog.Logger, sched *scheduler.Scheduler) error {
	slogger.Info("Conference Hub Worker is running",
		"timezone", cfg.App.Timezone,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		slogger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slogger.Info("context cancelled")
	}

	slogger.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	if sched != nil {
		done := make(chan error, 1)
		go func() { done <- sched.Stop() }()

		select {
		case err := <-done:
			if err != nil {
				slogger.Warn("scheduler stop reported error", "error", err)
			}
		case <-time.After(cfg.App.ShutdownTimeout):
			slogger.Warn("scheduler stop timed out, abandoning running jobs")
		}
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
		Level: slog.LevelInfo,
	}

	switch cfg.Observability.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
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
