// Package main is the entry point for the writing coach API server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: lesson, session, assessment, skill, badge, curriculum, learner
// - Application: command/query handlers and event-driven projections
// - Infrastructure: PostgreSQL, Redis, the model-backed coach client
// - Interface: the REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/karthikjanagiraman/WritingCoach-sub001/config"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/application/command"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/application/eventhandler"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/application/query"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/curriculum"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/lesson"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
	coachclient "github.com/karthikjanagiraman/WritingCoach-sub001/internal/infrastructure/external/coach"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/infrastructure/messaging"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/infrastructure/persistence/postgres"
	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/infrastructure/persistence/redis"
	httpserver "github.com/karthikjanagiraman/WritingCoach-sub001/internal/interface/http"
	"github.com/karthikjanagiraman/WritingCoach-sub001/pkg/logger"
)

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
	log := logger.New(logger.Config{
		Level:   cfg.Observability.LogLevel,
		Format:  logger.Format(cfg.Observability.LogFormat),
		Service: cfg.App.Name,
	})

	log.Info("starting writing coach server",
		"env", cfg.App.Environment,
		"log_level", cfg.Observability.LogLevel,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	if cfg.Database.URL != "" {
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	} else {
		dbConn, err = postgres.NewConnection(ctx, postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Name,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("migrations completed")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize

	cache, err := redis.NewCache(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = cache.Close()
	}()
	log.Info("Redis connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 6. DOMAIN SERVICES AND REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	catalog := lesson.NewCatalog()

	sessionRepo := postgres.NewSessionRepository(dbConn)
	childRepo := postgres.NewChildRepository(dbConn)
	progressRepo := postgres.NewProgressRepository(dbConn)
	skillRepo := postgres.NewSkillRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	learnerRepo := postgres.NewLearnerRepository(dbConn)
	curriculumRepo := postgres.NewCurriculumRepository(dbConn)
	assessmentRepo := postgres.NewAssessmentRepository(dbConn, catalog)
	factsLoader := postgres.NewFactsLoader(dbConn, catalog)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. COACH CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	coach, err := coachclient.NewClient(coachclient.Config{
		APIKey:            cfg.Coach.APIKey,
		BaseURL:           cfg.Coach.BaseURL,
		Model:             cfg.Coach.Model,
		RequestsPerSecond: cfg.Coach.RequestsPerSecond,
		Burst:             cfg.Coach.Burst,
		Timeout:           cfg.Coach.Timeout,
		Logger:            log,
	}, catalog)
	if err != nil {
		return fmt.Errorf("failed to create coach client: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EVENT BUS AND PROJECTIONS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	reportCache := query.NewReportCache(cache, redis.TTLReport)

	skillsHandler := eventhandler.NewOnAssessmentSkillsHandler(skillRepo, log)
	badgesHandler := eventhandler.NewOnAssessmentBadgesHandler(badgeRepo, factsLoader, eventBus, log)
	adaptationHandler := eventhandler.NewOnAssessmentAdaptationHandler(
		assessmentRepo, curriculumRepo, curriculum.NewEngine(catalog), eventBus, log)
	profileHandler := eventhandler.NewOnAssessmentProfileHandler(
		assessmentRepo, learnerRepo, reportCache, log)

	if err := eventBus.Subscribe(shared.EventAssessmentRecorded, skillsHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe skills handler: %w", err)
	}
	if err := eventBus.Subscribe(shared.EventAssessmentRecorded, badgesHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe badges handler: %w", err)
	}
	if err := eventBus.Subscribe(shared.EventAssessmentRecorded, adaptationHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe adaptation handler: %w", err)
	}
	if err := eventBus.Subscribe(shared.EventAssessmentRecorded, profileHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe profile handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	createChild := command.NewCreateChildHandler(childRepo, curriculumRepo, catalog)
	startSession := command.NewStartSessionHandler(
		sessionRepo, childRepo, progressRepo, learnerRepo, catalog, coach, eventBus)
	processTurn := command.NewProcessTurnHandler(
		sessionRepo, childRepo, progressRepo, learnerRepo, catalog, coach, eventBus)
	submitAssessment := command.NewSubmitAssessmentHandler(
		sessionRepo, assessmentRepo, progressRepo, badgeRepo, factsLoader, catalog, coach, eventBus)
	reviseAssessment := command.NewReviseAssessmentHandler(submitAssessment)
	reviseCurriculum := command.NewReviseCurriculumHandler(
		childRepo, curriculumRepo, catalog, coach, eventBus)

	progressReport := query.NewProgressReportQuery(
		childRepo, progressRepo, skillRepo, badgeRepo, assessmentRepo,
		curriculumRepo, learnerRepo, catalog, reportCache, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		CreateChild:      createChild,
		StartSession:     startSession,
		ProcessTurn:      processTurn,
		SubmitAssessment: submitAssessment,
		ReviseAssessment: reviseAssessment,
		ReviseCurriculum: reviseCurriculum,
		ProgressReport:   progressReport,
		HealthCheckers: []httpserver.HealthChecker{
			httpserver.HealthCheckFunc(dbConn.Ping),
			httpserver.HealthCheckFunc(cache.Ping),
		},
		Logger: log,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("writing coach server is running", "address", server.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}
