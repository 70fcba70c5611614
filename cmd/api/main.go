package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/config"
	appHTTP "github.com/perfhub/perfhub-backend-go/internal/handler/http"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/cron"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/jwt"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/oauth"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/session"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/sse"
	"github.com/perfhub/perfhub-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/perfhub/perfhub-backend-go/internal/service/auth"
	dashboardService "github.com/perfhub/perfhub-backend-go/internal/service/dashboard"
	kpiService "github.com/perfhub/perfhub-backend-go/internal/service/kpi"
	notificationService "github.com/perfhub/perfhub-backend-go/internal/service/notification"
	organizationService "github.com/perfhub/perfhub-backend-go/internal/service/organization"
	performanceService "github.com/perfhub/perfhub-backend-go/internal/service/performance"
	taskService "github.com/perfhub/perfhub-backend-go/internal/service/task"
	userService "github.com/perfhub/perfhub-backend-go/internal/service/user"
	workLogService "github.com/perfhub/perfhub-backend-go/internal/service/worklog"
)

const version = "v1.0.0"

func main() {
	seed := flag.Bool("seed", false, "load the reference organization data and exit")
	flag.Parse()

	if err := run(*seed); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", "perfhub"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := connectDatabase(ctx, cfg)
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	departmentRepo := postgresql.NewDepartmentRepository(db)
	positionRepo := postgresql.NewPositionRepository(db)
	jobDutyRepo := postgresql.NewJobDutyRepository(db)
	workLogRepo := postgresql.NewWorkLogRepository(db)
	workItemRepo := postgresql.NewWorkItemRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	taskProgressRepo := postgresql.NewTaskProgressRepository(db)
	kpiDefinitionRepo := postgresql.NewKpiDefinitionRepository(db)
	kpiActualRepo := postgresql.NewKpiActualRepository(db)
	evaluationRepo := postgresql.NewEvaluationRepository(db)
	cycleRepo := postgresql.NewCycleRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	txManager := postgresql.NewTxManager(db)

	orgSvc := organizationService.NewOrganizationService(departmentRepo, positionRepo, jobDutyRepo, txManager)
	if seed {
		result, err := orgSvc.SeedReferenceData(ctx)
		if err != nil {
			return fmt.Errorf("seed reference data: %w", err)
		}
		slog.Info("Reference data seeded",
			"departments", result.Departments,
			"positions", result.Positions,
			"job_duties", result.JobDuties,
			"skipped", result.Skipped,
		)
		return nil
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, jwt.Options{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
	})
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	} else {
		slog.Warn("Google OAuth is not configured, Google sign-in is disabled")
	}

	sessions := newSessionStore(ctx, cfg)
	defer sessions.Close()

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	}, logger)
	defer notifSvc.Stop()

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService, googleService, sessions, cfg.App.OwnerOpenID)
	userSvc := userService.NewUserService(userRepo, departmentRepo, positionRepo)
	workLogSvc := workLogService.NewWorkLogService(workLogRepo, workItemRepo, userRepo, notifSvc, txManager)
	taskSvc := taskService.NewTaskService(taskRepo, taskProgressRepo, userRepo, notifSvc, notificationRepo, txManager, cfg.Cron.OverdueGracePeriod)
	kpiSvc := kpiService.NewKpiService(kpiDefinitionRepo, kpiActualRepo, positionRepo, userRepo, notifSvc, txManager)
	performanceSvc := performanceService.NewPerformanceService(evaluationRepo, kpiActualRepo, userRepo, notifSvc)
	cycleSvc := performanceService.NewCycleService(cycleRepo, txManager)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, cycleRepo)

	scheduler := cron.NewScheduler(logger.With(slog.String("component", "cron")))
	if cfg.Cron.Enabled {
		jobs := cron.NewReminderJobs(taskSvc, workLogRepo, userRepo, notifSvc, notificationRepo, cron.JobsConfig{
			OverdueInterval:  cfg.Cron.OverdueInterval,
			ReminderInterval: cfg.Cron.ReminderInterval,
			ReminderHour:     cfg.Cron.ReminderHourOfDay,
		})
		jobs.RegisterJobs(scheduler)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, authSvc, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc, googleService, cfg.App.FrontendURL, cfg.Session.Secure),
		User:         appHTTP.NewUserHandler(userSvc),
		Organization: appHTTP.NewOrganizationHandler(orgSvc),
		WorkLog:      appHTTP.NewWorkLogHandler(workLogSvc),
		Task:         appHTTP.NewTaskHandler(taskSvc),
		Kpi:          appHTTP.NewKpiHandler(kpiSvc),
		Performance:  appHTTP.NewPerformanceHandler(performanceSvc, cycleSvc),
		Notification: appHTTP.NewNotificationHandler(notifSvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	return nil
}

// connectDatabase returns an unavailable handle when PostgreSQL cannot be
// reached, so the API still serves empty reads and 503 writes.
func connectDatabase(ctx context.Context, cfg *config.Config) *database.DB {
	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Database unavailable, starting in degraded mode", "error", err)
		return database.Unavailable()
	}

	if cfg.Database.Migrate {
		if err := database.RunMigrations(dsn); err != nil {
			slog.Error("Failed to apply migrations", "error", err)
		}
	}
	return db
}

func newSessionStore(ctx context.Context, cfg *config.Config) session.Store {
	if cfg.Redis.Addr == "" {
		slog.Info("Using in-memory session store")
		return session.NewMemoryStore()
	}
	store, err := session.NewRedisStore(ctx, session.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		slog.Error("Redis unavailable, falling back to in-memory session store", "error", err)
		return session.NewMemoryStore()
	}
	return store
}
