package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caseflow_backend/internal/adapters"
	"caseflow_backend/internal/appointments"
	"caseflow_backend/internal/email"
	"caseflow_backend/internal/events"
	apphttp "caseflow_backend/internal/http"
	"caseflow_backend/internal/http/router"
	"caseflow_backend/internal/marketplace"
	"caseflow_backend/internal/notification"
	"caseflow_backend/internal/notification/sse"
	"caseflow_backend/internal/quotes"
	"caseflow_backend/internal/scheduler"
	"caseflow_backend/internal/workorders"
	"caseflow_backend/platform/config"
	"caseflow_backend/platform/db"
	"caseflow_backend/platform/logger"
	"caseflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events and serves the
	// in-app notification API plus the SSE stream.
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	sseService := sse.New()
	defer sseService.Close()
	notificationModule.SetSSE(sseService)

	// Case store and lifecycle controller
	workOrdersModule := workorders.NewModule(pool, eventBus, val, log)

	// Marketplace, quotes and appointments all read case state through
	// narrow adapters over the work-order repository.
	caseDirectory := adapters.NewCaseDirectoryAdapter(workOrdersModule.Repository())
	marketplaceModule := marketplace.NewModule(pool, caseDirectory, eventBus, val, log)

	caseGate := adapters.NewQuotesCaseGateAdapter(workOrdersModule.Repository())
	quotesModule := quotes.NewModule(pool, caseGate, eventBus, val, log, cfg, cfg)

	caseScheduler := adapters.NewCaseSchedulerAdapter(workOrdersModule.Repository())
	appointmentsModule := appointments.NewModule(pool, caseScheduler, eventBus, val, log, cfg)
	if reminderScheduler != nil {
		appointmentsModule.Service().SetReminderScheduler(reminderScheduler)
	}

	// Confirm-job on a case routes through the appointments service so both
	// entry points share one scheduling path (breaks circular dependency).
	scheduleConfirmer := adapters.NewScheduleConfirmerAdapter(appointmentsModule.Service())
	workOrdersModule.Service().SetScheduleConfirmer(scheduleConfirmer)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			workOrdersModule,
			marketplaceModule,
			quotesModule,
			appointmentsModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*adapters.ReminderSchedulerAdapter, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; appointment reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return adapters.NewReminderSchedulerAdapter(reminderClient), func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
