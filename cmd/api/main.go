package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paycall_backend/internal/calls"
	"paycall_backend/internal/classifier"
	"paycall_backend/internal/events"
	apphttp "paycall_backend/internal/http"
	"paycall_backend/internal/http/router"
	"paycall_backend/internal/reports"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
	"paycall_backend/platform/config"
	"paycall_backend/platform/db"
	"paycall_backend/platform/logger"
	"paycall_backend/platform/validator"

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

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// External Clients
	// ========================================================================

	vapiClient := vapi.NewClient(cfg, log)

	sheetGateway, err := sheets.NewGateway(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize sheets gateway", "error", err)
		panic("failed to initialize sheets gateway: " + err.Error())
	}

	outcomeParser, err := classifier.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize outcome classifier", "error", err)
		panic("failed to initialize outcome classifier: " + err.Error())
	}
	if !cfg.IsClassifierEnabled() {
		log.Warn("GEMINI_API_KEY not configured; transcript classification uses fallback outcomes")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	callsModule, err := calls.NewModule(cfg, pool, vapiClient, sheetGateway, outcomeParser, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize calls module", "error", err)
		panic("failed to initialize calls module: " + err.Error())
	}

	// Reports module subscribes to call lifecycle events
	reportsModule := reports.NewModule(pool, eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:        cfg,
		WebhookSecret: cfg.GetVapiWebhookSecret(),
		Logger:        log,
		Health:        pool,
		Modules: []apphttp.Module{
			callsModule,
			reportsModule,
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
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
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
		}

		if attempt < attempts {
			delay := baseDelay * time.Duration(attempt)
			log.Warn("retrying after failure", "operation", name, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
