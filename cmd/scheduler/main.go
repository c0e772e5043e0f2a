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
	"paycall_backend/internal/scheduler"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
	"paycall_backend/platform/config"
	"paycall_backend/platform/db"
	"paycall_backend/platform/logger"
	"paycall_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

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

	callsModule, err := calls.NewModule(cfg, pool, vapiClient, sheetGateway, outcomeParser, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize calls module", "error", err)
		panic("failed to initialize calls module: " + err.Error())
	}

	schedulerClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = schedulerClient.Close() }()

	trigger, err := scheduler.NewDailyTrigger(cfg, schedulerClient, log)
	if err != nil {
		log.Error("failed to initialize daily trigger", "error", err)
		panic("failed to initialize daily trigger: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, callsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trigger.Run(gctx)
		return nil
	})
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("scheduler stopped", "error", err)
	}
	log.Info("scheduler shut down")
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
