package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"paycall_backend/internal/calls/service"
	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
)

// BatchRunner is the slice of the orchestrator the worker needs.
type BatchRunner interface {
	ProcessMultipleSheets(ctx context.Context, sheetIDs []string) service.DispatchResult
}

// Worker consumes queued batch runs.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner BatchRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner BatchRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		runner: runner,
		log:    log,
	}

	mux.HandleFunc(TaskDailyCallRun, w.handleDailyCallRun)

	return w, nil
}

func (w *Worker) handleDailyCallRun(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDailyCallRunPayload(task)
	if err != nil {
		return err
	}

	result := w.runner.ProcessMultipleSheets(ctx, payload.SheetIDs)
	w.log.Info("daily call run finished",
		"sheets", len(payload.SheetIDs),
		"pending", result.Pending,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
