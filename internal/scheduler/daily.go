package scheduler

import (
	"context"
	"fmt"
	"time"

	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
)

// DailyTrigger enqueues one batch run per day at the configured local time.
type DailyTrigger struct {
	client   *Client
	log      *logger.Logger
	location *time.Location
	runHour  int
	runMin   int
	sheetIDs []string

	now func() time.Time
}

func NewDailyTrigger(cfg config.SchedulerConfig, client *Client, log *logger.Logger) (*DailyTrigger, error) {
	loc, err := time.LoadLocation(cfg.GetTimezone())
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.GetTimezone(), err)
	}

	runAt, err := time.Parse("15:04", cfg.GetDailyRunTime())
	if err != nil {
		return nil, fmt.Errorf("invalid daily run time %q: %w", cfg.GetDailyRunTime(), err)
	}

	return &DailyTrigger{
		client:   client,
		log:      log,
		location: loc,
		runHour:  runAt.Hour(),
		runMin:   runAt.Minute(),
		sheetIDs: cfg.GetClientSheetIDs(),
		now:      time.Now,
	}, nil
}

// Run blocks until ctx is cancelled, enqueueing a batch run every day at the
// configured time.
func (d *DailyTrigger) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	for {
		next := d.nextRun(d.now())
		d.log.Info("next daily call run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := d.client.EnqueueDailyCallRun(ctx, DailyCallRunPayload{SheetIDs: d.sheetIDs}); err != nil {
			d.log.Error("could not enqueue daily call run", "error", err)
		} else {
			d.log.Info("daily call run enqueued", "sheets", len(d.sheetIDs))
		}
	}
}

// nextRun returns the next occurrence of the configured run time strictly
// after now.
func (d *DailyTrigger) nextRun(now time.Time) time.Time {
	local := now.In(d.location)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.runHour, d.runMin, 0, 0, d.location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
