package reports

import (
	"context"
	"fmt"
	"time"

	"paycall_backend/internal/calls/domain"
	"paycall_backend/internal/events"
	"paycall_backend/platform/logger"
)

// Projector folds call lifecycle events into the daily_reports aggregates.
// Every dispatched call bumps the day's total; every reconciled end-of-call
// report contributes its outcome counters and cost.
type Projector struct {
	repo *Repository
	log  *logger.Logger
	now  func() time.Time
}

func NewProjector(repo *Repository, log *logger.Logger) *Projector {
	return &Projector{repo: repo, log: log, now: time.Now}
}

// Subscribe registers the projector on the event bus.
func (p *Projector) Subscribe(bus events.Bus) {
	bus.Subscribe(events.CallDispatched{}.EventName(), events.HandlerFunc(p.onDispatched))
	bus.Subscribe(events.CallCompleted{}.EventName(), events.HandlerFunc(p.onCompleted))
	bus.Subscribe(events.CallDispatchFailed{}.EventName(), events.HandlerFunc(p.onDispatchFailed))
}

func (p *Projector) onDispatched(ctx context.Context, event events.Event) error {
	if _, ok := event.(events.CallDispatched); !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	return p.repo.ApplyDelta(ctx, p.now(), DailyDelta{TotalCalls: 1})
}

func (p *Projector) onCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.CallCompleted)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	return p.repo.ApplyDelta(ctx, p.now(), buildDelta(completed))
}

func (p *Projector) onDispatchFailed(ctx context.Context, event events.Event) error {
	if _, ok := event.(events.CallDispatchFailed); !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	return p.repo.ApplyDelta(ctx, p.now(), DailyDelta{TotalCalls: 1, FailedCalls: 1})
}

// buildDelta translates one completed call into aggregate increments.
func buildDelta(completed events.CallCompleted) DailyDelta {
	delta := DailyDelta{Cost: completed.Cost}
	switch domain.CallStatus(completed.CallStatus) {
	case domain.CallStatusCompleted:
		delta.SuccessfulCalls = 1
	case domain.CallStatusFailed:
		delta.FailedCalls = 1
	case domain.CallStatusNoAnswer, domain.CallStatusBusy, domain.CallStatusVoicemail:
		delta.NoAnswerCalls = 1
	}
	if completed.PaymentPromised {
		delta.PaymentsPromised = 1
	}
	if completed.NeedsInvoiceResend {
		delta.InvoicesResent = 1
	}
	if completed.CustomerDisputed {
		delta.DisputesRaised = 1
	}
	return delta
}
