package service

import (
	"context"
	"testing"
	"time"

	"paycall_backend/internal/classifier"
	"paycall_backend/internal/sheets"
	"paycall_backend/platform/apperr"
	"paycall_backend/platform/logger"
)

func newTestService(t *testing.T, cfg fakeConfig) (*Service, *fakeStore, *fakeProvider, *fakeGateway, *fakeParser, *recordingBus) {
	t.Helper()

	store := newFakeStore()
	provider := newFakeProvider()
	gateway := newFakeGateway()
	parser := &fakeParser{outcome: classifier.Fallback("test")}
	bus := &recordingBus{}

	svc, err := New(cfg, store, provider, gateway, parser, bus, logger.New("development"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// no real pacing delays in tests
	svc.pause = func(context.Context, time.Duration) error { return nil }
	return svc, store, provider, gateway, parser, bus
}

func pendingRow(invoice, contact string) sheets.PendingPayment {
	due := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	return sheets.PendingPayment{
		ClientName:    "Sharma",
		CompanyName:   "Sharma Coatings",
		ContactNumber: contact,
		InvoiceNumber: invoice,
		AmountDue:     55696,
		DueDate:       &due,
		RowNumber:     12,
		SheetID:       "sheet-default",
	}
}

func TestProcessPendingPaymentsDispatchesAll(t *testing.T) {
	svc, store, provider, gateway, _, bus := newTestService(t, defaultFakeConfig())
	gateway.rows["sheet-default"] = []sheets.PendingPayment{
		pendingRow("INV-1", "+919876543210"),
		pendingRow("INV-2", "+919876543211"),
	}

	result, err := svc.ProcessPendingPayments(context.Background(), "")
	if err != nil {
		t.Fatalf("ProcessPendingPayments: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 0 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(provider.requests) != 2 {
		t.Errorf("expected 2 provider dispatches, got %d", len(provider.requests))
	}
	if len(store.calls) != 2 {
		t.Errorf("expected 2 call logs, got %d", len(store.calls))
	}
	if got := len(bus.named("calls.dispatched")); got != 2 {
		t.Errorf("expected 2 dispatched events, got %d", got)
	}
}

func TestProcessPendingPaymentsOutsideBusinessHours(t *testing.T) {
	cfg := defaultFakeConfig()
	cfg.start = "10:00"
	cfg.end = "19:00"
	svc, _, provider, gateway, _, _ := newTestService(t, cfg)
	gateway.rows["sheet-default"] = []sheets.PendingPayment{pendingRow("INV-1", "+919876543210")}

	loc, _ := time.LoadLocation("Asia/Kolkata")
	svc.now = func() time.Time {
		return time.Date(2024, time.February, 1, 21, 30, 0, 0, loc)
	}

	result, err := svc.ProcessPendingPayments(context.Background(), "")
	if err != nil {
		t.Fatalf("ProcessPendingPayments: %v", err)
	}
	if !result.Skipped {
		t.Error("expected run to be skipped outside business hours")
	}
	if len(provider.requests) != 0 {
		t.Errorf("expected no dispatches, got %d", len(provider.requests))
	}
}

func TestBusinessHoursBoundariesInclusive(t *testing.T) {
	hours, err := newBusinessHours("Asia/Kolkata", "10:00", "19:00")
	if err != nil {
		t.Fatalf("newBusinessHours: %v", err)
	}
	loc := hours.location

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start boundary", time.Date(2024, 2, 1, 10, 0, 0, 0, loc), true},
		{"end boundary", time.Date(2024, 2, 1, 19, 0, 0, 0, loc), true},
		{"before start", time.Date(2024, 2, 1, 9, 59, 0, 0, loc), false},
		{"after end", time.Date(2024, 2, 1, 19, 1, 0, 0, loc), false},
		{"utc time inside window", time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC), true}, // 11:30 IST
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hours.contains(tt.at); got != tt.want {
				t.Errorf("contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestSyncToDatabaseIsIdempotent(t *testing.T) {
	svc, store, _, _, _, _ := newTestService(t, defaultFakeConfig())
	rows := []sheets.PendingPayment{
		pendingRow("INV-1", "+919876543210"),
		pendingRow("INV-2", "+919876543210"), // same client, second invoice
	}

	first, err := svc.SyncToDatabase(context.Background(), rows, "sheet-default")
	if err != nil {
		t.Fatalf("SyncToDatabase: %v", err)
	}
	second, err := svc.SyncToDatabase(context.Background(), rows, "sheet-default")
	if err != nil {
		t.Fatalf("SyncToDatabase (second run): %v", err)
	}

	if len(store.clients) != 1 {
		t.Errorf("expected 1 client, got %d", len(store.clients))
	}
	if len(store.invoices) != 2 {
		t.Errorf("expected 2 invoices, got %d", len(store.invoices))
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("expected 2 items per run, got %d and %d", len(first), len(second))
	}
	// invoice ids are stable across runs
	if first[0].invoice.ID != second[0].invoice.ID {
		t.Error("re-sync changed the invoice id")
	}
}

func TestMakeSingleCallFailureLeavesNoCallLog(t *testing.T) {
	svc, store, provider, gateway, _, bus := newTestService(t, defaultFakeConfig())
	provider.failFor["INV-1"] = apperr.Unavailable("provider rate limited")
	gateway.rows["sheet-default"] = []sheets.PendingPayment{
		pendingRow("INV-1", "+919876543210"),
		pendingRow("INV-2", "+919876543211"),
	}

	result, err := svc.ProcessPendingPayments(context.Background(), "")
	if err != nil {
		t.Fatalf("ProcessPendingPayments: %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(store.calls) != 1 {
		t.Errorf("failed dispatch must not create a call log, got %d logs", len(store.calls))
	}
	if got := len(bus.named("calls.dispatch_failed")); got != 1 {
		t.Errorf("expected 1 dispatch-failed event, got %d", got)
	}
}

func TestProcessMultipleSheetsAggregatesAcrossSheets(t *testing.T) {
	cfg := defaultFakeConfig()
	cfg.clients = []string{"sheet-a", "sheet-b"}
	svc, _, provider, gateway, _, _ := newTestService(t, cfg)

	gateway.rows["sheet-b"] = []sheets.PendingPayment{pendingRow("INV-9", "+919876543210")}

	total := svc.ProcessMultipleSheets(context.Background(), nil)
	if total.Succeeded != 1 {
		t.Errorf("expected 1 successful dispatch across sheets, got %+v", total)
	}
	if len(provider.requests) != 1 {
		t.Errorf("expected 1 dispatch, got %d", len(provider.requests))
	}
}

func TestTriggerCallForInvoice(t *testing.T) {
	svc, store, provider, _, _, _ := newTestService(t, defaultFakeConfig())

	// seed client and invoice as a prior batch sync would have
	items, err := svc.SyncToDatabase(context.Background(),
		[]sheets.PendingPayment{pendingRow("INV-1", "+919876543210")}, "sheet-default")
	if err != nil || len(items) != 1 {
		t.Fatalf("seed sync failed: %v", err)
	}

	if err := svc.TriggerCallForInvoice(context.Background(), "INV-1"); err != nil {
		t.Fatalf("TriggerCallForInvoice: %v", err)
	}
	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(provider.requests))
	}
	if provider.requests[0].InvoiceNumber != "INV-1" {
		t.Errorf("dispatched wrong invoice %q", provider.requests[0].InvoiceNumber)
	}
	if len(store.calls) != 1 {
		t.Errorf("expected a call log, got %d", len(store.calls))
	}
}

func TestTriggerCallForUnknownInvoice(t *testing.T) {
	svc, _, _, _, _, _ := newTestService(t, defaultFakeConfig())

	err := svc.TriggerCallForInvoice(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error for unknown invoice")
	}
}

func TestDispatchPacingDelaysBetweenCallsOnly(t *testing.T) {
	cfg := defaultFakeConfig()
	cfg.rate = 20
	svc, _, provider, gateway, _, _ := newTestService(t, cfg)

	var pauses []time.Duration
	svc.pause = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	gateway.rows["sheet-default"] = []sheets.PendingPayment{
		pendingRow("INV-1", "+919876543210"),
		pendingRow("INV-2", "+919876543211"),
		pendingRow("INV-3", "+919876543212"),
	}

	result, err := svc.ProcessPendingPayments(context.Background(), "")
	if err != nil {
		t.Fatalf("ProcessPendingPayments: %v", err)
	}
	if result.Succeeded != 3 {
		t.Fatalf("Succeeded = %d, want 3", result.Succeeded)
	}
	if len(provider.requests) != 3 {
		t.Fatalf("expected 3 dispatches, got %d", len(provider.requests))
	}

	// 20 calls per minute pace at one call every 3 seconds, with no trailing
	// delay after the final call.
	if len(pauses) != 2 {
		t.Fatalf("expected 2 pacing delays for 3 calls, got %d", len(pauses))
	}
	for i, d := range pauses {
		if d != 3*time.Second {
			t.Errorf("pause %d = %v, want 3s", i, d)
		}
	}
}
