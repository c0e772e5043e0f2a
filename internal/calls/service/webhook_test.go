package service

import (
	"context"
	"testing"
	"time"

	"paycall_backend/internal/calls/domain"
	"paycall_backend/internal/classifier"
	"paycall_backend/internal/events"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
)

// seedDispatchedCall syncs one row and dispatches its call, returning the
// provider call id the webhook tests reconcile against.
func seedDispatchedCall(t *testing.T, svc *Service, provider *fakeProvider) string {
	t.Helper()
	items, err := svc.SyncToDatabase(context.Background(),
		[]sheets.PendingPayment{pendingRow("INV-1", "+919876543210")}, "sheet-default")
	if err != nil || len(items) != 1 {
		t.Fatalf("seed sync failed: %v", err)
	}
	if err := svc.MakeSingleCall(context.Background(), items[0].row, items[0].invoice.ID); err != nil {
		t.Fatalf("seed dispatch failed: %v", err)
	}
	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 seeded dispatch, got %d", len(provider.requests))
	}
	return callID(1)
}

func endOfCallEnvelope(providerCallID, transcript string) vapi.WebhookEnvelope {
	start := time.Date(2024, time.February, 1, 11, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Second)
	return vapi.WebhookEnvelope{Message: vapi.WebhookMessage{
		Type:       vapi.MessageTypeEndOfCallReport,
		Transcript: transcript,
		Summary:    "provider summary",
		Call: vapi.WebhookCall{
			ID:           providerCallID,
			StartedAt:    &start,
			EndedAt:      &end,
			Cost:         0.42,
			RecordingURL: "https://recordings.example/r1",
		},
	}}
}

func TestStatusUpdateMapsProviderStatus(t *testing.T) {
	svc, store, provider, _, _, _ := newTestService(t, defaultFakeConfig())
	id := seedDispatchedCall(t, svc, provider)

	envelope := vapi.WebhookEnvelope{Message: vapi.WebhookMessage{
		Type:   vapi.MessageTypeStatusUpdate,
		Status: "ringing",
		Call:   vapi.WebhookCall{ID: id},
	}}
	if err := svc.ProcessCallWebhook(context.Background(), envelope); err != nil {
		t.Fatalf("ProcessCallWebhook: %v", err)
	}

	log, err := store.GetCallLogByProviderID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCallLogByProviderID: %v", err)
	}
	if log.CallStatus != domain.CallStatusInProgress {
		t.Errorf("CallStatus = %q, want in_progress", log.CallStatus)
	}

	envelope.Message.Status = "ended"
	if err := svc.ProcessCallWebhook(context.Background(), envelope); err != nil {
		t.Fatalf("ProcessCallWebhook: %v", err)
	}
	log, _ = store.GetCallLogByProviderID(context.Background(), id)
	if log.CallStatus != domain.CallStatusCompleted {
		t.Errorf("CallStatus = %q, want completed", log.CallStatus)
	}
}

func TestWebhookUnknownCallIDPerformsNoWrites(t *testing.T) {
	svc, store, _, gateway, parser, _ := newTestService(t, defaultFakeConfig())

	statusEnvelope := vapi.WebhookEnvelope{Message: vapi.WebhookMessage{
		Type:   vapi.MessageTypeStatusUpdate,
		Status: "ringing",
		Call:   vapi.WebhookCall{ID: "orphan-1"},
	}}
	if err := svc.ProcessCallWebhook(context.Background(), statusEnvelope); err != nil {
		t.Fatalf("status update for orphan: %v", err)
	}

	if err := svc.ProcessCallWebhook(context.Background(), endOfCallEnvelope("orphan-1", "hello")); err != nil {
		t.Fatalf("end-of-call for orphan: %v", err)
	}

	if store.statusUpdates != 0 || store.outcomeWrites != 0 {
		t.Errorf("orphan webhooks must not write: %d status updates, %d outcome writes",
			store.statusUpdates, store.outcomeWrites)
	}
	if parser.calls != 0 {
		t.Errorf("classifier must not run for unknown call ids, ran %d times", parser.calls)
	}
	if len(gateway.updates) != 0 {
		t.Errorf("sheet must not be touched for unknown call ids, got %d updates", len(gateway.updates))
	}
}

func TestEndOfCallReconciliation(t *testing.T) {
	svc, store, provider, gateway, parser, bus := newTestService(t, defaultFakeConfig())
	id := seedDispatchedCall(t, svc, provider)
	gateway.rowIndex["INV-1"] = 12

	promise := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	parser.outcome = classifier.Outcome{
		PaymentStatus:      "will_pay",
		PaymentPromised:    true,
		PaymentPromiseDate: &promise,
		LanguageDetected:   "hindi",
		CustomerSentiment:  "positive",
		CallOutcome:        "successful",
	}

	if err := svc.ProcessCallWebhook(context.Background(), endOfCallEnvelope(id, "customer said will pay")); err != nil {
		t.Fatalf("ProcessCallWebhook: %v", err)
	}

	log, err := store.GetCallLogByProviderID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCallLogByProviderID: %v", err)
	}
	if log.CallStatus != domain.CallStatusCompleted {
		t.Errorf("CallStatus = %q, want completed", log.CallStatus)
	}
	if log.CallDuration == nil || *log.CallDuration != 95 {
		t.Errorf("CallDuration = %v, want 95", log.CallDuration)
	}
	if !log.PaymentPromised || log.PaymentPromiseDate == nil {
		t.Errorf("promise fields not recorded: %+v", log)
	}

	// invoice stays pending on will_pay
	inv, _ := store.GetInvoiceByNumber(context.Background(), "INV-1")
	if inv.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("invoice status = %q, want pending", inv.PaymentStatus)
	}

	// sheet write-back carries the mapped status text
	if len(gateway.updates) != 1 {
		t.Fatalf("expected 1 sheet update, got %d", len(gateway.updates))
	}
	update := gateway.updates[0]
	if update.RowNumber != 12 {
		t.Errorf("update row = %d, want 12", update.RowNumber)
	}
	if update.CallStatusText != "Promised Payment" {
		t.Errorf("CallStatusText = %q, want Promised Payment", update.CallStatusText)
	}

	completed := bus.named("calls.completed")
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed event, got %d", len(completed))
	}
	event := completed[0].(events.CallCompleted)
	if event.PaymentStatus != "will_pay" || !event.PaymentPromised {
		t.Errorf("unexpected completed event %+v", event)
	}
}

func TestEndOfCallPaidMarksInvoicePaid(t *testing.T) {
	svc, store, provider, gateway, parser, _ := newTestService(t, defaultFakeConfig())
	id := seedDispatchedCall(t, svc, provider)
	gateway.rowIndex["INV-1"] = 12

	parser.outcome = classifier.Outcome{
		PaymentStatus:     "paid",
		LanguageDetected:  "hindi",
		CustomerSentiment: "positive",
		CallOutcome:       "successful",
	}

	if err := svc.ProcessCallWebhook(context.Background(), endOfCallEnvelope(id, "payment done")); err != nil {
		t.Fatalf("ProcessCallWebhook: %v", err)
	}

	inv, _ := store.GetInvoiceByNumber(context.Background(), "INV-1")
	if inv.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("invoice status = %q, want paid", inv.PaymentStatus)
	}
	if gateway.updates[0].CallStatusText != "Payment Made" {
		t.Errorf("CallStatusText = %q, want Payment Made", gateway.updates[0].CallStatusText)
	}
}

func TestEndOfCallEmptyTranscriptUsesPlaceholder(t *testing.T) {
	svc, store, provider, _, _, _ := newTestService(t, defaultFakeConfig())
	id := seedDispatchedCall(t, svc, provider)

	if err := svc.ProcessCallWebhook(context.Background(), endOfCallEnvelope(id, "")); err != nil {
		t.Fatalf("ProcessCallWebhook: %v", err)
	}

	log, _ := store.GetCallLogByProviderID(context.Background(), id)
	if log.Transcript == nil || *log.Transcript != missingTranscript {
		t.Errorf("Transcript = %v, want placeholder", log.Transcript)
	}
}

func TestEndOfCallMissingSheetRowSkipsWriteBack(t *testing.T) {
	svc, store, provider, gateway, _, _ := newTestService(t, defaultFakeConfig())
	id := seedDispatchedCall(t, svc, provider)
	// rowIndex left empty: invoice not present in the sheet anymore

	if err := svc.ProcessCallWebhook(context.Background(), endOfCallEnvelope(id, "hello")); err != nil {
		t.Fatalf("ProcessCallWebhook: %v", err)
	}
	if len(gateway.updates) != 0 {
		t.Errorf("expected no sheet updates when the row is missing, got %d", len(gateway.updates))
	}
	if store.outcomeWrites != 1 {
		t.Errorf("database write must still happen, got %d", store.outcomeWrites)
	}
}

func TestTranscriptAndUnknownMessagesAreDropped(t *testing.T) {
	svc, store, _, _, _, _ := newTestService(t, defaultFakeConfig())

	for _, msgType := range []string{vapi.MessageTypeTranscript, "speech-update", ""} {
		envelope := vapi.WebhookEnvelope{Message: vapi.WebhookMessage{
			Type: msgType,
			Call: vapi.WebhookCall{ID: "call-x"},
		}}
		if err := svc.ProcessCallWebhook(context.Background(), envelope); err != nil {
			t.Errorf("message type %q should be ignored, got %v", msgType, err)
		}
	}
	if store.statusUpdates != 0 || store.outcomeWrites != 0 {
		t.Error("observational messages must not write")
	}
}

func TestEndOfCallRedeliveryPublishesOneCompletion(t *testing.T) {
	svc, store, provider, gateway, parser, bus := newTestService(t, defaultFakeConfig())
	id := seedDispatchedCall(t, svc, provider)
	gateway.rowIndex["INV-1"] = 12
	parser.outcome = classifier.Outcome{
		PaymentStatus:     "will_pay",
		PaymentPromised:   true,
		LanguageDetected:  "hindi",
		CustomerSentiment: "positive",
		CallOutcome:       "successful",
	}

	envelope := endOfCallEnvelope(id, "customer promised to pay")
	for delivery := 1; delivery <= 2; delivery++ {
		if err := svc.ProcessCallWebhook(context.Background(), envelope); err != nil {
			t.Fatalf("delivery %d: %v", delivery, err)
		}
	}

	if completed := bus.named("calls.completed"); len(completed) != 1 {
		t.Fatalf("expected 1 calls.completed event after redelivery, got %d", len(completed))
	}

	log, err := store.GetCallLogByProviderID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetCallLogByProviderID: %v", err)
	}
	if log.CallStatus != domain.CallStatusCompleted {
		t.Errorf("CallStatus = %q, want completed", log.CallStatus)
	}
	if log.CallDuration == nil || *log.CallDuration != 95 {
		t.Errorf("CallDuration = %v, want 95", log.CallDuration)
	}
}
