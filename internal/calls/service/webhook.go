package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paycall_backend/internal/calls/domain"
	"paycall_backend/internal/calls/repository"
	"paycall_backend/internal/classifier"
	"paycall_backend/internal/events"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
	"paycall_backend/platform/apperr"
)

const missingTranscript = "No transcript available"

// ProcessCallWebhook reconciles one provider webhook into the call log
// identified by the provider call id. Reports for unknown call ids are
// dropped with a warning and perform no writes. The handler always returns
// nil for payloads we chose to ignore; the provider should not retry them.
func (s *Service) ProcessCallWebhook(ctx context.Context, envelope vapi.WebhookEnvelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic processing call webhook", "panic", fmt.Sprint(r))
			err = nil
		}
	}()

	msg := envelope.Message
	switch msg.Type {
	case vapi.MessageTypeStatusUpdate:
		return s.handleStatusUpdate(ctx, msg)
	case vapi.MessageTypeEndOfCallReport:
		return s.handleEndOfCall(ctx, msg)
	case vapi.MessageTypeTranscript:
		s.log.WebhookEvent(msg.Type, msg.Call.ID, true)
		return nil
	default:
		s.log.Warn("unknown webhook message type", "type", msg.Type)
		return nil
	}
}

func (s *Service) handleStatusUpdate(ctx context.Context, msg vapi.WebhookMessage) error {
	if msg.Call.ID == "" {
		s.log.Warn("status update without call id, dropping")
		return nil
	}

	mapped := domain.MapProviderStatus(msg.Status)
	err := s.store.UpdateCallStatus(ctx, msg.Call.ID, string(mapped))
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			s.log.Warn("status update for unknown call id", "provider_call_id", msg.Call.ID)
			return nil
		}
		return err
	}

	s.log.WebhookEvent(msg.Type, msg.Call.ID, true)
	return nil
}

// handleEndOfCall runs the full reconciliation: classify the transcript,
// overwrite the call log with the outcome, mark the invoice paid when the
// customer confirmed payment, then write the tracking columns back to the
// sheet. The sheet write is best-effort; a failure there never unwinds the
// database state.
func (s *Service) handleEndOfCall(ctx context.Context, msg vapi.WebhookMessage) error {
	if msg.Call.ID == "" {
		s.log.Warn("end-of-call report without call id, dropping")
		return nil
	}

	existing, err := s.store.GetCallLogByProviderID(ctx, msg.Call.ID)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
			s.log.Warn("end-of-call report for unknown call id", "provider_call_id", msg.Call.ID)
			return nil
		}
		return err
	}

	// A second delivery of the same report rewrites the same fields, but the
	// completion event must fire once or the daily aggregates count the call
	// twice.
	replay := existing.CallStatus == domain.CallStatusCompleted

	transcript := msg.Transcript
	if transcript == "" {
		s.log.Warn("no transcript in end-of-call report", "provider_call_id", msg.Call.ID)
		transcript = missingTranscript
	}

	outcome := s.parser.Parse(ctx, transcript, msg.Summary)
	summary := classifier.Summary(outcome)

	callLog, err := s.store.RecordCallOutcome(ctx, msg.Call.ID, repository.CallOutcomeParams{
		CallStatus:         domain.CallStatusCompleted,
		CallDuration:       msg.Call.Duration(),
		Transcript:         transcript,
		Summary:            summary,
		RecordingURL:       msg.Call.RecordingURL,
		Cost:               msg.Call.Cost,
		PaymentPromised:    outcome.PaymentPromised,
		PaymentPromiseDate: outcome.PaymentPromiseDate,
		NeedsInvoiceResend: outcome.NeedsInvoiceResend,
		CustomerDisputed:   outcome.CustomerDisputed,
		DisputeReason:      outcome.DisputeReason,
		NextFollowUpDate:   outcome.NextFollowUpDate,
		LanguageDetected:   outcome.LanguageDetected,
		CustomerSentiment:  outcome.CustomerSentiment,
		CallOutcome:        outcome.CallOutcome,
	})
	if err != nil {
		return err
	}

	if outcome.PaymentStatus == string(domain.PaymentStatusPaid) {
		if err := s.store.MarkInvoicePaid(ctx, existing.InvoiceID); err != nil {
			s.log.DatabaseError("mark_invoice_paid", err)
		} else {
			s.log.Info("invoice marked paid", "invoice_id", existing.InvoiceID)
		}
	}

	s.writeBackToSheet(ctx, callLog, outcome, summary)

	s.log.WebhookEvent(msg.Type, msg.Call.ID, true)
	if !replay {
		s.publishCallCompleted(ctx, callLog, outcome, msg.Call.EndedAt)
	}
	return nil
}

// writeBackToSheet updates the tracking columns for the invoice's row. All
// failures are logged and swallowed; the database already holds the truth.
func (s *Service) writeBackToSheet(ctx context.Context, callLog repository.CallLog, outcome classifier.Outcome, summary string) {
	invoice, err := s.store.GetInvoiceByID(ctx, callLog.InvoiceID)
	if err != nil {
		s.log.Error("sheet write-back: invoice lookup failed", "invoice_id", callLog.InvoiceID, "error", err)
		return
	}
	client, err := s.store.GetClientByID(ctx, invoice.ClientID)
	if err != nil {
		s.log.Error("sheet write-back: client lookup failed", "client_id", invoice.ClientID, "error", err)
		return
	}

	sheetID := s.defaultSheetID
	if client.GoogleSheetID != nil && *client.GoogleSheetID != "" {
		sheetID = *client.GoogleSheetID
	}

	rowNumber, err := s.sheets.FindInvoiceRow(ctx, sheetID, invoice.InvoiceNumber)
	if err != nil {
		s.log.Error("sheet write-back: row lookup failed", "invoice_number", invoice.InvoiceNumber, "error", err)
		return
	}
	if rowNumber == 0 {
		s.log.Warn("invoice not found in sheet, skipping write-back", "invoice_number", invoice.InvoiceNumber, "sheet_id", sheetID)
		return
	}

	recordingURL := ""
	if callLog.RecordingURL != nil {
		recordingURL = *callLog.RecordingURL
	}

	update := sheets.StatusUpdate{
		SheetID:            sheetID,
		RowNumber:          rowNumber,
		CallMadeOn:         callLog.CallMadeOn,
		CallStatusText:     domain.SheetStatusText(outcome.PaymentStatus),
		PaymentPromiseDate: outcome.PaymentPromiseDate,
		NextFollowUpDate:   outcome.NextFollowUpDate,
		Summary:            summary,
		Sentiment:          outcome.CustomerSentiment,
		RecordingURL:       recordingURL,
	}
	if err := s.sheets.UpdatePaymentStatus(ctx, update); err != nil {
		s.log.Error("sheet write-back failed", "invoice_number", invoice.InvoiceNumber, "error", err)
	}
}

func (s *Service) publishCallCompleted(ctx context.Context, callLog repository.CallLog, outcome classifier.Outcome, endedAt *time.Time) {
	s.bus.Publish(ctx, events.CallCompleted{
		BaseEvent:          events.NewBaseEvent(),
		CallLogID:          callLog.ID,
		InvoiceID:          callLog.InvoiceID,
		ProviderCallID:     callLog.ProviderCallID,
		CallStatus:         string(callLog.CallStatus),
		PaymentStatus:      outcome.PaymentStatus,
		PaymentPromised:    outcome.PaymentPromised,
		NeedsInvoiceResend: outcome.NeedsInvoiceResend,
		CustomerDisputed:   outcome.CustomerDisputed,
		CallOutcome:        outcome.CallOutcome,
		Cost:               msgCost(callLog),
		CompletedAt:        endedAt,
	})
}

func msgCost(callLog repository.CallLog) float64 {
	if callLog.Cost == nil {
		return 0
	}
	return *callLog.Cost
}
