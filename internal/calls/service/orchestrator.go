package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"paycall_backend/internal/calls/repository"
	"paycall_backend/internal/events"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
	"paycall_backend/platform/apperr"
	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
)

// Service orchestrates the reminder-call workflow: reading pending payments
// from client sheets, syncing them into the database, dispatching calls at a
// bounded rate, and reconciling webhook reports back into call logs.
type Service struct {
	store    repository.Store
	provider CallProvider
	sheets   SheetGateway
	parser   OutcomeParser
	bus      events.Bus
	log      *logger.Logger

	hours          businessHours
	ratePerMinute  int
	defaultSheetID string
	clientSheetIDs []string

	// injectable for tests
	now   func() time.Time
	pause func(ctx context.Context, d time.Duration) error
}

func New(
	cfg config.DispatchConfig,
	store repository.Store,
	provider CallProvider,
	gateway SheetGateway,
	parser OutcomeParser,
	bus events.Bus,
	log *logger.Logger,
) (*Service, error) {
	hours, err := newBusinessHours(cfg.GetTimezone(), cfg.GetBusinessHoursStart(), cfg.GetBusinessHoursEnd())
	if err != nil {
		return nil, err
	}

	rate := cfg.GetCallRateLimitPerMinute()
	if rate < 1 {
		rate = 1
	}

	return &Service{
		store:          store,
		provider:       provider,
		sheets:         gateway,
		parser:         parser,
		bus:            bus,
		log:            log,
		hours:          hours,
		ratePerMinute:  rate,
		defaultSheetID: cfg.GetDefaultSheetID(),
		clientSheetIDs: cfg.GetClientSheetIDs(),
		now:            time.Now,
		pause:          sleepCtx,
	}, nil
}

// DispatchResult aggregates one batch run.
type DispatchResult struct {
	Pending   int  `json:"pending"`
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"`
}

// dispatchItem pairs a sheet row with its synced invoice.
type dispatchItem struct {
	row     sheets.PendingPayment
	invoice repository.Invoice
}

// ProcessPendingPayments runs the full batch for one sheet. A panic anywhere
// in the run is recovered and logged; batch processing must never take the
// process down.
func (s *Service) ProcessPendingPayments(ctx context.Context, sheetID string) (result DispatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in payment batch run", "sheet_id", sheetID, "panic", fmt.Sprint(r))
			err = nil
		}
	}()

	if sheetID == "" {
		sheetID = s.defaultSheetID
	}

	if !s.hours.contains(s.now()) {
		s.log.Warn("outside business hours, skipping calls", "sheet_id", sheetID)
		return DispatchResult{Skipped: true}, nil
	}

	s.log.Info("starting payment follow-up run", "sheet_id", sheetID)

	rows, err := s.sheets.GetPendingPayments(ctx, sheetID)
	if err != nil {
		s.log.Error("could not read pending payments", "sheet_id", sheetID, "error", err)
		return DispatchResult{}, err
	}
	if len(rows) == 0 {
		s.log.Info("no pending payments found", "sheet_id", sheetID)
		return DispatchResult{}, nil
	}

	items, err := s.SyncToDatabase(ctx, rows, sheetID)
	if err != nil {
		return DispatchResult{Pending: len(rows)}, err
	}

	result = s.dispatchAll(ctx, items)
	result.Pending = len(rows)
	s.log.Info("payment follow-up run completed",
		"sheet_id", sheetID,
		"pending", result.Pending,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

// ProcessMultipleSheets runs the batch for every configured client sheet.
// A failing sheet is logged and does not stop the remaining sheets.
func (s *Service) ProcessMultipleSheets(ctx context.Context, sheetIDs []string) DispatchResult {
	if len(sheetIDs) == 0 {
		sheetIDs = s.clientSheetIDs
	}
	if len(sheetIDs) == 0 {
		sheetIDs = []string{s.defaultSheetID}
	}

	var total DispatchResult
	for i, sheetID := range sheetIDs {
		s.log.Info("processing client sheet", "index", i+1, "total", len(sheetIDs), "sheet_id", sheetID)
		result, err := s.ProcessPendingPayments(ctx, sheetID)
		if err != nil {
			s.log.Error("sheet run failed", "sheet_id", sheetID, "error", err)
			continue
		}
		total.Pending += result.Pending
		total.Attempted += result.Attempted
		total.Succeeded += result.Succeeded
		total.Failed += result.Failed
	}
	return total
}

// SyncToDatabase upserts clients and invoices for the given sheet rows.
// The operation is idempotent: re-running it for the same rows changes
// nothing beyond refreshed amounts and timestamps. A row that fails to sync
// is dropped from the dispatch list but does not abort the batch.
func (s *Service) SyncToDatabase(ctx context.Context, rows []sheets.PendingPayment, sheetID string) ([]dispatchItem, error) {
	items := make([]dispatchItem, 0, len(rows))
	for _, row := range rows {
		client, err := s.store.UpsertClient(ctx, repository.UpsertClientParams{
			ClientName:    row.ClientName,
			CompanyName:   row.CompanyName,
			ContactNumber: row.ContactNumber,
			GoogleSheetID: sheetID,
		})
		if err != nil {
			s.log.DatabaseError("upsert_client", err)
			continue
		}

		invoice, err := s.store.UpsertInvoice(ctx, repository.UpsertInvoiceParams{
			ClientID:      client.ID,
			InvoiceNumber: row.InvoiceNumber,
			AmountDue:     row.AmountDue,
			DueDate:       row.DueDate,
		})
		if err != nil {
			s.log.DatabaseError("upsert_invoice", err)
			continue
		}

		items = append(items, dispatchItem{row: row, invoice: invoice})
	}
	return items, nil
}

// dispatchAll places the calls sequentially with a fixed delay between
// dispatches. One call per 60/rate seconds; the delay is skipped after the
// last item.
func (s *Service) dispatchAll(ctx context.Context, items []dispatchItem) DispatchResult {
	result := DispatchResult{Attempted: len(items)}
	delay := time.Minute / time.Duration(s.ratePerMinute)

	for i, item := range items {
		s.log.Info("dispatching call", "index", i+1, "total", len(items), "invoice_number", item.row.InvoiceNumber)

		if err := s.MakeSingleCall(ctx, item.row, item.invoice.ID); err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}

		if i < len(items)-1 {
			if err := s.pause(ctx, delay); err != nil {
				s.log.Warn("batch cancelled during pacing delay", "remaining", len(items)-i-1)
				result.Failed += len(items) - i - 1
				break
			}
		}
	}
	return result
}

// MakeSingleCall dispatches one reminder call. A call log row is created
// only when the provider returned a call id; a failed dispatch leaves no
// trace beyond the failure event.
func (s *Service) MakeSingleCall(ctx context.Context, row sheets.PendingPayment, invoiceID uuid.UUID) error {
	providerCallID, err := s.provider.MakeOutboundCall(ctx, vapi.CallRequest{
		ClientName:    row.ClientName,
		CompanyName:   row.CompanyName,
		ContactNumber: row.ContactNumber,
		InvoiceNumber: row.InvoiceNumber,
		AmountDue:     row.AmountDue,
		DueDate:       row.DueDate,
	})
	if err != nil {
		s.log.Error("call dispatch failed", "invoice_number", row.InvoiceNumber, "error", err)
		s.bus.Publish(ctx, events.CallDispatchFailed{
			BaseEvent:     events.NewBaseEvent(),
			InvoiceNumber: row.InvoiceNumber,
			SheetID:       row.SheetID,
			Reason:        err.Error(),
		})
		return err
	}

	callLog, err := s.store.CreateCallLog(ctx, repository.CreateCallLogParams{
		InvoiceID:      invoiceID,
		ProviderCallID: providerCallID,
	})
	if err != nil {
		s.log.DatabaseError("create_call_log", err)
		return err
	}

	s.log.CallEvent("call_dispatched", providerCallID, row.InvoiceNumber)
	s.bus.Publish(ctx, events.CallDispatched{
		BaseEvent:      events.NewBaseEvent(),
		CallLogID:      callLog.ID,
		InvoiceID:      invoiceID,
		ProviderCallID: providerCallID,
		SheetID:        row.SheetID,
	})
	return nil
}

// TriggerCallForInvoice places a call for a single known invoice using the
// client data already synced to the database.
func (s *Service) TriggerCallForInvoice(ctx context.Context, invoiceNumber string) error {
	invoice, err := s.store.GetInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return err
	}
	client, err := s.store.GetClientByID(ctx, invoice.ClientID)
	if err != nil {
		return err
	}

	sheetID := s.defaultSheetID
	if client.GoogleSheetID != nil && *client.GoogleSheetID != "" {
		sheetID = *client.GoogleSheetID
	}

	return s.MakeSingleCall(ctx, sheets.PendingPayment{
		ClientName:    client.ClientName,
		CompanyName:   client.CompanyName,
		ContactNumber: client.ContactNumber,
		InvoiceNumber: invoice.InvoiceNumber,
		AmountDue:     invoice.AmountDue,
		DueDate:       invoice.DueDate,
		SheetID:       sheetID,
	}, invoice.ID)
}

// GetCallStatus proxies a live status poll to the provider.
func (s *Service) GetCallStatus(ctx context.Context, providerCallID string) (*vapi.Call, error) {
	if providerCallID == "" {
		return nil, apperr.Validation("provider call id is required")
	}
	return s.provider.GetCall(ctx, providerCallID)
}

// GetCallLog and ListCallLogs expose the query API.
func (s *Service) GetCallLog(ctx context.Context, id uuid.UUID) (repository.CallLog, error) {
	return s.store.GetCallLog(ctx, id)
}

func (s *Service) ListCallLogs(ctx context.Context, params repository.ListCallLogsParams) ([]repository.CallLog, int, error) {
	return s.store.ListCallLogs(ctx, params)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
