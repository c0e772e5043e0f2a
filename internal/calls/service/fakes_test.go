package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"paycall_backend/internal/calls/domain"
	"paycall_backend/internal/calls/repository"
	"paycall_backend/internal/classifier"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
	"paycall_backend/platform/apperr"
	"paycall_backend/platform/events"
)

type fakeConfig struct {
	timezone string
	start    string
	end      string
	rate     int
	sheetID  string
	clients  []string
}

func (f fakeConfig) GetTimezone() string           { return f.timezone }
func (f fakeConfig) GetBusinessHoursStart() string { return f.start }
func (f fakeConfig) GetBusinessHoursEnd() string   { return f.end }
func (f fakeConfig) GetCallRateLimitPerMinute() int {
	return f.rate
}
func (f fakeConfig) GetDefaultSheetID() string   { return f.sheetID }
func (f fakeConfig) GetClientSheetIDs() []string { return f.clients }

func defaultFakeConfig() fakeConfig {
	return fakeConfig{
		timezone: "Asia/Kolkata",
		start:    "00:00",
		end:      "23:59",
		rate:     60,
		sheetID:  "sheet-default",
	}
}

// fakeStore is an in-memory repository.Store.
type fakeStore struct {
	mu       sync.Mutex
	clients  map[string]repository.Client // by contact number
	invoices map[string]repository.Invoice
	calls    map[string]repository.CallLog // by provider call id

	statusUpdates int
	outcomeWrites int
	paidInvoices  []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:  make(map[string]repository.Client),
		invoices: make(map[string]repository.Invoice),
		calls:    make(map[string]repository.CallLog),
	}
}

func (f *fakeStore) UpsertClient(_ context.Context, params repository.UpsertClientParams) (repository.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	client, ok := f.clients[params.ContactNumber]
	if !ok {
		client = repository.Client{ID: uuid.New(), ContactNumber: params.ContactNumber}
	}
	client.ClientName = params.ClientName
	client.CompanyName = params.CompanyName
	sheetID := params.GoogleSheetID
	client.GoogleSheetID = &sheetID
	f.clients[params.ContactNumber] = client
	return client, nil
}

func (f *fakeStore) GetClientByID(_ context.Context, id uuid.UUID) (repository.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return repository.Client{}, apperr.NotFound("client not found")
}

func (f *fakeStore) UpsertInvoice(_ context.Context, params repository.UpsertInvoiceParams) (repository.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[params.InvoiceNumber]
	if !ok {
		inv = repository.Invoice{
			ID:            uuid.New(),
			InvoiceNumber: params.InvoiceNumber,
			PaymentStatus: "pending",
		}
	}
	inv.ClientID = params.ClientID
	inv.AmountDue = params.AmountDue
	inv.DueDate = params.DueDate
	f.invoices[params.InvoiceNumber] = inv
	return inv, nil
}

func (f *fakeStore) GetInvoiceByNumber(_ context.Context, invoiceNumber string) (repository.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invoices[invoiceNumber]
	if !ok {
		return repository.Invoice{}, apperr.NotFound("invoice not found")
	}
	return inv, nil
}

func (f *fakeStore) GetInvoiceByID(_ context.Context, id uuid.UUID) (repository.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return repository.Invoice{}, apperr.NotFound("invoice not found")
}

func (f *fakeStore) MarkInvoicePaid(_ context.Context, invoiceID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for num, inv := range f.invoices {
		if inv.ID == invoiceID {
			inv.PaymentStatus = "paid"
			f.invoices[num] = inv
			f.paidInvoices = append(f.paidInvoices, invoiceID)
			return nil
		}
	}
	return apperr.NotFound("invoice not found")
}

func (f *fakeStore) CreateCallLog(_ context.Context, params repository.CreateCallLogParams) (repository.CallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log := repository.CallLog{
		ID:             uuid.New(),
		InvoiceID:      params.InvoiceID,
		ProviderCallID: params.ProviderCallID,
		CallMadeOn:     time.Now(),
		CallStatus:     "in_progress",
	}
	f.calls[params.ProviderCallID] = log
	return log, nil
}

func (f *fakeStore) GetCallLogByProviderID(_ context.Context, providerCallID string) (repository.CallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.calls[providerCallID]
	if !ok {
		return repository.CallLog{}, apperr.NotFound("call log not found")
	}
	return log, nil
}

func (f *fakeStore) UpdateCallStatus(_ context.Context, providerCallID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.calls[providerCallID]
	if !ok {
		return apperr.NotFound("call log not found")
	}
	log.CallStatus = domain.CallStatus(status)
	f.calls[providerCallID] = log
	f.statusUpdates++
	return nil
}

func (f *fakeStore) RecordCallOutcome(_ context.Context, providerCallID string, params repository.CallOutcomeParams) (repository.CallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log, ok := f.calls[providerCallID]
	if !ok {
		return repository.CallLog{}, apperr.NotFound("call log not found")
	}
	log.CallStatus = params.CallStatus
	duration := params.CallDuration
	log.CallDuration = &duration
	log.Transcript = &params.Transcript
	log.Summary = &params.Summary
	if params.RecordingURL != "" {
		log.RecordingURL = &params.RecordingURL
	}
	cost := params.Cost
	log.Cost = &cost
	log.PaymentPromised = params.PaymentPromised
	log.PaymentPromiseDate = params.PaymentPromiseDate
	log.NeedsInvoiceResend = params.NeedsInvoiceResend
	log.CustomerDisputed = params.CustomerDisputed
	log.NextFollowUpDate = params.NextFollowUpDate
	log.CallOutcome = &params.CallOutcome
	f.calls[providerCallID] = log
	f.outcomeWrites++
	return log, nil
}

func (f *fakeStore) GetCallLog(_ context.Context, id uuid.UUID) (repository.CallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, log := range f.calls {
		if log.ID == id {
			return log, nil
		}
	}
	return repository.CallLog{}, apperr.NotFound("call log not found")
}

func (f *fakeStore) ListCallLogs(_ context.Context, _ repository.ListCallLogsParams) ([]repository.CallLog, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	logs := make([]repository.CallLog, 0, len(f.calls))
	for _, log := range f.calls {
		logs = append(logs, log)
	}
	return logs, len(logs), nil
}

// fakeProvider records dispatch requests and can fail specific invoices.
type fakeProvider struct {
	mu       sync.Mutex
	requests []vapi.CallRequest
	failFor  map[string]error
	nextID   int
	statuses map[string]*vapi.Call
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{failFor: make(map[string]error), statuses: make(map[string]*vapi.Call)}
}

func (f *fakeProvider) MakeOutboundCall(_ context.Context, req vapi.CallRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err, ok := f.failFor[req.InvoiceNumber]; ok {
		return "", err
	}
	f.nextID++
	return callID(f.nextID), nil
}

func (f *fakeProvider) GetCall(_ context.Context, providerCallID string) (*vapi.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call, ok := f.statuses[providerCallID]
	if !ok {
		return nil, apperr.NotFound("call not found at provider")
	}
	return call, nil
}

func callID(n int) string {
	return fmt.Sprintf("call-%d", n)
}

// fakeGateway serves canned rows and records write-backs.
type fakeGateway struct {
	mu       sync.Mutex
	rows     map[string][]sheets.PendingPayment
	rowIndex map[string]int // invoice number -> row
	readErr  error
	updates  []sheets.StatusUpdate
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		rows:     make(map[string][]sheets.PendingPayment),
		rowIndex: make(map[string]int),
	}
}

func (f *fakeGateway) GetPendingPayments(_ context.Context, sheetID string) ([]sheets.PendingPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows[sheetID], nil
}

func (f *fakeGateway) FindInvoiceRow(_ context.Context, _, invoiceNumber string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rowIndex[invoiceNumber], nil
}

func (f *fakeGateway) UpdatePaymentStatus(_ context.Context, update sheets.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	return nil
}

// fakeParser returns a fixed outcome.
type fakeParser struct {
	outcome classifier.Outcome
	calls   int
}

func (f *fakeParser) Parse(_ context.Context, _, _ string) classifier.Outcome {
	f.calls++
	return f.outcome
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}
