package repository

import (
	"context"

	"github.com/google/uuid"
)

// ClientStore manages debtor records keyed by contact number.
type ClientStore interface {
	UpsertClient(ctx context.Context, params UpsertClientParams) (Client, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (Client, error)
}

// InvoiceStore manages receivables keyed by external invoice number.
type InvoiceStore interface {
	UpsertInvoice(ctx context.Context, params UpsertInvoiceParams) (Invoice, error)
	GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (Invoice, error)
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (Invoice, error)
	MarkInvoicePaid(ctx context.Context, invoiceID uuid.UUID) error
}

// CallLogStore records dispatched calls and reconciles webhook reports
// against them by provider call id.
type CallLogStore interface {
	CreateCallLog(ctx context.Context, params CreateCallLogParams) (CallLog, error)
	GetCallLogByProviderID(ctx context.Context, providerCallID string) (CallLog, error)
	UpdateCallStatus(ctx context.Context, providerCallID, status string) error
	RecordCallOutcome(ctx context.Context, providerCallID string, params CallOutcomeParams) (CallLog, error)
}

// CallLogReader serves the query API.
type CallLogReader interface {
	GetCallLog(ctx context.Context, id uuid.UUID) (CallLog, error)
	ListCallLogs(ctx context.Context, params ListCallLogsParams) ([]CallLog, int, error)
}

// Store is the full persistence surface the orchestrator depends on.
type Store interface {
	ClientStore
	InvoiceStore
	CallLogStore
	CallLogReader
}
