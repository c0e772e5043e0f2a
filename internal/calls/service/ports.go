package service

import (
	"context"

	"paycall_backend/internal/classifier"
	"paycall_backend/internal/sheets"
	"paycall_backend/internal/vapi"
)

// CallProvider places outbound calls and answers status polls.
type CallProvider interface {
	MakeOutboundCall(ctx context.Context, req vapi.CallRequest) (string, error)
	GetCall(ctx context.Context, providerCallID string) (*vapi.Call, error)
}

// SheetGateway reads pending payments and writes tracking columns back.
type SheetGateway interface {
	GetPendingPayments(ctx context.Context, sheetID string) ([]sheets.PendingPayment, error)
	FindInvoiceRow(ctx context.Context, sheetID, invoiceNumber string) (int, error)
	UpdatePaymentStatus(ctx context.Context, update sheets.StatusUpdate) error
}

// OutcomeParser classifies a finished call's transcript.
type OutcomeParser interface {
	Parse(ctx context.Context, transcript, summary string) classifier.Outcome
}
