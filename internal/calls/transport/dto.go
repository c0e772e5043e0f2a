// Package transport defines the wire representations of the calls module.
package transport

import (
	"time"

	"github.com/google/uuid"

	"paycall_backend/internal/calls/repository"
)

// TriggerBatchRequest optionally narrows a batch run to specific sheets.
type TriggerBatchRequest struct {
	SheetIDs []string `json:"sheetIds" validate:"omitempty,max=50,dive,required"`
}

// CallLogResponse is the JSON shape of one call log.
type CallLogResponse struct {
	ID             uuid.UUID  `json:"id"`
	InvoiceID      uuid.UUID  `json:"invoiceId"`
	ProviderCallID string     `json:"providerCallId"`
	CallMadeOn     time.Time  `json:"callMadeOn"`
	CallDuration   *int       `json:"callDuration,omitempty"`
	CallStatus     string     `json:"callStatus"`
	Transcript     *string    `json:"transcript,omitempty"`
	Summary        *string    `json:"summary,omitempty"`
	RecordingURL   *string    `json:"recordingUrl,omitempty"`
	Cost           *float64   `json:"cost,omitempty"`
	Outcome        OutcomeDTO `json:"outcome"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// OutcomeDTO groups the classified fields of a finished call.
type OutcomeDTO struct {
	PaymentPromised    bool       `json:"paymentPromised"`
	PaymentPromiseDate *time.Time `json:"paymentPromiseDate,omitempty"`
	NeedsInvoiceResend bool       `json:"needsInvoiceResend"`
	CustomerDisputed   bool       `json:"customerDisputed"`
	DisputeReason      *string    `json:"disputeReason,omitempty"`
	NextFollowUpDate   *time.Time `json:"nextFollowUpDate,omitempty"`
	LanguageDetected   *string    `json:"languageDetected,omitempty"`
	CustomerSentiment  *string    `json:"customerSentiment,omitempty"`
	CallOutcome        *string    `json:"callOutcome,omitempty"`
}

// ListCallsResponse pages call logs.
type ListCallsResponse struct {
	Calls []CallLogResponse `json:"calls"`
	Total int               `json:"total"`
}

func ToCallLogResponse(log repository.CallLog) CallLogResponse {
	return CallLogResponse{
		ID:             log.ID,
		InvoiceID:      log.InvoiceID,
		ProviderCallID: log.ProviderCallID,
		CallMadeOn:     log.CallMadeOn,
		CallDuration:   log.CallDuration,
		CallStatus:     string(log.CallStatus),
		Transcript:     log.Transcript,
		Summary:        log.Summary,
		RecordingURL:   log.RecordingURL,
		Cost:           log.Cost,
		Outcome: OutcomeDTO{
			PaymentPromised:    log.PaymentPromised,
			PaymentPromiseDate: log.PaymentPromiseDate,
			NeedsInvoiceResend: log.NeedsInvoiceResend,
			CustomerDisputed:   log.CustomerDisputed,
			DisputeReason:      log.DisputeReason,
			NextFollowUpDate:   log.NextFollowUpDate,
			LanguageDetected:   log.LanguageDetected,
			CustomerSentiment:  log.CustomerSentiment,
			CallOutcome:        log.CallOutcome,
		},
		CreatedAt: log.CreatedAt,
	}
}

func ToListCallsResponse(logs []repository.CallLog, total int) ListCallsResponse {
	out := make([]CallLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, ToCallLogResponse(log))
	}
	return ListCallsResponse{Calls: out, Total: total}
}
