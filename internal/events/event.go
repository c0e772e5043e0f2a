// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"paycall_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Calls Domain Events
// =============================================================================

// CallDispatched is published when an outbound call has been placed and its
// call log recorded.
type CallDispatched struct {
	BaseEvent
	CallLogID      uuid.UUID `json:"callLogId"`
	InvoiceID      uuid.UUID `json:"invoiceId"`
	ProviderCallID string    `json:"providerCallId"`
	SheetID        string    `json:"sheetId"`
}

func (e CallDispatched) EventName() string { return "calls.dispatched" }

// CallCompleted is published after an end-of-call report has been reconciled
// into the call log.
type CallCompleted struct {
	BaseEvent
	CallLogID          uuid.UUID  `json:"callLogId"`
	InvoiceID          uuid.UUID  `json:"invoiceId"`
	ProviderCallID     string     `json:"providerCallId"`
	CallStatus         string     `json:"callStatus"`
	PaymentStatus      string     `json:"paymentStatus"`
	PaymentPromised    bool       `json:"paymentPromised"`
	NeedsInvoiceResend bool       `json:"needsInvoiceResend"`
	CustomerDisputed   bool       `json:"customerDisputed"`
	CallOutcome        string     `json:"callOutcome"`
	Cost               float64    `json:"cost"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
}

func (e CallCompleted) EventName() string { return "calls.completed" }

// CallDispatchFailed is published when the provider refused or failed to
// place a call. No call log exists for these.
type CallDispatchFailed struct {
	BaseEvent
	InvoiceNumber string `json:"invoiceNumber"`
	SheetID       string `json:"sheetId"`
	Reason        string `json:"reason"`
}

func (e CallDispatchFailed) EventName() string { return "calls.dispatch_failed" }
