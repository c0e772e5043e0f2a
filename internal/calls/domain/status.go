// Package domain holds the closed vocabularies of the call lifecycle:
// call states, invoice payment states, and the mapping from the provider's
// loosely-typed status strings onto the internal enumeration.
package domain

// CallStatus is the internal lifecycle state of one placed call.
type CallStatus string

const (
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusBusy       CallStatus = "busy"
	CallStatusVoicemail  CallStatus = "voicemail"
)

// PaymentStatus is the invoice payment state.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusOverdue  PaymentStatus = "overdue"
	PaymentStatusDisputed PaymentStatus = "disputed"
	PaymentStatusWillPay  PaymentStatus = "will_pay"
)

// providerStatusMap is the closed mapping from the provider's status
// vocabulary onto internal call states. Everything the provider reports
// before a call ends is in_progress from our point of view.
var providerStatusMap = map[string]CallStatus{
	"queued":      CallStatusInProgress,
	"ringing":     CallStatusInProgress,
	"in-progress": CallStatusInProgress,
	"forwarding":  CallStatusInProgress,
	"ended":       CallStatusCompleted,
}

// MapProviderStatus translates a provider status string to a CallStatus.
// Unrecognized values default to in_progress: a status we don't know about
// must never drop the event or crash the handler.
func MapProviderStatus(providerStatus string) CallStatus {
	if status, ok := providerStatusMap[providerStatus]; ok {
		return status
	}
	return CallStatusInProgress
}

// sheetStatusText maps a classified payment status to the user-facing text
// written into the spreadsheet's call-status tracking column.
var sheetStatusText = map[string]string{
	"paid":        "Payment Made",
	"will_pay":    "Promised Payment",
	"disputed":    "Disputed",
	"no_response": "No Answer",
	"other":       "Needs Follow-up",
}

// SheetStatusText returns the tracking-column text for a classified payment
// status, falling back to a generic marker for unknown values.
func SheetStatusText(paymentStatus string) string {
	if text, ok := sheetStatusText[paymentStatus]; ok {
		return text
	}
	return "Called"
}
