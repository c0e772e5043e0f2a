// Package vapi is the outbound voice-call provider client. It places calls,
// polls call status, and defines the inbound webhook payload types.
package vapi

import "time"

// Webhook message types delivered by the provider.
const (
	MessageTypeStatusUpdate    = "status-update"
	MessageTypeEndOfCallReport = "end-of-call-report"
	MessageTypeTranscript      = "transcript"
)

// WebhookEnvelope is the outer JSON body of every provider webhook POST.
type WebhookEnvelope struct {
	Message WebhookMessage `json:"message"`
}

// WebhookMessage carries one provider event. Fields are populated depending
// on the message type.
type WebhookMessage struct {
	Type       string      `json:"type"`
	Status     string      `json:"status,omitempty"`
	Call       WebhookCall `json:"call"`
	Transcript string      `json:"transcript,omitempty"`
	Summary    string      `json:"summary,omitempty"`
}

// WebhookCall is the call block inside a webhook message.
type WebhookCall struct {
	ID           string     `json:"id"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Cost         float64    `json:"cost,omitempty"`
	RecordingURL string     `json:"recordingUrl,omitempty"`
}

// Duration returns the call length in whole seconds, zero when either
// timestamp is missing.
func (c WebhookCall) Duration() int {
	if c.StartedAt == nil || c.EndedAt == nil {
		return 0
	}
	seconds := int(c.EndedAt.Sub(*c.StartedAt).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

// Call is the provider's call resource, as returned by the status endpoint.
type Call struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
	Cost         float64    `json:"cost,omitempty"`
	RecordingURL string     `json:"recordingUrl,omitempty"`
	Transcript   string     `json:"transcript,omitempty"`
	Summary      string     `json:"summary,omitempty"`
}

// CallRequest carries everything needed to place one payment-reminder call.
type CallRequest struct {
	ClientName    string
	CompanyName   string
	ContactNumber string
	InvoiceNumber string
	AmountDue     float64
	DueDate       *time.Time
}
