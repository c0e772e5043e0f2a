package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Outcome is the structured result extracted from a call transcript.
type Outcome struct {
	PaymentStatus      string     `json:"payment_status"`
	PaymentPromised    bool       `json:"payment_promised"`
	PaymentPromiseDate *time.Time `json:"payment_promise_date"`
	NeedsInvoiceResend bool       `json:"needs_invoice_resend"`
	CustomerDisputed   bool       `json:"customer_disputed"`
	DisputeReason      string     `json:"dispute_reason"`
	NextFollowUpDate   *time.Time `json:"next_follow_up_date"`
	LanguageDetected   string     `json:"language_detected"`
	CustomerSentiment  string     `json:"customer_sentiment"`
	Notes              string     `json:"notes"`
	CallOutcome        string     `json:"call_outcome"`
}

// rawOutcome mirrors the model's JSON shape. Dates arrive as strings and
// string fields may be null.
type rawOutcome struct {
	PaymentStatus      string  `json:"payment_status"`
	PaymentPromised    bool    `json:"payment_promised"`
	PaymentPromiseDate *string `json:"payment_promise_date"`
	NeedsInvoiceResend bool    `json:"needs_invoice_resend"`
	CustomerDisputed   bool    `json:"customer_disputed"`
	DisputeReason      *string `json:"dispute_reason"`
	NextFollowUpDate   *string `json:"next_follow_up_date"`
	LanguageDetected   string  `json:"language_detected"`
	CustomerSentiment  string  `json:"customer_sentiment"`
	Notes              string  `json:"notes"`
	CallOutcome        string  `json:"call_outcome"`
}

func decodeOutcome(data []byte) (Outcome, error) {
	var raw rawOutcome
	if err := json.Unmarshal(data, &raw); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		PaymentStatus:      raw.PaymentStatus,
		PaymentPromised:    raw.PaymentPromised,
		PaymentPromiseDate: parseModelDate(raw.PaymentPromiseDate),
		NeedsInvoiceResend: raw.NeedsInvoiceResend,
		CustomerDisputed:   raw.CustomerDisputed,
		NextFollowUpDate:   parseModelDate(raw.NextFollowUpDate),
		LanguageDetected:   raw.LanguageDetected,
		CustomerSentiment:  raw.CustomerSentiment,
		Notes:              raw.Notes,
		CallOutcome:        raw.CallOutcome,
	}
	if raw.DisputeReason != nil {
		out.DisputeReason = *raw.DisputeReason
	}
	if out.PaymentStatus == "" {
		out.PaymentStatus = "other"
	}
	if out.LanguageDetected == "" {
		out.LanguageDetected = "unknown"
	}
	if out.CustomerSentiment == "" {
		out.CustomerSentiment = "neutral"
	}
	if out.CallOutcome == "" {
		out.CallOutcome = "unsuccessful"
	}
	return out, nil
}

// parseModelDate treats any unparsable value as absent rather than failing
// the whole outcome.
func parseModelDate(value *string) *time.Time {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return nil
	}
	return &parsed
}

// Fallback is the deterministic record used whenever classification fails.
// The orchestrator relies on it so a model outage never blocks reconciling
// a finished call.
func Fallback(reason string) Outcome {
	return Outcome{
		PaymentStatus:     "other",
		LanguageDetected:  "unknown",
		CustomerSentiment: "neutral",
		Notes:             "Error parsing: " + reason,
		CallOutcome:       "unsuccessful",
	}
}

// Summary renders a pipe-joined human readable line for the tracking sheet.
func Summary(out Outcome) string {
	var parts []string

	switch out.PaymentStatus {
	case "paid":
		parts = append(parts, "Customer confirmed payment already made")
	case "will_pay":
		parts = append(parts, "Customer will make payment")
	case "disputed":
		parts = append(parts, "Customer disputed the invoice")
	}

	if out.PaymentPromised && out.PaymentPromiseDate != nil {
		parts = append(parts, "Promised to pay by "+out.PaymentPromiseDate.Format("02 January 2006"))
	}
	if out.NeedsInvoiceResend {
		parts = append(parts, "Requested invoice to be resent")
	}
	if out.CustomerDisputed {
		reason := out.DisputeReason
		if reason == "" {
			reason = "No reason provided"
		}
		parts = append(parts, "Dispute reason: "+reason)
	}

	parts = append(parts, "Language: "+titleCase(out.LanguageDetected))
	parts = append(parts, "Sentiment: "+titleCase(out.CustomerSentiment))

	if out.Notes != "" {
		parts = append(parts, out.Notes)
	}
	return strings.Join(parts, " | ")
}

// NextAction derives the follow-up instruction written back to the sheet.
func NextAction(out Outcome) string {
	switch {
	case out.PaymentStatus == "paid":
		return "Mark as paid and close"
	case out.PaymentPromised:
		if out.PaymentPromiseDate != nil {
			return fmt.Sprintf("Follow up on %s", out.PaymentPromiseDate.Format("2006-01-02"))
		}
		return "Follow up in 2 days"
	case out.NeedsInvoiceResend:
		return "Resend invoice immediately"
	case out.CustomerDisputed:
		return "Escalate to accounts team"
	case out.CallOutcome == "needs_escalation":
		return "Escalate to manager"
	default:
		return "Follow up in 3 days"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
