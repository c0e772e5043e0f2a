package classifier

import "fmt"

const classificationPromptTemplate = `Analyze the following phone call transcript and extract key information.

Transcript:
%s

Summary (if provided):
%s

Please provide a structured analysis in JSON format with these fields:

{
  "payment_status": "paid" | "will_pay" | "disputed" | "no_response" | "other",
  "payment_promised": true/false,
  "payment_promise_date": "YYYY-MM-DD" or null,
  "needs_invoice_resend": true/false,
  "customer_disputed": true/false,
  "dispute_reason": "reason" or null,
  "next_follow_up_date": "YYYY-MM-DD" or null,
  "language_detected": "english" | "hindi" | "marathi" | "mixed",
  "customer_sentiment": "positive" | "neutral" | "negative" | "angry",
  "notes": "Brief summary of conversation",
  "call_outcome": "successful" | "unsuccessful" | "needs_escalation"
}

Extract information carefully. If customer promised to pay "in 2 days", calculate the date from today.
If unclear, use null values. Be accurate.`

func buildPrompt(transcript, summary string) string {
	if summary == "" {
		summary = "Not provided"
	}
	return fmt.Sprintf(classificationPromptTemplate, transcript, summary)
}
