package vapi

import (
	"fmt"
	"strings"
	"unicode"
)

// assistantConfig is the transient assistant definition sent with every
// outbound call: voice, transcriber, conversation model, and the webhook
// server the provider reports back to.
type assistantConfig struct {
	Voice              voiceConfig       `json:"voice"`
	Transcriber        transcriberConfig `json:"transcriber"`
	Model              modelConfig       `json:"model"`
	FirstMessage       string            `json:"firstMessage"`
	EndCallMessage     string            `json:"endCallMessage"`
	Server             serverConfig      `json:"server"`
	ServerMessages     []string          `json:"serverMessages"`
	RecordingEnabled   bool              `json:"recordingEnabled"`
	MaxDurationSeconds int               `json:"maxDurationSeconds"`
	SilenceTimeout     int               `json:"silenceTimeoutSeconds"`
	EndCallEnabled     bool              `json:"endCallFunctionEnabled"`
	BackgroundSound    string            `json:"backgroundSound"`
}

type voiceConfig struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
	Language string `json:"language"`
}

type transcriberConfig struct {
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Language    string   `json:"language"`
	SmartFormat bool     `json:"smartFormat"`
	Keywords    []string `json:"keywords"`
}

type modelConfig struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Temperature float64        `json:"temperature"`
	Messages    []modelMessage `json:"messages"`
}

type modelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type serverConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// Hindi female voice used for all reminder calls.
const reminderVoiceID = "28ca2041-5dda-42df-8123-f58ea9c3da00"

func (c *Client) buildAssistantConfig(req CallRequest) assistantConfig {
	dueDate := "jald se jald"
	if req.DueDate != nil {
		dueDate = req.DueDate.Format("2 January 2006")
	}

	return assistantConfig{
		Voice: voiceConfig{
			Provider: "cartesia",
			VoiceID:  reminderVoiceID,
			Language: "hi",
		},
		Transcriber: transcriberConfig{
			Provider:    "deepgram",
			Model:       "nova-2",
			Language:    "hi",
			SmartFormat: true,
			Keywords:    transcriberKeywords(req.ClientName, req.CompanyName),
		},
		Model: modelConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.7,
			Messages: []modelMessage{{
				Role:    "system",
				Content: reminderSystemPrompt(req.ClientName, req.CompanyName, req.InvoiceNumber, req.AmountDue, dueDate),
			}},
		},
		FirstMessage:       "Namaste! Main Contigo Solutions se bol rahi hoon. Kya aap abhi 2-3 minute baat kar sakte hain?",
		EndCallMessage:     fmt.Sprintf("Thank you %s ji. Dhanyavaad!", req.ClientName),
		Server:             serverConfig{URL: c.webhookURL, TimeoutSeconds: 30},
		ServerMessages:     []string{MessageTypeEndOfCallReport, MessageTypeStatusUpdate, MessageTypeTranscript, "hang"},
		RecordingEnabled:   true,
		MaxDurationSeconds: c.maxCallDuration,
		SilenceTimeout:     30,
		EndCallEnabled:     true,
		BackgroundSound:    "office",
	}
}

// transcriberKeywords boosts recognition of the company's and the client's
// names. Keywords must be alphabetic, at least three characters, and carry
// an integer boost suffix.
func transcriberKeywords(names ...string) []string {
	base := []string{"Contigo", "Solutions", "invoice", "payment"}

	seen := make(map[string]bool)
	var keywords []string
	add := func(word string) {
		cleaned := alphaOnly(word)
		if len(cleaned) < 3 || seen[cleaned] {
			return
		}
		seen[cleaned] = true
		keywords = append(keywords, cleaned+":2")
	}

	for _, word := range base {
		add(word)
	}
	for _, name := range names {
		for _, word := range strings.Fields(name) {
			add(word)
		}
	}

	return keywords
}

func alphaOnly(word string) string {
	var b strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func reminderSystemPrompt(clientName, companyName, invoiceNumber string, amountDue float64, dueDate string) string {
	return fmt.Sprintf(`You are a polite payment-reminder assistant calling on behalf of Contigo Solutions.
You are speaking with %s from %s about invoice %s with a pending amount of ₹%.2f due on %s.

Guidelines:
- Speak naturally in Hindi or Hinglish, matching the customer's language.
- Confirm you are speaking with the right person before discussing the invoice.
- Ask when the payment can be expected and note any specific date promised.
- If the customer says the invoice was already paid, thank them and note it.
- If the customer disputes the invoice or asks for it to be resent, note the reason.
- Stay courteous at all times; never threaten or pressure.
- Keep the call under three minutes.`,
		clientName, companyName, invoiceNumber, amountDue, dueDate)
}
