package classifier

import (
	"context"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"paycall_backend/platform/apperr"
	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
)

// Classifier turns raw call transcripts into a structured Outcome using
// Gemini. Every failure degrades to the deterministic fallback record so
// webhook processing never depends on the model being reachable.
type Classifier struct {
	client  *genai.Client
	model   string
	enabled bool
	log     *logger.Logger
}

func New(ctx context.Context, cfg config.ClassifierConfig, log *logger.Logger) (*Classifier, error) {
	if !cfg.IsClassifierEnabled() {
		log.Warn("classifier disabled, transcripts will use fallback outcomes")
		return &Classifier{enabled: false, log: log}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "initializing gemini client", err)
	}

	return &Classifier{
		client:  client,
		model:   cfg.GetGeminiModel(),
		enabled: true,
		log:     log,
	}, nil
}

// Parse classifies a transcript. It never returns an error; when the model
// call or decoding fails the caller gets the fallback outcome instead.
func (c *Classifier) Parse(ctx context.Context, transcript, summary string) Outcome {
	if !c.enabled || c.client == nil {
		return Fallback("classifier disabled")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(buildPrompt(transcript, summary)),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		c.log.Error("gemini classification failed", "error", err)
		return Fallback(err.Error())
	}

	text := resp.Text()
	outcome, err := decodeOutcome([]byte(extractJSON(text)))
	if err != nil {
		c.log.Error("could not decode classification response", "error", err, "response", truncate(text, 200))
		return Fallback(err.Error())
	}

	c.log.Info("classified call outcome",
		"payment_status", outcome.PaymentStatus,
		"call_outcome", outcome.CallOutcome,
	)
	return outcome
}

var (
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	bareJSON   = regexp.MustCompile(`(?s)(\{.*\})`)
)

// extractJSON pulls the first JSON object out of model output, which may be
// wrapped in a markdown fence or surrounded by prose.
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareJSON.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return "{}"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
