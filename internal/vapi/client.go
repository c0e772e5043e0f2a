package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"paycall_backend/platform/apperr"
	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
	"paycall_backend/platform/phone"
)

const (
	defaultTimeout = 30 * time.Second
	statusTimeout  = 10 * time.Second

	// Backoff applied after the provider returns 429, before giving up on
	// the item. This is the provider-side backoff; the orchestrator's
	// inter-call pacing is a separate mechanism.
	rateLimitBackoff = 5 * time.Second
)

// Client places outbound calls through the provider's REST API.
type Client struct {
	baseURL         string
	apiKey          string
	phoneNumberID   string
	webhookURL      string
	maxCallDuration int
	backoff         time.Duration
	httpClient      *http.Client
	log             *logger.Logger
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.VapiConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:         cfg.GetVapiBaseURL(),
		apiKey:          cfg.GetVapiAPIKey(),
		phoneNumberID:   cfg.GetVapiPhoneNumberID(),
		webhookURL:      cfg.GetWebhookURL(),
		maxCallDuration: cfg.GetMaxCallDurationSeconds(),
		backoff:         rateLimitBackoff,
		httpClient:      &http.Client{Timeout: defaultTimeout},
		log:             log,
	}
}

type outboundCallPayload struct {
	Assistant     assistantConfig `json:"assistant"`
	PhoneNumberID string          `json:"phoneNumberId"`
	Customer      customerPayload `json:"customer"`
}

type customerPayload struct {
	Number          string `json:"number"`
	NumberE164Check bool   `json:"numberE164CheckEnabled"`
}

type createCallResponse struct {
	ID string `json:"id"`
}

// MakeOutboundCall places one reminder call and returns the provider's call
// id. All failure modes return an error and no call id; the caller must not
// record a call log unless an id came back.
func (c *Client) MakeOutboundCall(ctx context.Context, req CallRequest) (string, error) {
	payload := outboundCallPayload{
		Assistant:     c.buildAssistantConfig(req),
		PhoneNumberID: c.phoneNumberID,
		Customer: customerPayload{
			Number:          phone.NormalizeE164(req.ContactNumber),
			NumberE164Check: false,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal call payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/call/phone", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build call request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "call provider unreachable", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var created createCallResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return "", fmt.Errorf("decode call response: %w", err)
		}
		if created.ID == "" {
			return "", apperr.Unavailable("provider returned no call id")
		}
		c.log.CallEvent("call_created", created.ID, req.InvoiceNumber)
		return created.ID, nil

	case http.StatusTooManyRequests:
		// Short fixed sleep, then give up for this item. The batch keeps
		// going with the next invoice.
		c.log.Warn("provider rate limited outbound call", "invoice_number", req.InvoiceNumber)
		select {
		case <-time.After(c.backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		return "", apperr.Unavailable("provider rate limited")

	case http.StatusUnauthorized:
		return "", apperr.Unauthorized("invalid provider API key")

	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", apperr.Unavailable(fmt.Sprintf("provider error %d: %s", resp.StatusCode, detail))
	}
}

// GetCall fetches the current call resource from the provider.
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/call/"+callID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "call provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound("call not found at provider")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Unavailable(fmt.Sprintf("provider status error %d", resp.StatusCode))
	}

	var call Call
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("decode call status: %w", err)
	}
	return &call, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
