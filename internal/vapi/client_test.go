package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paycall_backend/platform/apperr"
	"paycall_backend/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &Client{
		baseURL:         server.URL,
		apiKey:          "test-key",
		phoneNumberID:   "pn-1",
		webhookURL:      "http://localhost/webhook",
		maxCallDuration: 300,
		backoff:         time.Millisecond,
		httpClient:      server.Client(),
		log:             logger.New("development"),
	}
	return client, server
}

func testCallRequest() CallRequest {
	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return CallRequest{
		ClientName:    "Sharma Coatings",
		CompanyName:   "Sharma Coatings",
		ContactNumber: "9876543210",
		InvoiceNumber: "INV-1",
		AmountDue:     1000,
		DueDate:       &due,
	}
}

func TestMakeOutboundCallReturnsProviderID(t *testing.T) {
	var captured outboundCallPayload
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/phone" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "call-123"})
	})

	id, err := client.MakeOutboundCall(context.Background(), testCallRequest())
	if err != nil {
		t.Fatalf("MakeOutboundCall: %v", err)
	}
	if id != "call-123" {
		t.Errorf("expected call-123, got %q", id)
	}
	if captured.Customer.Number != "+919876543210" {
		t.Errorf("expected normalized E.164 number, got %q", captured.Customer.Number)
	}
	if captured.PhoneNumberID != "pn-1" {
		t.Errorf("expected phone number id, got %q", captured.PhoneNumberID)
	}
	if captured.Assistant.Server.URL != "http://localhost/webhook" {
		t.Errorf("expected webhook server url, got %q", captured.Assistant.Server.URL)
	}
}

func TestMakeOutboundCallRateLimited(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.MakeOutboundCall(context.Background(), testCallRequest())
	if err == nil {
		t.Fatal("expected error after 429")
	}

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) || domainErr.Kind != apperr.KindUnavailable {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestMakeOutboundCallUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.MakeOutboundCall(context.Background(), testCallRequest())
	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) || domainErr.Kind != apperr.KindUnauthorized {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestGetCallDecodesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/call-123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Call{ID: "call-123", Status: "ended", Cost: 0.42})
	})

	call, err := client.GetCall(context.Background(), "call-123")
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if call.Status != "ended" || call.Cost != 0.42 {
		t.Errorf("unexpected call %+v", call)
	}
}

func TestWebhookCallDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Second)

	if got := (WebhookCall{StartedAt: &start, EndedAt: &end}).Duration(); got != 95 {
		t.Errorf("Duration() = %d, want 95", got)
	}
	if got := (WebhookCall{StartedAt: &start}).Duration(); got != 0 {
		t.Errorf("Duration() without end = %d, want 0", got)
	}
	if got := (WebhookCall{EndedAt: &end}).Duration(); got != 0 {
		t.Errorf("Duration() without start = %d, want 0", got)
	}
}

func TestTranscriberKeywords(t *testing.T) {
	keywords := transcriberKeywords("Sharma Coatings Pvt. Ltd", "Sharma Coatings")

	want := map[string]bool{
		"Contigo:2": true, "Solutions:2": true, "invoice:2": true,
		"payment:2": true, "Sharma:2": true, "Coatings:2": true,
		"Pvt:2": true, "Ltd:2": true,
	}
	if len(keywords) != len(want) {
		t.Fatalf("expected %d keywords, got %d: %v", len(want), len(keywords), keywords)
	}
	for _, kw := range keywords {
		if !want[kw] {
			t.Errorf("unexpected keyword %q", kw)
		}
	}
}
