// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		return l.WithRequestID(requestID)
	}

	return l
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// CallEvent logs lifecycle events for an outbound call.
func (l *Logger) CallEvent(event, providerCallID, invoiceNumber string) {
	l.Info("call_event",
		slog.String("event", event),
		slog.String("provider_call_id", providerCallID),
		slog.String("invoice_number", invoiceNumber),
	)
}

// WebhookEvent logs an inbound provider webhook event.
func (l *Logger) WebhookEvent(messageType, providerCallID string, handled bool) {
	if handled {
		l.Info("webhook_event",
			slog.String("type", messageType),
			slog.String("provider_call_id", providerCallID),
		)
	} else {
		l.Warn("webhook_event_dropped",
			slog.String("type", messageType),
			slog.String("provider_call_id", providerCallID),
		)
	}
}

// SheetEvent logs spreadsheet gateway activity.
func (l *Logger) SheetEvent(event, sheetID string, rows int) {
	l.Info("sheet_event",
		slog.String("event", event),
		slog.String("sheet_id", sheetID),
		slog.Int("rows", rows),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
