// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the HTTP server configuration.
	Config config.HTTPConfig
	// WebhookSecret is the shared secret the call provider includes on events.
	// Empty disables webhook authentication (development only).
	WebhookSecret string
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (e.g., DB ping).
	Health HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
