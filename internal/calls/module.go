// Package calls provides the payment reminder call bounded context: batch
// dispatch from client sheets, webhook reconciliation, and the call query API.
package calls

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"paycall_backend/internal/calls/handler"
	"paycall_backend/internal/calls/repository"
	"paycall_backend/internal/calls/service"
	"paycall_backend/internal/events"
	apphttp "paycall_backend/internal/http"
	"paycall_backend/platform/config"
	"paycall_backend/platform/logger"
	"paycall_backend/platform/validator"
)

// Module is the calls bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule wires the calls module. The provider, sheet gateway, and outcome
// parser are passed in so the composition root decides the concrete clients.
func NewModule(
	cfg config.DispatchConfig,
	pool *pgxpool.Pool,
	provider service.CallProvider,
	gateway service.SheetGateway,
	parser service.OutcomeParser,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) (*Module, error) {
	repo := repository.New(pool)
	svc, err := service.New(cfg, repo, provider, gateway, parser, bus, log)
	if err != nil {
		return nil, err
	}

	return &Module{
		handler: handler.NewHandler(svc, val, log),
		svc:     svc,
	}, nil
}

func (m *Module) Name() string {
	return "calls"
}

// Service exposes the orchestrator for the scheduler worker.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts the webhook endpoint and the call management API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	webhook := ctx.V1.Group("/webhook")
	webhook.Use(ctx.WebhookAuth)
	webhook.POST("/vapi", m.handler.HandleVapiWebhook)

	calls := ctx.V1.Group("/calls")
	calls.POST("/trigger-batch", ctx.TriggerRateLimit, m.handler.HandleTriggerBatch)
	calls.POST("/trigger/:invoiceNumber", ctx.TriggerRateLimit, m.handler.HandleTriggerCall)
	calls.GET("", m.handler.HandleListCalls)
	calls.GET("/:id", m.handler.HandleGetCall)
	calls.GET("/provider/:providerCallID/status", m.handler.HandleGetCallStatus)
}
