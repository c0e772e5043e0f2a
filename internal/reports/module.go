// Package reports maintains daily call aggregates, fed by call lifecycle
// events, and exposes the reporting API.
package reports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"paycall_backend/internal/events"
	apphttp "paycall_backend/internal/http"
	"paycall_backend/platform/logger"
)

// Module is the reports bounded context implementing http.Module.
type Module struct {
	handler   *Handler
	projector *Projector
}

func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	projector := NewProjector(repo, log)
	projector.Subscribe(bus)

	return &Module{
		handler:   NewHandler(repo),
		projector: projector,
	}
}

func (m *Module) Name() string {
	return "reports"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/reports")
	group.GET("/daily", m.handler.HandleDailyReport)
	group.GET("/weekly", m.handler.HandleWeeklyReport)
	group.GET("/pending-invoices", m.handler.HandlePendingInvoices)
}
