// Package appointments provides the scheduling confirmer module: calendar
// commitments, slot-conflict detection, and lead-time reminders.
package appointments

import (
	"caseflow_backend/internal/appointments/handler"
	"caseflow_backend/internal/appointments/repository"
	"caseflow_backend/internal/appointments/service"
	"caseflow_backend/internal/events"
	apphttp "caseflow_backend/internal/http"
	"caseflow_backend/platform/config"
	"caseflow_backend/platform/httpkit"
	"caseflow_backend/platform/logger"
	"caseflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the appointments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the appointments module. The case
// scheduler is an adapter over the work-orders repository.
func NewModule(pool *pgxpool.Pool, cases service.CaseScheduler, eventBus events.Bus, val *validator.Validator, log *logger.Logger, lifecycleCfg config.LifecycleConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cases, eventBus, log, lifecycleCfg.GetReminderLeadTime())
	h := handler.New(svc, val)

	return &Module{handler: h, svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "appointments"
}

// Service returns the scheduling service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts appointment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/appointments", httpkit.RequireRole(httpkit.RoleContractor))
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
