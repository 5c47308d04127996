// Package workorders provides the maintenance case bounded context module.
// It owns the case store, the job lifecycle state machine, and the case
// timeline.
package workorders

import (
	"caseflow_backend/internal/events"
	apphttp "caseflow_backend/internal/http"
	"caseflow_backend/internal/workorders/handler"
	"caseflow_backend/internal/workorders/repository"
	"caseflow_backend/internal/workorders/service"
	"caseflow_backend/platform/httpkit"
	"caseflow_backend/platform/logger"
	"caseflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the work-orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the work-orders module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, svc: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "workorders"
}

// Service returns the lifecycle service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Repository exposes the case store for cross-module adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts case routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/cases", httpkit.RequireRole(httpkit.RoleLandlord))
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
