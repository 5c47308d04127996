// Package marketplace provides the contractor-facing case distribution
// module: the eligible-case feed, first-writer-wins acceptance, and
// per-contractor dismissals.
package marketplace

import (
	"caseflow_backend/internal/events"
	apphttp "caseflow_backend/internal/http"
	"caseflow_backend/internal/marketplace/handler"
	"caseflow_backend/internal/marketplace/repository"
	"caseflow_backend/internal/marketplace/service"
	"caseflow_backend/platform/httpkit"
	"caseflow_backend/platform/logger"
	"caseflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the marketplace bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the marketplace module. The case
// directory is an adapter over the work-orders repository so acceptance uses
// the same conditional assignment as every other status mutation.
func NewModule(pool *pgxpool.Pool, cases service.CaseDirectory, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cases, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "marketplace"
}

// RegisterRoutes mounts marketplace routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/marketplace", httpkit.RequireRole(httpkit.RoleContractor))
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
