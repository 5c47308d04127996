// Package quotes provides the quote ledger and counter-proposal negotiation
// module.
package quotes

import (
	"caseflow_backend/internal/events"
	apphttp "caseflow_backend/internal/http"
	"caseflow_backend/internal/quotes/handler"
	"caseflow_backend/internal/quotes/repository"
	"caseflow_backend/internal/quotes/service"
	"caseflow_backend/platform/config"
	"caseflow_backend/platform/httpkit"
	"caseflow_backend/platform/logger"
	"caseflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the quotes bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the quotes module. The case gate is an
// adapter over the work-orders repository.
func NewModule(pool *pgxpool.Pool, cases service.CaseGate, eventBus events.Bus, val *validator.Validator, log *logger.Logger, notifCfg config.NotificationConfig, lifecycleCfg config.LifecycleConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cases, eventBus, log, notifCfg.GetAppBaseURL(), lifecycleCfg.GetQuoteValidity())
	h := handler.New(svc, val)

	return &Module{handler: h, svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the quotes service for scheduler wiring.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts quote routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	contractor := ctx.Protected.Group("/quotes", httpkit.RequireRole(httpkit.RoleContractor))
	m.handler.RegisterContractorRoutes(contractor)

	customer := ctx.Protected.Group("/received-quotes", httpkit.RequireRole(httpkit.RoleLandlord))
	m.handler.RegisterCustomerRoutes(customer)

	// Token-based approval is reachable without auth, so throttle it by IP.
	public := ctx.V1.Group("/quotes")
	if ctx.PublicRateLimiter != nil {
		public.Use(ctx.PublicRateLimiter.RateLimit())
	}
	m.handler.RegisterPublicRoutes(public)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
