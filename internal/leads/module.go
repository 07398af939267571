// Package leads provides the lead intake domain module: the partner
// submission pipeline and the operator lead view.
package leads

import (
	apphttp "leadgate/internal/http"
	"leadgate/internal/leads/handler"
	"leadgate/internal/leads/repository"
	"leadgate/internal/leads/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	partnerMW gin.HandlerFunc
}

// NewModule creates the leads module. deps.Store is filled from pool when
// left nil. partnerAuth guards the intake endpoint.
func NewModule(pool *pgxpool.Pool, deps service.Deps, cfg service.Config, partnerAuth gin.HandlerFunc) *Module {
	if deps.Store == nil {
		deps.Store = repository.New(pool)
	}
	svc := service.New(deps, cfg)
	return &Module{
		handler:   handler.New(svc),
		service:   svc,
		partnerMW: partnerAuth,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the ingestion service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the partner intake and admin lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	intake := ctx.V1.Group("/leads")
	intake.Use(m.partnerMW)
	m.handler.RegisterPartnerRoutes(intake)

	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
