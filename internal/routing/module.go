package routing

import (
	apphttp "leadgate/internal/http"
	"leadgate/platform/logger"
	"leadgate/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the routing bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	resolver *Resolver
}

// NewModule wires the routing repository, resolver and admin handler.
func NewModule(pool *pgxpool.Pool, orgs OrganizationReader, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	resolver := NewResolver(repo, log)
	svc := NewService(repo, orgs)

	return &Module{
		handler:  NewHandler(svc, resolver, val),
		resolver: resolver,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "routing"
}

// Resolver exposes lead routing to the ingestion pipeline.
func (m *Module) Resolver() *Resolver {
	return m.resolver
}

// RegisterRoutes mounts the reference data admin routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orgs := ctx.Admin.Group("/organizations/:id")
	orgs.POST("/territories", m.handler.CreateTerritory)
	orgs.GET("/territories", m.handler.ListTerritories)
	orgs.POST("/zones", m.handler.CreateZoneMapping)
	orgs.GET("/zones", m.handler.ListZoneMappings)

	ctx.Admin.PUT("/territories/:id/active", m.handler.SetTerritoryActive)
	ctx.Admin.PUT("/zones/:id/active", m.handler.SetZoneMappingActive)

	ctx.Admin.GET("/routing/overlaps", m.handler.Overlaps)
	ctx.Admin.GET("/routing/resolve", m.handler.Resolve)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
