package organizations

import (
	apphttp "leadgate/internal/http"
	"leadgate/platform/logger"
	"leadgate/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the organizations bounded context module implementing http.Module.
type Module struct {
	handler   *Handler
	repo      *Repository
	resolver  *Resolver
	invariant *InvariantValidator
}

// NewModule wires the repository, resolver and invariant validator.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	resolver := NewResolver(repo)
	invariant := NewInvariantValidator(repo, resolver, log)
	svc := NewService(repo)

	return &Module{
		handler:   NewHandler(svc, resolver, invariant, val),
		repo:      repo,
		resolver:  resolver,
		invariant: invariant,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "organizations"
}

// Resolver exposes ownership resolution to other modules.
func (m *Module) Resolver() *Resolver {
	return m.resolver
}

// Repository exposes hierarchy reads to other modules.
func (m *Module) Repository() *Repository {
	return m.repo
}

// InvariantValidator exposes the ownership audit to the scheduler.
func (m *Module) InvariantValidator() *InvariantValidator {
	return m.invariant
}

// RegisterRoutes mounts admin hierarchy routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orgs := ctx.Admin.Group("/organizations")
	orgs.POST("", m.handler.Create)
	orgs.GET("", m.handler.List)
	orgs.GET("/:id", m.handler.Get)
	orgs.POST("/:id/sites", m.handler.CreateSite)
	orgs.GET("/:id/sites", m.handler.ListSites)

	ctx.Admin.GET("/sites/:id/owner", m.handler.ResolveSiteOwner)
	ctx.Admin.GET("/ownership/violations", m.handler.ListViolations)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
