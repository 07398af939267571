package partners

import (
	"leadgate/internal/audit"
	apphttp "leadgate/internal/http"
	"leadgate/platform/logger"
	"leadgate/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the partners bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
	service *Service
	log     *logger.Logger
}

// NewModule creates and initializes the partners module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	orgs OrganizationReader,
	auditWriter *audit.Writer,
	val *validator.Validator,
	defaultHourlyLimit int,
	log *logger.Logger,
) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, orgs, auditWriter, defaultHourlyLimit)
	return &Module{
		handler: NewHandler(svc, val),
		repo:    repo,
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "partners"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// AuthMiddleware returns the partner credential middleware for partner-facing routes.
func (m *Module) AuthMiddleware() gin.HandlerFunc {
	return AuthMiddleware(m.repo, m.log)
}

// RegisterRoutes mounts partner admin routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/partners"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
