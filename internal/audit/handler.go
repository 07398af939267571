package audit

import (
	"net/http"
	"strconv"

	apphttp "leadgate/internal/http"
	"leadgate/platform/apperr"
	"leadgate/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Module exposes the partner audit trail to operators.
type Module struct {
	writer *Writer
}

// NewModule creates the audit module around an existing writer.
func NewModule(writer *Writer) *Module {
	return &Module{writer: writer}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// RegisterRoutes mounts the read-only audit route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/partners/:id/audit", m.listByPartner)
}

func (m *Module) listByPartner(c *gin.Context) {
	partnerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, "invalid request", nil)
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = min(parsed, maxListLimit)
	}

	items, err := m.writer.List(c.Request.Context(), partnerID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
