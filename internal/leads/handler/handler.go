// Package handler exposes the lead intake endpoint and the admin lead view.
package handler

import (
	"net/http"
	"strconv"

	"leadgate/internal/leads/service"
	"leadgate/internal/leads/transport"
	"leadgate/internal/partners"
	"leadgate/platform/apperr"
	"leadgate/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// Handler handles lead HTTP requests.
type Handler struct {
	svc *service.Service
}

// New creates a new leads handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPartnerRoutes mounts the intake endpoint. rg must already carry
// the partner credential middleware.
func (h *Handler) RegisterPartnerRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
}

// RegisterAdminRoutes mounts the operator lead routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
}

func (h *Handler) Submit(c *gin.Context) {
	partner, ok := partners.FromContext(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, apperr.CodeUnauthenticated, "missing partner credential", nil)
		return
	}

	// Decode errors are reported by the service once admission and the
	// compliance gates have run.
	var req transport.SubmitLeadRequest
	decodeErr := c.ShouldBindJSON(&req)

	out, err := h.svc.Ingest(c.Request.Context(), service.Submission{
		Partner:   partner,
		Request:   req,
		DecodeErr: decodeErr,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	writeRateLimitHeaders(c, out.RateLimit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, out.Response)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	result, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func writeRateLimitHeaders(c *gin.Context, rl *transport.RateLimitMeta) {
	if rl == nil {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt.Unix(), 10))
	if rl.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
}
