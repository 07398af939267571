package partners

import (
	"context"
	"net/http"

	"leadgate/internal/audit"
	"leadgate/platform/apperr"
	"leadgate/platform/httpkit"
	"leadgate/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles admin HTTP requests for partners.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new partners handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers partner admin routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id/agreements", h.RecordAgreements)
	rg.PUT("/:id/qualification", h.RecordQualification)
	rg.POST("/:id/activate", h.Activate)
	rg.POST("/:id/suspend", h.Suspend)
}

func (h *Handler) List(c *gin.Context) {
	var sponsorID *uuid.UUID
	if raw := c.Query("sponsorOrganizationId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
			return
		}
		sponsorID = &parsed
	}

	result, err := h.svc.List(c.Request.Context(), sponsorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreatePartnerRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Create(operatorContext(c), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) RecordAgreements(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RecordAgreementsRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.RecordAgreements(operatorContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) RecordQualification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RecordQualificationRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.RecordQualification(operatorContext(c), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Activate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.Activate(operatorContext(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Cache-Control", "no-store")
	httpkit.OK(c, result)
}

func (h *Handler) Suspend(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.svc.Suspend(operatorContext(c), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidationFailed, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

// operatorContext tags audit entries written during the request with the
// authenticated operator.
func operatorContext(c *gin.Context) context.Context {
	id := httpkit.GetIdentity(c)
	if !id.IsAuthenticated() {
		return c.Request.Context()
	}
	return audit.WithActor(c.Request.Context(), id.UserID())
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
