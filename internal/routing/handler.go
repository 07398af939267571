package routing

import (
	"net/http"

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

// Handler serves routing reference data and diagnostics.
type Handler struct {
	svc      *Service
	resolver *Resolver
	val      *validator.Validator
}

// NewHandler creates a new routing handler.
func NewHandler(svc *Service, resolver *Resolver, val *validator.Validator) *Handler {
	return &Handler{svc: svc, resolver: resolver, val: val}
}

func (h *Handler) CreateTerritory(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CreateTerritoryRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.CreateTerritory(c.Request.Context(), orgID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListTerritories(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListTerritories(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

func (h *Handler) SetTerritoryActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetTerritoryActive(c.Request.Context(), id, *req.IsActive)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CreateZoneMapping(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CreateZoneMappingRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.CreateZoneMapping(c.Request.Context(), orgID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListZoneMappings(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListZoneMappings(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

func (h *Handler) SetZoneMappingActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.svc.SetZoneMappingActive(c.Request.Context(), id, *req.IsActive)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Overlaps reports postal codes claimed by several territories of a hierarchy.
func (h *Handler) Overlaps(c *gin.Context) {
	rootID, err := uuid.Parse(c.Query("rootId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidationFailed, msgValidationFailed,
			[]validator.FieldError{{Field: "rootId", Rule: "uuid", Message: "must be a valid UUID"}})
		return
	}
	overlaps, err := h.resolver.DetectOverlaps(c.Request.Context(), rootID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, OverlapsResponse{RootID: rootID, Items: overlaps, Total: len(overlaps)})
}

// Resolve runs routing for a postal code without dispatching anything.
func (h *Handler) Resolve(c *gin.Context) {
	var q ResolveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidationFailed, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	match, err := h.resolver.Route(c.Request.Context(), uuid.MustParse(q.RootID), q.PostalCode)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ResolveResponse{PostalCode: q.PostalCode, Dispatched: match != nil, Match: match})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
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

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
