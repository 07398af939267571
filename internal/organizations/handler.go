package organizations

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

// Handler serves the hierarchy admin endpoints.
type Handler struct {
	svc       *Service
	resolver  *Resolver
	invariant *InvariantValidator
	val       *validator.Validator
}

// NewHandler creates a new organizations handler.
func NewHandler(svc *Service, resolver *Resolver, invariant *InvariantValidator, val *validator.Validator) *Handler {
	return &Handler{svc: svc, resolver: resolver, invariant: invariant, val: val}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidationFailed, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CreateSite(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeValidationFailed, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.CreateSite(c.Request.Context(), orgID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListSites(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListSites(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

// ResolveSiteOwner reports which organization is accountable for records from a site.
func (h *Handler) ResolveSiteOwner(c *gin.Context) {
	siteID, ok := parseID(c, "id")
	if !ok {
		return
	}
	// An orphaned subsidiary is a data defect and renders as an internal error.
	owner, err := h.resolver.ResolveOwner(c.Request.Context(), siteID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, OwnershipResponse{
		SiteID:              siteID,
		OrganizationID:      owner.OrganizationID,
		AuthorizationNumber: owner.AuthorizationNumber,
		WasResolved:         owner.WasResolved,
	})
}

// ListViolations runs the ownership invariant scan on demand.
func (h *Handler) ListViolations(c *gin.Context) {
	violations, err := h.invariant.Scan(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ViolationsResponse{Items: violations, Total: len(violations)})
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, apperr.CodeBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
