package routing

import (
	"github.com/google/uuid"
)

type CreateTerritoryRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	PostalCodes []string `json:"postalCodes" validate:"required,min=1,max=2000,dive,postalcode5"`
	IsExclusive bool     `json:"isExclusive"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

type CreateZoneMappingRequest struct {
	Prefix       string    `json:"prefix" validate:"required,zoneprefix"`
	TargetSiteID uuid.UUID `json:"targetSiteId" validate:"required"`
	IsActive     *bool     `json:"isActive,omitempty"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type ResolveQuery struct {
	RootID     string `form:"rootId" validate:"required,uuid"`
	PostalCode string `form:"postalCode" validate:"required,postalcode5"`
}

type ResolveResponse struct {
	PostalCode string `json:"postalCode"`
	Dispatched bool   `json:"dispatched"`
	Match      *Match `json:"match,omitempty"`
}

type OverlapsResponse struct {
	RootID uuid.UUID `json:"rootId"`
	Items  []Overlap `json:"items"`
	Total  int       `json:"total"`
}
