package organizations

import (
	"time"

	"github.com/google/uuid"
)

type CreateOrganizationRequest struct {
	Name                string     `json:"name" validate:"required,min=1,max=200"`
	Rank                Rank       `json:"rank" validate:"required,oneof=HEAD_OFFICE FRANCHISE BRANCH STANDALONE"`
	ParentID            *uuid.UUID `json:"parentId,omitempty"`
	AuthorizationNumber *string    `json:"authorizationNumber,omitempty" validate:"omitempty,max=64"`
}

type CreateSiteRequest struct {
	Name           string `json:"name" validate:"required,min=1,max=200"`
	IsHeadquarters bool   `json:"isHeadquarters"`
	IsActive       *bool  `json:"isActive,omitempty"`
}

type OrganizationResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Rank                Rank       `json:"rank"`
	ParentID            *uuid.UUID `json:"parentId,omitempty"`
	AuthorizationNumber *string    `json:"authorizationNumber,omitempty"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type SiteResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	IsHeadquarters bool      `json:"isHeadquarters"`
	IsActive       bool      `json:"isActive"`
}

type OwnershipResponse struct {
	SiteID              uuid.UUID `json:"siteId"`
	OrganizationID      uuid.UUID `json:"organizationId"`
	AuthorizationNumber *string   `json:"authorizationNumber,omitempty"`
	WasResolved         bool      `json:"wasResolved"`
}

type ViolationsResponse struct {
	Items []Violation `json:"items"`
	Total int         `json:"total"`
}

func toOrganizationResponse(o Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                  o.ID,
		Name:                o.Name,
		Rank:                o.Rank,
		ParentID:            o.ParentID,
		AuthorizationNumber: o.AuthorizationNumber,
		IsActive:            o.IsActive,
		CreatedAt:           o.CreatedAt,
	}
}

func toSiteResponse(s Site) SiteResponse {
	return SiteResponse{
		ID:             s.ID,
		OrganizationID: s.OrganizationID,
		Name:           s.Name,
		IsHeadquarters: s.IsHeadquarters,
		IsActive:       s.IsActive,
	}
}
