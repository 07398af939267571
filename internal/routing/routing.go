// Package routing dispatches leads to a franchise location by postal code.
//
// Two independent mechanisms exist: explicit territory sets owned by
// franchises and branches, and per-organization prefix mappings where the
// longest matching prefix wins. Routing only ever selects a site; it never
// changes which organization owns a lead.
package routing

import (
	"time"

	"github.com/google/uuid"
)

// Mechanism names the reference structure a match came from.
type Mechanism string

const (
	MechanismTerritory Mechanism = "territory"
	MechanismZone      Mechanism = "zone"
)

// Territory is an admin-curated set of postal codes owned by one organization.
type Territory struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Name           string    `json:"name"`
	PostalCodes    []string  `json:"postalCodes"`
	IsExclusive    bool      `json:"isExclusive"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Contains reports whether the territory lists postalCode exactly.
func (t Territory) Contains(postalCode string) bool {
	for _, code := range t.PostalCodes {
		if code == postalCode {
			return true
		}
	}
	return false
}

// Candidate is a territory eligible for a postal code together with its owner.
type Candidate struct {
	Territory
	OrganizationName string
}

// ZoneMapping routes every postal code starting with Prefix to a site.
type ZoneMapping struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Prefix         string    `json:"prefix"`
	TargetSiteID   uuid.UUID `json:"targetSiteId"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SiteTarget describes the site a zone mapping points at.
type SiteTarget struct {
	SiteID           uuid.UUID
	SiteName         string
	SiteActive       bool
	OrganizationID   uuid.UUID
	OrganizationName string
}

// Match is a successful routing decision.
type Match struct {
	Mechanism        Mechanism `json:"mechanism"`
	RuleID           uuid.UUID `json:"ruleId"`
	OrganizationID   uuid.UUID `json:"organizationId"`
	OrganizationName string    `json:"organizationName"`
	SiteID           uuid.UUID `json:"siteId"`
}

// Overlap is a postal code claimed by more than one active territory.
type Overlap struct {
	PostalCode      string      `json:"postalCode"`
	TerritoryIDs    []uuid.UUID `json:"territoryIds"`
	OrganizationIDs []uuid.UUID `json:"organizationIds"`
}
