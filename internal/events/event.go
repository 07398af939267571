// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"leadgate/platform/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadIngested is published once a submission has been durably committed.
type LeadIngested struct {
	BaseEvent
	LeadID         uuid.UUID       `json:"leadId"`
	OrganizationID uuid.UUID       `json:"organizationId"`
	PartnerID      uuid.UUID       `json:"partnerId"`
	PostalCode     string          `json:"postalCode"`
	QualityScore   decimal.Decimal `json:"qualityScore"`
	Dispatched     bool            `json:"dispatched"`
}

func (e LeadIngested) EventName() string { return "leads.lead.ingested" }

// LeadDispatched is published when a lead has been assigned to a site.
// The automation engine consumes it to start candidate follow-up.
type LeadDispatched struct {
	BaseEvent
	LeadID               uuid.UUID `json:"leadId"`
	OrganizationID       uuid.UUID `json:"organizationId"`
	AssignedSiteID       uuid.UUID `json:"assignedSiteId"`
	TargetOrganizationID uuid.UUID `json:"targetOrganizationId"`
	Mechanism            string    `json:"mechanism"`
}

func (e LeadDispatched) EventName() string { return "leads.lead.dispatched" }

// =============================================================================
// Compliance Domain Events
// =============================================================================

// ComplianceRejected is published when a partner submission fails a gate.
type ComplianceRejected struct {
	BaseEvent
	PartnerID      uuid.UUID `json:"partnerId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Code           string    `json:"code"`
}

func (e ComplianceRejected) EventName() string { return "compliance.gate.rejected" }

// =============================================================================
// Ownership Domain Events
// =============================================================================

// OwnershipViolationsFound is published by the periodic ownership audit.
type OwnershipViolationsFound struct {
	BaseEvent
	Count     int       `json:"count"`
	ScannedAt time.Time `json:"scannedAt"`
}

func (e OwnershipViolationsFound) EventName() string { return "ownership.violations.found" }
