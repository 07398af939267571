package service

import (
	"context"

	"leadgate/internal/audit"
	"leadgate/internal/compliance"
	"leadgate/internal/evidence"
	"leadgate/internal/organizations"
	"leadgate/internal/partners"
	"leadgate/internal/ratelimit"
	"leadgate/internal/routing"

	"github.com/google/uuid"
)

// Admitter is the per-partner admission control.
type Admitter interface {
	Admit(ctx context.Context, key string, limit int) (ratelimit.Decision, error)
}

// GateChecker runs the compliance chain.
type GateChecker interface {
	CheckGates(ctx context.Context, p partners.Partner) *compliance.Failure
}

// OwnerResolver resolves the accountable organization for an originating site.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, siteID uuid.UUID) (organizations.Ownership, error)
}

// Router finds the dispatch target for a postal code among the territory
// sets of a hierarchy.
type Router interface {
	ResolveTerritory(ctx context.Context, rootID uuid.UUID, postalCode string) (*routing.Match, error)
}

// AuditRecorder is the best-effort audit side channel.
type AuditRecorder interface {
	RecordAsync(ctx context.Context, entry audit.Entry)
}

// DispatchNotice is handed to the automation engine when a lead is dispatched.
type DispatchNotice struct {
	LeadID               uuid.UUID
	OrganizationID       uuid.UUID
	AssignedSiteID       uuid.UUID
	TargetOrganizationID uuid.UUID
	Mechanism            string
}

// Notifier triggers downstream automation for dispatched leads.
type Notifier interface {
	NotifyLeadDispatched(ctx context.Context, notice DispatchNotice) error
}

// EvidenceArchiver keeps an off-database copy of consent evidence.
type EvidenceArchiver interface {
	Archive(ctx context.Context, snap evidence.Snapshot) (string, error)
	DownloadURL(ctx context.Context, orgID, leadID uuid.UUID) (string, error)
}
