// Package audit records append-only evidence of partner actions and
// compliance decisions. Entries are never updated or deleted.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action tags.
const (
	ActionComplianceRejected        = "compliance_rejected"
	ActionLeadIngested              = "lead_ingested"
	ActionLeadScoreUpdated          = "lead_score_updated"
	ActionLeadSiteAssigned          = "lead_site_assigned"
	ActionPartnerCreated            = "partner_created"
	ActionPartnerActivated          = "partner_activated"
	ActionPartnerSuspended          = "partner_suspended"
	ActionPartnerAgreementsRecorded = "partner_agreements_recorded"
	ActionPartnerQualified          = "partner_qualification_recorded"
)

// Entry is one audit record.
type Entry struct {
	ID             uuid.UUID       `json:"id"`
	PartnerID      *uuid.UUID      `json:"partnerId,omitempty"`
	OrganizationID *uuid.UUID      `json:"organizationId,omitempty"`
	ActorID        *uuid.UUID      `json:"actorId,omitempty"`
	Action         string          `json:"action"`
	Before         json.RawMessage `json:"before,omitempty"`
	After          json.RawMessage `json:"after,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type actorKey struct{}

// WithActor attaches the operator performing an admin action to ctx.
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the operator attached by WithActor, if any.
func ActorFromContext(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return nil
	}
	return &id
}

// Store persists entries. Implementations expose no update or delete.
type Store interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]Entry, error)
}

// Snapshot marshals v for the Before/After columns. Values that cannot be
// marshalled are recorded as null rather than dropping the entry.
func Snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
