package organizations

import (
	"context"
	"errors"

	"leadgate/platform/logger"

	"github.com/google/uuid"
)

const scanPageSize = 500

// Violation reasons reported by the invariant scan.
const (
	ReasonOwnedBySubsidiary = "owned_by_subsidiary"
	ReasonOwnerMismatch     = "owner_mismatch"
	ReasonOrphanedOrigin    = "orphaned_origin"
)

// LeadOwnership is the projection of a persisted lead needed to re-check ownership.
type LeadOwnership struct {
	LeadID           uuid.UUID
	OrganizationID   uuid.UUID
	OrganizationRank Rank
	OriginSiteID     *uuid.UUID
}

// LeadOwnershipLister pages through persisted leads in id order.
type LeadOwnershipLister interface {
	ListLeadOwnership(ctx context.Context, after uuid.UUID, limit int) ([]LeadOwnership, error)
}

// Violation is one lead whose stored owner breaks the accountability invariant.
type Violation struct {
	LeadID                 uuid.UUID  `json:"leadId"`
	OrganizationID         uuid.UUID  `json:"organizationId"`
	ExpectedOrganizationID *uuid.UUID `json:"expectedOrganizationId,omitempty"`
	Reason                 string     `json:"reason"`
}

// InvariantValidator re-checks persisted leads against the ownership rules. It never writes.
type InvariantValidator struct {
	leads    LeadOwnershipLister
	resolver *Resolver
	log      *logger.Logger
}

// NewInvariantValidator creates a validator.
func NewInvariantValidator(leads LeadOwnershipLister, resolver *Resolver, log *logger.Logger) *InvariantValidator {
	return &InvariantValidator{leads: leads, resolver: resolver, log: log}
}

// Scan walks every lead and returns the violations found.
func (v *InvariantValidator) Scan(ctx context.Context) ([]Violation, error) {
	violations := make([]Violation, 0)
	after := uuid.Nil
	scanned := 0

	for {
		page, err := v.leads.ListLeadOwnership(ctx, after, scanPageSize)
		if err != nil {
			return nil, err
		}

		for _, row := range page {
			violation, err := v.check(ctx, row)
			if err != nil {
				return nil, err
			}
			if violation != nil {
				violations = append(violations, *violation)
			}
		}

		scanned += len(page)
		if len(page) < scanPageSize {
			break
		}
		after = page[len(page)-1].LeadID
	}

	if v.log != nil {
		v.log.WithContext(ctx).Info("ownership invariant scan complete", "scanned", scanned, "violations", len(violations))
	}
	return violations, nil
}

func (v *InvariantValidator) check(ctx context.Context, row LeadOwnership) (*Violation, error) {
	if row.OrganizationRank.IsSubsidiary() {
		return &Violation{LeadID: row.LeadID, OrganizationID: row.OrganizationID, Reason: ReasonOwnedBySubsidiary}, nil
	}
	if row.OriginSiteID == nil {
		return nil, nil
	}

	owner, err := v.resolver.ResolveOwner(ctx, *row.OriginSiteID)
	if errors.Is(err, ErrOrphanedSubsidiary) {
		return &Violation{LeadID: row.LeadID, OrganizationID: row.OrganizationID, Reason: ReasonOrphanedOrigin}, nil
	}
	if err != nil {
		return nil, err
	}
	if owner.OrganizationID != row.OrganizationID {
		expected := owner.OrganizationID
		return &Violation{
			LeadID:                 row.LeadID,
			OrganizationID:         row.OrganizationID,
			ExpectedOrganizationID: &expected,
			Reason:                 ReasonOwnerMismatch,
		}, nil
	}
	return nil, nil
}
