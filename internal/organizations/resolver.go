package organizations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Reader is the read side the resolver needs.
type Reader interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error)
	GetSite(ctx context.Context, id uuid.UUID) (Site, error)
}

// Resolver finds the legally accountable organization. It only reads and
// is safe to call repeatedly.
type Resolver struct {
	reader Reader
}

// NewResolver creates a resolver over reader.
func NewResolver(reader Reader) *Resolver {
	return &Resolver{reader: reader}
}

// ResolveOwner resolves the owner for a record originating at siteID.
// The walk is exactly one level: a subsidiary's parent owns the record,
// any other rank owns its own records.
func (r *Resolver) ResolveOwner(ctx context.Context, siteID uuid.UUID) (Ownership, error) {
	site, err := r.reader.GetSite(ctx, siteID)
	if err != nil {
		return Ownership{}, err
	}
	return r.ResolveOrganizationOwner(ctx, site.OrganizationID)
}

// ResolveOrganizationOwner applies the same one-level walk starting from an organization.
func (r *Resolver) ResolveOrganizationOwner(ctx context.Context, orgID uuid.UUID) (Ownership, error) {
	org, err := r.reader.GetOrganization(ctx, orgID)
	if err != nil {
		return Ownership{}, err
	}

	if !org.Rank.IsSubsidiary() {
		return Ownership{
			OrganizationID:      org.ID,
			AuthorizationNumber: org.AuthorizationNumber,
		}, nil
	}

	if org.ParentID == nil {
		return Ownership{}, fmt.Errorf("organization %s (%s): %w", org.ID, org.Rank, ErrOrphanedSubsidiary)
	}

	parent, err := r.reader.GetOrganization(ctx, *org.ParentID)
	if err != nil {
		return Ownership{}, fmt.Errorf("resolve parent of %s: %w", org.ID, err)
	}

	return Ownership{
		OrganizationID:      parent.ID,
		AuthorizationNumber: parent.AuthorizationNumber,
		WasResolved:         true,
	}, nil
}
