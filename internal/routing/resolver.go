package routing

import (
	"context"
	"fmt"

	"leadgate/internal/organizations"
	"leadgate/platform/logger"
	"leadgate/platform/metrics"

	"github.com/google/uuid"
)

// Reader is the read-only reference data the resolver consults.
type Reader interface {
	// ListCandidateTerritories returns active territories owned by active
	// FRANCHISE or BRANCH descendants of rootID that contain postalCode,
	// in creation order.
	ListCandidateTerritories(ctx context.Context, rootID uuid.UUID, postalCode string) ([]Candidate, error)
	ListActiveSites(ctx context.Context, orgID uuid.UUID) ([]organizations.Site, error)
	ListActiveZoneMappings(ctx context.Context, orgID uuid.UUID) ([]ZoneMapping, error)
	GetSiteTarget(ctx context.Context, siteID uuid.UUID) (SiteTarget, error)
	ListHierarchyTerritories(ctx context.Context, rootID uuid.UUID) ([]Territory, error)
}

const (
	outcomeMatched      = "matched"
	outcomeNoMatch      = "no_match"
	outcomeNoActiveSite = "no_active_site"
	outcomeError        = "error"
)

// Resolver finds the site a lead should be dispatched to.
type Resolver struct {
	reader Reader
	log    *logger.Logger
}

// NewResolver creates a new territory resolver.
func NewResolver(reader Reader, log *logger.Logger) *Resolver {
	return &Resolver{reader: reader, log: log}
}

// ResolveTerritory matches postalCode against the territory sets of the
// hierarchy under rootID. When several territories claim the code the first
// in creation order is used and the overlap is logged. A matched
// organization without an active site yields no match.
func (r *Resolver) ResolveTerritory(ctx context.Context, rootID uuid.UUID, postalCode string) (*Match, error) {
	candidates, err := r.reader.ListCandidateTerritories(ctx, rootID, postalCode)
	if err != nil {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismTerritory), outcomeError).Inc()
		return nil, fmt.Errorf("list candidate territories: %w", err)
	}
	if len(candidates) == 0 {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismTerritory), outcomeNoMatch).Inc()
		return nil, nil
	}
	if len(candidates) > 1 {
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID.String())
		}
		r.log.Warn("routing: postal code claimed by several territories",
			"postalCode", postalCode, "rootId", rootID, "territoryIds", ids, "selected", candidates[0].ID)
	}

	chosen := candidates[0]
	sites, err := r.reader.ListActiveSites(ctx, chosen.OrganizationID)
	if err != nil {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismTerritory), outcomeError).Inc()
		return nil, fmt.Errorf("list sites: %w", err)
	}
	site, ok := PreferredSite(sites)
	if !ok {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismTerritory), outcomeNoActiveSite).Inc()
		r.log.Info("routing: matched organization has no active site",
			"territoryId", chosen.ID, "organizationId", chosen.OrganizationID)
		return nil, nil
	}

	metrics.RoutingOutcomes.WithLabelValues(string(MechanismTerritory), outcomeMatched).Inc()
	return &Match{
		Mechanism:        MechanismTerritory,
		RuleID:           chosen.ID,
		OrganizationID:   chosen.OrganizationID,
		OrganizationName: chosen.OrganizationName,
		SiteID:           site.ID,
	}, nil
}

// ResolveZone applies orgID's prefix mappings, longest prefix first.
// A mapping pointing at an inactive site yields no match.
func (r *Resolver) ResolveZone(ctx context.Context, orgID uuid.UUID, postalCode string) (*Match, error) {
	mappings, err := r.reader.ListActiveZoneMappings(ctx, orgID)
	if err != nil {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismZone), outcomeError).Inc()
		return nil, fmt.Errorf("list zone mappings: %w", err)
	}
	mapping, ok := LongestPrefix(mappings, postalCode)
	if !ok {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismZone), outcomeNoMatch).Inc()
		return nil, nil
	}

	target, err := r.reader.GetSiteTarget(ctx, mapping.TargetSiteID)
	if err != nil {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismZone), outcomeError).Inc()
		return nil, fmt.Errorf("get zone target: %w", err)
	}
	if !target.SiteActive {
		metrics.RoutingOutcomes.WithLabelValues(string(MechanismZone), outcomeNoActiveSite).Inc()
		return nil, nil
	}

	metrics.RoutingOutcomes.WithLabelValues(string(MechanismZone), outcomeMatched).Inc()
	return &Match{
		Mechanism:        MechanismZone,
		RuleID:           mapping.ID,
		OrganizationID:   target.OrganizationID,
		OrganizationName: target.OrganizationName,
		SiteID:           target.SiteID,
	}, nil
}

// Route tries territory sets first and falls back to the prefix mappings of
// the hierarchy root. A nil match means the lead stays undispatched.
func (r *Resolver) Route(ctx context.Context, rootID uuid.UUID, postalCode string) (*Match, error) {
	match, err := r.ResolveTerritory(ctx, rootID, postalCode)
	if err != nil || match != nil {
		return match, err
	}
	return r.ResolveZone(ctx, rootID, postalCode)
}

// DetectOverlaps lists postal codes claimed by more than one active
// territory under rootID. Overlaps are a data-quality warning only.
func (r *Resolver) DetectOverlaps(ctx context.Context, rootID uuid.UUID) ([]Overlap, error) {
	territories, err := r.reader.ListHierarchyTerritories(ctx, rootID)
	if err != nil {
		return nil, fmt.Errorf("list hierarchy territories: %w", err)
	}
	return FindOverlaps(territories), nil
}
