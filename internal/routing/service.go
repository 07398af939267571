package routing

import (
	"context"
	"sort"
	"strings"

	"leadgate/internal/organizations"
	"leadgate/platform/apperr"
	"leadgate/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the persistence port for reference data administration.
type Store interface {
	CreateTerritory(ctx context.Context, t Territory) (Territory, error)
	ListTerritories(ctx context.Context, orgID uuid.UUID) ([]Territory, error)
	SetTerritoryActive(ctx context.Context, id uuid.UUID, active bool) (Territory, error)
	CreateZoneMapping(ctx context.Context, z ZoneMapping) (ZoneMapping, error)
	ListZoneMappings(ctx context.Context, orgID uuid.UUID) ([]ZoneMapping, error)
	SetZoneMappingActive(ctx context.Context, id uuid.UUID, active bool) (ZoneMapping, error)
}

// OrganizationReader looks up territory owners.
type OrganizationReader interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (organizations.Organization, error)
}

// Service administers territories and zone mappings.
type Service struct {
	store Store
	orgs  OrganizationReader
}

// NewService creates a new routing service.
func NewService(store Store, orgs OrganizationReader) *Service {
	return &Service{store: store, orgs: orgs}
}

// CreateTerritory registers a postal-code set for a franchise or branch.
// Only those ranks take part in territory matching.
func (s *Service) CreateTerritory(ctx context.Context, orgID uuid.UUID, req CreateTerritoryRequest) (Territory, error) {
	org, err := s.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return Territory{}, err
	}
	if !org.Rank.IsSubsidiary() {
		return Territory{}, apperr.Validation("territories can only be owned by franchise or branch organizations")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.store.CreateTerritory(ctx, Territory{
		OrganizationID: orgID,
		Name:           sanitize.Text(req.Name),
		PostalCodes:    normalizeCodes(req.PostalCodes),
		IsExclusive:    req.IsExclusive,
		IsActive:       active,
	})
}

func (s *Service) ListTerritories(ctx context.Context, orgID uuid.UUID) ([]Territory, error) {
	return s.store.ListTerritories(ctx, orgID)
}

func (s *Service) SetTerritoryActive(ctx context.Context, id uuid.UUID, active bool) (Territory, error) {
	return s.store.SetTerritoryActive(ctx, id, active)
}

func (s *Service) CreateZoneMapping(ctx context.Context, orgID uuid.UUID, req CreateZoneMappingRequest) (ZoneMapping, error) {
	if _, err := s.orgs.GetOrganization(ctx, orgID); err != nil {
		return ZoneMapping{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.store.CreateZoneMapping(ctx, ZoneMapping{
		OrganizationID: orgID,
		Prefix:         req.Prefix,
		TargetSiteID:   req.TargetSiteID,
		IsActive:       active,
	})
}

func (s *Service) ListZoneMappings(ctx context.Context, orgID uuid.UUID) ([]ZoneMapping, error) {
	return s.store.ListZoneMappings(ctx, orgID)
}

func (s *Service) SetZoneMappingActive(ctx context.Context, id uuid.UUID, active bool) (ZoneMapping, error) {
	return s.store.SetZoneMappingActive(ctx, id, active)
}

// normalizeCodes trims, deduplicates and sorts postal codes.
func normalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
