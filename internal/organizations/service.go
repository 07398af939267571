package organizations

import (
	"context"

	"leadgate/platform/apperr"
	"leadgate/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the persistence port of the organizations service.
type Store interface {
	Reader
	LeadOwnershipLister
	CreateOrganization(ctx context.Context, o Organization) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	CreateSite(ctx context.Context, s Site) (Site, error)
	ListSites(ctx context.Context, orgID uuid.UUID) ([]Site, error)
}

// Service provides hierarchy administration.
type Service struct {
	store Store
}

// NewService creates a new organizations service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers an organization. Subsidiaries must name an existing parent
// so ownership resolution can never dead-end.
func (s *Service) Create(ctx context.Context, req CreateOrganizationRequest) (OrganizationResponse, error) {
	if req.Rank.IsSubsidiary() && req.ParentID == nil {
		return OrganizationResponse{}, apperr.Validation("franchise and branch organizations require a parent").
			WithDetails(map[string]string{"field": "parentId"})
	}
	if req.ParentID != nil {
		if _, err := s.store.GetOrganization(ctx, *req.ParentID); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return OrganizationResponse{}, apperr.Validation("parent organization does not exist")
			}
			return OrganizationResponse{}, err
		}
	}

	created, err := s.store.CreateOrganization(ctx, Organization{
		Name:                sanitize.Text(req.Name),
		Rank:                req.Rank,
		ParentID:            req.ParentID,
		AuthorizationNumber: sanitize.TextPtr(req.AuthorizationNumber),
	})
	if err != nil {
		return OrganizationResponse{}, err
	}
	return toOrganizationResponse(created), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (OrganizationResponse, error) {
	o, err := s.store.GetOrganization(ctx, id)
	if err != nil {
		return OrganizationResponse{}, err
	}
	return toOrganizationResponse(o), nil
}

func (s *Service) List(ctx context.Context) ([]OrganizationResponse, error) {
	items, err := s.store.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]OrganizationResponse, 0, len(items))
	for _, o := range items {
		out = append(out, toOrganizationResponse(o))
	}
	return out, nil
}

func (s *Service) CreateSite(ctx context.Context, orgID uuid.UUID, req CreateSiteRequest) (SiteResponse, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	created, err := s.store.CreateSite(ctx, Site{
		OrganizationID: orgID,
		Name:           sanitize.Text(req.Name),
		IsHeadquarters: req.IsHeadquarters,
		IsActive:       active,
	})
	if err != nil {
		return SiteResponse{}, err
	}
	return toSiteResponse(created), nil
}

func (s *Service) ListSites(ctx context.Context, orgID uuid.UUID) ([]SiteResponse, error) {
	items, err := s.store.ListSites(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]SiteResponse, 0, len(items))
	for _, site := range items {
		out = append(out, toSiteResponse(site))
	}
	return out, nil
}
