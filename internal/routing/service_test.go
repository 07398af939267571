package routing

import (
	"context"
	"testing"

	"leadgate/internal/organizations"
	"leadgate/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	territories []Territory
	zones       []ZoneMapping
}

func (m *memoryStore) CreateTerritory(_ context.Context, t Territory) (Territory, error) {
	t.ID = uuid.New()
	m.territories = append(m.territories, t)
	return t, nil
}

func (m *memoryStore) ListTerritories(context.Context, uuid.UUID) ([]Territory, error) {
	return m.territories, nil
}

func (m *memoryStore) SetTerritoryActive(_ context.Context, id uuid.UUID, active bool) (Territory, error) {
	for i := range m.territories {
		if m.territories[i].ID == id {
			m.territories[i].IsActive = active
			return m.territories[i], nil
		}
	}
	return Territory{}, apperr.NotFound(territoryNotFoundMsg)
}

func (m *memoryStore) CreateZoneMapping(_ context.Context, z ZoneMapping) (ZoneMapping, error) {
	for _, existing := range m.zones {
		if existing.OrganizationID == z.OrganizationID && existing.Prefix == z.Prefix {
			return ZoneMapping{}, apperr.Conflict("a zone mapping already exists for this prefix")
		}
	}
	z.ID = uuid.New()
	m.zones = append(m.zones, z)
	return z, nil
}

func (m *memoryStore) ListZoneMappings(context.Context, uuid.UUID) ([]ZoneMapping, error) {
	return m.zones, nil
}

func (m *memoryStore) SetZoneMappingActive(context.Context, uuid.UUID, bool) (ZoneMapping, error) {
	return ZoneMapping{}, nil
}

type orgReader map[uuid.UUID]organizations.Organization

func (r orgReader) GetOrganization(_ context.Context, id uuid.UUID) (organizations.Organization, error) {
	o, ok := r[id]
	if !ok {
		return organizations.Organization{}, apperr.NotFound("organization not found")
	}
	return o, nil
}

func TestCreateTerritoryNormalizesCodes(t *testing.T) {
	franchise := organizations.Organization{ID: uuid.New(), Rank: organizations.RankFranchise}
	svc := NewService(&memoryStore{}, orgReader{franchise.ID: franchise})

	got, err := svc.CreateTerritory(context.Background(), franchise.ID, CreateTerritoryRequest{
		Name:        "<b>Lyon</b>",
		PostalCodes: []string{"69004", "69001", " 69004"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"69001", "69004"}, got.PostalCodes)
	assert.Equal(t, "Lyon", got.Name)
	assert.True(t, got.IsActive)
}

func TestCreateTerritoryRejectsHeadOffice(t *testing.T) {
	head := organizations.Organization{ID: uuid.New(), Rank: organizations.RankHeadOffice}
	svc := NewService(&memoryStore{}, orgReader{head.ID: head})

	_, err := svc.CreateTerritory(context.Background(), head.ID, CreateTerritoryRequest{Name: "All", PostalCodes: []string{"75001"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateZoneMappingDuplicatePrefixConflicts(t *testing.T) {
	head := organizations.Organization{ID: uuid.New(), Rank: organizations.RankHeadOffice}
	svc := NewService(&memoryStore{}, orgReader{head.ID: head})
	req := CreateZoneMappingRequest{Prefix: "69", TargetSiteID: uuid.New()}

	_, err := svc.CreateZoneMapping(context.Background(), head.ID, req)
	require.NoError(t, err)
	_, err = svc.CreateZoneMapping(context.Background(), head.ID, req)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCreateZoneMappingUnknownOrganization(t *testing.T) {
	svc := NewService(&memoryStore{}, orgReader{})

	_, err := svc.CreateZoneMapping(context.Background(), uuid.New(), CreateZoneMappingRequest{Prefix: "69", TargetSiteID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
