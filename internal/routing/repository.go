package routing

import (
	"context"
	"errors"
	"fmt"

	"leadgate/internal/organizations"
	"leadgate/platform/apperr"
	"leadgate/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	territoryNotFoundMsg = "territory not found"
	zoneNotFoundMsg      = "zone mapping not found"
	siteNotFoundMsg      = "site not found"

	zonePrefixConstraint = "zone_mappings_organization_id_prefix_key"
)

// Repository provides database operations for routing reference data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new routing repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// hierarchyCTE expands $1 into itself and all of its descendants.
const hierarchyCTE = `
	WITH RECURSIVE hierarchy AS (
		SELECT id FROM organizations WHERE id = $1
		UNION
		SELECT o.id FROM organizations o JOIN hierarchy h ON o.parent_id = h.id
	)`

const territoryColumns = `t.id, t.organization_id, t.name, t.postal_codes, t.is_exclusive, t.is_active, t.created_at`

func scanTerritory(row pgx.Row, extra ...any) (Territory, error) {
	var t Territory
	dest := append([]any{&t.ID, &t.OrganizationID, &t.Name, &t.PostalCodes, &t.IsExclusive, &t.IsActive, &t.CreatedAt}, extra...)
	err := row.Scan(dest...)
	return t, err
}

func (r *Repository) ListCandidateTerritories(ctx context.Context, rootID uuid.UUID, postalCode string) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, hierarchyCTE+`
		SELECT `+territoryColumns+`, o.name
		FROM territories t
		JOIN organizations o ON o.id = t.organization_id
		WHERE t.organization_id IN (SELECT id FROM hierarchy)
		  AND t.is_active
		  AND o.is_active
		  AND o.rank IN ('FRANCHISE', 'BRANCH')
		  AND $2 = ANY(t.postal_codes)
		ORDER BY t.created_at, t.id`,
		rootID, postalCode,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidate territories: %w", err)
	}
	defer rows.Close()

	items := make([]Candidate, 0)
	for rows.Next() {
		var c Candidate
		t, err := scanTerritory(rows, &c.OrganizationName)
		if err != nil {
			return nil, fmt.Errorf("scan candidate territory: %w", err)
		}
		c.Territory = t
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *Repository) ListHierarchyTerritories(ctx context.Context, rootID uuid.UUID) ([]Territory, error) {
	rows, err := r.pool.Query(ctx, hierarchyCTE+`
		SELECT `+territoryColumns+`
		FROM territories t
		WHERE t.organization_id IN (SELECT id FROM hierarchy)
		ORDER BY t.created_at, t.id`,
		rootID,
	)
	if err != nil {
		return nil, fmt.Errorf("query hierarchy territories: %w", err)
	}
	defer rows.Close()
	return collectTerritories(rows)
}

func (r *Repository) ListActiveSites(ctx context.Context, orgID uuid.UUID) ([]organizations.Site, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, is_headquarters, is_active, created_at
		FROM sites
		WHERE organization_id = $1 AND is_active
		ORDER BY is_headquarters DESC, created_at, id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("query active sites: %w", err)
	}
	defer rows.Close()

	items := make([]organizations.Site, 0)
	for rows.Next() {
		var s organizations.Site
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.IsHeadquarters, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const zoneColumns = `id, organization_id, prefix, target_site_id, is_active, created_at`

func scanZone(row pgx.Row) (ZoneMapping, error) {
	var z ZoneMapping
	err := row.Scan(&z.ID, &z.OrganizationID, &z.Prefix, &z.TargetSiteID, &z.IsActive, &z.CreatedAt)
	return z, err
}

func (r *Repository) ListActiveZoneMappings(ctx context.Context, orgID uuid.UUID) ([]ZoneMapping, error) {
	return r.queryZones(ctx, `SELECT `+zoneColumns+` FROM zone_mappings WHERE organization_id = $1 AND is_active ORDER BY prefix`, orgID)
}

// ListZoneMappings returns every mapping of an organization, active or not.
func (r *Repository) ListZoneMappings(ctx context.Context, orgID uuid.UUID) ([]ZoneMapping, error) {
	return r.queryZones(ctx, `SELECT `+zoneColumns+` FROM zone_mappings WHERE organization_id = $1 ORDER BY prefix`, orgID)
}

func (r *Repository) queryZones(ctx context.Context, query string, args ...any) ([]ZoneMapping, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query zone mappings: %w", err)
	}
	defer rows.Close()

	items := make([]ZoneMapping, 0)
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan zone mapping: %w", err)
		}
		items = append(items, z)
	}
	return items, rows.Err()
}

func (r *Repository) GetSiteTarget(ctx context.Context, siteID uuid.UUID) (SiteTarget, error) {
	var t SiteTarget
	err := r.pool.QueryRow(ctx, `
		SELECT s.id, s.name, s.is_active AND o.is_active, o.id, o.name
		FROM sites s
		JOIN organizations o ON o.id = s.organization_id
		WHERE s.id = $1`,
		siteID,
	).Scan(&t.SiteID, &t.SiteName, &t.SiteActive, &t.OrganizationID, &t.OrganizationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SiteTarget{}, apperr.NotFound(siteNotFoundMsg)
		}
		return SiteTarget{}, fmt.Errorf("get site target: %w", err)
	}
	return t, nil
}

// CreateTerritory inserts a territory.
func (r *Repository) CreateTerritory(ctx context.Context, t Territory) (Territory, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO territories AS t (organization_id, name, postal_codes, is_exclusive, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+territoryColumns,
		t.OrganizationID, t.Name, t.PostalCodes, t.IsExclusive, t.IsActive,
	)
	created, err := scanTerritory(row)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Territory{}, apperr.Validation("organization does not exist")
		}
		return Territory{}, fmt.Errorf("create territory: %w", err)
	}
	return created, nil
}

// ListTerritories returns the territories of one organization.
func (r *Repository) ListTerritories(ctx context.Context, orgID uuid.UUID) ([]Territory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+territoryColumns+`
		FROM territories t
		WHERE t.organization_id = $1
		ORDER BY t.created_at, t.id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list territories: %w", err)
	}
	defer rows.Close()
	return collectTerritories(rows)
}

// SetTerritoryActive toggles a territory in or out of routing.
func (r *Repository) SetTerritoryActive(ctx context.Context, id uuid.UUID, active bool) (Territory, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE territories AS t SET is_active = $2
		WHERE t.id = $1
		RETURNING `+territoryColumns,
		id, active,
	)
	updated, err := scanTerritory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Territory{}, apperr.NotFound(territoryNotFoundMsg)
		}
		return Territory{}, fmt.Errorf("update territory: %w", err)
	}
	return updated, nil
}

// CreateZoneMapping inserts a prefix mapping. A second mapping for the same
// organization and prefix is a conflict.
func (r *Repository) CreateZoneMapping(ctx context.Context, z ZoneMapping) (ZoneMapping, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO zone_mappings (organization_id, prefix, target_site_id, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+zoneColumns,
		z.OrganizationID, z.Prefix, z.TargetSiteID, z.IsActive,
	)
	created, err := scanZone(row)
	if err != nil {
		if db.IsUniqueViolation(err, zonePrefixConstraint) {
			return ZoneMapping{}, apperr.Conflict("a zone mapping already exists for this prefix")
		}
		if db.IsForeignKeyViolation(err) {
			return ZoneMapping{}, apperr.Validation("organization or target site does not exist")
		}
		return ZoneMapping{}, fmt.Errorf("create zone mapping: %w", err)
	}
	return created, nil
}

// SetZoneMappingActive toggles a mapping in or out of routing.
func (r *Repository) SetZoneMappingActive(ctx context.Context, id uuid.UUID, active bool) (ZoneMapping, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE zone_mappings SET is_active = $2
		WHERE id = $1
		RETURNING `+zoneColumns,
		id, active,
	)
	updated, err := scanZone(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ZoneMapping{}, apperr.NotFound(zoneNotFoundMsg)
		}
		return ZoneMapping{}, fmt.Errorf("update zone mapping: %w", err)
	}
	return updated, nil
}

func collectTerritories(rows pgx.Rows) ([]Territory, error) {
	items := make([]Territory, 0)
	for rows.Next() {
		t, err := scanTerritory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan territory: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
