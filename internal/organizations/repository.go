package organizations

import (
	"context"
	"errors"
	"fmt"

	"leadgate/platform/apperr"
	"leadgate/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	organizationNotFoundMsg = "organization not found"
	siteNotFoundMsg         = "site not found"
)

// Repository provides database operations for organizations and sites.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const organizationColumns = `id, name, rank, parent_id, authorization_number, is_active, created_at, updated_at`

func scanOrganization(row pgx.Row) (Organization, error) {
	var o Organization
	var rank string
	err := row.Scan(&o.ID, &o.Name, &rank, &o.ParentID, &o.AuthorizationNumber, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	o.Rank = Rank(rank)
	return o, err
}

// CreateOrganization inserts a new organization.
func (r *Repository) CreateOrganization(ctx context.Context, o Organization) (Organization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, rank, parent_id, authorization_number)
		VALUES ($1, $2, $3, $4)
		RETURNING `+organizationColumns,
		o.Name, string(o.Rank), o.ParentID, o.AuthorizationNumber,
	)
	created, err := scanOrganization(row)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Organization{}, apperr.Validation("parent organization does not exist")
		}
		return Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return created, nil
}

// GetOrganization retrieves an organization by id.
func (r *Repository) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, apperr.NotFound(organizationNotFoundMsg)
		}
		return Organization{}, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

// ListOrganizations returns all organizations ordered by name.
func (r *Repository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	items := make([]Organization, 0)
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const siteColumns = `id, organization_id, name, is_headquarters, is_active, created_at`

func scanSite(row pgx.Row) (Site, error) {
	var s Site
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.IsHeadquarters, &s.IsActive, &s.CreatedAt)
	return s, err
}

// CreateSite inserts a site for an existing organization.
func (r *Repository) CreateSite(ctx context.Context, s Site) (Site, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sites (organization_id, name, is_headquarters, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+siteColumns,
		s.OrganizationID, s.Name, s.IsHeadquarters, s.IsActive,
	)
	created, err := scanSite(row)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Site{}, apperr.NotFound(organizationNotFoundMsg)
		}
		return Site{}, fmt.Errorf("create site: %w", err)
	}
	return created, nil
}

// GetSite retrieves a site by id.
func (r *Repository) GetSite(ctx context.Context, id uuid.UUID) (Site, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id)
	s, err := scanSite(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, apperr.NotFound(siteNotFoundMsg)
		}
		return Site{}, fmt.Errorf("get site: %w", err)
	}
	return s, nil
}

// ListSites returns the sites of an organization, headquarters first.
func (r *Repository) ListSites(ctx context.Context, orgID uuid.UUID) ([]Site, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+siteColumns+` FROM sites
		WHERE organization_id = $1
		ORDER BY is_headquarters DESC, created_at, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	items := make([]Site, 0)
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// ListLeadOwnership pages through leads after the given id.
func (r *Repository) ListLeadOwnership(ctx context.Context, after uuid.UUID, limit int) ([]LeadOwnership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.organization_id, o.rank, l.origin_site_id
		FROM leads l
		JOIN organizations o ON o.id = l.organization_id
		WHERE l.id > $1
		ORDER BY l.id
		LIMIT $2`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list lead ownership: %w", err)
	}
	defer rows.Close()

	items := make([]LeadOwnership, 0, limit)
	for rows.Next() {
		var item LeadOwnership
		var rank string
		if err := rows.Scan(&item.LeadID, &item.OrganizationID, &rank, &item.OriginSiteID); err != nil {
			return nil, fmt.Errorf("scan lead ownership: %w", err)
		}
		item.OrganizationRank = Rank(rank)
		items = append(items, item)
	}
	return items, rows.Err()
}
