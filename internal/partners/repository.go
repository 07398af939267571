package partners

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadgate/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const partnerNotFoundMsg = "partner not found"

// ErrPartnerNotFound is returned by credential lookups that match no active partner.
var ErrPartnerNotFound = errors.New("partner not found")

// Repository provides database operations for partners.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new partners repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const partnerSelect = `
	SELECT p.id, p.sponsor_organization_id, p.name, p.status, p.key_hash, p.key_prefix,
		p.hourly_limit, p.contract_signed_at, p.contract_expires_at, p.dpa_signed_at,
		p.submission_count, p.created_at, p.updated_at,
		q.certified, q.certificate_number, q.expires_at, q.evaluated_at
	FROM partners p
	LEFT JOIN partner_qualifications q ON q.partner_id = p.id`

func scanPartner(row pgx.Row) (Partner, error) {
	var p Partner
	var status string
	var certified *bool
	var certificateNumber *string
	var qualExpires, evaluatedAt *time.Time

	err := row.Scan(
		&p.ID, &p.SponsorOrganizationID, &p.Name, &status, &p.KeyHash, &p.KeyPrefix,
		&p.HourlyLimit, &p.ContractSignedAt, &p.ContractExpiresAt, &p.DPASignedAt,
		&p.SubmissionCount, &p.CreatedAt, &p.UpdatedAt,
		&certified, &certificateNumber, &qualExpires, &evaluatedAt,
	)
	if err != nil {
		return Partner{}, err
	}
	p.Status = Status(status)
	if certified != nil {
		p.Qualification = &Qualification{
			Certified:         *certified,
			CertificateNumber: certificateNumber,
			ExpiresAt:         qualExpires,
		}
		if evaluatedAt != nil {
			p.Qualification.EvaluatedAt = *evaluatedAt
		}
	}
	return p, nil
}

// Create inserts a PENDING partner without a credential.
func (r *Repository) Create(ctx context.Context, p Partner) (Partner, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO partners (sponsor_organization_id, name, status, hourly_limit)
		VALUES ($1, $2, 'PENDING', $3)
		RETURNING id`,
		p.SponsorOrganizationID, p.Name, p.HourlyLimit,
	).Scan(&id)
	if err != nil {
		return Partner{}, fmt.Errorf("create partner: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a partner by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx, partnerSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, apperr.NotFound(partnerNotFoundMsg)
		}
		return Partner{}, fmt.Errorf("get partner: %w", err)
	}
	return p, nil
}

// GetActiveByKeyHash looks up an ACTIVE partner by credential digest.
func (r *Repository) GetActiveByKeyHash(ctx context.Context, keyHash string) (Partner, error) {
	p, err := scanPartner(r.pool.QueryRow(ctx, partnerSelect+` WHERE p.key_hash = $1 AND p.status = 'ACTIVE'`, keyHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, ErrPartnerNotFound
		}
		return Partner{}, fmt.Errorf("get partner by key: %w", err)
	}
	return p, nil
}

// List returns partners, optionally filtered by sponsor.
func (r *Repository) List(ctx context.Context, sponsorID *uuid.UUID) ([]Partner, error) {
	rows, err := r.pool.Query(ctx, partnerSelect+`
		WHERE ($1::uuid IS NULL OR p.sponsor_organization_id = $1)
		ORDER BY p.created_at DESC, p.id`, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	items := make([]Partner, 0)
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// RecordAgreements stores the contract and data-processing agreement timestamps.
// Nil arguments leave the stored value unchanged.
func (r *Repository) RecordAgreements(ctx context.Context, id uuid.UUID, contractSignedAt, contractExpiresAt, dpaSignedAt *time.Time) (Partner, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE partners SET
			contract_signed_at = COALESCE($2, contract_signed_at),
			contract_expires_at = COALESCE($3, contract_expires_at),
			dpa_signed_at = COALESCE($4, dpa_signed_at),
			updated_at = now()
		WHERE id = $1`,
		id, contractSignedAt, contractExpiresAt, dpaSignedAt,
	)
	if err != nil {
		return Partner{}, fmt.Errorf("record partner agreements: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Partner{}, apperr.NotFound(partnerNotFoundMsg)
	}
	return r.GetByID(ctx, id)
}

// UpsertQualification replaces the qualification snapshot.
func (r *Repository) UpsertQualification(ctx context.Context, id uuid.UUID, q Qualification) (Partner, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO partner_qualifications (partner_id, certified, certificate_number, expires_at, evaluated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (partner_id) DO UPDATE SET
			certified = EXCLUDED.certified,
			certificate_number = EXCLUDED.certificate_number,
			expires_at = EXCLUDED.expires_at,
			evaluated_at = EXCLUDED.evaluated_at`,
		id, q.Certified, q.CertificateNumber, q.ExpiresAt,
	)
	if err != nil {
		return Partner{}, fmt.Errorf("upsert partner qualification: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Activate stores a freshly minted credential digest and marks the partner ACTIVE.
func (r *Repository) Activate(ctx context.Context, id uuid.UUID, keyHash, keyPrefix string) (Partner, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE partners SET status = 'ACTIVE', key_hash = $2, key_prefix = $3, updated_at = now()
		WHERE id = $1`,
		id, keyHash, keyPrefix,
	)
	if err != nil {
		return Partner{}, fmt.Errorf("activate partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Partner{}, apperr.NotFound(partnerNotFoundMsg)
	}
	return r.GetByID(ctx, id)
}

// Suspend revokes the partner's credential and marks it SUSPENDED.
func (r *Repository) Suspend(ctx context.Context, id uuid.UUID) (Partner, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE partners SET status = 'SUSPENDED', key_hash = NULL, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return Partner{}, fmt.Errorf("suspend partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Partner{}, apperr.NotFound(partnerNotFoundMsg)
	}
	return r.GetByID(ctx, id)
}
