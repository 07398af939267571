package repository

import (
	"context"
	"errors"
	"fmt"

	"leadgate/internal/leads/domain"
	"leadgate/platform/apperr"
	"leadgate/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	leadNotFoundMsg    = "lead not found"
	consentNotFoundMsg = "consent record not found"

	// ExternalIDConstraint backs the per-partner duplicate guard.
	ExternalIDConstraint = "idx_leads_partner_external"
)

// ErrDuplicateExternalID is returned when a partner reuses an external id.
var ErrDuplicateExternalID = errors.New("external id already submitted")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Run executes fn in a transaction. The transaction commits only when fn
// returns nil.
func (r *Repository) Run(ctx context.Context, fn func(w LeadWriter) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txWriter{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type txWriter struct {
	tx pgx.Tx
}

const leadColumns = `id, organization_id, partner_id, external_id, origin_site_id, assigned_site_id,
	first_name, last_name, email, phone, street, postal_code, city, desired_program, source_url,
	message, response_date, quality_score, status, created_at, updated_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	var score decimal.NullDecimal
	var status string
	err := row.Scan(
		&l.ID, &l.OrganizationID, &l.PartnerID, &l.ExternalID, &l.OriginSiteID, &l.AssignedSiteID,
		&l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Street, &l.PostalCode, &l.City, &l.DesiredProgram, &l.SourceURL,
		&l.Message, &l.ResponseDate, &score, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if score.Valid {
		l.QualityScore = &score.Decimal
	}
	l.Status = domain.Status(status)
	return l, err
}

func (w *txWriter) InsertLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	row := w.tx.QueryRow(ctx, `
		INSERT INTO leads (
			organization_id, partner_id, external_id, origin_site_id,
			first_name, last_name, email, phone, street, postal_code, city,
			desired_program, source_url, message, response_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+leadColumns,
		l.OrganizationID, l.PartnerID, l.ExternalID, l.OriginSiteID,
		l.FirstName, l.LastName, l.Email, l.Phone, l.Street, l.PostalCode, l.City,
		l.DesiredProgram, l.SourceURL, l.Message, l.ResponseDate, string(domain.StatusNew),
	)
	created, err := scanLead(row)
	if err != nil {
		if db.IsUniqueViolation(err, ExternalIDConstraint) {
			return domain.Lead{}, ErrDuplicateExternalID
		}
		return domain.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return created, nil
}

func (w *txWriter) InsertConsent(ctx context.Context, c domain.Consent) error {
	_, err := w.tx.Exec(ctx, `
		INSERT INTO lead_consents (
			lead_id, consent_given, consent_text, legal_basis, collection_method,
			consented_at, ip_address, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.LeadID, c.ConsentGiven, c.ConsentText, c.LegalBasis, c.CollectionMethod,
		c.ConsentedAt, c.IPAddress, c.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert consent: %w", err)
	}
	return nil
}

func (w *txWriter) IncrementPartnerSubmissions(ctx context.Context, partnerID uuid.UUID) error {
	tag, err := w.tx.Exec(ctx, `
		UPDATE partners SET submission_count = submission_count + 1, updated_at = now()
		WHERE id = $1`,
		partnerID,
	)
	if err != nil {
		return fmt.Errorf("increment partner submissions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment partner submissions: partner %s not found", partnerID)
	}
	return nil
}

func (r *Repository) UpdateScore(ctx context.Context, id uuid.UUID, score decimal.Decimal) error {
	return r.exec(ctx, "update score", `UPDATE leads SET quality_score = $2, updated_at = now() WHERE id = $1`, id, score)
}

// AssignSite records the dispatch target. The owning organization is left untouched.
func (r *Repository) AssignSite(ctx context.Context, id uuid.UUID, siteID uuid.UUID) error {
	return r.exec(ctx, "assign site", `
		UPDATE leads SET assigned_site_id = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, siteID, string(domain.StatusDispatched),
	)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	return r.exec(ctx, "update status", `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
}

func (r *Repository) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	l, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, apperr.NotFound(leadNotFoundMsg)
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

func (r *Repository) GetConsent(ctx context.Context, leadID uuid.UUID) (domain.Consent, error) {
	var c domain.Consent
	err := r.pool.QueryRow(ctx, `
		SELECT lead_id, consent_given, consent_text, legal_basis, collection_method,
			consented_at, recorded_at, ip_address, user_agent
		FROM lead_consents WHERE lead_id = $1`,
		leadID,
	).Scan(&c.LeadID, &c.ConsentGiven, &c.ConsentText, &c.LegalBasis, &c.CollectionMethod,
		&c.ConsentedAt, &c.RecordedAt, &c.IPAddress, &c.UserAgent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Consent{}, apperr.NotFound(consentNotFoundMsg)
		}
		return domain.Consent{}, fmt.Errorf("get consent: %w", err)
	}
	return c, nil
}

func (r *Repository) ExistsByExternalID(ctx context.Context, partnerID uuid.UUID, externalID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leads WHERE partner_id = $1 AND external_id = $2)`,
		partnerID, externalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check external id: %w", err)
	}
	return exists, nil
}

var _ Store = (*Repository)(nil)
