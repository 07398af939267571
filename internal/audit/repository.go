package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed Store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts an entry.
func (r *Repository) Append(ctx context.Context, e Entry) (Entry, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO audit_entries (partner_id, organization_id, actor_id, action, before_state, after_state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		e.PartnerID, e.OrganizationID, e.ActorID, e.Action, nullableJSON(e.Before), nullableJSON(e.After),
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("append audit entry: %w", err)
	}
	return e, nil
}

// ListByPartner returns the most recent entries for a partner, newest first.
func (r *Repository) ListByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, partner_id, organization_id, actor_id, action, before_state, after_state, created_at
		FROM audit_entries
		WHERE partner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, partnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	items := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var before, after []byte
		if err := rows.Scan(&e.ID, &e.PartnerID, &e.OrganizationID, &e.ActorID, &e.Action, &before, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Before = before
		e.After = after
		items = append(items, e)
	}
	return items, rows.Err()
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
