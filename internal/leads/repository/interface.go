package repository

import (
	"context"

	"leadgate/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadWriter holds the writes that must commit together.
type LeadWriter interface {
	InsertLead(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	InsertConsent(ctx context.Context, consent domain.Consent) error
	IncrementPartnerSubmissions(ctx context.Context, partnerID uuid.UUID) error
}

// TxRunner runs fn inside one transaction. Any error from fn rolls back
// every write made through the LeadWriter it was given.
type TxRunner interface {
	Run(ctx context.Context, fn func(w LeadWriter) error) error
}

// LeadUpdater holds the post-commit mutations.
type LeadUpdater interface {
	UpdateScore(ctx context.Context, id uuid.UUID, score decimal.Decimal) error
	AssignSite(ctx context.Context, id uuid.UUID, siteID uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
}

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetConsent(ctx context.Context, leadID uuid.UUID) (domain.Consent, error)
	ExistsByExternalID(ctx context.Context, partnerID uuid.UUID, externalID string) (bool, error)
}

// Store composes everything the ingestion service needs.
type Store interface {
	TxRunner
	LeadUpdater
	LeadReader
}
