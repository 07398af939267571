// Package evidence archives consent evidence snapshots to object storage so
// the proof of consent survives independently of the database.
package evidence

import (
	"context"
	"path"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the consent evidence captured at ingestion.
type Snapshot struct {
	LeadID           uuid.UUID `json:"leadId"`
	OrganizationID   uuid.UUID `json:"organizationId"`
	PartnerID        uuid.UUID `json:"partnerId"`
	ConsentGiven     bool      `json:"consentGiven"`
	ConsentText      string    `json:"consentText"`
	LegalBasis       string    `json:"legalBasis"`
	CollectionMethod string    `json:"collectionMethod"`
	ConsentedAt      time.Time `json:"consentedAt"`
	RecordedAt       time.Time `json:"recordedAt"`
	SourceURL        string    `json:"sourceUrl"`
	IPAddress        *string   `json:"ipAddress,omitempty"`
	UserAgent        *string   `json:"userAgent,omitempty"`
}

// Archiver stores and retrieves consent evidence.
type Archiver interface {
	// Archive uploads the snapshot and returns its object key.
	Archive(ctx context.Context, snap Snapshot) (string, error)
	// DownloadURL returns a short-lived link to the archived snapshot, or ""
	// when archiving is disabled.
	DownloadURL(ctx context.Context, orgID, leadID uuid.UUID) (string, error)
}

// ObjectKey is the deterministic location of a lead's evidence.
func ObjectKey(orgID, leadID uuid.UUID) string {
	return path.Join(orgID.String(), leadID.String(), "consent.json")
}

// NopArchiver is used when object storage is not configured.
type NopArchiver struct{}

func (NopArchiver) Archive(context.Context, Snapshot) (string, error) { return "", nil }

func (NopArchiver) DownloadURL(context.Context, uuid.UUID, uuid.UUID) (string, error) {
	return "", nil
}
