// Package partners manages external lead suppliers: their agreements,
// credentials and qualification snapshot, and authenticates their requests.
package partners

import (
	"time"

	"github.com/google/uuid"
)

// Status is the partner lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Qualification is the 1:1 quality qualification snapshot of a partner.
type Qualification struct {
	Certified         bool       `json:"certified"`
	CertificateNumber *string    `json:"certificateNumber,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	EvaluatedAt       time.Time  `json:"evaluatedAt"`
}

// Partner is an external system allowed to submit leads on behalf of a
// sponsoring head office. The credential is only ever stored as a digest.
type Partner struct {
	ID                    uuid.UUID
	SponsorOrganizationID uuid.UUID
	Name                  string
	Status                Status
	KeyHash               *string
	KeyPrefix             *string
	HourlyLimit           int
	ContractSignedAt      *time.Time
	ContractExpiresAt     *time.Time
	DPASignedAt           *time.Time
	SubmissionCount       int64
	Qualification         *Qualification
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsActive reports whether the partner may submit.
func (p Partner) IsActive() bool {
	return p.Status == StatusActive
}
