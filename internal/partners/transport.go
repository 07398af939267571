package partners

import (
	"time"

	"github.com/google/uuid"
)

type CreatePartnerRequest struct {
	SponsorOrganizationID uuid.UUID `json:"sponsorOrganizationId" validate:"required"`
	Name                  string    `json:"name" validate:"required,min=1,max=200"`
	HourlyLimit           *int      `json:"hourlyLimit,omitempty" validate:"omitempty,min=1,max=100000"`
}

type RecordAgreementsRequest struct {
	ContractSignedAt  *time.Time `json:"contractSignedAt,omitempty"`
	ContractExpiresAt *time.Time `json:"contractExpiresAt,omitempty"`
	DPASignedAt       *time.Time `json:"dpaSignedAt,omitempty"`
}

type RecordQualificationRequest struct {
	Certified         bool       `json:"certified"`
	CertificateNumber *string    `json:"certificateNumber,omitempty" validate:"omitempty,max=64"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
}

type PartnerResponse struct {
	ID                    uuid.UUID      `json:"id"`
	SponsorOrganizationID uuid.UUID      `json:"sponsorOrganizationId"`
	Name                  string         `json:"name"`
	Status                Status         `json:"status"`
	KeyPrefix             *string        `json:"keyPrefix,omitempty"`
	HourlyLimit           int            `json:"hourlyLimit"`
	ContractSignedAt      *time.Time     `json:"contractSignedAt,omitempty"`
	ContractExpiresAt     *time.Time     `json:"contractExpiresAt,omitempty"`
	DPASignedAt           *time.Time     `json:"dpaSignedAt,omitempty"`
	SubmissionCount       int64          `json:"submissionCount"`
	Qualification         *Qualification `json:"qualification,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
}

// ActivationResponse carries the plaintext credential. It is shown exactly once.
type ActivationResponse struct {
	Partner    PartnerResponse `json:"partner"`
	Credential string          `json:"credential"`
}

func toPartnerResponse(p Partner) PartnerResponse {
	return PartnerResponse{
		ID:                    p.ID,
		SponsorOrganizationID: p.SponsorOrganizationID,
		Name:                  p.Name,
		Status:                p.Status,
		KeyPrefix:             p.KeyPrefix,
		HourlyLimit:           p.HourlyLimit,
		ContractSignedAt:      p.ContractSignedAt,
		ContractExpiresAt:     p.ContractExpiresAt,
		DPASignedAt:           p.DPASignedAt,
		SubmissionCount:       p.SubmissionCount,
		Qualification:         p.Qualification,
		CreatedAt:             p.CreatedAt,
	}
}

// auditView is the partner state recorded in audit snapshots. It omits the key digest.
type auditView struct {
	Status            Status     `json:"status"`
	HourlyLimit       int        `json:"hourlyLimit"`
	KeyPrefix         *string    `json:"keyPrefix,omitempty"`
	ContractSignedAt  *time.Time `json:"contractSignedAt,omitempty"`
	ContractExpiresAt *time.Time `json:"contractExpiresAt,omitempty"`
	DPASignedAt       *time.Time `json:"dpaSignedAt,omitempty"`
	Certified         *bool      `json:"certified,omitempty"`
}

func toAuditView(p Partner) auditView {
	v := auditView{
		Status:            p.Status,
		HourlyLimit:       p.HourlyLimit,
		KeyPrefix:         p.KeyPrefix,
		ContractSignedAt:  p.ContractSignedAt,
		ContractExpiresAt: p.ContractExpiresAt,
		DPASignedAt:       p.DPASignedAt,
	}
	if p.Qualification != nil {
		certified := p.Qualification.Certified
		v.Certified = &certified
	}
	return v
}
