package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Layouts accepted for the date fields of a submission.
const (
	DateTimeLayout = time.RFC3339
	DateLayout     = time.DateOnly
)

// SubmitLeadRequest is the partner submission payload.
type SubmitLeadRequest struct {
	FirstName      string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName       string  `json:"lastName" validate:"required,min=1,max=100"`
	Email          string  `json:"email" validate:"required,email,max=254"`
	Phone          string  `json:"phone" validate:"required,phone"`
	Street         string  `json:"street" validate:"required,min=1,max=200"`
	PostalCode     string  `json:"postalCode" validate:"required,postalcode5"`
	City           string  `json:"city" validate:"required,min=1,max=100"`
	DesiredProgram string  `json:"desiredProgram" validate:"required,min=1,max=200"`
	SourceURL      string  `json:"sourceUrl" validate:"required,http_url,max=2048"`
	ConsentAt      string  `json:"consentAt" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	ConsentText    string  `json:"consentText" validate:"required,max=10000"`
	LegalBasis     *string `json:"legalBasis,omitempty" validate:"omitempty,oneof=consent legitimate_interest"`
	Message        *string `json:"message,omitempty" validate:"omitempty,max=5000"`
	ResponseDate   *string `json:"responseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ExternalID     *string `json:"externalId,omitempty" validate:"omitempty,min=1,max=128"`
	OriginSiteID   *string `json:"originSiteId,omitempty" validate:"omitempty,uuid"`
}

// RateLimitMeta is echoed on every response past admission.
type RateLimitMeta struct {
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"resetAt"`
	RetryAfter int       `json:"retryAfter,omitempty"`
}

// SubmitLeadResponse is returned for an accepted submission.
type SubmitLeadResponse struct {
	LeadID                 uuid.UUID        `json:"leadId"`
	Dispatched             bool             `json:"dispatched"`
	TargetOrganizationName *string          `json:"targetOrganizationName,omitempty"`
	Status                 string           `json:"status"`
	QualityScore           *decimal.Decimal `json:"qualityScore,omitempty"`
	QualityGrade           *string          `json:"qualityGrade,omitempty"`
	RateLimit              *RateLimitMeta   `json:"rateLimit,omitempty"`
}

// ConsentResponse is the admin view of a consent record.
type ConsentResponse struct {
	ConsentGiven     bool      `json:"consentGiven"`
	ConsentText      string    `json:"consentText"`
	LegalBasis       string    `json:"legalBasis"`
	CollectionMethod string    `json:"collectionMethod"`
	ConsentedAt      time.Time `json:"consentedAt"`
	RecordedAt       time.Time `json:"recordedAt"`
	IPAddress        *string   `json:"ipAddress,omitempty"`
	UserAgent        *string   `json:"userAgent,omitempty"`
	EvidenceURL      *string   `json:"evidenceUrl,omitempty"`
}

// LeadResponse is the admin view of a lead.
type LeadResponse struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organizationId"`
	PartnerID      *uuid.UUID       `json:"partnerId,omitempty"`
	ExternalID     *string          `json:"externalId,omitempty"`
	OriginSiteID   *uuid.UUID       `json:"originSiteId,omitempty"`
	AssignedSiteID *uuid.UUID       `json:"assignedSiteId,omitempty"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	Street         string           `json:"street"`
	PostalCode     string           `json:"postalCode"`
	City           string           `json:"city"`
	DesiredProgram string           `json:"desiredProgram"`
	SourceURL      string           `json:"sourceUrl"`
	Message        *string          `json:"message,omitempty"`
	ResponseDate   *string          `json:"responseDate,omitempty"`
	QualityScore   *decimal.Decimal `json:"qualityScore,omitempty"`
	QualityGrade   *string          `json:"qualityGrade,omitempty"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	Consent        *ConsentResponse `json:"consent,omitempty"`
}
