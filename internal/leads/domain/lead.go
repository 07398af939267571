// Package domain holds the lead aggregate shared by the leads layers.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the pipeline status of a lead.
type Status string

const (
	StatusNew          Status = "NEW"
	StatusDispatched   Status = "DISPATCHED"
	StatusUndispatched Status = "UNDISPATCHED"
)

// Grade buckets the quality score for partners.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

var (
	gradeAThreshold = decimal.NewFromInt(80)
	gradeBThreshold = decimal.NewFromInt(60)
	gradeCThreshold = decimal.NewFromInt(40)
)

// GradeFor maps a 0-100 score onto a grade.
func GradeFor(score decimal.Decimal) Grade {
	switch {
	case score.GreaterThanOrEqual(gradeAThreshold):
		return GradeA
	case score.GreaterThanOrEqual(gradeBThreshold):
		return GradeB
	case score.GreaterThanOrEqual(gradeCThreshold):
		return GradeC
	default:
		return GradeD
	}
}

// Lead is a candidate submitted by a partner. Identity fields are immutable
// once inserted; only status, assigned site and score change afterwards.
type Lead struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PartnerID      *uuid.UUID
	ExternalID     *string
	OriginSiteID   *uuid.UUID
	AssignedSiteID *uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Street         string
	PostalCode     string
	City           string
	DesiredProgram string
	SourceURL      string
	Message        *string
	ResponseDate   *time.Time
	QualityScore   *decimal.Decimal
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Legal bases accepted for processing candidate data.
const (
	LegalBasisConsent            = "consent"
	LegalBasisLegitimateInterest = "legitimate_interest"
)

// CollectionMethodPartnerAPI marks consent collected by a partner and
// relayed through the submission endpoint.
const CollectionMethodPartnerAPI = "partner_api"

// Consent is the evidentiary record stored alongside every lead. It is
// never updated after insert.
type Consent struct {
	LeadID           uuid.UUID
	ConsentGiven     bool
	ConsentText      string
	LegalBasis       string
	CollectionMethod string
	ConsentedAt      time.Time
	RecordedAt       time.Time
	IPAddress        *string
	UserAgent        *string
}
