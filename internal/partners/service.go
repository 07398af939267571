package partners

import (
	"context"
	"time"

	"leadgate/internal/audit"
	"leadgate/internal/organizations"
	"leadgate/platform/apperr"
	"leadgate/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the persistence port of the partner registry.
type Store interface {
	Create(ctx context.Context, p Partner) (Partner, error)
	GetByID(ctx context.Context, id uuid.UUID) (Partner, error)
	List(ctx context.Context, sponsorID *uuid.UUID) ([]Partner, error)
	RecordAgreements(ctx context.Context, id uuid.UUID, contractSignedAt, contractExpiresAt, dpaSignedAt *time.Time) (Partner, error)
	UpsertQualification(ctx context.Context, id uuid.UUID, q Qualification) (Partner, error)
	Activate(ctx context.Context, id uuid.UUID, keyHash, keyPrefix string) (Partner, error)
	Suspend(ctx context.Context, id uuid.UUID) (Partner, error)
}

// OrganizationReader resolves sponsoring organizations.
type OrganizationReader interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (organizations.Organization, error)
}

// AuditRecorder is the audit side channel.
type AuditRecorder interface {
	RecordAsync(ctx context.Context, entry audit.Entry)
}

// Service provides the partner lifecycle: PENDING on creation, agreements
// recorded off-system, ACTIVE once an operator mints the credential.
type Service struct {
	store        Store
	orgs         OrganizationReader
	audit        AuditRecorder
	defaultLimit int
}

// NewService creates a new partners service.
func NewService(store Store, orgs OrganizationReader, auditor AuditRecorder, defaultLimit int) *Service {
	if defaultLimit < 1 {
		defaultLimit = 100
	}
	return &Service{store: store, orgs: orgs, audit: auditor, defaultLimit: defaultLimit}
}

func (s *Service) Create(ctx context.Context, req CreatePartnerRequest) (PartnerResponse, error) {
	sponsor, err := s.orgs.GetOrganization(ctx, req.SponsorOrganizationID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return PartnerResponse{}, apperr.Validation("sponsoring organization does not exist")
		}
		return PartnerResponse{}, err
	}
	if sponsor.Rank != organizations.RankHeadOffice {
		return PartnerResponse{}, apperr.Validation("partners must be sponsored by a head office")
	}

	limit := s.defaultLimit
	if req.HourlyLimit != nil {
		limit = *req.HourlyLimit
	}

	created, err := s.store.Create(ctx, Partner{
		SponsorOrganizationID: sponsor.ID,
		Name:                  sanitize.Text(req.Name),
		HourlyLimit:           limit,
	})
	if err != nil {
		return PartnerResponse{}, err
	}

	s.record(ctx, created, audit.ActionPartnerCreated, nil, toAuditView(created))
	return toPartnerResponse(created), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (PartnerResponse, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PartnerResponse{}, err
	}
	return toPartnerResponse(p), nil
}

func (s *Service) List(ctx context.Context, sponsorID *uuid.UUID) ([]PartnerResponse, error) {
	items, err := s.store.List(ctx, sponsorID)
	if err != nil {
		return nil, err
	}
	out := make([]PartnerResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPartnerResponse(p))
	}
	return out, nil
}

func (s *Service) RecordAgreements(ctx context.Context, id uuid.UUID, req RecordAgreementsRequest) (PartnerResponse, error) {
	if req.ContractSignedAt == nil && req.ContractExpiresAt == nil && req.DPASignedAt == nil {
		return PartnerResponse{}, apperr.Validation("at least one agreement timestamp is required")
	}
	if req.ContractSignedAt != nil && req.ContractExpiresAt != nil && !req.ContractExpiresAt.After(*req.ContractSignedAt) {
		return PartnerResponse{}, apperr.Validation("contract expiry must be after signature")
	}

	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PartnerResponse{}, err
	}
	updated, err := s.store.RecordAgreements(ctx, id, req.ContractSignedAt, req.ContractExpiresAt, req.DPASignedAt)
	if err != nil {
		return PartnerResponse{}, err
	}

	s.record(ctx, updated, audit.ActionPartnerAgreementsRecorded, toAuditView(before), toAuditView(updated))
	return toPartnerResponse(updated), nil
}

func (s *Service) RecordQualification(ctx context.Context, id uuid.UUID, req RecordQualificationRequest) (PartnerResponse, error) {
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PartnerResponse{}, err
	}
	updated, err := s.store.UpsertQualification(ctx, id, Qualification{
		Certified:         req.Certified,
		CertificateNumber: sanitize.TextPtr(req.CertificateNumber),
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		return PartnerResponse{}, err
	}

	s.record(ctx, updated, audit.ActionPartnerQualified, toAuditView(before), toAuditView(updated))
	return toPartnerResponse(updated), nil
}

// Activate mints a credential for a partner whose agreements are on file.
// A previously issued credential is replaced.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (ActivationResponse, error) {
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return ActivationResponse{}, err
	}
	if before.DPASignedAt == nil || before.ContractSignedAt == nil {
		return ActivationResponse{}, apperr.Conflict("contract and data-processing agreement must be signed before activation")
	}

	plaintext, hash, prefix, err := GenerateCredential()
	if err != nil {
		return ActivationResponse{}, apperr.Wrap(apperr.KindInternal, "failed to generate credential", err)
	}

	activated, err := s.store.Activate(ctx, id, hash, prefix)
	if err != nil {
		return ActivationResponse{}, err
	}

	s.record(ctx, activated, audit.ActionPartnerActivated, toAuditView(before), toAuditView(activated))
	return ActivationResponse{Partner: toPartnerResponse(activated), Credential: plaintext}, nil
}

func (s *Service) Suspend(ctx context.Context, id uuid.UUID) (PartnerResponse, error) {
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PartnerResponse{}, err
	}
	suspended, err := s.store.Suspend(ctx, id)
	if err != nil {
		return PartnerResponse{}, err
	}

	s.record(ctx, suspended, audit.ActionPartnerSuspended, toAuditView(before), toAuditView(suspended))
	return toPartnerResponse(suspended), nil
}

func (s *Service) record(ctx context.Context, p Partner, action string, before, after any) {
	if s.audit == nil {
		return
	}
	partnerID := p.ID
	orgID := p.SponsorOrganizationID
	entry := audit.Entry{
		PartnerID:      &partnerID,
		OrganizationID: &orgID,
		Action:         action,
		After:          audit.Snapshot(after),
	}
	if before != nil {
		entry.Before = audit.Snapshot(before)
	}
	s.audit.RecordAsync(ctx, entry)
}
