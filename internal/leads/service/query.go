package service

import (
	"context"

	"leadgate/internal/leads/domain"
	"leadgate/internal/leads/transport"
	"leadgate/platform/apperr"

	"github.com/google/uuid"
)

// GetLead returns the admin view of a lead with its consent record. The
// evidence link is omitted when archiving is disabled or unavailable.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.deps.Store.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	resp := toLeadResponse(lead)
	consent, err := s.deps.Store.GetConsent(ctx, id)
	switch {
	case err == nil:
		c := toConsentResponse(consent)
		if s.deps.Evidence != nil {
			url, err := s.deps.Evidence.DownloadURL(ctx, lead.OrganizationID, lead.ID)
			if err != nil {
				s.deps.Log.Warn("leads: evidence link unavailable", "error", err, "leadId", lead.ID)
			} else if url != "" {
				c.EvidenceURL = &url
			}
		}
		resp.Consent = &c
	case apperr.Is(err, apperr.KindNotFound):
		s.deps.Log.Error("leads: lead has no consent record", "leadId", lead.ID)
	default:
		return transport.LeadResponse{}, err
	}
	return resp, nil
}

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		PartnerID:      l.PartnerID,
		ExternalID:     l.ExternalID,
		OriginSiteID:   l.OriginSiteID,
		AssignedSiteID: l.AssignedSiteID,
		FirstName:      l.FirstName,
		LastName:       l.LastName,
		Email:          l.Email,
		Phone:          l.Phone,
		Street:         l.Street,
		PostalCode:     l.PostalCode,
		City:           l.City,
		DesiredProgram: l.DesiredProgram,
		SourceURL:      l.SourceURL,
		Message:        l.Message,
		QualityScore:   l.QualityScore,
		Status:         string(l.Status),
		CreatedAt:      l.CreatedAt,
	}
	if l.ResponseDate != nil {
		d := l.ResponseDate.Format(transport.DateLayout)
		resp.ResponseDate = &d
	}
	if l.QualityScore != nil {
		g := string(domain.GradeFor(*l.QualityScore))
		resp.QualityGrade = &g
	}
	return resp
}

func toConsentResponse(c domain.Consent) transport.ConsentResponse {
	return transport.ConsentResponse{
		ConsentGiven:     c.ConsentGiven,
		ConsentText:      c.ConsentText,
		LegalBasis:       c.LegalBasis,
		CollectionMethod: c.CollectionMethod,
		ConsentedAt:      c.ConsentedAt,
		RecordedAt:       c.RecordedAt,
		IPAddress:        c.IPAddress,
		UserAgent:        c.UserAgent,
	}
}
