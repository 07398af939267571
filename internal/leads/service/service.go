// Package service implements the lead ingestion pipeline.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"leadgate/internal/audit"
	"leadgate/internal/events"
	"leadgate/internal/evidence"
	"leadgate/internal/leads/domain"
	"leadgate/internal/leads/repository"
	"leadgate/internal/leads/scoring"
	"leadgate/internal/leads/transport"
	"leadgate/internal/organizations"
	"leadgate/internal/partners"
	"leadgate/internal/ratelimit"
	"leadgate/internal/routing"
	"leadgate/platform/apperr"
	"leadgate/platform/logger"
	"leadgate/platform/metrics"
	"leadgate/platform/phone"
	"leadgate/platform/sanitize"
	"leadgate/platform/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgValidationFailed = "validation failed"
	msgRateLimited      = "hourly submission limit reached"
	msgDuplicate        = "a lead with this externalId was already submitted"

	sideChannelTimeout = 10 * time.Second

	opIngest = "leads.Ingest"
)

// Pipeline outcomes, used as metric labels.
const (
	outcomeAccepted   = "accepted"
	outcomeRateLimit  = "rate_limited"
	outcomeCompliance = "compliance_rejected"
	outcomeInvalid    = "invalid"
	outcomeDuplicate  = "duplicate"
	outcomeFailed     = "failed"
)

// Config holds the ingestion settings.
type Config struct {
	ConsentTextMinLength int
	PhoneRegion          string
}

// Deps are the collaborators of the pipeline. Notifier, Evidence and
// EventBus are optional side channels.
type Deps struct {
	Store     repository.Store
	Admitter  Admitter
	Gates     GateChecker
	Owners    OwnerResolver
	Router    Router
	Scorer    scoring.Scorer
	Audit     AuditRecorder
	Validator *validator.Validator
	Notifier  Notifier
	Evidence  EvidenceArchiver
	EventBus  events.Bus
	Log       *logger.Logger
}

// Submission is one authenticated partner request. DecodeErr holds the
// error from decoding the body into Request; it is reported as a schema
// failure only after admission and the compliance gates.
type Submission struct {
	Partner   partners.Partner
	Request   transport.SubmitLeadRequest
	DecodeErr error
	IPAddress string
	UserAgent string
}

// Outcome carries the response and the admission decision. RateLimit is set
// for every submission that reached admission control, including rejections.
type Outcome struct {
	Response  transport.SubmitLeadResponse
	RateLimit *transport.RateLimitMeta
}

// Service orchestrates ingestion: admit, gate, validate, persist, score,
// route and audit.
type Service struct {
	deps Deps
	cfg  Config
	now  func() time.Time
	wg   sync.WaitGroup
}

// New creates the ingestion service.
func New(deps Deps, cfg Config) *Service {
	if cfg.ConsentTextMinLength < 1 {
		cfg.ConsentTextMinLength = 50
	}
	return &Service{deps: deps, cfg: cfg, now: time.Now}
}

// Ingest runs one submission to a terminal outcome. Rejections before
// persistence return typed errors with stable codes. Once the lead is
// committed, scoring, routing and side-channel failures are logged and
// never change the result.
func (s *Service) Ingest(ctx context.Context, sub Submission) (Outcome, error) {
	start := s.now()
	p := sub.Partner
	log := s.deps.Log.WithContext(ctx)

	// Admission control
	decision, err := s.deps.Admitter.Admit(ctx, ratelimit.PartnerKey(p.ID), p.HourlyLimit)
	if err != nil {
		log.Error("ingest: admission counter failed", "error", err, "partnerId", p.ID)
		s.observe(outcomeFailed, start)
		return Outcome{}, apperr.Wrap(apperr.KindInternal, "admission check failed", err).WithOp(opIngest)
	}
	out := Outcome{RateLimit: toRateLimitMeta(decision)}
	if !decision.Allowed {
		metrics.RateLimitRejections.Inc()
		log.RateLimitExceeded(p.ID.String(), "/api/v1/leads")
		s.observe(outcomeRateLimit, start)
		return out, apperr.TooManyRequests(msgRateLimited).
			WithCode(apperr.CodeRateLimitExceeded).
			WithDetails(map[string]int{"retryAfter": decision.RetryAfter})
	}

	// Compliance gates
	if failure := s.deps.Gates.CheckGates(ctx, p); failure != nil {
		s.observe(outcomeCompliance, start)
		return out, failure.AsError()
	}

	// Schema validation
	if sub.DecodeErr != nil {
		s.observe(outcomeInvalid, start)
		return out, validationError(decodeFieldErrors(sub.DecodeErr))
	}
	draft, err := s.validate(ctx, sub)
	if err != nil {
		s.observe(outcomeInvalid, start)
		return out, err
	}

	if draft.lead.ExternalID != nil {
		exists, err := s.deps.Store.ExistsByExternalID(ctx, p.ID, *draft.lead.ExternalID)
		if err != nil {
			log.Error("ingest: duplicate check failed", "error", err, "partnerId", p.ID)
			s.observe(outcomeFailed, start)
			return out, apperr.Wrap(apperr.KindInternal, "duplicate check failed", err).WithOp(opIngest)
		}
		if exists {
			s.observe(outcomeDuplicate, start)
			return out, duplicateError()
		}
	}

	// Atomic persistence
	lead, err := s.persist(ctx, p.ID, draft)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateExternalID) {
			s.observe(outcomeDuplicate, start)
			return out, duplicateError()
		}
		log.Error("ingest: failed to persist lead", "error", err, "partnerId", p.ID)
		s.observe(outcomeFailed, start)
		return out, apperr.Wrap(apperr.KindInternal, "failed to persist lead", err).WithOp(opIngest)
	}

	// Everything below runs after commit and is best-effort.
	score := s.score(ctx, lead, draft)
	match, status := s.route(ctx, p, lead)
	s.afterCommit(ctx, p, lead, draft.consent, score, match)

	out.Response = buildResponse(lead, status, score, match, out.RateLimit)
	s.observe(outcomeAccepted, start)
	return out, nil
}

// Wait blocks until all in-flight side-channel work has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

type draft struct {
	lead    domain.Lead
	consent domain.Consent
	input   scoring.Input
}

// validate checks the payload and builds the rows to insert. It performs
// no writes.
func (s *Service) validate(ctx context.Context, sub Submission) (draft, error) {
	req := sub.Request
	var fieldErrs []validator.FieldError
	if err := s.deps.Validator.Struct(req); err != nil {
		fieldErrs = append(fieldErrs, validator.FieldErrors(err)...)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(req.ConsentText)); req.ConsentText != "" && n < s.cfg.ConsentTextMinLength {
		fieldErrs = append(fieldErrs, validator.FieldError{
			Field:   "consentText",
			Rule:    "min",
			Message: fmt.Sprintf("must be at least %d characters", s.cfg.ConsentTextMinLength),
		})
	}
	if len(fieldErrs) > 0 {
		return draft{}, validationError(fieldErrs)
	}

	// Formats were checked by the validator; parse errors cannot occur here.
	consentedAt, _ := time.Parse(transport.DateTimeLayout, req.ConsentAt)
	var responseDate *time.Time
	if req.ResponseDate != nil {
		d, _ := time.Parse(transport.DateLayout, *req.ResponseDate)
		responseDate = &d
	}

	p := sub.Partner
	ownerID := p.SponsorOrganizationID
	var originSiteID *uuid.UUID
	if req.OriginSiteID != nil {
		siteID := uuid.MustParse(*req.OriginSiteID)
		owner, err := s.deps.Owners.ResolveOwner(ctx, siteID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return draft{}, validationError([]validator.FieldError{{
					Field: "originSiteId", Rule: "exists", Message: "unknown site",
				}})
			}
			if errors.Is(err, organizations.ErrOrphanedSubsidiary) {
				s.deps.Log.Error("ingest: origin site belongs to an orphaned subsidiary", "error", err, "siteId", siteID)
			} else {
				s.deps.Log.Error("ingest: failed to resolve record owner", "error", err, "siteId", siteID)
			}
			return draft{}, apperr.Internal("failed to resolve record owner").WithOp(opIngest)
		}
		if owner.OrganizationID != p.SponsorOrganizationID {
			return draft{}, validationError([]validator.FieldError{{
				Field: "originSiteId", Rule: "network", Message: "site is outside the sponsoring network",
			}})
		}
		ownerID = owner.OrganizationID
		originSiteID = &siteID
	}

	legalBasis := domain.LegalBasisConsent
	if req.LegalBasis != nil {
		legalBasis = *req.LegalBasis
	}
	partnerID := p.ID
	lead := domain.Lead{
		OrganizationID: ownerID,
		PartnerID:      &partnerID,
		ExternalID:     trimmedPtr(req.ExternalID),
		OriginSiteID:   originSiteID,
		FirstName:      sanitize.ProperName(req.FirstName),
		LastName:       sanitize.ProperName(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          phone.NormalizeE164(req.Phone, s.cfg.PhoneRegion),
		Street:         sanitize.Text(req.Street),
		PostalCode:     req.PostalCode,
		City:           sanitize.ProperName(req.City),
		DesiredProgram: sanitize.Text(req.DesiredProgram),
		SourceURL:      strings.TrimSpace(req.SourceURL),
		Message:        sanitize.TextPtr(req.Message),
		ResponseDate:   responseDate,
		Status:         domain.StatusNew,
	}
	consent := domain.Consent{
		ConsentGiven:     true,
		ConsentText:      req.ConsentText,
		LegalBasis:       legalBasis,
		CollectionMethod: domain.CollectionMethodPartnerAPI,
		ConsentedAt:      consentedAt,
		IPAddress:        optional(sub.IPAddress),
		UserAgent:        optional(sub.UserAgent),
	}
	input := scoring.Input{
		Email:          lead.Email,
		Phone:          req.Phone,
		PhoneRegion:    s.cfg.PhoneRegion,
		SourceURL:      lead.SourceURL,
		DesiredProgram: lead.DesiredProgram,
		Message:        lead.Message,
		ResponseDate:   responseDate,
		ConsentedAt:    consentedAt,
	}
	return draft{lead: lead, consent: consent, input: input}, nil
}

// persist writes the lead, its consent record and the partner counter in
// one transaction.
func (s *Service) persist(ctx context.Context, partnerID uuid.UUID, d draft) (domain.Lead, error) {
	var created domain.Lead
	err := s.deps.Store.Run(ctx, func(w repository.LeadWriter) error {
		lead, err := w.InsertLead(ctx, d.lead)
		if err != nil {
			return err
		}
		consent := d.consent
		consent.LeadID = lead.ID
		if err := w.InsertConsent(ctx, consent); err != nil {
			return err
		}
		if err := w.IncrementPartnerSubmissions(ctx, partnerID); err != nil {
			return err
		}
		created = lead
		return nil
	})
	return created, err
}

func (s *Service) score(ctx context.Context, lead domain.Lead, d draft) *decimal.Decimal {
	in := d.input
	in.SubmittedAt = lead.CreatedAt
	score, err := s.deps.Scorer.Score(ctx, in)
	if err != nil {
		s.deps.Log.Error("ingest: scoring failed", "error", err, "leadId", lead.ID)
		return nil
	}
	if err := s.deps.Store.UpdateScore(ctx, lead.ID, score); err != nil {
		s.deps.Log.Error("ingest: failed to persist score", "error", err, "leadId", lead.ID)
		return nil
	}
	s.record(ctx, lead, audit.ActionLeadScoreUpdated, nil, map[string]any{
		"leadId":       lead.ID,
		"qualityScore": score,
		"qualityGrade": domain.GradeFor(score),
	})
	return &score
}

// route assigns a site when a territory set matches the postal code. The
// owning organization of the lead never changes here. The returned status
// is the one stored for the lead.
func (s *Service) route(ctx context.Context, p partners.Partner, lead domain.Lead) (*routing.Match, domain.Status) {
	match, err := s.deps.Router.ResolveTerritory(ctx, p.SponsorOrganizationID, lead.PostalCode)
	if err != nil {
		s.deps.Log.Error("ingest: routing failed", "error", err, "leadId", lead.ID)
		return nil, s.markUndispatched(ctx, lead)
	}
	if match == nil {
		return nil, s.markUndispatched(ctx, lead)
	}
	if err := s.deps.Store.AssignSite(ctx, lead.ID, match.SiteID); err != nil {
		s.deps.Log.Error("ingest: failed to assign site", "error", err, "leadId", lead.ID, "siteId", match.SiteID)
		return nil, s.markUndispatched(ctx, lead)
	}
	s.record(ctx, lead, audit.ActionLeadSiteAssigned,
		map[string]any{"assignedSiteId": lead.AssignedSiteID, "status": lead.Status},
		map[string]any{"assignedSiteId": match.SiteID, "status": domain.StatusDispatched, "mechanism": match.Mechanism, "ruleId": match.RuleID},
	)
	return match, domain.StatusDispatched
}

func (s *Service) markUndispatched(ctx context.Context, lead domain.Lead) domain.Status {
	if err := s.deps.Store.UpdateStatus(ctx, lead.ID, domain.StatusUndispatched); err != nil {
		s.deps.Log.Error("ingest: failed to mark lead undispatched", "error", err, "leadId", lead.ID)
		return lead.Status
	}
	return domain.StatusUndispatched
}

// afterCommit issues the audit summary and the side channels. None of them
// can fail the request.
func (s *Service) afterCommit(ctx context.Context, p partners.Partner, lead domain.Lead, consent domain.Consent, score *decimal.Decimal, match *routing.Match) {
	summary := map[string]any{
		"leadId":     lead.ID,
		"postalCode": lead.PostalCode,
		"dispatched": match != nil,
	}
	if score != nil {
		summary["qualityScore"] = score
		summary["qualityGrade"] = domain.GradeFor(*score)
	}
	if match != nil {
		summary["assignedSiteId"] = match.SiteID
		summary["mechanism"] = match.Mechanism
	}
	s.record(ctx, lead, audit.ActionLeadIngested, nil, summary)

	if s.deps.EventBus != nil {
		ingested := events.LeadIngested{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         lead.ID,
			OrganizationID: lead.OrganizationID,
			PartnerID:      p.ID,
			PostalCode:     lead.PostalCode,
			Dispatched:     match != nil,
		}
		if score != nil {
			ingested.QualityScore = *score
		}
		s.deps.EventBus.Publish(ctx, ingested)
	}

	if match != nil && s.deps.Notifier != nil {
		notice := DispatchNotice{
			LeadID:               lead.ID,
			OrganizationID:       lead.OrganizationID,
			AssignedSiteID:       match.SiteID,
			TargetOrganizationID: match.OrganizationID,
			Mechanism:            string(match.Mechanism),
		}
		s.detached(ctx, "notify dispatched", lead.ID, func(ctx context.Context) error {
			return s.deps.Notifier.NotifyLeadDispatched(ctx, notice)
		})
	}

	if s.deps.Evidence != nil {
		snap := evidence.Snapshot{
			LeadID:           lead.ID,
			OrganizationID:   lead.OrganizationID,
			PartnerID:        p.ID,
			ConsentGiven:     consent.ConsentGiven,
			ConsentText:      consent.ConsentText,
			LegalBasis:       consent.LegalBasis,
			CollectionMethod: consent.CollectionMethod,
			ConsentedAt:      consent.ConsentedAt,
			RecordedAt:       lead.CreatedAt,
			SourceURL:        lead.SourceURL,
			IPAddress:        consent.IPAddress,
			UserAgent:        consent.UserAgent,
		}
		s.detached(ctx, "archive evidence", lead.ID, func(ctx context.Context) error {
			_, err := s.deps.Evidence.Archive(ctx, snap)
			return err
		})
	}
}

// detached runs fn on its own goroutine with a context that outlives the request.
func (s *Service) detached(ctx context.Context, op string, leadID uuid.UUID, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.deps.Log.Error("ingest: side channel panicked", "op", op, "panic", r, "leadId", leadID)
			}
		}()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideChannelTimeout)
		defer cancel()
		if err := fn(bg); err != nil {
			s.deps.Log.Error("ingest: side channel failed", "op", op, "error", err, "leadId", leadID)
		}
	}()
}

func (s *Service) record(ctx context.Context, lead domain.Lead, action string, before, after any) {
	if s.deps.Audit == nil {
		return
	}
	entry := audit.Entry{
		PartnerID:      lead.PartnerID,
		OrganizationID: &lead.OrganizationID,
		Action:         action,
		After:          audit.Snapshot(after),
	}
	if before != nil {
		entry.Before = audit.Snapshot(before)
	}
	s.deps.Audit.RecordAsync(ctx, entry)
}

func (s *Service) observe(outcome string, start time.Time) {
	metrics.IngestOutcomes.WithLabelValues(outcome).Inc()
	metrics.IngestDuration.WithLabelValues(outcome).Observe(s.now().Sub(start).Seconds())
}

func buildResponse(lead domain.Lead, status domain.Status, score *decimal.Decimal, match *routing.Match, rl *transport.RateLimitMeta) transport.SubmitLeadResponse {
	resp := transport.SubmitLeadResponse{
		LeadID:       lead.ID,
		Dispatched:   match != nil,
		Status:       string(status),
		QualityScore: score,
		RateLimit:    rl,
	}
	if match != nil {
		name := match.OrganizationName
		resp.TargetOrganizationName = &name
	}
	if score != nil {
		grade := string(domain.GradeFor(*score))
		resp.QualityGrade = &grade
	}
	return resp
}

func toRateLimitMeta(d ratelimit.Decision) *transport.RateLimitMeta {
	return &transport.RateLimitMeta{
		Limit:      d.Limit,
		Remaining:  d.Remaining,
		ResetAt:    d.ResetAt.UTC(),
		RetryAfter: d.RetryAfter,
	}
}

func validationError(fields []validator.FieldError) error {
	return apperr.Validation(msgValidationFailed).WithCode(apperr.CodeValidationFailed).WithDetails(fields)
}

// decodeFieldErrors turns a body decoding failure into field-level detail.
// Type mismatches name the offending field; anything else is reported
// against the body as a whole.
func decodeFieldErrors(err error) []validator.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []validator.FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("must be a %s", jsonTypeName(typeErr)),
		}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []validator.FieldError{{
			Field:   "body",
			Rule:    "json",
			Message: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset),
		}}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []validator.FieldError{{Field: "body", Rule: "json", Message: "request body is empty or truncated"}}
	}
	return []validator.FieldError{{Field: "body", Rule: "json", Message: "request body is not a valid submission"}}
}

func jsonTypeName(err *json.UnmarshalTypeError) string {
	if err.Type == nil {
		return "valid value"
	}
	t := err.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind().String()
}

func duplicateError() error {
	return apperr.Conflict(msgDuplicate).WithCode(apperr.CodeDuplicateSubmission)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
