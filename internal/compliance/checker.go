package compliance

import (
	"context"
	"time"

	"leadgate/internal/audit"
	"leadgate/internal/events"
	"leadgate/internal/partners"
	"leadgate/platform/logger"
	"leadgate/platform/metrics"
)

// AuditRecorder is the best-effort audit side channel.
type AuditRecorder interface {
	RecordAsync(ctx context.Context, entry audit.Entry)
}

// Checker runs the gate chain in order and stops at the first failure.
type Checker struct {
	gates []Gate
	audit AuditRecorder
	bus   events.Bus
	log   *logger.Logger
}

// Option configures a Checker.
type Option func(*checkerOptions)

type checkerOptions struct {
	now  func() time.Time
	bus  events.Bus
	qual QualificationChecker
}

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *checkerOptions) { o.now = now }
}

// WithEventBus publishes a ComplianceRejected event for every rejection.
func WithEventBus(bus events.Bus) Option {
	return func(o *checkerOptions) { o.bus = bus }
}

// WithQualificationChecker replaces the stored-snapshot evaluator.
func WithQualificationChecker(q QualificationChecker) Option {
	return func(o *checkerOptions) { o.qual = q }
}

// NewChecker builds the standard chain:
// DPA signed, contract signed, contract not expired, qualification.
func NewChecker(auditor AuditRecorder, log *logger.Logger, opts ...Option) *Checker {
	o := checkerOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.qual == nil {
		o.qual = NewSnapshotQualification(o.now)
	}

	return &Checker{
		gates: []Gate{
			DPASigned(),
			ContractSigned(),
			ContractNotExpired(o.now),
			Qualification(o.qual, log),
		},
		audit: auditor,
		bus:   o.bus,
		log:   log,
	}
}

// Gates returns the codes of the chain in evaluation order.
func (c *Checker) Gates() []string {
	codes := make([]string, 0, len(c.gates))
	for _, g := range c.gates {
		codes = append(codes, g.Code())
	}
	return codes
}

// CheckGates returns the first failing gate, or nil when the partner may submit.
// Every rejection is audited without blocking the caller.
func (c *Checker) CheckGates(ctx context.Context, p partners.Partner) *Failure {
	for _, g := range c.gates {
		if failure := g.Check(ctx, p); failure != nil {
			c.reject(ctx, p, failure)
			return failure
		}
	}
	return nil
}

func (c *Checker) reject(ctx context.Context, p partners.Partner, failure *Failure) {
	metrics.ComplianceRejections.WithLabelValues(failure.Code).Inc()
	c.log.ComplianceRejected(p.ID.String(), failure.Code)

	partnerID := p.ID
	orgID := p.SponsorOrganizationID
	if c.audit != nil {
		c.audit.RecordAsync(ctx, audit.Entry{
			PartnerID:      &partnerID,
			OrganizationID: &orgID,
			Action:         audit.ActionComplianceRejected,
			After:          audit.Snapshot(failure),
		})
	}

	if c.bus != nil {
		c.bus.Publish(ctx, events.ComplianceRejected{
			BaseEvent:      events.NewBaseEvent(),
			PartnerID:      partnerID,
			OrganizationID: orgID,
			Code:           failure.Code,
		})
	}
}
