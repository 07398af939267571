package compliance

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"leadgate/internal/audit"
	"leadgate/internal/partners"
	"leadgate/platform/logger"

	"github.com/google/uuid"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) RecordAsync(_ context.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingAudit) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type stubQualification struct {
	passed bool
	reason string
	err    error
	calls  int
}

func (s *stubQualification) Evaluate(context.Context, partners.Partner) (bool, string, error) {
	s.calls++
	return s.passed, s.reason, s.err
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func compliantPartner() partners.Partner {
	expires := fixedNow.AddDate(1, 0, 0)
	return partners.Partner{
		ID:                    uuid.New(),
		SponsorOrganizationID: uuid.New(),
		Status:                partners.StatusActive,
		ContractSignedAt:      ptr(fixedNow.AddDate(0, -1, 0)),
		ContractExpiresAt:     &expires,
		DPASignedAt:           ptr(fixedNow.AddDate(0, -1, 0)),
		Qualification: &partners.Qualification{
			Certified: true,
			ExpiresAt: &expires,
		},
	}
}

func newChecker(rec *recordingAudit, opts ...Option) *Checker {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewChecker(rec, logger.Nop(), opts...)
}

func TestCheckGatesPassesCompliantPartner(t *testing.T) {
	rec := &recordingAudit{}
	if failure := newChecker(rec).CheckGates(context.Background(), compliantPartner()); failure != nil {
		t.Fatalf("expected no failure, got %+v", failure)
	}
	if rec.count() != 0 {
		t.Fatalf("expected no audit entries, got %d", rec.count())
	}
}

func TestCheckGatesDPAMissingWritesExactlyOneAudit(t *testing.T) {
	rec := &recordingAudit{}
	p := compliantPartner()
	p.DPASignedAt = nil

	failure := newChecker(rec).CheckGates(context.Background(), p)
	if failure == nil || failure.Code != CodeDPAMissing {
		t.Fatalf("expected %s, got %+v", CodeDPAMissing, failure)
	}
	if rec.count() != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", rec.count())
	}
	entry := rec.entries[0]
	if entry.Action != audit.ActionComplianceRejected {
		t.Fatalf("unexpected action %q", entry.Action)
	}
	if entry.PartnerID == nil || *entry.PartnerID != p.ID {
		t.Fatal("audit entry must reference the partner")
	}
	if entry.OrganizationID == nil || *entry.OrganizationID != p.SponsorOrganizationID {
		t.Fatal("audit entry must reference the sponsoring organization")
	}
}

func TestCheckGatesOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*partners.Partner)
		want   string
	}{
		{
			name: "dpa checked before contract",
			mutate: func(p *partners.Partner) {
				p.DPASignedAt = nil
				p.ContractSignedAt = nil
			},
			want: CodeDPAMissing,
		},
		{
			name:   "unsigned contract",
			mutate: func(p *partners.Partner) { p.ContractSignedAt = nil },
			want:   CodeContractUnsigned,
		},
		{
			name: "unsigned checked before expiry",
			mutate: func(p *partners.Partner) {
				p.ContractSignedAt = nil
				p.ContractExpiresAt = ptr(fixedNow.Add(-time.Hour))
			},
			want: CodeContractUnsigned,
		},
		{
			name:   "expired contract",
			mutate: func(p *partners.Partner) { p.ContractExpiresAt = ptr(fixedNow.Add(-time.Hour)) },
			want:   CodeContractExpired,
		},
		{
			name:   "expiry instant is expired",
			mutate: func(p *partners.Partner) { p.ContractExpiresAt = ptr(fixedNow) },
			want:   CodeContractExpired,
		},
		{
			name:   "open-ended contract passes",
			mutate: func(p *partners.Partner) { p.ContractExpiresAt = nil },
			want:   "",
		},
		{
			name:   "no qualification",
			mutate: func(p *partners.Partner) { p.Qualification = nil },
			want:   CodeQualificationFailed,
		},
		{
			name:   "not certified",
			mutate: func(p *partners.Partner) { p.Qualification.Certified = false },
			want:   CodeQualificationFailed,
		},
		{
			name:   "certification expired",
			mutate: func(p *partners.Partner) { p.Qualification.ExpiresAt = ptr(fixedNow.Add(-time.Minute)) },
			want:   CodeQualificationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := compliantPartner()
			tt.mutate(&p)

			failure := newChecker(&recordingAudit{}).CheckGates(context.Background(), p)
			got := ""
			if failure != nil {
				got = failure.Code
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestQualificationGateShortCircuits(t *testing.T) {
	qual := &stubQualification{passed: true}
	p := compliantPartner()
	p.DPASignedAt = nil

	newChecker(&recordingAudit{}, WithQualificationChecker(qual)).CheckGates(context.Background(), p)
	if qual.calls != 0 {
		t.Fatalf("qualification should not be evaluated after an earlier failure, got %d calls", qual.calls)
	}
}

func TestQualificationCheckerErrorFailsGate(t *testing.T) {
	qual := &stubQualification{err: errors.New("evaluator unavailable")}
	rec := &recordingAudit{}

	failure := newChecker(rec, WithQualificationChecker(qual)).CheckGates(context.Background(), compliantPartner())
	if failure == nil || failure.Code != CodeQualificationFailed {
		t.Fatalf("expected %s, got %+v", CodeQualificationFailed, failure)
	}
	if failure.Message == "evaluator unavailable" {
		t.Fatal("checker error must not leak to the partner")
	}
	if rec.count() != 1 {
		t.Fatalf("expected one audit entry, got %d", rec.count())
	}
}

func TestQualificationReasonIsReturned(t *testing.T) {
	qual := &stubQualification{reason: "audit score below threshold"}

	failure := newChecker(&recordingAudit{}, WithQualificationChecker(qual)).CheckGates(context.Background(), compliantPartner())
	if failure == nil || failure.Message != "audit score below threshold" {
		t.Fatalf("expected evaluator reason, got %+v", failure)
	}
}

func TestFailureAsError(t *testing.T) {
	err := (&Failure{Code: CodeContractExpired, Message: "expired"}).AsError()
	if err.HTTPStatus() != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", err.HTTPStatus())
	}
	if err.ResponseCode() != CodeContractExpired {
		t.Fatalf("expected gate code, got %q", err.ResponseCode())
	}
}

func TestGatesOrder(t *testing.T) {
	got := newChecker(&recordingAudit{}).Gates()
	want := []string{CodeDPAMissing, CodeContractUnsigned, CodeContractExpired, CodeQualificationFailed}
	if len(got) != len(want) {
		t.Fatalf("unexpected gates %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("gate %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
