package compliance

import (
	"context"
	"time"

	"leadgate/internal/partners"
	"leadgate/platform/logger"
)

// QualificationChecker is the external quality evaluator. It returns a
// pass/fail verdict and a human-readable reason for a failure.
type QualificationChecker interface {
	Evaluate(ctx context.Context, p partners.Partner) (passed bool, reason string, err error)
}

// SnapshotQualification evaluates the qualification snapshot stored with
// the partner. It passes when the partner is certified and the
// certificate has not expired.
type SnapshotQualification struct {
	now func() time.Time
}

// NewSnapshotQualification creates a checker reading the stored snapshot.
func NewSnapshotQualification(now func() time.Time) *SnapshotQualification {
	if now == nil {
		now = time.Now
	}
	return &SnapshotQualification{now: now}
}

func (s *SnapshotQualification) Evaluate(_ context.Context, p partners.Partner) (bool, string, error) {
	q := p.Qualification
	switch {
	case q == nil:
		return false, "no quality qualification on file", nil
	case !q.Certified:
		return false, "partner is not quality certified", nil
	case q.ExpiresAt != nil && !s.now().Before(*q.ExpiresAt):
		return false, "quality certification expired on " + q.ExpiresAt.UTC().Format(time.DateOnly), nil
	}
	return true, "", nil
}

// Qualification delegates to an external checker. Checker errors are
// treated as a failed gate so an unavailable evaluator never admits.
func Qualification(checker QualificationChecker, log *logger.Logger) Gate {
	return gateFunc{code: CodeQualificationFailed, check: func(ctx context.Context, p partners.Partner) *Failure {
		passed, reason, err := checker.Evaluate(ctx, p)
		if err != nil {
			log.Error("compliance: qualification check failed", "error", err, "partnerId", p.ID)
			return &Failure{Code: CodeQualificationFailed, Message: "quality qualification could not be verified"}
		}
		if !passed {
			if reason == "" {
				reason = "quality qualification check failed"
			}
			return &Failure{Code: CodeQualificationFailed, Message: reason}
		}
		return nil
	}}
}
