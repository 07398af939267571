// Package compliance implements the ordered chain of legal prerequisites a
// partner must satisfy before any of its submissions is accepted.
package compliance

import (
	"context"
	"time"

	"leadgate/internal/partners"
	"leadgate/platform/apperr"
)

// Stable gate codes returned to partners.
const (
	CodeDPAMissing          = "dpa_missing"
	CodeContractUnsigned    = "contract_unsigned"
	CodeContractExpired     = "contract_expired"
	CodeQualificationFailed = "qualification_failed"
)

// Failure is the first gate a partner did not pass.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (f *Failure) Error() string { return f.Code + ": " + f.Message }

// AsError converts the failure into a 403 carrying the gate code.
func (f *Failure) AsError() *apperr.Error {
	return apperr.Forbidden(f.Message).WithCode(f.Code)
}

// Gate is a single compliance precondition.
type Gate interface {
	Code() string
	Check(ctx context.Context, p partners.Partner) *Failure
}

type gateFunc struct {
	code  string
	check func(ctx context.Context, p partners.Partner) *Failure
}

func (g gateFunc) Code() string { return g.code }

func (g gateFunc) Check(ctx context.Context, p partners.Partner) *Failure {
	return g.check(ctx, p)
}

// DPASigned fails when no data-processing agreement is on file.
func DPASigned() Gate {
	return gateFunc{code: CodeDPAMissing, check: func(_ context.Context, p partners.Partner) *Failure {
		if p.DPASignedAt == nil {
			return &Failure{Code: CodeDPAMissing, Message: "data processing agreement has not been signed"}
		}
		return nil
	}}
}

// ContractSigned fails when the partnership contract has not been signed.
func ContractSigned() Gate {
	return gateFunc{code: CodeContractUnsigned, check: func(_ context.Context, p partners.Partner) *Failure {
		if p.ContractSignedAt == nil {
			return &Failure{Code: CodeContractUnsigned, Message: "partnership contract has not been signed"}
		}
		return nil
	}}
}

// ContractNotExpired fails once the contract expiry has passed. A contract
// without an expiry date never expires.
func ContractNotExpired(now func() time.Time) Gate {
	return gateFunc{code: CodeContractExpired, check: func(_ context.Context, p partners.Partner) *Failure {
		if p.ContractExpiresAt != nil && !now().Before(*p.ContractExpiresAt) {
			return &Failure{
				Code:    CodeContractExpired,
				Message: "partnership contract expired on " + p.ContractExpiresAt.UTC().Format(time.DateOnly),
			}
		}
		return nil
	}}
}
