// Package scoring estimates lead quality from the submitted fields.
package scoring

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"github.com/shopspring/decimal"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	baseScore = 40
)

// Input is the subset of a submission the scorer looks at.
type Input struct {
	Email          string
	Phone          string
	PhoneRegion    string
	SourceURL      string
	DesiredProgram string
	Message        *string
	ResponseDate   *time.Time
	ConsentedAt    time.Time
	SubmittedAt    time.Time
}

// Scorer produces a 0-100 quality score.
type Scorer interface {
	Score(ctx context.Context, in Input) (decimal.Decimal, error)
}

// RuleScorer is a deterministic additive model. It starts at a base score,
// adds contact, intent and freshness signals and clamps to 0-100.
type RuleScorer struct{}

// NewRuleScorer creates the default scorer.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Version reports the scoring model version.
func (s *RuleScorer) Version() string { return scoreVersion }

var freeMailDomains = map[string]struct{}{
	"gmail.com":      {},
	"hotmail.com":    {},
	"hotmail.fr":     {},
	"outlook.com":    {},
	"outlook.fr":     {},
	"yahoo.com":      {},
	"yahoo.fr":       {},
	"orange.fr":      {},
	"free.fr":        {},
	"laposte.net":    {},
	"live.fr":        {},
	"sfr.fr":         {},
	"wanadoo.fr":     {},
	"icloud.com":     {},
	"protonmail.com": {},
}

func (s *RuleScorer) Score(_ context.Context, in Input) (decimal.Decimal, error) {
	score := decimal.NewFromInt(baseScore)
	add := func(points float64) { score = score.Add(decimal.NewFromFloat(points)) }

	// Contact quality
	add(phoneSignal(in.Phone, in.PhoneRegion))
	if domain := emailDomain(in.Email); domain != "" {
		if _, free := freeMailDomains[domain]; !free {
			add(5)
		}
	}

	// Intent
	if in.Message != nil {
		switch n := utf8.RuneCountInString(strings.TrimSpace(*in.Message)); {
		case n >= 80:
			add(15)
		case n >= 20:
			add(10)
		case n > 0:
			add(3)
		}
	}
	if in.ResponseDate != nil {
		add(10)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.DesiredProgram)) >= 10 {
		add(5)
	}

	// Provenance
	if u, err := url.Parse(in.SourceURL); err == nil && strings.EqualFold(u.Scheme, "https") {
		add(5)
	}

	// Consent freshness
	if !in.ConsentedAt.IsZero() && !in.SubmittedAt.IsZero() {
		age := in.SubmittedAt.Sub(in.ConsentedAt)
		switch {
		case age < 0:
			add(-10)
		case age <= 7*24*time.Hour:
			add(10)
		case age <= 30*24*time.Hour:
			add(5)
		case age > 365*24*time.Hour:
			add(-20)
		}
	}

	return clamp(score).Round(2), nil
}

func phoneSignal(phone, region string) float64 {
	if region == "" {
		region = "FR"
	}
	num, err := phonenumbers.Parse(strings.TrimSpace(phone), region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return -10
	}
	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE:
		return 15
	case phonenumbers.FIXED_LINE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return 10
	default:
		return 5
	}
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

var (
	minScore = decimal.Zero
	maxScore = decimal.NewFromInt(100)
)

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(minScore) {
		return minScore
	}
	if d.GreaterThan(maxScore) {
		return maxScore
	}
	return d
}
