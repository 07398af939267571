package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestRuleScorerStrongLead(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	responseDate := now.AddDate(0, 0, 3)
	in := Input{
		Email:          "camille.martin@entreprise-durand.fr",
		Phone:          "06 12 34 56 78",
		PhoneRegion:    "FR",
		SourceURL:      "https://www.formations-pro.fr/bts-mco",
		DesiredProgram: "BTS Management Commercial Opérationnel",
		Message:        strPtr("Je souhaite reprendre mes études en alternance à la rentrée et j'aimerais connaître les dates d'entretien."),
		ResponseDate:   &responseDate,
		ConsentedAt:    now.Add(-2 * time.Hour),
		SubmittedAt:    now,
	}

	got, err := NewRuleScorer().Score(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 40 + 15 mobile + 5 domain + 15 message + 10 date + 5 program + 5 https + 10 fresh
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", got)
	}
}

func TestRuleScorerWeakLeadIsClamped(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	in := Input{
		Email:       "x@gmail.com",
		Phone:       "123",
		SourceURL:   "http://example.com",
		ConsentedAt: now.AddDate(-2, 0, 0),
		SubmittedAt: now,
	}

	got, err := NewRuleScorer().Score(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 40 - 10 invalid phone - 20 stale consent
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestRuleScorerBounds(t *testing.T) {
	if got := clamp(decimal.NewFromInt(-5)); !got.Equal(decimal.Zero) {
		t.Fatalf("expected 0, got %s", got)
	}
	if got := clamp(decimal.NewFromInt(130)); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", got)
	}
}
