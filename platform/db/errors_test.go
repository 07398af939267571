package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert lead: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_leads_partner_external"})

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected wrapped unique violation to match")
	}
	if !IsUniqueViolation(err, "idx_leads_partner_external") {
		t.Fatal("expected named constraint to match")
	}
	if IsUniqueViolation(err, "zone_mappings_organization_id_prefix_key") {
		t.Fatal("expected other constraint not to match")
	}
	if IsUniqueViolation(errors.New("23505"), "") {
		t.Fatal("plain errors must not match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("expected foreign key violation")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not a foreign key violation")
	}
}
