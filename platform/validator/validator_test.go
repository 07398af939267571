package validator

import "testing"

type sample struct {
	PostalCode string `json:"postalCode" validate:"required,postalcode5"`
	Phone      string `json:"phone" validate:"required,phone"`
	Prefix     string `json:"prefix" validate:"required,zoneprefix"`
}

func TestCustomRules(t *testing.T) {
	v := New("FR")

	ok := sample{PostalCode: "75001", Phone: "06 12 34 56 78", Prefix: "75"}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	bad := sample{PostalCode: "7500A", Phone: "12", Prefix: "123456"}
	fields := FieldErrors(v.Struct(bad))
	if len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %+v", len(fields), fields)
	}
	want := map[string]string{"postalCode": "postalcode5", "phone": "phone", "prefix": "zoneprefix"}
	for _, fe := range fields {
		if want[fe.Field] != fe.Rule {
			t.Fatalf("unexpected field error %+v", fe)
		}
		if fe.Message == "" {
			t.Fatalf("missing message for %s", fe.Field)
		}
	}
}

func TestIsPostalCode(t *testing.T) {
	cases := map[string]bool{
		"75001":  true,
		"01000":  true,
		"7500":   false,
		"750011": false,
		"75 01":  false,
		"":       false,
	}
	for in, want := range cases {
		if got := IsPostalCode(in); got != want {
			t.Errorf("IsPostalCode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsZonePrefix(t *testing.T) {
	cases := map[string]bool{
		"7":      true,
		"75001":  true,
		"":       false,
		"750011": false,
		"7a":     false,
	}
	for in, want := range cases {
		if got := IsZonePrefix(in); got != want {
			t.Errorf("IsZonePrefix(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldErrorsNonValidatorError(t *testing.T) {
	fields := FieldErrors(errString("boom"))
	if len(fields) != 1 || fields[0].Rule != "invalid" {
		t.Fatalf("unexpected %+v", fields)
	}
	if FieldErrors(nil) != nil {
		t.Fatal("nil error must yield no field errors")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
