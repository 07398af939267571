package partners

import (
	"strings"
	"testing"
)

func TestGenerateCredential(t *testing.T) {
	plaintext, hash, prefix, err := GenerateCredential()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(plaintext, "lgp_") || len(plaintext) != 4+64 {
		t.Fatalf("unexpected credential format %q", plaintext)
	}
	if hash != HashKey(plaintext) {
		t.Fatal("hash must be the digest of the plaintext")
	}
	if strings.Contains(hash, plaintext[4:]) {
		t.Fatal("hash must not contain the secret")
	}
	if prefix != plaintext[:12] {
		t.Fatalf("unexpected prefix %q", prefix)
	}

	other, _, _, err := GenerateCredential()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == plaintext {
		t.Fatal("credentials must be unique")
	}
}

func TestDisplayPrefix(t *testing.T) {
	if got := DisplayPrefix("short"); got != "short" {
		t.Fatalf("unexpected prefix %q", got)
	}
	if got := DisplayPrefix("lgp_0123456789abcdef"); got != "lgp_01234567" {
		t.Fatalf("unexpected prefix %q", got)
	}
}
