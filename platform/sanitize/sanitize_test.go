package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<b>bonjour</b>", "bonjour"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;", "alert(1)"},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProperName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"jean-PIERRE", "Jean-Pierre"},
		{"  marie   claire ", "Marie Claire"},
		{"<i>saint-étienne</i>", "Saint-Étienne"},
	}
	for _, tt := range tests {
		if got := ProperName(tt.in); got != tt.want {
			t.Errorf("ProperName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("nil in, nil out")
	}
	in := "<p>été</p>"
	got := TextPtr(&in)
	if got == nil || *got != "été" {
		t.Fatalf("expected NFC text, got %v", got)
	}
}
