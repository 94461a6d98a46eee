// file: internal/matcher/normalize_test.go
// version: 1.0.0
// guid: 91d5b3e8-4f72-4a1c-8e96-0c3a7d52f1b4

package matcher

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase passthrough", "toyota", "toyota"},
		{"case folding", "Toyota", "toyota"},
		{"hyphenated brand", "Mercedes-Benz", "mercedesbenz"},
		{"punctuated city", "St. Louis", "stlouis"},
		{"whitespace stripped", "  Fort Worth  ", "fortworth"},
		{"digits kept", "Route 66 Motors", "route66motors"},
		{"postal code", "80202", "80202"},
		{"diacritics folded", "Škoda", "skoda"},
		{"accents folded", "Citroën", "citroen"},
		{"only punctuation", "-- !! --", ""},
		{"mixed symbols", "O'Brien & Sons, Inc.", "obriensonsinc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Mercédès-Bénz of Düsseldorf #42"
	first := Normalize(in)
	for i := 0; i < 5; i++ {
		if got := Normalize(in); got != first {
			t.Fatalf("Normalize not deterministic: %q vs %q", got, first)
		}
	}
}

func TestNormalizeCapsLongInput(t *testing.T) {
	long := strings.Repeat("a", 10*maxFieldLen)
	got := Normalize(long)
	if len(got) > maxFieldLen {
		t.Errorf("Normalize did not cap input: got %d chars, cap %d", len(got), maxFieldLen)
	}
}
