// file: internal/matcher/levenshtein_test.go
// version: 1.0.0
// guid: 2c8f41a6-7d93-4e05-b1c8-f6a29e74d310

package matcher

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"both empty", "", "", 0},
		{"a empty", "", "honda", 5},
		{"b empty", "honda", "", 5},
		{"identical", "toyota", "toyota", 0},
		{"single substitution", "denvr", "denve", 1},
		{"classic kitten", "kitten", "sitting", 3},
		{"classic saturday", "saturday", "sunday", 3},
		{"insertion", "denver", "denvers", 1},
		{"deletion", "boulder", "bolder", 1},
		{"typo city", "denvr", "denver", 1},
		{"unrelated", "ford", "subaru", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"toyota", "toyata"},
		{"austin", "boston"},
		{"", "chevrolet"},
		{"dallas", "dalas"},
		{"mercedesbenz", "mercedes"},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1])
		ba := Distance(p[1], p[0])
		if ab != ba {
			t.Errorf("Distance(%q, %q) = %d but Distance(%q, %q) = %d", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestDistanceIdentityOnNormalizedInput(t *testing.T) {
	for _, s := range []string{"Mercedes-Benz", "St. Louis", "Fort Worth Auto #3", ""} {
		n := Normalize(s)
		if got := Distance(n, n); got != 0 {
			t.Errorf("Distance(%q, %q) = %d, want 0", n, n, got)
		}
	}
}
