// file: internal/matcher/score.go
// version: 1.1.0
// guid: b4c7e2a9-1d6f-4803-95ba-3e71f8d2c046

package matcher

import "strings"

// Incomparable is the sentinel score returned when either side of a
// comparison normalizes to the empty string. It is far larger than any edit
// distance reachable with capped field lengths and sorts after every real
// score.
const Incomparable = 999

// Fields holds the searchable text values of one dealer record. The matcher
// only ever reads these; callers pass value copies, never live store state.
type Fields struct {
	Name   string
	City   string
	State  string
	Postal string
	Brands []string
}

// Score rates how well query matches a single field value. 0 is an exact or
// substring match after normalization, higher is less similar, Incomparable
// means one side was empty. Missing optional fields therefore degrade to the
// sentinel instead of failing.
func Score(query, field string) int {
	q := Normalize(query)
	f := Normalize(field)
	if q == "" || f == "" {
		return Incomparable
	}
	// Substring containment beats any computed distance: "aus" inside
	// "austin" is a hit even though their edit distance is 3.
	if strings.Contains(f, q) {
		return 0
	}
	return Distance(q, f)
}

// ScoreFields rates query against every searchable field of a record and
// returns the best (minimum) score.
func ScoreFields(query string, f Fields) int {
	best := Score(query, f.Name)
	for _, field := range []string{f.City, f.State, f.Postal} {
		if s := Score(query, field); s < best {
			best = s
		}
	}
	for _, brand := range f.Brands {
		if s := Score(query, brand); s < best {
			best = s
		}
	}
	return best
}
