// file: internal/matcher/rank.go
// version: 1.2.0
// guid: e9a3d5f7-8c21-4b60-a794-6f1e2d8b3c57

package matcher

import "sort"

// DefaultThreshold is the worst best-of-set score a listing query may have
// before the whole result is treated as "no match".
const DefaultThreshold = 4

// DefaultSuggestionLimit is how many typeahead suggestions are returned when
// the caller does not ask for a specific count.
const DefaultSuggestionLimit = 3

// Candidate pairs an index into the caller's record slice with its computed
// score for one query. Candidates only live for the duration of a ranking
// call.
type Candidate struct {
	Index int
	Score int
}

// Suggestion is a single typeahead completion: the field category the value
// came from ("name", "city", "state", "postal", "brand"), the raw value, and
// its score.
type Suggestion struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Score    int    `json:"score"`
}

// Rank scores every record against query and returns candidates ordered by
// ascending score, ties keeping input order. If the best score exceeds
// threshold the query has no plausible match and the result is empty.
//
// An empty (or normalizing-to-empty) query is treated as "no text filter":
// every record comes back in input order with the Incomparable score and the
// threshold is not applied. Callers that want stricter behavior can check
// for an empty normalized query themselves.
func Rank(query string, records []Fields, threshold int) []Candidate {
	candidates := make([]Candidate, 0, len(records))

	if Normalize(query) == "" {
		for i := range records {
			candidates = append(candidates, Candidate{Index: i, Score: Incomparable})
		}
		return candidates
	}

	for i, rec := range records {
		candidates = append(candidates, Candidate{Index: i, Score: ScoreFields(query, rec)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})

	if len(candidates) > 0 && candidates[0].Score > threshold {
		return []Candidate{}
	}
	return candidates
}

// Suggest builds a typeahead pool across every field category of every
// record, scores each distinct (category, value) pair against query, and
// returns the best limit entries ordered by ascending score with ties in
// pool order. There is no threshold: even a weak best guess is shown.
func Suggest(query string, records []Fields, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	type poolKey struct {
		category string
		value    string
	}
	seen := make(map[poolKey]struct{})
	pool := make([]Suggestion, 0, len(records)*4)

	add := func(category, value string) {
		if value == "" {
			return
		}
		key := poolKey{category, value}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		pool = append(pool, Suggestion{
			Category: category,
			Value:    value,
			Score:    Score(query, value),
		})
	}

	for _, rec := range records {
		add("name", rec.Name)
		add("city", rec.City)
		add("state", rec.State)
		add("postal", rec.Postal)
		for _, brand := range rec.Brands {
			add("brand", brand)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score < pool[j].Score
	})

	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
