// file: internal/server/search_service.go
// version: 1.3.0
// guid: 5c8b2f71-3e4a-4d96-a0f8-9b6d1c3e8a42

package server

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mhagen/dealerfinder/internal/config"
	"github.com/mhagen/dealerfinder/internal/database"
	"github.com/mhagen/dealerfinder/internal/matcher"
	"github.com/mhagen/dealerfinder/internal/metrics"
)

// zipPattern matches a bare 5-digit US postal code. Queries of this shape
// are answered by exact postal equality instead of fuzzy ranking, so "80202"
// never drowns in edit-distance noise from unrelated numeric fields.
var zipPattern = regexp.MustCompile(`^\d{5}$`)

type searchResult struct {
	Dealer database.Dealer `json:"dealer"`
	Score  int             `json:"score"`
}

func dealerFields(d database.Dealer) matcher.Fields {
	return matcher.Fields{
		Name:   d.Name,
		City:   d.City,
		State:  d.State,
		Postal: d.Postal,
		Brands: d.Brands,
	}
}

// loadSearchPool fetches the structured-filtered dealer set the fuzzy stage
// operates on. Structured filters are exact and applied in the store, before
// any ranking.
func loadSearchPool(c *gin.Context, store database.Store) ([]database.Dealer, bool) {
	filter := database.DealerFilter{
		State:  strings.ToUpper(strings.TrimSpace(c.Query("state"))),
		Postal: strings.TrimSpace(c.Query("postal")),
		Brand:  strings.TrimSpace(c.Query("brand")),
	}
	dealers, err := store.FilterDealers(filter)
	if err != nil {
		RespondWithInternalError(c, "failed to load dealers")
		return nil, false
	}
	return dealers, true
}

func (s *Server) searchDealers(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	threshold := ParseQueryInt(c, "threshold", config.AppConfig.SearchThreshold)
	if threshold < 0 {
		threshold = matcher.DefaultThreshold
	}

	dealers, ok := loadSearchPool(c, store)
	if !ok {
		return
	}

	// A bare ZIP query is structured lookup, not fuzzy matching.
	if zipPattern.MatchString(query) {
		results := make([]searchResult, 0)
		for _, dealer := range dealers {
			if dealer.Postal == query {
				results = append(results, searchResult{Dealer: dealer, Score: 0})
			}
		}
		metrics.IncSearch("zip_exact")
		c.JSON(http.StatusOK, gin.H{
			"query":   query,
			"mode":    "zip",
			"results": results,
			"total":   len(results),
		})
		return
	}

	records := make([]matcher.Fields, len(dealers))
	for i, dealer := range dealers {
		records[i] = dealerFields(dealer)
	}

	start := time.Now()
	candidates := matcher.Rank(query, records, threshold)
	metrics.ObserveMatchDuration(time.Since(start))

	results := make([]searchResult, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, searchResult{
			Dealer: dealers[candidate.Index],
			Score:  candidate.Score,
		})
	}

	if len(results) > 0 {
		metrics.IncSearch("matched")
	} else {
		metrics.IncSearch("no_match")
	}

	c.JSON(http.StatusOK, gin.H{
		"query":     query,
		"mode":      "fuzzy",
		"threshold": threshold,
		"results":   results,
		"total":     len(results),
	})
}

func (s *Server) suggestCompletions(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	limit := ParseQueryInt(c, "limit", config.AppConfig.SuggestionLimit)
	if limit <= 0 {
		limit = matcher.DefaultSuggestionLimit
	}

	cacheKey := fmt.Sprintf("%s|%s|%s|%s|%d",
		strings.ToLower(query),
		strings.ToUpper(strings.TrimSpace(c.Query("state"))),
		strings.TrimSpace(c.Query("postal")),
		strings.TrimSpace(c.Query("brand")),
		limit,
	)

	suggestions, hit := s.suggestCache.Get(cacheKey)
	if !hit {
		dealers, ok := loadSearchPool(c, store)
		if !ok {
			return
		}

		records := make([]matcher.Fields, len(dealers))
		for i, dealer := range dealers {
			records[i] = dealerFields(dealer)
		}

		start := time.Now()
		suggestions = matcher.Suggest(query, records, limit)
		metrics.ObserveMatchDuration(time.Since(start))
		s.suggestCache.Set(cacheKey, suggestions)
	}
	metrics.IncSuggestions()

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}
