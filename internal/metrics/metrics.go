// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: 7a5c9e13-4b86-4d20-9f7e-2c8a6d0b4f19

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	searchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealerfinder",
		Name:      "searches_total",
		Help:      "Total number of search requests by outcome (matched, no_match, zip_exact)",
	}, []string{"outcome"})
	suggestionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dealerfinder",
		Name:      "suggestions_total",
		Help:      "Total number of typeahead suggestion requests",
	})
	matchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dealerfinder",
		Name:      "match_duration_seconds",
		Help:      "Histogram of fuzzy ranking durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs up to ~1.6s
	})

	dealersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dealerfinder",
		Name:      "dealers_total",
		Help:      "Current total number of dealers in the directory",
	})
	reviewsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dealerfinder",
		Name:      "reviews_total",
		Help:      "Current total number of reviews",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searchesTotal, suggestionsTotal, matchDuration, dealersGauge, reviewsGauge)
	})
}

// Search lifecycle helpers
func IncSearch(outcome string) { searchesTotal.WithLabelValues(outcome).Inc() }
func IncSuggestions()          { suggestionsTotal.Inc() }
func ObserveMatchDuration(d time.Duration) {
	matchDuration.Observe(d.Seconds())
}

// Gauges
func SetDealers(n int) { dealersGauge.Set(float64(n)) }
func SetReviews(n int) { reviewsGauge.Set(float64(n)) }
