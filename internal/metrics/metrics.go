// Package metrics holds the Prometheus instruments used across the portal.
// All collectors are registered with the global registry, so importing this
// package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomePartial  = "partial"
)

var (
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_resolutions_total",
			Help: "Portal slug resolutions by outcome.",
		}, []string{"outcome"})

	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_mutations_total",
			Help: "Portal mutations by operation and outcome.",
		}, []string{"op", "outcome"})

	ViewCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_view_cache_total",
			Help: "Public view cache lookups by result (hit, miss).",
		}, []string{"result"})

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by path.",
		}, []string{"path"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(
		Resolutions,
		Mutations,
		ViewCache,
		RateLimited,
		HTTPRequestDuration,
	)
}
