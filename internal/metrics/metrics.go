// Package metrics holds the Prometheus instruments used across venuedesk.
// All collectors are registered with the global registry, so importing the
// package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	//
	// Venue gate cache
	//

	VenueCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "venue_cache_entries",
			Help: "Number of venues currently held by the gate cache.",
		})

	VenueCacheLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "venue_cache_load_total",
			Help: "Cumulative number of venues loaded into the gate cache.",
		})

	VenueCacheLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "venue_cache_load_errors_total",
			Help: "Cumulative number of gate cache load errors (not-found excluded).",
		})

	VenueCacheEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "venue_cache_evict_total",
			Help: "Cumulative number of venues evicted from the gate cache.",
		})

	GateChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_checks_total",
			Help: "Submission-page access checks by outcome.",
		}, []string{"result"})

	//
	// Intake
	//

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Submissions stored, by post type.",
		}, []string{"post_type"})

	AttachmentsStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attachments_stored_total",
			Help: "Attachments uploaded and recorded.",
		})

	AttachmentsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attachments_rejected_total",
			Help: "Attachments skipped during intake, by stage.",
		}, []string{"stage"})

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Staff notification attempts by result.",
		}, []string{"result"})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests refused by the intake rate limiter.",
		})

	//
	// HTTP
	//

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by status code and method.",
		}, []string{"code", "method"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency, by status code and method.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 10, 60},
		}, []string{"code", "method"})
)

func init() {
	prometheus.MustRegister(
		VenueCacheEntries,
		VenueCacheLoadTotal,
		VenueCacheLoadErrorsTotal,
		VenueCacheEvictTotal,
		GateChecksTotal,
		SubmissionsTotal,
		AttachmentsStoredTotal,
		AttachmentsRejectedTotal,
		NotificationsTotal,
		RateLimitedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
