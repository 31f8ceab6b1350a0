// Package metrics registers the Prometheus collectors tracking domain
// checking throughput and external API behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of latency histogram buckets in
// seconds, reused across the application.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

//nolint: gochecknoglobals
var (
	// DomainsChecked counts availability-check outcomes by resulting state.
	DomainsChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domaincheck_domains_checked_total",
		Help: "Number of project domains checked, by resulting state.",
	}, []string{"state"})

	// RegistrarRequests counts registrar API calls by outcome
	// (ok, non_200, transport_error, api_error).
	RegistrarRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domaincheck_registrar_requests_total",
		Help: "Number of registrar availability API requests, by outcome.",
	}, []string{"outcome"})

	// RegistrarRequestDuration observes registrar API call latency.
	RegistrarRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "domaincheck_registrar_request_duration_seconds",
		Help:    "Latency of registrar availability API requests.",
		Buckets: DefaultBuckets,
	})

	// MetricsRequests counts link-metrics API calls by outcome.
	MetricsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domaincheck_linkmetrics_requests_total",
		Help: "Number of link-metrics API requests, by outcome.",
	}, []string{"outcome"})

	// MetricsRequestDuration observes link-metrics API call latency.
	MetricsRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "domaincheck_linkmetrics_request_duration_seconds",
		Help:    "Latency of link-metrics API requests.",
		Buckets: DefaultBuckets,
	})

	// ProjectsCompleted counts projects reaching a terminal state.
	ProjectsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domaincheck_projects_finished_total",
		Help: "Number of projects reaching a terminal state, by state.",
	}, []string{"state"})

	// LockWaitDuration observes how long workers block on the API leases.
	LockWaitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "domaincheck_lock_wait_duration_seconds",
		Help:    "Time spent waiting to acquire an external API lease.",
		Buckets: DefaultBuckets,
	}, []string{"name"})
)
