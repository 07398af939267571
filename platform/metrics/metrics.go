// Package metrics holds the Prometheus collectors for the ingestion gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgate_ingest_outcomes_total",
			Help: "Lead submissions by terminal outcome",
		},
		[]string{"outcome"},
	)

	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadgate_ingest_duration_seconds",
			Help:    "Duration of the ingestion pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadgate_rate_limit_rejections_total",
			Help: "Submissions rejected by partner admission control",
		},
	)

	ComplianceRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgate_compliance_rejections_total",
			Help: "Submissions rejected by a compliance gate",
		},
		[]string{"code"},
	)

	RoutingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgate_routing_outcomes_total",
			Help: "Routing attempts by mechanism and outcome",
		},
		[]string{"mechanism", "outcome"},
	)

	CounterFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadgate_rate_limit_counter_fallbacks_total",
			Help: "Shared counter failures served by the in-process fallback",
		},
	)
)
