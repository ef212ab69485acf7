package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_guide_analyses_total",
			Help: "Analyses and extractions served, by operation and the mode actually used",
		},
		[]string{"operation", "mode"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_guide_fallbacks_total",
			Help: "Real-path failures that fell back to the mock synthesizer",
		},
		[]string{"operation", "reason"},
	)

	GatewayAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_guide_gateway_attempts_total",
			Help: "Model gateway attempts by outcome",
		},
		[]string{"model", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contest_guide_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
