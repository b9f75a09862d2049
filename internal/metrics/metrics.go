package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	// APIRequestsTotal counts admin API requests.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressroom_api_requests_total",
			Help: "Total number of admin API requests.",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration tracks admin API request latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pressroom_api_request_duration_seconds",
			Help:    "Admin API request latency distribution.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Tenant isolation metrics.
var (
	// AccessDeniedTotal counts cross-tenant access attempts rejected by the
	// document access interceptor.
	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressroom_tenant_access_denied_total",
			Help: "Cross-tenant access attempts rejected per content type and operation.",
		},
		[]string{"content_type", "operation"},
	)

	// ScopeResolutionsTotal counts tenant scope resolutions by outcome.
	ScopeResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressroom_tenant_scope_resolutions_total",
			Help: "Tenant scope resolutions by outcome (cached, resolved, none, error).",
		},
		[]string{"outcome"},
	)

	// ScopeResolutionDuration tracks tenant resolution latency in seconds.
	ScopeResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pressroom_tenant_scope_resolution_duration_seconds",
			Help:    "Tenant scope resolution latency distribution.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	// BackfillTotal counts tenant backfill runs by mode and status.
	BackfillTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressroom_tenant_backfill_total",
			Help: "Tenant backfill executions per mode (document, sweep) and status.",
		},
		[]string{"mode", "status"},
	)
)
