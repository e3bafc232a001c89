// Package metrics defines the Prometheus instruments shared across packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rotation loop metrics
var (
	// TicksTotal counts loop ticks by outcome
	// (applied, awaiting_session, no_product_sets, transient_error, escalating_error, fatal_error).
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_ticks_total",
			Help: "Rotation loop ticks by account and outcome",
		},
		[]string{"account", "outcome"},
	)

	// LoopPhase tracks the current loop phase per account
	// (0=idle, 1=running, 2=stopping, 3=stopped_on_error).
	LoopPhase = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rotation_loop_phase",
			Help: "Current rotation loop phase (0=idle, 1=running, 2=stopping, 3=stopped_on_error)",
		},
		[]string{"account"},
	)

	// ConsecutiveErrors tracks the escalating-failure counter per account.
	ConsecutiveErrors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rotation_consecutive_errors",
			Help: "Consecutive escalating failures counted toward the stop threshold",
		},
		[]string{"account"},
	)

	// ManualSwitchesTotal counts operator-triggered out-of-band applies.
	ManualSwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotation_manual_switches_total",
			Help: "Manual product-set switches by status",
		},
		[]string{"status"},
	)
)

// Member API client metrics
var (
	// MemberAPIRequestsTotal counts livekenceng member API calls by endpoint and status.
	MemberAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_api_requests_total",
			Help: "Member API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// MemberAPIRequestDuration tracks member API latency in seconds.
	MemberAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "member_api_request_duration_seconds",
			Help:    "Member API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
)

// Cache metrics
var (
	// CatalogCacheHits counts product-set cache lookups by source (redis, origin).
	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Product-set catalog lookups by serving source",
		},
		[]string{"source"},
	)

	// CacheBreakerState tracks the redis circuit breaker state
	// (0=closed, 1=half-open, 2=open).
	CacheBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_cache_breaker_state",
			Help: "Redis cache circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// RedisOpsTotal tracks Redis operations by command and status.
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by command and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds.
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)

// Status stream metrics
var (
	// StatusStreamClients tracks connected websocket status clients.
	StatusStreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_stream_clients",
			Help: "Connected websocket status stream clients",
		},
	)
)

// PhaseValue converts a loop phase name to its gauge encoding.
func PhaseValue(phase string) float64 {
	switch phase {
	case "running":
		return 1
	case "stopping":
		return 2
	case "stopped_on_error":
		return 3
	default:
		return 0
	}
}
