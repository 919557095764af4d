package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Token lifecycle
	TokenExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbit_token_exchanges_total",
			Help: "Authorization code exchanges by result",
		},
		[]string{"result"}, // "success", "invalid_state", "rejected", "error"
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbit_token_refreshes_total",
			Help: "Access token refreshes by result",
		},
		[]string{"result"}, // "success", "rejected", "error", "skipped"
	)

	// Upstream API
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitbit_upstream_requests_total",
			Help: "Authenticated requests to the Fitbit API by outcome",
		},
		[]string{"outcome"}, // "ok", "unauthorized", "client_error", "server_error", "transport_error", "rejected"
	)

	UpstreamRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fitbit_upstream_request_duration_seconds",
			Help:    "Latency of requests to the Fitbit API",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fitbit_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Intraday cache
	IntradayRowsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intraday_rows_stored_total",
			Help: "Minute rows written by intraday ingestion",
		},
	)

	IntradayCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intraday_cache_lookups_total",
			Help: "Cached intraday reads by result",
		},
		[]string{"result"}, // "hit", "miss"
	)
)
