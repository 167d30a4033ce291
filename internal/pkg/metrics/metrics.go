package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 閘道調用
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_gateway_requests_total",
			Help: "Total number of recipe gateway calls by endpoint and result",
		},
		[]string{"endpoint", "result"}, // result: success, failure, rejected
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_gateway_request_duration_seconds",
			Help:    "Duration of recipe gateway HTTP calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// 回應快取
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"backend", "result"}, // result: hit, miss
	)

	// 搜尋
	SearchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_outcomes_total",
			Help: "Completed searches by outcome status",
		},
		[]string{"status"},
	)

	SearchSubcalls = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_search_subcalls",
			Help:    "Number of gateway calls planned per search",
			Buckets: []float64{2, 4, 6, 8, 12, 16, 24},
		},
	)

	// 斷路器
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipe_gateway_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_gateway_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)
