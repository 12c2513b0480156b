package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total number of requests to the catalog service",
	}, []string{"endpoint", "outcome"})

	CatalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Latency of catalog service requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	StaleFetchesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stale_fetches_discarded_total",
		Help: "Total number of superseded fetch results discarded",
	})

	SearchBurstsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_bursts_coalesced_total",
		Help: "Total number of search inputs absorbed by the debounce window",
	})

	CartAddsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_adds_total",
		Help: "Total number of products added to the cart",
	})

	CartRemovesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_removes_total",
		Help: "Total number of products removed from the cart",
	})

	ForcedLogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "forced_logouts_total",
		Help: "Total number of sessions terminated by an unauthorized response",
	})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"breaker"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
