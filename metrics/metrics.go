package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound HTTP traffic by route template.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests served (by route, method and status class).",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Outbound Storefront GraphQL calls.
	StorefrontRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of Storefront API operations (by operation and result).",
		},
		[]string{"operation", "result"}, // result = "ok" | "error"
	)

	StorefrontRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Duration of Storefront API operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"operation"},
	)

	UpsellCacheAccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upsell_cache_access_total",
			Help: "Number of upsell cache hits/misses.",
		},
		[]string{"result"}, // hit | miss
	)

	// Settled upsell fetches by outcome kind.
	UpsellFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upsell_fetch_total",
			Help: "Upsell source fetches by outcome.",
		},
		[]string{"outcome"}, // ready | network | malformed | upstream | dropped
	)

	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart line additions by operation and result.",
		},
		[]string{"operation", "result"},
	)
)

// ObserveStorefront records the outcome and latency of one Storefront operation.
func ObserveStorefront(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StorefrontRequestsTotal.WithLabelValues(operation, result).Inc()
	StorefrontRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
