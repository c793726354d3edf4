package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilterQueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_filter_queries_total",
		Help: "Total number of catalog filter queries",
	})

	FilterQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_filter_query_duration_seconds",
		Help:    "Latency of catalog filter and sort evaluation",
		Buckets: prometheus.DefBuckets,
	})

	FacetCountDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_facet_count_duration_seconds",
		Help:    "Latency of computing facet counts for a sidebar render",
		Buckets: prometheus.DefBuckets,
	})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CartMutationsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_failed_total",
		Help: "Total number of failed cart mutations",
	}, []string{"reason"})

	CartBroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_broadcasts_total",
		Help: "Total number of settled cart change broadcasts",
	})

	WishlistTogglesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wishlist_toggles_total",
		Help: "Total number of wishlist toggles",
	})

	PersistedBlobParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "persisted_blob_parse_failures_total",
		Help: "Total number of malformed persisted blobs replaced with empty state",
	}, []string{"key"})

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
