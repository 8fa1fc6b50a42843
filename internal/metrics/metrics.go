package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Import pipeline metrics
	ImportBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_batches_total",
			Help: "Total number of import batches processed, by source format",
		},
		[]string{"format"},
	)
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_total",
			Help: "Total number of import rows processed, by outcome",
		},
		[]string{"result"},
	)

	// Category aggregate cache metrics
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_requests_total",
			Help: "Category aggregate cache lookups, by result",
		},
		[]string{"result"},
	)
)
