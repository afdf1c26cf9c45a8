package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics. Registered with the default registry via promauto and
// exposed on /metrics.
var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "territory",
		Subsystem: "pipeline",
		Name:      "cache_hits_total",
		Help:      "Loads served from the cached property table",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "territory",
		Subsystem: "pipeline",
		Name:      "cache_misses_total",
		Help:      "Loads that had to query the store",
	})

	LoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "territory",
		Subsystem: "pipeline",
		Name:      "load_duration_seconds",
		Help:      "Duration of property table loads from the store",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	TableRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "territory",
		Subsystem: "pipeline",
		Name:      "table_rows",
		Help:      "Row count of the most recently loaded property table",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "territory",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "territory",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})
)
