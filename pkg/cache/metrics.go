package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by layer (redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"layer"}, // "redis"
	)

	// CacheMisses tracks cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheSize tracks bytes written to the cache by layer
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketplace_cache_size_bytes",
			Help: "Bytes written to the response cache",
		},
		[]string{"layer"}, // "redis"
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "delete_matching"
	)

	// Invalidations tracks invalidation calls by result
	Invalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_cache_invalidations_total",
			Help: "Total number of invalidation patterns processed",
		},
		[]string{"result"}, // "ok", "error", "skipped"
	)

	// InvalidatedKeys tracks how many keys invalidation removed
	InvalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_cache_invalidated_keys_total",
			Help: "Total number of cache keys removed by pattern invalidation",
		},
	)
)
