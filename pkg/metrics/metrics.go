// Package metrics provides the centralized Prometheus registry reference.
// All metrics are defined in their respective packages (cache, realtime) to
// maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by this module.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - marketplace_cache_hits_total{layer="redis"} (Counter): Response cache hits
//   - marketplace_cache_misses_total (Counter): Response cache misses
//   - marketplace_cache_size_bytes{layer="redis"} (Gauge): Bytes written to the cache
//   - marketplace_cache_errors_total{operation} (Counter): Store operation errors
//   - marketplace_cache_invalidations_total{result} (Counter): Invalidation patterns by outcome
//   - marketplace_cache_invalidated_keys_total (Counter): Keys removed by pattern invalidation
//
// Realtime Metrics (pkg/realtime):
//   - marketplace_realtime_connections (Gauge): Currently connected clients
//   - marketplace_realtime_connections_total (Counter): All connections ever registered
//   - marketplace_realtime_rooms (Gauge): Rooms with at least one local member
//   - marketplace_realtime_events_delivered_total{scope} (Counter): Event deliveries
//   - marketplace_realtime_dropped_sends_total (Counter): Sends dropped for slow/dead clients
//   - marketplace_realtime_bridge_published_total (Counter): Envelopes published cross-process
//   - marketplace_realtime_bridge_received_total (Counter): Envelopes received cross-process
//   - marketplace_realtime_bridge_errors_total{operation} (Counter): Bridge failures
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(marketplace_cache_hits_total[5m])) /
//   (sum(rate(marketplace_cache_hits_total[5m])) + sum(rate(marketplace_cache_misses_total[5m])))
//
//   # Stale-Read Risk (invalidation failures)
//   rate(marketplace_cache_invalidations_total{result="error"}[5m])
//
//   # Connected Dashboard Clients
//   marketplace_realtime_connections
//
//   # Bridge Health
//   rate(marketplace_realtime_bridge_errors_total[5m])
