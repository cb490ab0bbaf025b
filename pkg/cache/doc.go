// Package cache provides read-through HTTP response caching with Redis
// backend and glob-pattern invalidation.
//
// The package has three layers:
//
//   - Store: key/value operations over Redis with per-key TTL and
//     cursor-based pattern deletion (SCAN, bounded batches)
//   - Response middleware: wraps GET handlers, replays cached responses on
//     hit and captures handler output on miss
//   - Invalidator: clears affected keys after a committed mutation
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	store := cache.NewStore(redisClient)
//	inv := cache.NewInvalidator(store)
//
//	// Read path: cache product listings for 5 minutes
//	r.With(cache.Response(store, cache.PrefixProducts, 5*time.Minute)).
//		Get("/api/products", listProducts)
//
//	// Write path: after the mutation commits, clear both the specific
//	// entry and the listing views
//	inv.Invalidate(ctx,
//		cache.Key(cache.PrefixProducts, "/api/products/"+id),
//		cache.Pattern(cache.PrefixProducts, "/api/products"),
//	)
//
// # Key Namespace
//
// Keys follow the convention <entityPrefix>:<path?query> with the request
// URI verbatim. Reordered query parameters therefore produce distinct
// entries; WithNormalizedKeys opts into sorted-parameter keys at the cost
// of diverging from the persisted namespace.
//
// # Failure Semantics
//
// The cache is strictly fail-open. A store failure degrades reads to a
// cache miss and writes/invalidations to a logged warning. No cache error
// ever propagates into an HTTP response.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - marketplace_cache_hits_total{layer="redis"} - Cache hits
//   - marketplace_cache_misses_total - Cache misses
//   - marketplace_cache_size_bytes{layer="redis"} - Bytes written
//   - marketplace_cache_errors_total{operation} - Store operation errors
//   - marketplace_cache_invalidations_total{result} - Invalidation patterns processed
//   - marketplace_cache_invalidated_keys_total - Keys removed by invalidation
package cache
