package cache

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Invalidator removes cached entries after a committed mutation. Write-path
// handlers call it with every pattern affected by the change: typically both
// the specific-entity key and the collection-wide pattern, since a mutation
// usually dirties an individual-resource view and one or more listing views.
//
// There is no automatic derivation of patterns from entity types. Supplying
// the complete pattern set is the caller's responsibility; a forgotten
// pattern means a stale read until TTL expiry.
type Invalidator struct {
	store  *Store
	logger zerolog.Logger
}

// NewInvalidator creates an invalidation dispatcher over the given store.
func NewInvalidator(store *Store) *Invalidator {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Invalidator{
		store:  store,
		logger: log.With().Str("component", "cache-invalidator").Logger(),
	}
}

// Invalidate deletes all cache entries matching each of the given glob
// patterns and returns the total number of keys removed. Patterns are
// processed independently: a failure on one is logged and the remaining
// patterns are still attempted. Invalidate never returns an error; the
// cache is a freshness optimization and must not fail the write path.
func (inv *Invalidator) Invalidate(ctx context.Context, patterns ...string) int {
	total := 0

	for _, pattern := range patterns {
		if pattern == "" {
			inv.logger.Warn().Msg("Skipping empty invalidation pattern")
			Invalidations.WithLabelValues("skipped").Inc()
			continue
		}

		removed, err := inv.store.DeleteMatching(ctx, pattern)
		total += removed
		if err != nil {
			inv.logger.Warn().
				Err(err).
				Str("pattern", pattern).
				Int("removed", removed).
				Msg("Invalidation pattern failed, continuing with remaining patterns")
			Invalidations.WithLabelValues("error").Inc()
			continue
		}

		inv.logger.Debug().
			Str("pattern", pattern).
			Int("removed", removed).
			Msg("Invalidated cache entries")
		Invalidations.WithLabelValues("ok").Inc()
	}

	return total
}
