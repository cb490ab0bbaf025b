package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// cachedResponse is the serialized form of a stored handler response.
type cachedResponse struct {
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CachedAt    time.Time `json:"cached_at"`
}

// middlewareOptions holds optional middleware behavior.
type middlewareOptions struct {
	normalizeKeys bool
	logger        zerolog.Logger
}

// Option configures the caching middleware.
type Option func(*middlewareOptions)

// WithNormalizedKeys derives cache keys with sorted query parameters,
// collapsing parameter reorderings into a single cache entry. Off by
// default: the verbatim request URI is the persisted key convention.
func WithNormalizedKeys() Option {
	return func(o *middlewareOptions) {
		o.normalizeKeys = true
	}
}

// WithLogger sets the logger used by the middleware.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *middlewareOptions) {
		o.logger = logger
	}
}

// Response returns middleware that caches successful GET responses for the
// given entity prefix and TTL. On a hit the stored response is replayed and
// the wrapped handler never runs. On a miss the handler runs against a
// recorder; a 2xx result is stored before transmission.
//
// Any store failure is fail-open: a broken cache never fails a request that
// would otherwise succeed.
func Response(store *Store, prefix string, ttl time.Duration, opts ...Option) func(http.Handler) http.Handler {
	options := middlewareOptions{
		logger: log.With().Str("component", "cache-middleware").Logger(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only idempotent reads are cacheable.
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			key := KeyForRequest(prefix, r)
			if options.normalizeKeys {
				key = NormalizedKeyForRequest(prefix, r)
			}

			data, err := store.Get(r.Context(), key)
			if err == nil {
				var cached cachedResponse
				if err := json.Unmarshal(data, &cached); err == nil {
					options.logger.Debug().Str("key", key).Msg("Cache hit")
					replay(w, &cached)
					return
				}
				// Corrupted entry: drop it and fall through to the handler.
				options.logger.Warn().Str("key", key).Msg("Dropping corrupted cache entry")
				_ = store.Delete(r.Context(), key)
			} else if err != ErrCacheMiss {
				options.logger.Warn().Err(err).Str("key", key).Msg("Cache lookup failed, serving uncached")
			}

			w.Header().Set("X-Cache", "MISS")
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)

			if !rec.cacheable() {
				return
			}

			cached := cachedResponse{
				StatusCode:  rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
				CachedAt:    time.Now(),
			}

			payload, err := json.Marshal(&cached)
			if err != nil {
				options.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode response for caching")
				return
			}

			if err := store.Set(r.Context(), key, payload, ttl); err != nil {
				options.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
				return
			}

			options.logger.Debug().
				Str("key", key).
				Dur("ttl", ttl).
				Int("bytes", len(cached.Body)).
				Msg("Cached response")
		})
	}
}

// replay writes a stored response to the client.
func replay(w http.ResponseWriter, cached *cachedResponse) {
	if cached.ContentType != "" {
		w.Header().Set("Content-Type", cached.ContentType)
	}
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

// recorder tees the handler's response to the client while capturing the
// status and body for caching. This replaces the original implementation's
// approach of overriding the response object's send method.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

// cacheable reports whether the recorded response should be stored.
// Only successful responses are cached; errors always re-execute.
func (r *recorder) cacheable() bool {
	return r.status >= 200 && r.status < 300
}
