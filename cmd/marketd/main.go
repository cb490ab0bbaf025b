// Command marketd runs a minimal marketplace API edge demonstrating the
// response cache and realtime fan-out wiring. Domain persistence is faked
// with an in-memory table; the point is the read path (cache middleware),
// the write path (invalidate + emit after commit), and the /ws endpoint.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sokowire/sokowire/pkg/cache"
	"github.com/sokowire/sokowire/pkg/logging"
	"github.com/sokowire/sokowire/pkg/realtime"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
		Output: os.Stderr,
	})

	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

	store := cache.NewStore(redisClient)
	inv := cache.NewInvalidator(store)

	hub := realtime.NewHub(realtime.DefaultConfig())
	defer hub.Close()

	bridge := realtime.NewBridge(redisClient, hub, realtime.DefaultBridgeConfig())
	if err := bridge.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start realtime bridge")
	}
	defer bridge.Close()

	products := newProductTable()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/ws", realtime.Handler(hub))

	r.Route("/api/products", func(r chi.Router) {
		r.With(cache.Response(store, cache.PrefixProducts, 5*time.Minute)).
			Get("/", products.list)
		r.With(cache.Response(store, cache.PrefixProducts, 5*time.Minute)).
			Get("/{id}", products.get)
		r.Post("/", products.create(inv, hub))
		r.Put("/{id}", products.update(inv, hub))
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", server.Addr).Msg("Starting marketd")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}

// product is a stand-in for a document-store entity.
type product struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Vendor string  `json:"vendor"`
	Price  float64 `json:"price"`
}

type productTable struct {
	mu    sync.RWMutex
	items map[string]product
}

func newProductTable() *productTable {
	return &productTable{items: make(map[string]product)}
}

func (t *productTable) list(w http.ResponseWriter, _ *http.Request) {
	t.mu.RLock()
	out := make([]product, 0, len(t.items))
	for _, p := range t.items {
		out = append(out, p)
	}
	t.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (t *productTable) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t.mu.RLock()
	p, ok := t.items[id]
	t.mu.RUnlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// create shows the write-path contract: commit the mutation, invalidate
// every affected cache pattern, then emit the domain event. Both calls are
// the handler's responsibility; a forgotten pattern means stale reads until
// TTL expiry.
func (t *productTable) create(inv *cache.Invalidator, hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		t.mu.Lock()
		t.items[p.ID] = p
		t.mu.Unlock()

		// The mutation is committed; invalidation and notification must run
		// even if the client has already gone away.
		postCtx := context.WithoutCancel(r.Context())

		inv.Invalidate(postCtx,
			cache.Key(cache.PrefixProducts, "/api/products/"+p.ID),
			cache.Pattern(cache.PrefixProducts, "/api/products"),
		)

		_ = hub.Emit(postCtx, realtime.AdminRoom, "newProductAdded", map[string]any{
			"productId": p.ID,
			"name":      p.Name,
			"message":   "A new product was added",
		})
		_ = hub.Emit(postCtx, realtime.VendorRoom(p.Vendor), "newProductAdded", map[string]any{
			"productId": p.ID,
			"message":   "Your product is live",
		})

		writeJSON(w, http.StatusCreated, p)
	}
}

func (t *productTable) update(inv *cache.Invalidator, hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var p product
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
			return
		}
		p.ID = id

		t.mu.Lock()
		_, exists := t.items[id]
		if exists {
			t.items[id] = p
		}
		t.mu.Unlock()

		if !exists {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}

		postCtx := context.WithoutCancel(r.Context())

		inv.Invalidate(postCtx,
			cache.Key(cache.PrefixProducts, "/api/products/"+id),
			cache.Pattern(cache.PrefixProducts, "/api/products"),
		)

		_ = hub.Emit(postCtx, realtime.AdminRoom, "productUpdated", map[string]any{
			"productId": id,
			"message":   "Product updated",
		})

		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
