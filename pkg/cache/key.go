package cache

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Entity prefixes used in cache key namespaces. A prefix groups all cached
// responses for one domain entity, so write paths can invalidate the whole
// group with a single pattern (e.g. "products:*").
const (
	PrefixAuth          = "auth"
	PrefixProducts      = "products"
	PrefixServices      = "services"
	PrefixCarts         = "carts"
	PrefixVendors       = "vendors"
	PrefixComplaints    = "complaints"
	PrefixDeliveries    = "deliveries"
	PrefixAdmin         = "admin"
	PrefixNotifications = "notifications"
	PrefixPayments      = "payments"

	// PrefixDeliveriesLegacy is the misspelled prefix found in previously
	// cached data. Invalidation callers that interoperate with the old key
	// space should clear both prefixes.
	//
	// Deprecated: use PrefixDeliveries for new keys.
	PrefixDeliveriesLegacy = "deliverires"
)

// Key builds a cache key from an entity prefix and a request identity.
// Format: <prefix>:<identity>
//
// Example:
//
//	products:/api/products?page=1
func Key(prefix, identity string) string {
	return prefix + ":" + identity
}

// KeyForRequest derives the cache key for an HTTP request from its full
// request URI (path plus raw query, verbatim). Two semantically identical
// requests with differently ordered query parameters produce distinct keys;
// this matches the persisted key namespace and keeps pattern invalidation
// compatible with existing cached data.
func KeyForRequest(prefix string, r *http.Request) string {
	return Key(prefix, r.URL.RequestURI())
}

// NormalizedKeyForRequest derives a cache key with the query parameters
// sorted by name. This collapses reorderings of the same query into one
// entry, at the cost of diverging from the verbatim key namespace. Opt in
// via the middleware's WithNormalizedKeys option.
func NormalizedKeyForRequest(prefix string, r *http.Request) string {
	return Key(prefix, r.URL.Path+normalizeQuery(r.URL.Query()))
}

// Pattern builds a glob pattern covering every cached response under the
// given prefix and identity prefix. An empty identity covers the whole
// entity namespace.
//
// Example:
//
//	Pattern("products", "/api/products") -> "products:/api/products*"
//	Pattern("products", "")              -> "products:*"
func Pattern(prefix, identity string) string {
	return prefix + ":" + identity + "*"
}

// normalizeQuery renders query values sorted by key, with a leading "?"
// when non-empty.
func normalizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(values))
	for _, key := range keys {
		vals := values[key]
		sort.Strings(vals)
		for _, val := range vals {
			pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(val))
		}
	}
	return "?" + strings.Join(pairs, "&")
}
