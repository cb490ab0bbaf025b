package cache

import (
	"net/http/httptest"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		identity string
		want     string
	}{
		{
			name:     "simple path",
			prefix:   PrefixProducts,
			identity: "/api/products",
			want:     "products:/api/products",
		},
		{
			name:     "path with query",
			prefix:   PrefixProducts,
			identity: "/api/products?page=1",
			want:     "products:/api/products?page=1",
		},
		{
			name:     "specific entity",
			prefix:   PrefixServices,
			identity: "/api/services/abc123",
			want:     "services:/api/services/abc123",
		},
		{
			name:     "legacy deliveries prefix",
			prefix:   PrefixDeliveriesLegacy,
			identity: "/api/deliveries",
			want:     "deliverires:/api/deliveries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Key(tt.prefix, tt.identity)
			if got != tt.want {
				t.Errorf("Key() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyForRequest_VerbatimQuery(t *testing.T) {
	// The request identity is the raw URI. Parameter order is preserved, so
	// reordered queries produce distinct keys.
	r1 := httptest.NewRequest("GET", "/api/products?page=1&sort=price", nil)
	r2 := httptest.NewRequest("GET", "/api/products?sort=price&page=1", nil)

	k1 := KeyForRequest(PrefixProducts, r1)
	k2 := KeyForRequest(PrefixProducts, r2)

	if k1 != "products:/api/products?page=1&sort=price" {
		t.Errorf("KeyForRequest = %v", k1)
	}
	if k1 == k2 {
		t.Error("Verbatim keys should differ for reordered query parameters")
	}
}

func TestNormalizedKeyForRequest(t *testing.T) {
	// Normalized keys collapse parameter reorderings into one entry.
	r1 := httptest.NewRequest("GET", "/api/products?page=1&sort=price", nil)
	r2 := httptest.NewRequest("GET", "/api/products?sort=price&page=1", nil)

	k1 := NormalizedKeyForRequest(PrefixProducts, r1)
	k2 := NormalizedKeyForRequest(PrefixProducts, r2)

	if k1 != k2 {
		t.Errorf("Normalized keys should match: %v != %v", k1, k2)
	}
	if k1 != "products:/api/products?page=1&sort=price" {
		t.Errorf("NormalizedKeyForRequest = %v", k1)
	}
}

func TestNormalizedKeyForRequest_NoQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/products", nil)

	got := NormalizedKeyForRequest(PrefixProducts, r)
	if got != "products:/api/products" {
		t.Errorf("NormalizedKeyForRequest = %v, want products:/api/products", got)
	}
}

func TestPattern(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		identity string
		want     string
	}{
		{
			name:     "collection pattern",
			prefix:   PrefixProducts,
			identity: "/api/products",
			want:     "products:/api/products*",
		},
		{
			name:     "whole namespace",
			prefix:   PrefixCarts,
			identity: "",
			want:     "carts:*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pattern(tt.prefix, tt.identity)
			if got != tt.want {
				t.Errorf("Pattern() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestKeyForRequest_Determinism ensures the same request always produces the
// same key.
func TestKeyForRequest_Determinism(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/vendors/9?expand=profile", nil)

	first := KeyForRequest(PrefixVendors, r)
	for i := 0; i < 10; i++ {
		if got := KeyForRequest(PrefixVendors, r); got != first {
			t.Errorf("KeyForRequest not deterministic: %v != %v", got, first)
		}
	}
}
