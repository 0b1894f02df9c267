package httpapi

import (
	"context"
	"testing"

	"seawaywatch/pkg/cache"
)

func TestResponseCacheServesSecondCallFromCache(t *testing.T) {
	rc := NewResponseCache(cache.NewMemoryCache())
	ctx := context.Background()

	first, err := rc.marshalCached(ctx, "k", map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("marshalCached: %v", err)
	}
	// A different value under the same key should still yield the first
	// call's body: the second call is a cache hit, not a re-marshal.
	second, err := rc.marshalCached(ctx, "k", map[string]int{"n": 2})
	if err != nil {
		t.Fatalf("marshalCached: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected a cache hit to return the first body, got %q vs %q", first, second)
	}
}

func TestResponseCacheNilIsDisabled(t *testing.T) {
	var rc *ResponseCache
	body, err := rc.marshalCached(context.Background(), "k", map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("marshalCached on nil cache: %v", err)
	}
	if string(body) != `{"n":1}` {
		t.Fatalf("unexpected body: %s", body)
	}
}
