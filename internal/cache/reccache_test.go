package cache

import (
	"testing"
	"time"

	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

func TestKey(t *testing.T) {
	cases := []struct {
		name   string
		mode   string
		userID uint
		limit  int
		want   string
	}{
		{name: "known_user", mode: "hybrid", userID: 42, limit: 10, want: "hybrid:42:10"},
		{name: "anonymous_user_empty_segment", mode: "hybrid", userID: 0, limit: 10, want: "hybrid::10"},
		{name: "mode_distinguishes", mode: "llm", userID: 42, limit: 10, want: "llm:42:10"},
		{name: "limit_distinguishes", mode: "toprated", userID: 0, limit: 25, want: "toprated::25"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Key(tc.mode, tc.userID, tc.limit); got != tc.want {
				t.Fatalf("Key(%q, %d, %d)=%q, want %q", tc.mode, tc.userID, tc.limit, got, tc.want)
			}
		})
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewRecommendationCache(DefaultTTL)

	if got := c.Get("hybrid:1:10"); got != nil {
		t.Fatalf("cold cache returned %v", got)
	}

	books := []*types.Book{{ID: 1, Title: "Dune"}, {ID: 2, Title: "Circe"}}
	c.Set("hybrid:1:10", books)

	got := c.Get("hybrid:1:10")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("round trip returned %v", got)
	}

	// Other keys stay cold.
	if other := c.Get("hybrid:2:10"); other != nil {
		t.Fatalf("unrelated key returned %v", other)
	}
}

func TestCacheExpires(t *testing.T) {
	c := NewRecommendationCache(30 * time.Millisecond)
	c.Set("llm:7:10", []*types.Book{{ID: 3}})

	if got := c.Get("llm:7:10"); got == nil {
		t.Fatalf("entry missing before TTL")
	}
	time.Sleep(80 * time.Millisecond)
	if got := c.Get("llm:7:10"); got != nil {
		t.Fatalf("entry survived past TTL: %v", got)
	}
}

func TestCachePurge(t *testing.T) {
	c := NewRecommendationCache(DefaultTTL)
	c.Set("hybrid:1:10", []*types.Book{{ID: 1}})
	c.Set("toprated::10", []*types.Book{{ID: 2}})
	c.Purge()
	if c.Get("hybrid:1:10") != nil || c.Get("toprated::10") != nil {
		t.Fatalf("entries survived purge")
	}
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	c := NewRecommendationCache(0)
	c.Set("hybrid::10", []*types.Book{{ID: 9}})
	if got := c.Get("hybrid::10"); len(got) != 1 {
		t.Fatalf("entry with default TTL missing: %v", got)
	}
}
