package cache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

const (
	DefaultTTL     = 5 * time.Minute
	defaultMaxKeys = 4096
)

// RecommendationCache maps a {mode, user, limit} key to a previously computed
// ranked pool. It is a performance optimization only: every caller must behave
// correctly when Get always misses. Entries expire maxAge after insertion and
// are evicted on read, there is no background sweep shared with callers.
type RecommendationCache struct {
	entries *expirable.LRU[string, []*types.Book]
}

func NewRecommendationCache(ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RecommendationCache{
		entries: expirable.NewLRU[string, []*types.Book](defaultMaxKeys, nil, ttl),
	}
}

// Key builds the canonical "{mode}:{userID-or-empty}:{limit}" cache key.
// Anonymous callers pass userID = 0, which renders as the empty segment.
func Key(mode string, userID uint, limit int) string {
	userSegment := ""
	if userID != 0 {
		userSegment = fmt.Sprintf("%d", userID)
	}
	return fmt.Sprintf("%s:%s:%d", mode, userSegment, limit)
}

func (c *RecommendationCache) Get(key string) []*types.Book {
	books, ok := c.entries.Get(key)
	if !ok {
		return nil
	}
	return books
}

func (c *RecommendationCache) Set(key string, books []*types.Book) {
	c.entries.Add(key, books)
}

func (c *RecommendationCache) Purge() {
	c.entries.Purge()
}
