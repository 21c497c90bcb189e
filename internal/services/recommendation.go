package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/cache"
	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

const (
	ModeHybrid   = "hybrid"
	ModeTopRated = "toprated"
	ModeLLM      = "llm"

	DefaultRecommendationLimit = 10
)

type RecommendationService interface {
	GetHybridRecommendations(ctx context.Context, userID uint, limit int) ([]*types.Book, error)
	GetTopRatedRecommendations(ctx context.Context, limit int) ([]*types.Book, error)
	GetLLMRecommendations(ctx context.Context, userID uint, limit int) ([]*types.Book, error)
}

type recommendationService struct {
	db           *gorm.DB
	log          *logger.Logger
	bookRepo     repos.BookRepo
	favoriteRepo repos.FavoriteRepo
	reviewRepo   repos.ReviewRepo
	recCache     *cache.RecommendationCache
	ranker       Ranker
	now          func() time.Time
}

// NewRecommendationService wires the facade over the candidate pool builder,
// the signal extractor, the optional external ranker and the shared cache.
// now is injectable so day-scoped tiebreaks are testable; nil means wall
// clock.
func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	bookRepo repos.BookRepo,
	favoriteRepo repos.FavoriteRepo,
	reviewRepo repos.ReviewRepo,
	recCache *cache.RecommendationCache,
	ranker Ranker,
	now func() time.Time,
) RecommendationService {
	serviceLog := log.With("service", "RecommendationService")
	if now == nil {
		now = time.Now
	}
	return &recommendationService{
		db:           db,
		log:          serviceLog,
		bookRepo:     bookRepo,
		favoriteRepo: favoriteRepo,
		reviewRepo:   reviewRepo,
		recCache:     recCache,
		ranker:       ranker,
		now:          now,
	}
}

// GetHybridRecommendations blends personalization signals with
// quality/popularity scoring. Anonymous callers fall back to the interleaved
// recent/evergreen pool. limit is the requested depth; the cached pool is
// over-fetched beyond it.
func (rs *recommendationService) GetHybridRecommendations(ctx context.Context, userID uint, limit int) ([]*types.Book, error) {
	limit = normalizeLimit(limit)
	key := cache.Key(ModeHybrid, userID, limit)
	if cached := rs.recCache.Get(key); cached != nil {
		return capBooks(cached, limit), nil
	}

	signals, err := rs.buildUserSignals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to build preference signals: %w", err)
	}
	pool, err := rs.buildCandidatePool(ctx, userID, limit, signals)
	if err != nil {
		return nil, fmt.Errorf("Failed to build candidate pool: %w", err)
	}

	rs.recCache.Set(key, pool)
	return capBooks(pool, limit), nil
}

// GetTopRatedRecommendations is the pure popularity mode: rating-ordered,
// user-independent.
func (rs *recommendationService) GetTopRatedRecommendations(ctx context.Context, limit int) ([]*types.Book, error) {
	limit = normalizeLimit(limit)
	key := cache.Key(ModeTopRated, 0, limit)
	if cached := rs.recCache.Get(key); cached != nil {
		return capBooks(cached, limit), nil
	}

	rows, err := rs.bookRepo.ListTopRated(ctx, nil, limit*2)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch top rated books: %w", err)
	}
	pool := make([]*types.Book, 0, len(rows))
	seen := map[uint]struct{}{}
	for _, book := range rows {
		if _, ok := seen[book.ID]; ok {
			continue
		}
		seen[book.ID] = struct{}{}
		pool = append(pool, book)
	}

	rs.recCache.Set(key, pool)
	return capBooks(pool, limit), nil
}

// GetLLMRecommendations runs the heuristic pool and then attempts the
// external reranking pass. Adapter failures degrade silently to the
// heuristic order, so the caller never sees a distinct error mode.
func (rs *recommendationService) GetLLMRecommendations(ctx context.Context, userID uint, limit int) ([]*types.Book, error) {
	limit = normalizeLimit(limit)
	key := cache.Key(ModeLLM, userID, limit)
	if cached := rs.recCache.Get(key); cached != nil {
		return capBooks(cached, limit), nil
	}

	signals, err := rs.buildUserSignals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to build preference signals: %w", err)
	}
	pool, err := rs.buildCandidatePool(ctx, userID, limit, signals)
	if err != nil {
		return nil, fmt.Errorf("Failed to build candidate pool: %w", err)
	}

	if rs.ranker != nil && rs.ranker.Enabled() && len(pool) > 0 {
		entries := rs.ranker.RankCandidates(ctx, limit, pool, signals.ProfileSummary())
		if len(entries) > 0 {
			pool = mergeRankedPool(pool, entries)
		}
	}

	rs.recCache.Set(key, pool)
	return capBooks(pool, limit), nil
}

// mergeRankedPool puts externally ranked books first, in the returned order,
// followed by the rest of the pool in its original heuristic order. A partial
// external ranking is merged with the baseline, never replacing it.
func mergeRankedPool(pool []*types.Book, entries []RankingEntry) []*types.Book {
	byID := make(map[uint]*types.Book, len(pool))
	for _, book := range pool {
		byID[book.ID] = book
	}

	merged := make([]*types.Book, 0, len(pool))
	taken := map[uint]struct{}{}
	for _, entry := range entries {
		book, ok := byID[entry.BookID]
		if !ok {
			continue
		}
		if _, dup := taken[entry.BookID]; dup {
			continue
		}
		taken[entry.BookID] = struct{}{}
		merged = append(merged, book)
	}
	for _, book := range pool {
		if _, ok := taken[book.ID]; ok {
			continue
		}
		merged = append(merged, book)
	}
	return merged
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecommendationLimit
	}
	return limit
}

func capBooks(books []*types.Book, limit int) []*types.Book {
	if len(books) <= limit {
		return books
	}
	return books[:limit]
}
