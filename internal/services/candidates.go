package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

const (
	candidateMultiplier = 4
	minCandidates       = 30
)

// candidateSource is one step of the pool builder's backfill chain. Sources
// are tried in order until the target count is met, which keeps the fallback
// policy a visible data structure instead of nested conditionals.
type candidateSource struct {
	name  string
	fetch func(ctx context.Context) ([]*types.Book, error)
}

// uniqAppend copies source books into dest, skipping ids already seen and
// ids in exclude, until dest holds target entries.
func uniqAppend(dest []*types.Book, source []*types.Book, seen map[uint]struct{}, exclude map[uint]struct{}, target int) []*types.Book {
	for _, book := range source {
		if len(dest) >= target {
			break
		}
		if _, ok := seen[book.ID]; ok {
			continue
		}
		if exclude != nil {
			if _, ok := exclude[book.ID]; ok {
				continue
			}
		}
		seen[book.ID] = struct{}{}
		dest = append(dest, book)
	}
	return dest
}

// buildCandidatePool returns the over-provisioned, deduplicated, best-first
// candidate set for one recommendation request. Anonymous callers get the
// interleaved recent/evergreen blend; known users get the scored path with
// favorites excluded. An empty catalog yields an empty pool, not an error.
func (rs *recommendationService) buildCandidatePool(ctx context.Context, userID uint, limit int, signals *PreferenceSignals) ([]*types.Book, error) {
	if userID == 0 {
		return rs.anonymousPool(ctx, limit)
	}
	return rs.personalizedPool(ctx, limit, signals)
}

func (rs *recommendationService) anonymousPool(ctx context.Context, limit int) ([]*types.Book, error) {
	target := limit * 2

	var recentlyPopular, evergreen []*types.Book
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := rs.bookRepo.ListRecentPopular(gctx, nil, target)
		if err != nil {
			return err
		}
		recentlyPopular = rows
		return nil
	})
	g.Go(func() error {
		rows, err := rs.bookRepo.ListEvergreen(gctx, nil, target)
		if err != nil {
			return err
		}
		evergreen = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := make([]*types.Book, 0, target)
	seen := map[uint]struct{}{}

	// Round-robin blend: alternate between the recent and evergreen lists,
	// each with its own cursor, skipping duplicate ids. When one list runs
	// out the other keeps filling.
	recentIdx, evergreenIdx := 0, 0
	for len(pool) < target && (recentIdx < len(recentlyPopular) || evergreenIdx < len(evergreen)) {
		var pick *types.Book
		if len(pool)%2 == 0 && recentIdx < len(recentlyPopular) {
			pick = recentlyPopular[recentIdx]
			recentIdx++
		} else if evergreenIdx < len(evergreen) {
			pick = evergreen[evergreenIdx]
			evergreenIdx++
		} else {
			pick = recentlyPopular[recentIdx]
			recentIdx++
		}
		if _, ok := seen[pick.ID]; ok {
			continue
		}
		seen[pick.ID] = struct{}{}
		pool = append(pool, pick)
	}

	fallbacks := []candidateSource{
		{
			name: "rating_only",
			fetch: func(ctx context.Context) ([]*types.Book, error) {
				return rs.bookRepo.ListByRatingOnly(ctx, nil, target)
			},
		},
	}
	for _, source := range fallbacks {
		if len(pool) >= target {
			break
		}
		rows, err := source.fetch(ctx)
		if err != nil {
			return nil, err
		}
		pool = uniqAppend(pool, rows, seen, nil, target)
	}

	return pool, nil
}

func (rs *recommendationService) personalizedPool(ctx context.Context, limit int, signals *PreferenceSignals) ([]*types.Book, error) {
	candidateTake := limit * candidateMultiplier
	if candidateTake < minCandidates {
		candidateTake = minCandidates
	}

	raw, err := rs.bookRepo.ListTopRated(ctx, nil, candidateTake*2)
	if err != nil {
		return nil, err
	}

	now := rs.now()
	seen := map[uint]struct{}{}
	scored := make([]scoredBook, 0, len(raw))
	for _, book := range raw {
		if _, ok := seen[book.ID]; ok {
			continue
		}
		seen[book.ID] = struct{}{}
		scored = append(scored, scoredBook{book: book, score: scoreBook(book, signals, true, now)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	pool := make([]*types.Book, 0, candidateTake)
	added := map[uint]struct{}{}
	for _, entry := range scored {
		if len(pool) >= candidateTake {
			break
		}
		if _, ok := signals.FavoriteBookIDs[entry.book.ID]; ok {
			continue
		}
		added[entry.book.ID] = struct{}{}
		pool = append(pool, entry.book)
	}

	fallbacks := []candidateSource{
		{
			name: "popularity",
			fetch: func(ctx context.Context) ([]*types.Book, error) {
				return rs.bookRepo.ListEvergreen(ctx, nil, candidateTake)
			},
		},
	}
	for _, source := range fallbacks {
		if len(pool) >= candidateTake {
			break
		}
		rows, err := source.fetch(ctx)
		if err != nil {
			return nil, err
		}
		pool = uniqAppend(pool, rows, added, signals.FavoriteBookIDs, candidateTake)
	}

	return pool, nil
}
