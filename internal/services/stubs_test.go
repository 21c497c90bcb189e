package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/cache"
	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func newTestCache() *cache.RecommendationCache {
	return cache.NewRecommendationCache(cache.DefaultTTL)
}

// stubBookRepo serves canned book lists per query shape and counts calls so
// tests can assert which sources were consulted.
type stubBookRepo struct {
	topRated      []*types.Book
	recentPopular []*types.Book
	evergreen     []*types.Book
	ratingOnly    []*types.Book

	topRatedCalls   int
	ratingOnlyCalls int
	err             error
}

func capStub(books []*types.Book, limit int) []*types.Book {
	if limit > 0 && len(books) > limit {
		return books[:limit]
	}
	return books
}

func (s *stubBookRepo) Create(ctx context.Context, tx *gorm.DB, books []*types.Book) ([]*types.Book, error) {
	return books, nil
}

func (s *stubBookRepo) GetByIDs(ctx context.Context, tx *gorm.DB, bookIDs []uint) ([]*types.Book, error) {
	return nil, nil
}

func (s *stubBookRepo) GetByIDWithReviews(ctx context.Context, tx *gorm.DB, bookID uint) (*types.Book, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBookRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit, offset int) ([]*types.Book, error) {
	return nil, nil
}

func (s *stubBookRepo) CountSearch(ctx context.Context, tx *gorm.DB, query string) (int64, error) {
	return 0, nil
}

func (s *stubBookRepo) ListTopRated(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	s.topRatedCalls++
	if s.err != nil {
		return nil, s.err
	}
	return capStub(s.topRated, limit), nil
}

func (s *stubBookRepo) ListRecentPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return capStub(s.recentPopular, limit), nil
}

func (s *stubBookRepo) ListEvergreen(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	if s.err != nil {
		return nil, s.err
	}
	return capStub(s.evergreen, limit), nil
}

func (s *stubBookRepo) ListByRatingOnly(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	s.ratingOnlyCalls++
	if s.err != nil {
		return nil, s.err
	}
	return capStub(s.ratingOnly, limit), nil
}

func (s *stubBookRepo) UpdateAggregates(ctx context.Context, tx *gorm.DB, bookID uint, avgRating float64, reviewCount int) error {
	return nil
}

type stubFavoriteRepo struct {
	favorites []*types.Favorite
	calls     int
	err       error
}

func (s *stubFavoriteRepo) Create(ctx context.Context, tx *gorm.DB, favorites []*types.Favorite) ([]*types.Favorite, error) {
	return favorites, nil
}

func (s *stubFavoriteRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*types.Favorite, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.favorites, nil
}

func (s *stubFavoriteRepo) Exists(ctx context.Context, tx *gorm.DB, userID, bookID uint) (bool, error) {
	return false, nil
}

func (s *stubFavoriteRepo) FullDelete(ctx context.Context, tx *gorm.DB, userID, bookID uint) error {
	return nil
}

type stubReviewRepo struct {
	reviews []*types.Review
	calls   int
	err     error
}

func (s *stubReviewRepo) Create(ctx context.Context, tx *gorm.DB, reviews []*types.Review) ([]*types.Review, error) {
	return reviews, nil
}

func (s *stubReviewRepo) GetByIDs(ctx context.Context, tx *gorm.DB, reviewIDs []uint) ([]*types.Review, error) {
	return nil, nil
}

func (s *stubReviewRepo) GetByBookID(ctx context.Context, tx *gorm.DB, bookID uint) ([]*types.Review, error) {
	return nil, nil
}

func (s *stubReviewRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*types.Review, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.reviews, nil
}

func (s *stubReviewRepo) Update(ctx context.Context, tx *gorm.DB, review *types.Review) error {
	return nil
}

func (s *stubReviewRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, reviewIDs []uint) error {
	return nil
}

func (s *stubReviewRepo) AggregateForBook(ctx context.Context, tx *gorm.DB, bookID uint) (float64, int, error) {
	return 0, 0, nil
}

// stubRanker returns a fixed ranking and records its invocations.
type stubRanker struct {
	enabled bool
	entries []RankingEntry
	calls   int
}

func (s *stubRanker) Enabled() bool { return s.enabled }

func (s *stubRanker) RankCandidates(ctx context.Context, limit int, books []*types.Book, profileSummary string) []RankingEntry {
	s.calls++
	return s.entries
}

func makeBook(id uint, title, author string, genres []string, year int, avgRating float64, reviewCount int, description string) *types.Book {
	return &types.Book{
		ID:            id,
		Title:         title,
		Author:        author,
		Description:   description,
		PublishedYear: year,
		Genres:        datatypes.JSONSlice[string](genres),
		AvgRating:     avgRating,
		ReviewCount:   reviewCount,
	}
}

func bookIDs(books []*types.Book) string {
	out := ""
	for i, book := range books {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", book.ID)
	}
	return out
}
