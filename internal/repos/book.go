package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type BookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, books []*types.Book) ([]*types.Book, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, bookIDs []uint) ([]*types.Book, error)
	GetByIDWithReviews(ctx context.Context, tx *gorm.DB, bookID uint) (*types.Book, error)
	Search(ctx context.Context, tx *gorm.DB, query string, limit, offset int) ([]*types.Book, error)
	CountSearch(ctx context.Context, tx *gorm.DB, query string) (int64, error)
	ListTopRated(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error)
	ListRecentPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error)
	ListEvergreen(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error)
	ListByRatingOnly(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error)
	UpdateAggregates(ctx context.Context, tx *gorm.DB, bookID uint, avgRating float64, reviewCount int) error
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	repoLog := baseLog.With("repo", "BookRepo")
	return &bookRepo{db: db, log: repoLog}
}

func (br *bookRepo) Create(ctx context.Context, tx *gorm.DB, books []*types.Book) ([]*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	if len(books) == 0 {
		return []*types.Book{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (br *bookRepo) GetByIDs(ctx context.Context, tx *gorm.DB, bookIDs []uint) ([]*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.Book
	if len(bookIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", bookIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookRepo) GetByIDWithReviews(ctx context.Context, tx *gorm.DB, bookID uint) (*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var result types.Book
	if err := transaction.WithContext(ctx).
		Preload("Reviews").
		First(&result, bookID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (br *bookRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit, offset int) ([]*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.Book
	q := transaction.WithContext(ctx).Model(&types.Book{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title ILIKE ? OR author ILIKE ?", pattern, pattern)
	}
	if err := q.Order("id ASC").Limit(limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookRepo) CountSearch(ctx context.Context, tx *gorm.DB, query string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var count int64
	q := transaction.WithContext(ctx).Model(&types.Book{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title ILIKE ? OR author ILIKE ?", pattern, pattern)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (br *bookRepo) ListTopRated(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	return br.listOrdered(ctx, tx, "avg_rating DESC, review_count DESC", limit)
}

func (br *bookRepo) ListRecentPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	return br.listOrdered(ctx, tx, "published_year DESC, avg_rating DESC, review_count DESC", limit)
}

func (br *bookRepo) ListEvergreen(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	return br.listOrdered(ctx, tx, "review_count DESC, avg_rating DESC", limit)
}

func (br *bookRepo) ListByRatingOnly(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Book, error) {
	return br.listOrdered(ctx, tx, "avg_rating DESC", limit)
}

func (br *bookRepo) listOrdered(ctx context.Context, tx *gorm.DB, order string, limit int) ([]*types.Book, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	var results []*types.Book
	if err := transaction.WithContext(ctx).
		Order(order).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookRepo) UpdateAggregates(ctx context.Context, tx *gorm.DB, bookID uint, avgRating float64, reviewCount int) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]interface{}{
			"avg_rating":   avgRating,
			"review_count": reviewCount,
		}).Error
}
