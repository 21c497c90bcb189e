package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type ReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reviews []*types.Review) ([]*types.Review, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, reviewIDs []uint) ([]*types.Review, error)
	GetByBookID(ctx context.Context, tx *gorm.DB, bookID uint) ([]*types.Review, error)
	GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*types.Review, error)
	Update(ctx context.Context, tx *gorm.DB, review *types.Review) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, reviewIDs []uint) error
	AggregateForBook(ctx context.Context, tx *gorm.DB, bookID uint) (float64, int, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	repoLog := baseLog.With("repo", "ReviewRepo")
	return &reviewRepo{db: db, log: repoLog}
}

func (rr *reviewRepo) Create(ctx context.Context, tx *gorm.DB, reviews []*types.Review) ([]*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(reviews) == 0 {
		return []*types.Review{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (rr *reviewRepo) GetByIDs(ctx context.Context, tx *gorm.DB, reviewIDs []uint) ([]*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Review
	if len(reviewIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", reviewIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reviewRepo) GetByBookID(ctx context.Context, tx *gorm.DB, bookID uint) ([]*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Review
	if err := transaction.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reviewRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Review
	if err := transaction.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *reviewRepo) Update(ctx context.Context, tx *gorm.DB, review *types.Review) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"rating": review.Rating,
			"text":   review.Text,
		}).Error
}

func (rr *reviewRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, reviewIDs []uint) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(reviewIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", reviewIDs).
		Delete(&types.Review{}).Error
}

func (rr *reviewRepo) AggregateForBook(ctx context.Context, tx *gorm.DB, bookID uint) (float64, int, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result struct {
		Avg   float64
		Count int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("book_id = ?", bookID).
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Avg, int(result.Count), nil
}
