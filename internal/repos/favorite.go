package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type FavoriteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, favorites []*types.Favorite) ([]*types.Favorite, error)
	GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*types.Favorite, error)
	Exists(ctx context.Context, tx *gorm.DB, userID, bookID uint) (bool, error)
	FullDelete(ctx context.Context, tx *gorm.DB, userID, bookID uint) error
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	repoLog := baseLog.With("repo", "FavoriteRepo")
	return &favoriteRepo{db: db, log: repoLog}
}

func (fr *favoriteRepo) Create(ctx context.Context, tx *gorm.DB, favorites []*types.Favorite) ([]*types.Favorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(favorites) == 0 {
		return []*types.Favorite{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

func (fr *favoriteRepo) GetRecentByUserID(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*types.Favorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Favorite
	q := transaction.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *favoriteRepo) Exists(ctx context.Context, tx *gorm.DB, userID, bookID uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Favorite{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (fr *favoriteRepo) FullDelete(ctx context.Context, tx *gorm.DB, userID, bookID uint) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&types.Favorite{}).Error
}
