package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type FavoriteService interface {
	ToggleFavorite(ctx context.Context, userID, bookID uint) (bool, error)
	ListFavorites(ctx context.Context, userID uint) ([]*types.Favorite, error)
}

type favoriteService struct {
	db           *gorm.DB
	log          *logger.Logger
	favoriteRepo repos.FavoriteRepo
	bookRepo     repos.BookRepo
}

func NewFavoriteService(db *gorm.DB, log *logger.Logger, favoriteRepo repos.FavoriteRepo, bookRepo repos.BookRepo) FavoriteService {
	serviceLog := log.With("service", "FavoriteService")
	return &favoriteService{db: db, log: serviceLog, favoriteRepo: favoriteRepo, bookRepo: bookRepo}
}

// ToggleFavorite flips the (user, book) favorite link. Returns true when the
// book ended up favorited, false when the toggle removed it.
func (fs *favoriteService) ToggleFavorite(ctx context.Context, userID, bookID uint) (bool, error) {
	books, err := fs.bookRepo.GetByIDs(ctx, nil, []uint{bookID})
	if err != nil {
		return false, fmt.Errorf("Failed to fetch book: %w", err)
	}
	if len(books) == 0 {
		return false, fmt.Errorf("Book not found")
	}

	favorited := false
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, eErr := fs.favoriteRepo.Exists(ctx, tx, userID, bookID)
		if eErr != nil {
			return fmt.Errorf("Failed to check favorite: %w", eErr)
		}
		if exists {
			return fs.favoriteRepo.FullDelete(ctx, tx, userID, bookID)
		}
		favorited = true
		_, cErr := fs.favoriteRepo.Create(ctx, tx, []*types.Favorite{{UserID: userID, BookID: bookID}})
		return cErr
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (fs *favoriteService) ListFavorites(ctx context.Context, userID uint) ([]*types.Favorite, error) {
	favorites, err := fs.favoriteRepo.GetRecentByUserID(ctx, nil, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch favorites: %w", err)
	}
	return favorites, nil
}
