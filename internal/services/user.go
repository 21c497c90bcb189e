package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type UserProfile struct {
	User      *types.User       `json:"user"`
	Favorites []*types.Favorite `json:"favorites"`
	Reviews   []*types.Review   `json:"reviews"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*UserProfile, error)
}

type userService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	favoriteRepo repos.FavoriteRepo
	reviewRepo   repos.ReviewRepo
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	favoriteRepo repos.FavoriteRepo,
	reviewRepo repos.ReviewRepo,
) UserService {
	serviceLog := log.With("service", "UserService")
	return &userService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		favoriteRepo: favoriteRepo,
		reviewRepo:   reviewRepo,
	}
}

func (us *userService) GetProfile(ctx context.Context, userID uint) (*UserProfile, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uint{userID})
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("User not found")
	}

	favorites, err := us.favoriteRepo.GetRecentByUserID(ctx, nil, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch favorites: %w", err)
	}
	reviews, err := us.reviewRepo.GetRecentByUserID(ctx, nil, userID, recentReviewsTake)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch reviews: %w", err)
	}

	return &UserProfile{User: users[0], Favorites: favorites, Reviews: reviews}, nil
}
