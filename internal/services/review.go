package services

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type ReviewService interface {
	CreateReview(ctx context.Context, userID, bookID uint, rating int, text string) (*types.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID uint, rating int, text string) (*types.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID uint) error
}

type reviewService struct {
	db         *gorm.DB
	log        *logger.Logger
	reviewRepo repos.ReviewRepo
	bookRepo   repos.BookRepo
}

func NewReviewService(db *gorm.DB, log *logger.Logger, reviewRepo repos.ReviewRepo, bookRepo repos.BookRepo) ReviewService {
	serviceLog := log.With("service", "ReviewService")
	return &reviewService{db: db, log: serviceLog, reviewRepo: reviewRepo, bookRepo: bookRepo}
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("Rating must be an integer between 1 and 5")
	}
	return nil
}

// roundRating keeps the stored average at one decimal, matching the catalog's
// avg_rating column semantics.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func (rs *reviewService) CreateReview(ctx context.Context, userID, bookID uint, rating int, text string) (*types.Review, error) {
	if err := validRating(rating); err != nil {
		return nil, err
	}

	review := &types.Review{
		UserID: userID,
		BookID: bookID,
		Rating: rating,
		Text:   text,
	}
	err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := rs.reviewRepo.Create(ctx, tx, []*types.Review{review}); cErr != nil {
			return fmt.Errorf("Failed to create review: %w", cErr)
		}
		return rs.recomputeAggregates(ctx, tx, bookID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (rs *reviewService) UpdateReview(ctx context.Context, userID, reviewID uint, rating int, text string) (*types.Review, error) {
	if err := validRating(rating); err != nil {
		return nil, err
	}

	existing, err := rs.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	existing.Rating = rating
	existing.Text = text
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uErr := rs.reviewRepo.Update(ctx, tx, existing); uErr != nil {
			return fmt.Errorf("Failed to update review: %w", uErr)
		}
		return rs.recomputeAggregates(ctx, tx, existing.BookID)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (rs *reviewService) DeleteReview(ctx context.Context, userID, reviewID uint) error {
	existing, err := rs.ownedReview(ctx, userID, reviewID)
	if err != nil {
		return err
	}

	return rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dErr := rs.reviewRepo.FullDeleteByIDs(ctx, tx, []uint{reviewID}); dErr != nil {
			return fmt.Errorf("Failed to delete review: %w", dErr)
		}
		return rs.recomputeAggregates(ctx, tx, existing.BookID)
	})
}

func (rs *reviewService) ownedReview(ctx context.Context, userID, reviewID uint) (*types.Review, error) {
	reviews, err := rs.reviewRepo.GetByIDs(ctx, nil, []uint{reviewID})
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch review: %w", err)
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("Review not found")
	}
	if reviews[0].UserID != userID {
		return nil, fmt.Errorf("Review does not belong to the current user")
	}
	return reviews[0], nil
}

// recomputeAggregates refreshes the book's avg_rating and review_count from
// the review table inside the caller's transaction, keeping the externally
// maintained invariant intact.
func (rs *reviewService) recomputeAggregates(ctx context.Context, tx *gorm.DB, bookID uint) error {
	avg, count, err := rs.reviewRepo.AggregateForBook(ctx, tx, bookID)
	if err != nil {
		return fmt.Errorf("Failed to aggregate reviews: %w", err)
	}
	if uErr := rs.bookRepo.UpdateAggregates(ctx, tx, bookID, roundRating(avg), count); uErr != nil {
		return fmt.Errorf("Failed to update book aggregates: %w", uErr)
	}
	return nil
}
