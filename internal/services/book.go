package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

const bookPageSize = 10

type BookService interface {
	ListBooks(ctx context.Context, search string, page int) ([]*types.Book, int64, error)
	GetBookByID(ctx context.Context, bookID uint) (*types.Book, error)
}

type bookService struct {
	db       *gorm.DB
	log      *logger.Logger
	bookRepo repos.BookRepo
}

func NewBookService(db *gorm.DB, log *logger.Logger, bookRepo repos.BookRepo) BookService {
	serviceLog := log.With("service", "BookService")
	return &bookService{db: db, log: serviceLog, bookRepo: bookRepo}
}

// ListBooks pages through the catalog with an optional case-insensitive
// title/author search. Page size is fixed at 10, matching the web client.
func (bs *bookService) ListBooks(ctx context.Context, search string, page int) ([]*types.Book, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * bookPageSize

	books, err := bs.bookRepo.Search(ctx, nil, search, bookPageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("Failed to fetch books: %w", err)
	}
	total, err := bs.bookRepo.CountSearch(ctx, nil, search)
	if err != nil {
		return nil, 0, fmt.Errorf("Failed to count books: %w", err)
	}
	return books, total, nil
}

func (bs *bookService) GetBookByID(ctx context.Context, bookID uint) (*types.Book, error) {
	book, err := bs.bookRepo.GetByIDWithReviews(ctx, nil, bookID)
	if err != nil {
		return nil, err
	}
	return book, nil
}
