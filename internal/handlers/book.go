package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
)

type BookHandler struct {
	log         *logger.Logger
	bookService services.BookService
}

func NewBookHandler(log *logger.Logger, bookService services.BookService) *BookHandler {
	return &BookHandler{log: log.With("handler", "BookHandler"), bookService: bookService}
}

func (bh *BookHandler) ListBooks(c *gin.Context) {
	page := queryInt(c, "page", 1)
	search := c.Query("search")

	books, total, err := bh.bookService.ListBooks(c.Request.Context(), search, page)
	if err != nil {
		bh.log.Error("Failed to list books", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "total": total, "page": page})
}

func (bh *BookHandler) GetBook(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	book, err := bh.bookService.GetBookByID(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found."})
			return
		}
		bh.log.Error("Failed to fetch book", "error", err, "book_id", bookID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch book."})
		return
	}
	c.JSON(http.StatusOK, book)
}
