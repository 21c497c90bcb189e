package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/middleware"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
)

type ReviewHandler struct {
	log           *logger.Logger
	reviewService services.ReviewService
}

func NewReviewHandler(log *logger.Logger, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{log: log.With("handler", "ReviewHandler"), reviewService: reviewService}
}

type reviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

func (rh *ReviewHandler) CreateReview(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	review, err := rh.reviewService.CreateReview(c.Request.Context(), middleware.UserID(c), bookID, req.Rating, req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (rh *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	review, err := rh.reviewService.UpdateReview(c.Request.Context(), middleware.UserID(c), reviewID, req.Rating, req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, review)
}

func (rh *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	if err := rh.reviewService.DeleteReview(c.Request.Context(), middleware.UserID(c), reviewID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}
