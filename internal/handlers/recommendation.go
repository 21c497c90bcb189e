package handlers

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/middleware"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

const maxRecommendationLimit = 50

// RecommendedBook decorates a catalog book with the display-only relevance
// score. The score is a synthetic, rank-monotone value for the UI, not the
// internal scorer's output.
type RecommendedBook struct {
	types.Book
	RelevanceScore float64 `json:"relevanceScore"`
}

type RecommendationHandler struct {
	log        *logger.Logger
	recService services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recService services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{log: log.With("handler", "RecommendationHandler"), recService: recService}
}

func (rh *RecommendationHandler) GetHybrid(c *gin.Context) {
	rh.respond(c, "hybrid", func(ctx context.Context, depth int) ([]*types.Book, error) {
		return rh.recService.GetHybridRecommendations(ctx, middleware.UserID(c), depth)
	})
}

func (rh *RecommendationHandler) GetTopRated(c *gin.Context) {
	rh.respond(c, "top-rated", func(ctx context.Context, depth int) ([]*types.Book, error) {
		return rh.recService.GetTopRatedRecommendations(ctx, depth)
	})
}

func (rh *RecommendationHandler) GetLLM(c *gin.Context) {
	rh.respond(c, "llm", func(ctx context.Context, depth int) ([]*types.Book, error) {
		return rh.recService.GetLLMRecommendations(ctx, middleware.UserID(c), depth)
	})
}

// respond handles shared pagination plumbing: the facade is asked for
// page*limit items and the final page window is sliced out of that depth.
func (rh *RecommendationHandler) respond(c *gin.Context, mode string, fetch func(ctx context.Context, depth int) ([]*types.Book, error)) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", services.DefaultRecommendationLimit)
	if limit < 1 {
		limit = services.DefaultRecommendationLimit
	}
	if limit > maxRecommendationLimit {
		limit = maxRecommendationLimit
	}

	depth := page * limit
	books, err := fetch(c.Request.Context(), depth)
	if err != nil {
		rh.log.Error("Failed to fetch recommendations", "mode", mode, "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations."})
		return
	}

	start := (page - 1) * limit
	if start > len(books) {
		start = len(books)
	}
	window := books[start:]

	recommendations := make([]RecommendedBook, 0, len(window))
	for i, book := range window {
		rank := start + i
		recommendations = append(recommendations, RecommendedBook{
			Book:           *book,
			RelevanceScore: relevanceScore(rank),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"mode":            mode,
		"pagination":      gin.H{"page": page, "limit": limit},
	})
}

// relevanceScore decays strictly with rank so clients can sort or display
// without ties, starting just below 1.
func relevanceScore(rank int) float64 {
	return math.Round(0.99*math.Pow(0.97, float64(rank))*10000) / 10000
}
