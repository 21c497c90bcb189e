package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/middleware"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
)

type FavoriteHandler struct {
	log             *logger.Logger
	favoriteService services.FavoriteService
}

func NewFavoriteHandler(log *logger.Logger, favoriteService services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{log: log.With("handler", "FavoriteHandler"), favoriteService: favoriteService}
}

func (fh *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}

	favorited, err := fh.favoriteService.ToggleFavorite(c.Request.Context(), middleware.UserID(c), bookID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (fh *FavoriteHandler) ListFavorites(c *gin.Context) {
	favorites, err := fh.favoriteService.ListFavorites(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fh.log.Error("Failed to list favorites", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}
