package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/middleware"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

func (uh *UserHandler) GetProfile(c *gin.Context) {
	profile, err := uh.userService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		uh.log.Error("Failed to fetch profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile."})
		return
	}
	c.JSON(http.StatusOK, profile)
}
