package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dinkarkumardk/book-review-backend/internal/handlers"
	"github.com/dinkarkumardk/book-review-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler           *handlers.AuthHandler
	AuthMiddleware        *middleware.AuthMiddleware
	UserHandler           *handlers.UserHandler
	BookHandler           *handlers.BookHandler
	ReviewHandler         *handlers.ReviewHandler
	FavoriteHandler       *handlers.FavoriteHandler
	RecommendationHandler *handlers.RecommendationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// The frontend historically hit both /api-prefixed and bare paths, so the
	// route table is registered under both groups.
	for _, api := range []*gin.RouterGroup{router.Group("/api"), router.Group("/")} {
		api.POST("/signup", cfg.AuthHandler.Signup)
		api.POST("/login", cfg.AuthHandler.Login)

		api.GET("/books", cfg.BookHandler.ListBooks)
		api.GET("/books/:id", cfg.BookHandler.GetBook)

		optional := api.Group("/")
		optional.Use(cfg.AuthMiddleware.OptionalAuth())
		optional.GET("/recommendations", cfg.RecommendationHandler.GetHybrid)
		optional.GET("/recommendations/top-rated", cfg.RecommendationHandler.GetTopRated)
		optional.GET("/recommendations/llm", cfg.RecommendationHandler.GetLLM)

		protected := api.Group("/")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		protected.GET("/profile", cfg.UserHandler.GetProfile)
		protected.GET("/favorites", cfg.FavoriteHandler.ListFavorites)
		protected.POST("/books/:id/favorite", cfg.FavoriteHandler.ToggleFavorite)
		protected.POST("/books/:id/reviews", cfg.ReviewHandler.CreateReview)
		protected.PUT("/reviews/:id", cfg.ReviewHandler.UpdateReview)
		protected.DELETE("/reviews/:id", cfg.ReviewHandler.DeleteReview)
	}

	return router
}
