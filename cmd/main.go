package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dinkarkumardk/book-review-backend/internal/cache"
	"github.com/dinkarkumardk/book-review-backend/internal/db"
	"github.com/dinkarkumardk/book-review-backend/internal/handlers"
	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/middleware"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/server"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
	"github.com/dinkarkumardk/book-review-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET", "your_jwt_secret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	cacheTTLSeconds := utils.GetEnvAsInt("RECOMMENDATION_CACHE_TTL", 300, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	bookRepo := repos.NewBookRepo(thePG, log)
	reviewRepo := repos.NewReviewRepo(thePG, log)
	favoriteRepo := repos.NewFavoriteRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	recCache := cache.NewRecommendationCache(time.Duration(cacheTTLSeconds) * time.Second)
	ranker := services.NewHuggingFaceRanker(log)
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, favoriteRepo, reviewRepo)
	bookService := services.NewBookService(thePG, log, bookRepo)
	reviewService := services.NewReviewService(thePG, log, reviewRepo, bookRepo)
	favoriteService := services.NewFavoriteService(thePG, log, favoriteRepo, bookRepo)
	recommendationService := services.NewRecommendationService(thePG, log, bookRepo, favoriteRepo, reviewRepo, recCache, ranker, nil)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(log, userService)
	bookHandler := handlers.NewBookHandler(log, bookService)
	reviewHandler := handlers.NewReviewHandler(log, reviewService)
	favoriteHandler := handlers.NewFavoriteHandler(log, favoriteService)
	recommendationHandler := handlers.NewRecommendationHandler(log, recommendationService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:           authHandler,
		AuthMiddleware:        authMiddleware,
		UserHandler:           userHandler,
		BookHandler:           bookHandler,
		ReviewHandler:         reviewHandler,
		FavoriteHandler:       favoriteHandler,
		RecommendationHandler: recommendationHandler,
	})

	port := utils.GetEnv("PORT", "3001", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
