package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
)

const userIDKey = "userID"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// RequireAuth rejects requests without a valid bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		userID, err := am.authService.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth resolves a user id when a valid token is present but lets
// anonymous requests through. Recommendation routes personalize when they
// can and fall back when they cannot.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString != "" {
			if userID, err := am.authService.ParseToken(tokenString); err == nil {
				c.Set(userIDKey, userID)
			} else {
				am.log.Debug("Ignoring invalid token on optional-auth route", "error", err)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id set by the middleware, or 0 for
// anonymous requests.
func UserID(c *gin.Context) uint {
	val, ok := c.Get(userIDKey)
	if !ok {
		return 0
	}
	userID, ok := val.(uint)
	if !ok {
		return 0
	}
	return userID
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
