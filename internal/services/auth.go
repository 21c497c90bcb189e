package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
	"github.com/dinkarkumardk/book-review-backend/internal/utils"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, *types.User, error)
	ParseToken(tokenString string) (uint, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	utils.NormalizeUserFields(user)
	if vErr := utils.ValidateRegistration(ctx, as.userRepo, as.log, user); vErr != nil {
		return vErr
	}
	if hErr := utils.HashPassword(user); hErr != nil {
		return hErr
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, ucErr := as.userRepo.Create(ctx, tx, []*types.User{user}); ucErr != nil {
			return fmt.Errorf("Failed to create user")
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if vErr := utils.ValidateLogin(email, password); vErr != nil {
		return "", nil, vErr
	}

	users, usErr := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if usErr != nil {
		return "", nil, fmt.Errorf("Error retrieving user by email: %w", usErr)
	}
	if len(users) == 0 {
		return "", nil, fmt.Errorf("Invalid email or password")
	}

	user := users[0]
	if hErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); hErr != nil {
		return "", nil, fmt.Errorf("Invalid email or password")
	}

	token, genErr := as.generateAccessToken(user)
	if genErr != nil {
		return "", nil, fmt.Errorf("Generate access token error: %w", genErr)
	}
	return token, user, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID,
		"iat":    now.Unix(),
		"exp":    now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// ParseToken verifies an access token and extracts the user id claim. This is
// the "verify token -> userId" boundary everything downstream depends on.
func (as *authService) ParseToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return 0, fmt.Errorf("Invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("Invalid token claims")
	}
	rawID, ok := claims["userId"].(float64)
	if !ok || rawID <= 0 {
		return 0, fmt.Errorf("Token missing userId claim")
	}
	return uint(rawID), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
