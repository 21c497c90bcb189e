package utils

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/repos"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

func NormalizeUserFields(user *types.User) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Password = strings.TrimSpace(user.Password)
}

func ValidateRegistration(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User) error {
	if user == nil {
		return fmt.Errorf("No user given, cannot proceed with registration")
	}
	if user.Name == "" {
		return fmt.Errorf("A name is required to sign up")
	}
	if user.Email == "" {
		return fmt.Errorf("An email is required to sign up")
	}
	if user.Password == "" {
		return fmt.Errorf("A password is required to sign up")
	}
	emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("Failed to check user email")
	}
	if emailExists {
		return fmt.Errorf("Email is already in use")
	}
	return nil
}

func ValidateLogin(email, password string) error {
	if email == "" {
		return fmt.Errorf("Email is required to login")
	}
	if password == "" {
		return fmt.Errorf("Password is required to login")
	}
	return nil
}

func HashPassword(user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("Failed to hash password")
	}
	user.Password = string(hashedPassword)
	return nil
}
