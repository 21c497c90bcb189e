package utils

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type stubUserRepo struct {
	emailTaken bool
}

func (s *stubUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	return users, nil
}

func (s *stubUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uint) ([]*types.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	return nil, nil
}

func (s *stubUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return s.emailTaken, nil
}

func TestNormalizeUserFields(t *testing.T) {
	user := &types.User{
		Name:     "  Jamie Reader  ",
		Email:    " Jamie.Reader@Example.COM ",
		Password: " hunter22 ",
	}
	NormalizeUserFields(user)
	if user.Name != "Jamie Reader" {
		t.Fatalf("name=%q", user.Name)
	}
	if user.Email != "jamie.reader@example.com" {
		t.Fatalf("email=%q", user.Email)
	}
	if user.Password != "hunter22" {
		t.Fatalf("password=%q", user.Password)
	}
}

func TestValidateRegistration(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name       string
		user       *types.User
		emailTaken bool
		wantErr    bool
	}{
		{name: "valid", user: &types.User{Name: "A", Email: "a@b.c", Password: "pw"}},
		{name: "nil_user", user: nil, wantErr: true},
		{name: "missing_name", user: &types.User{Email: "a@b.c", Password: "pw"}, wantErr: true},
		{name: "missing_email", user: &types.User{Name: "A", Password: "pw"}, wantErr: true},
		{name: "missing_password", user: &types.User{Name: "A", Email: "a@b.c"}, wantErr: true},
		{name: "email_taken", user: &types.User{Name: "A", Email: "a@b.c", Password: "pw"}, emailTaken: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRegistration(ctx, &stubUserRepo{emailTaken: tc.emailTaken}, nil, tc.user)
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	if err := ValidateLogin("a@b.c", "pw"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateLogin("", "pw"); err == nil {
		t.Fatalf("missing email accepted")
	}
	if err := ValidateLogin("a@b.c", ""); err == nil {
		t.Fatalf("missing password accepted")
	}
}

func TestHashPassword(t *testing.T) {
	user := &types.User{Password: "plain-secret"}
	if err := HashPassword(user); err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if user.Password == "plain-secret" {
		t.Fatalf("password left in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("plain-secret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("BOOKVERSE_TEST_ENV", "set-value")
	if got := GetEnv("BOOKVERSE_TEST_ENV", "fallback", nil); got != "set-value" {
		t.Fatalf("GetEnv=%q, want set-value", got)
	}
	if got := GetEnv("BOOKVERSE_TEST_ENV_MISSING", "fallback", nil); got != "fallback" {
		t.Fatalf("GetEnv=%q, want fallback", got)
	}

	t.Setenv("BOOKVERSE_TEST_INT", "7")
	if got := GetEnvAsInt("BOOKVERSE_TEST_INT", 3, nil); got != 7 {
		t.Fatalf("GetEnvAsInt=%d, want 7", got)
	}
	t.Setenv("BOOKVERSE_TEST_INT", "not-an-int")
	if got := GetEnvAsInt("BOOKVERSE_TEST_INT", 3, nil); got != 3 {
		t.Fatalf("GetEnvAsInt=%d, want default 3", got)
	}
}
