package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/services"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// stubAuthService accepts exactly one token string and maps it to a fixed
// user id.
type stubAuthService struct {
	validToken string
	userID     uint
}

func (s *stubAuthService) RegisterUser(ctx context.Context, user *types.User) error {
	return nil
}

func (s *stubAuthService) LoginUser(ctx context.Context, email, password string) (string, *types.User, error) {
	return "", nil, fmt.Errorf("not implemented")
}

func (s *stubAuthService) ParseToken(tokenString string) (uint, error) {
	if tokenString == s.validToken {
		return s.userID, nil
	}
	return 0, fmt.Errorf("Invalid token")
}

func (s *stubAuthService) GetAccessTTL() time.Duration {
	return time.Hour
}

var _ services.AuthService = (*stubAuthService)(nil)

func authTestRouter() *gin.Engine {
	am := NewAuthMiddleware(testLogger(), &stubAuthService{validToken: "good-token", userID: 42})

	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": UserID(c)})
	})
	router.GET("/optional", am.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": UserID(c)})
	})
	return router
}

func doAuthRequest(t *testing.T, router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireAuth(t *testing.T) {
	router := authTestRouter()

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{name: "valid_token", authHeader: "Bearer good-token", wantStatus: http.StatusOK, wantBody: `"userID":42`},
		{name: "missing_header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "invalid_token", authHeader: "Bearer bad-token", wantStatus: http.StatusUnauthorized},
		{name: "not_bearer_scheme", authHeader: "Basic good-token", wantStatus: http.StatusUnauthorized},
		{name: "bare_token_without_scheme", authHeader: "good-token", wantStatus: http.StatusUnauthorized},
		{name: "case_insensitive_scheme", authHeader: "bearer good-token", wantStatus: http.StatusOK, wantBody: `"userID":42`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doAuthRequest(t, router, "/protected", tc.authHeader)
			if recorder.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d (body %s)", recorder.Code, tc.wantStatus, recorder.Body.String())
			}
			if tc.wantBody != "" && !containsBody(recorder, tc.wantBody) {
				t.Fatalf("body=%s, want fragment %s", recorder.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	router := authTestRouter()

	cases := []struct {
		name       string
		authHeader string
		wantBody   string
	}{
		{name: "valid_token_resolves_user", authHeader: "Bearer good-token", wantBody: `"userID":42`},
		{name: "missing_header_is_anonymous", authHeader: "", wantBody: `"userID":0`},
		{name: "invalid_token_is_anonymous", authHeader: "Bearer bad-token", wantBody: `"userID":0`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := doAuthRequest(t, router, "/optional", tc.authHeader)
			if recorder.Code != http.StatusOK {
				t.Fatalf("status=%d, want 200", recorder.Code)
			}
			if !containsBody(recorder, tc.wantBody) {
				t.Fatalf("body=%s, want fragment %s", recorder.Body.String(), tc.wantBody)
			}
		})
	}
}

func containsBody(recorder *httptest.ResponseRecorder, fragment string) bool {
	return strings.Contains(recorder.Body.String(), fragment)
}
