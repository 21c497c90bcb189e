package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDGenerated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("no request id assigned")
	}
	if got := recorder.Header().Get(RequestIDHeader); got != seen {
		t.Fatalf("response header id %q differs from context id %q", got, seen)
	}
}

func TestRequestIDHonorsCallerID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-supplied-id")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if got := recorder.Header().Get(RequestIDHeader); got != "caller-supplied-id" {
		t.Fatalf("caller id not preserved, got %q", got)
	}
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetRequestID(c); got != "" {
		t.Fatalf("expected empty id without middleware, got %q", got)
	}
}
