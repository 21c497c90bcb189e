package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// stubRecService returns a fixed catalog slice capped to the requested depth
// and records the depth each facade was asked for.
type stubRecService struct {
	books      []*types.Book
	err        error
	lastDepth  int
	lastUserID uint
}

func (s *stubRecService) fetch(userID uint, limit int) ([]*types.Book, error) {
	s.lastDepth = limit
	s.lastUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	if len(s.books) > limit {
		return s.books[:limit], nil
	}
	return s.books, nil
}

func (s *stubRecService) GetHybridRecommendations(ctx context.Context, userID uint, limit int) ([]*types.Book, error) {
	return s.fetch(userID, limit)
}

func (s *stubRecService) GetTopRatedRecommendations(ctx context.Context, limit int) ([]*types.Book, error) {
	return s.fetch(0, limit)
}

func (s *stubRecService) GetLLMRecommendations(ctx context.Context, userID uint, limit int) ([]*types.Book, error) {
	return s.fetch(userID, limit)
}

type recommendationPayload struct {
	Recommendations []struct {
		ID             uint    `json:"id"`
		Title          string  `json:"title"`
		RelevanceScore float64 `json:"relevanceScore"`
	} `json:"recommendations"`
	Mode       string `json:"mode"`
	Pagination struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
	} `json:"pagination"`
}

func recTestRouter(svc *stubRecService) *gin.Engine {
	handler := NewRecommendationHandler(testLogger(), svc)
	router := gin.New()
	router.GET("/api/recommendations", handler.GetHybrid)
	router.GET("/api/recommendations/top-rated", handler.GetTopRated)
	router.GET("/api/recommendations/llm", handler.GetLLM)
	return router
}

func catalogBooks(n int) []*types.Book {
	books := make([]*types.Book, 0, n)
	for i := 1; i <= n; i++ {
		books = append(books, &types.Book{ID: uint(i), Title: fmt.Sprintf("Book %d", i)})
	}
	return books
}

func doRecRequest(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, recommendationPayload) {
	t.Helper()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(recorder, req)

	var payload recommendationPayload
	if recorder.Code == http.StatusOK {
		if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
			t.Fatalf("response did not parse: %v\n%s", err, recorder.Body.String())
		}
	}
	return recorder, payload
}

func TestRecommendationsResponseShape(t *testing.T) {
	svc := &stubRecService{books: catalogBooks(30)}
	router := recTestRouter(svc)

	recorder, payload := doRecRequest(t, router, "/api/recommendations?limit=5")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", recorder.Code, recorder.Body.String())
	}
	if payload.Mode != "hybrid" {
		t.Fatalf("mode=%q, want hybrid", payload.Mode)
	}
	if payload.Pagination.Page != 1 || payload.Pagination.Limit != 5 {
		t.Fatalf("pagination=%+v", payload.Pagination)
	}
	if len(payload.Recommendations) != 5 {
		t.Fatalf("got %d recommendations, want 5", len(payload.Recommendations))
	}
	if svc.lastDepth != 5 {
		t.Fatalf("facade depth=%d, want 5", svc.lastDepth)
	}
}

func TestRecommendationsRelevanceScoreDecays(t *testing.T) {
	svc := &stubRecService{books: catalogBooks(30)}
	router := recTestRouter(svc)

	_, payload := doRecRequest(t, router, "/api/recommendations/top-rated?limit=10")
	if len(payload.Recommendations) != 10 {
		t.Fatalf("got %d recommendations", len(payload.Recommendations))
	}
	if payload.Mode != "top-rated" {
		t.Fatalf("mode=%q, want top-rated", payload.Mode)
	}

	first := payload.Recommendations[0].RelevanceScore
	if first != 0.99 {
		t.Fatalf("rank-0 relevanceScore=%v, want 0.99", first)
	}
	prev := first
	for i, rec := range payload.Recommendations[1:] {
		if rec.RelevanceScore >= prev {
			t.Fatalf("relevanceScore not strictly decreasing at %d: %v then %v", i+1, prev, rec.RelevanceScore)
		}
		if rec.RelevanceScore <= 0 || rec.RelevanceScore >= 1 {
			t.Fatalf("relevanceScore out of (0, 1): %v", rec.RelevanceScore)
		}
		prev = rec.RelevanceScore
	}
}

func TestRecommendationsPagination(t *testing.T) {
	svc := &stubRecService{books: catalogBooks(30)}
	router := recTestRouter(svc)

	_, pageOne := doRecRequest(t, router, "/api/recommendations/llm?page=1&limit=5")
	_, pageTwo := doRecRequest(t, router, "/api/recommendations/llm?page=2&limit=5")

	if svc.lastDepth != 10 {
		t.Fatalf("page 2 depth=%d, want page*limit=10", svc.lastDepth)
	}
	if pageTwo.Pagination.Page != 2 {
		t.Fatalf("pagination=%+v", pageTwo.Pagination)
	}
	if len(pageTwo.Recommendations) != 5 {
		t.Fatalf("page 2 size=%d, want 5", len(pageTwo.Recommendations))
	}
	if pageOne.Recommendations[0].ID == pageTwo.Recommendations[0].ID {
		t.Fatalf("page 2 repeats page 1: id %d", pageTwo.Recommendations[0].ID)
	}
	// Continuation: page 2 starts one rank after page 1 ends.
	lastOfPageOne := pageOne.Recommendations[len(pageOne.Recommendations)-1]
	if pageTwo.Recommendations[0].RelevanceScore >= lastOfPageOne.RelevanceScore {
		t.Fatalf("page 2 score %v not below page 1 tail %v", pageTwo.Recommendations[0].RelevanceScore, lastOfPageOne.RelevanceScore)
	}
}

func TestRecommendationsPageBeyondPool(t *testing.T) {
	svc := &stubRecService{books: catalogBooks(4)}
	router := recTestRouter(svc)

	recorder, payload := doRecRequest(t, router, "/api/recommendations?page=3&limit=5")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status=%d", recorder.Code)
	}
	if len(payload.Recommendations) != 0 {
		t.Fatalf("got %d recommendations past the pool end", len(payload.Recommendations))
	}
}

func TestRecommendationsLimitClamping(t *testing.T) {
	svc := &stubRecService{books: catalogBooks(100)}
	router := recTestRouter(svc)

	_, payload := doRecRequest(t, router, "/api/recommendations?limit=500")
	if payload.Pagination.Limit != 50 {
		t.Fatalf("limit=%d, want clamped to 50", payload.Pagination.Limit)
	}

	_, payload = doRecRequest(t, router, "/api/recommendations?limit=-2")
	if payload.Pagination.Limit != 10 {
		t.Fatalf("limit=%d, want default 10", payload.Pagination.Limit)
	}

	_, payload = doRecRequest(t, router, "/api/recommendations?limit=abc&page=junk")
	if payload.Pagination.Limit != 10 || payload.Pagination.Page != 1 {
		t.Fatalf("pagination=%+v, want defaults on junk input", payload.Pagination)
	}
}

func TestRecommendationsErrorIsOpaque(t *testing.T) {
	svc := &stubRecService{err: errors.New("pq: connection refused")}
	router := recTestRouter(svc)

	recorder, _ := doRecRequest(t, router, "/api/recommendations")
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", recorder.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body did not parse: %v", err)
	}
	if body["error"] != "Failed to fetch recommendations." {
		t.Fatalf("error=%q, want the generic message", body["error"])
	}
	if len(body) != 1 {
		t.Fatalf("error body leaked fields: %v", body)
	}
}
