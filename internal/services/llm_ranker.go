package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
	"github.com/dinkarkumardk/book-review-backend/internal/utils"
)

const defaultRankingModel = "microsoft/Phi-3-mini-4k-instruct"

// RankingEntry is one normalized entry of an external ranking response:
// whatever shape the model answered with (bare id, bare title, object), it
// resolves to a known pool book plus an optional display reason.
type RankingEntry struct {
	BookID uint
	Reason string
}

// Ranker optionally reorders a candidate pool via an external
// text-generation endpoint. A nil or empty result means "no reordering";
// failures never surface to the caller.
type Ranker interface {
	Enabled() bool
	RankCandidates(ctx context.Context, limit int, books []*types.Book, profileSummary string) []RankingEntry
}

type huggingFaceRanker struct {
	log        *logger.Logger
	enabled    bool
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewHuggingFaceRanker(log *logger.Logger) Ranker {
	rankerLog := log.With("service", "HuggingFaceRanker")

	provider := strings.ToLower(utils.GetEnv("LLM_PROVIDER", "", log))
	apiKey := utils.GetEnv("LLM_API_KEY", "", log)
	model := utils.GetEnv("LLM_MODEL", defaultRankingModel, log)
	baseURL := utils.GetEnv("LLM_API_URL", "https://api-inference.huggingface.co/models/"+model, log)
	timeoutMS := utils.GetEnvAsInt("LLM_TIMEOUT_MS", 4000, log)

	enabled := provider == "huggingface" && apiKey != ""
	if !enabled {
		rankerLog.Info("External ranking disabled, recommendations use heuristic ordering only")
	}

	return &huggingFaceRanker{
		log:        rankerLog,
		enabled:    enabled,
		baseURL:    baseURL,
		apiKey:     apiKey,
		timeout:    time.Duration(timeoutMS) * time.Millisecond,
		httpClient: &http.Client{},
	}
}

func (hr *huggingFaceRanker) Enabled() bool {
	return hr.enabled
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// RankCandidates sends the candidate pool plus the reader profile to the
// configured endpoint and parses a ranked id list back out. Every failure
// mode (timeout, non-2xx, unparseable payload) is soft: log a warning and
// return nil so the heuristic order stands.
func (hr *huggingFaceRanker) RankCandidates(ctx context.Context, limit int, books []*types.Book, profileSummary string) []RankingEntry {
	if !hr.enabled || len(books) == 0 {
		return nil
	}

	prompt := buildRankingPrompt(limit, books, profileSummary)
	body := map[string]interface{}{
		"inputs": prompt,
		"parameters": map[string]interface{}{
			"max_new_tokens":   420,
			"temperature":      0.2,
			"top_p":            0.9,
			"return_full_text": false,
		},
		"options": map[string]interface{}{
			"wait_for_model": true,
		},
	}

	callCtx, cancel := context.WithTimeout(ctx, hr.timeout)
	defer cancel()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		hr.log.Warn("Falling back to heuristic recommendations", "error", err)
		return nil
	}
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, hr.baseURL, &buf)
	if err != nil {
		hr.log.Warn("Falling back to heuristic recommendations", "error", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+hr.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := hr.httpClient.Do(req)
	if err != nil {
		hr.log.Warn("Falling back to heuristic recommendations", "error", err)
		return nil
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		hr.log.Warn("Falling back to heuristic recommendations", "error", readErr)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		hr.log.Warn("Falling back to heuristic recommendations", "status", resp.StatusCode)
		return nil
	}

	entries, parseErr := parseRankingResponse(raw, books)
	if parseErr != nil {
		hr.log.Warn("Falling back to heuristic recommendations", "error", parseErr)
		return nil
	}
	return entries
}

func buildRankingPrompt(limit int, books []*types.Book, profileSummary string) string {
	lines := make([]string, 0, len(books))
	for _, book := range books {
		genres := "unknown"
		if len(book.Genres) > 0 {
			shown := book.Genres
			if len(shown) > 4 {
				shown = shown[:4]
			}
			genres = strings.Join(shown, ", ")
		}
		synopsis := book.Description
		if synopsis == "" {
			synopsis = "No description available."
		}
		synopsis = strings.Join(strings.Fields(truncateText(synopsis, 320)), " ")
		lines = append(lines, fmt.Sprintf(`{
  "id": %d,
  "title": %q,
  "author": %q,
  "genres": %q,
  "avgRating": %.2f,
  "reviewCount": %d,
  "summary": %q
}`, book.ID, book.Title, book.Author, genres, book.AvgRating, book.ReviewCount, synopsis))
	}

	instructions := fmt.Sprintf("You are BookVerse's AI librarian. Choose the top %d books that best match the reader profile. Respond ONLY with a JSON array. Each array item must be an object with fields: id (number), title (string), and reason (brief string explaining the match). Do not include extra commentary.", limit)
	return fmt.Sprintf("%s\n\nReader profile:\n%s\n\nCandidate books (JSON objects):\n[\n%s\n]\n\nReturn a JSON array sorted from best to worst recommendation.", instructions, profileSummary, strings.Join(lines, ",\n"))
}

func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}

// parseRankingResponse digs the generated text out of the provider's payload
// (bare string array, object array with generated_text/text, or a single
// object), locates the first JSON array inside it, and normalizes every entry
// to a known book id. Entries resolving to nothing are dropped silently.
func parseRankingResponse(raw []byte, books []*types.Book) ([]RankingEntry, error) {
	var payload interface{}
	rawText := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		rawText = extractGeneratedText(payload)
	}
	if rawText == "" {
		rawText = string(raw)
	}

	match := jsonArrayPattern.FindString(rawText)
	if match == "" {
		return nil, fmt.Errorf("could not locate JSON array in ranking response")
	}

	var parsed []interface{}
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil, fmt.Errorf("ranking response did not parse into an array: %w", err)
	}

	knownIDs := make(map[uint]struct{}, len(books))
	titleIndex := make(map[string]uint, len(books))
	for _, book := range books {
		knownIDs[book.ID] = struct{}{}
		titleIndex[strings.ToLower(book.Title)] = book.ID
	}

	var entries []RankingEntry
	seen := map[uint]struct{}{}
	for _, item := range parsed {
		bookID, reason, ok := normalizeRankingEntry(item, titleIndex)
		if !ok {
			continue
		}
		if _, known := knownIDs[bookID]; !known {
			continue
		}
		if _, dup := seen[bookID]; dup {
			continue
		}
		seen[bookID] = struct{}{}
		entries = append(entries, RankingEntry{BookID: bookID, Reason: reason})
	}
	return entries, nil
}

func extractGeneratedText(payload interface{}) string {
	switch v := payload.(type) {
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		switch first := v[0].(type) {
		case string:
			return first
		case map[string]interface{}:
			return stringField(first, "generated_text", "text")
		}
	case map[string]interface{}:
		return stringField(v, "generated_text", "text")
	}
	return ""
}

func stringField(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if val, ok := obj[key].(string); ok && val != "" {
			return val
		}
	}
	return ""
}

// normalizeRankingEntry accepts the duck-typed shapes a model might answer
// with: a bare number, a numeric string, or an object carrying id/bookId
// and/or title plus reason/explanation.
func normalizeRankingEntry(item interface{}, titleIndex map[string]uint) (uint, string, bool) {
	switch v := item.(type) {
	case float64:
		if v > 0 {
			return uint(v), "", true
		}
	case string:
		if id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			return uint(id), "", true
		}
	case map[string]interface{}:
		reason := stringField(v, "reason", "explanation")
		for _, key := range []string{"id", "bookId"} {
			switch idVal := v[key].(type) {
			case float64:
				if idVal > 0 {
					return uint(idVal), reason, true
				}
			case string:
				if id, err := strconv.ParseUint(strings.TrimSpace(idVal), 10, 64); err == nil && id > 0 {
					return uint(id), reason, true
				}
			}
		}
		if title, ok := v["title"].(string); ok {
			if id, found := titleIndex[strings.ToLower(title)]; found {
				return id, reason, true
			}
		}
	}
	return 0, "", false
}
