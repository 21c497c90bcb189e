package services

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

const (
	favoritesTake     = 25
	recentReviewsTake = 20
	minTokenLen       = 4
	maxTokenLen       = 30
	keywordWeightCap  = 5
)

// PreferenceSignals holds the per-request weighted taste profile derived from a
// user's favorites and recent reviews. Weights are additive counters, not
// normalized; scoring treats them as relative importance only.
type PreferenceSignals struct {
	GenreWeights       map[string]float64
	AuthorWeights      map[string]float64
	KeywordWeights     map[string]float64
	FavoriteBookIDs    map[uint]struct{}
	RecentReviewTitles []string
}

func NewPreferenceSignals() *PreferenceSignals {
	return &PreferenceSignals{
		GenreWeights:    map[string]float64{},
		AuthorWeights:   map[string]float64{},
		KeywordWeights:  map[string]float64{},
		FavoriteBookIDs: map[uint]struct{}{},
	}
}

func (ps *PreferenceSignals) Empty() bool {
	return len(ps.GenreWeights) == 0 &&
		len(ps.AuthorWeights) == 0 &&
		len(ps.KeywordWeights) == 0 &&
		len(ps.RecentReviewTitles) == 0
}

func (ps *PreferenceSignals) addBook(book *types.Book, weight float64) {
	for _, genre := range book.Genres {
		key := strings.ToLower(genre)
		ps.GenreWeights[key] += weight
	}
	authorKey := strings.ToLower(book.Author)
	ps.AuthorWeights[authorKey] += weight
}

func (ps *PreferenceSignals) addKeywords(text string, weight float64) {
	for _, token := range tokenize(text) {
		next := ps.KeywordWeights[token] + weight
		if next > keywordWeightCap {
			next = keywordWeightCap
		}
		ps.KeywordWeights[token] = next
	}
}

// ProfileSummary renders the signals as the reader-profile block handed to the
// external ranking call. Falls back to a generic sentence for blank histories.
func (ps *PreferenceSignals) ProfileSummary() string {
	var segments []string
	if genres := topKeys(ps.GenreWeights, 5); len(genres) > 0 {
		segments = append(segments, "Preferred genres: "+strings.Join(genres, ", "))
	}
	if authors := topKeys(ps.AuthorWeights, 5); len(authors) > 0 {
		segments = append(segments, "Frequent authors: "+strings.Join(authors, ", "))
	}
	if keywords := topKeys(ps.KeywordWeights, 10); len(keywords) > 0 {
		segments = append(segments, "Notable themes/keywords: "+strings.Join(keywords, ", "))
	}
	if len(ps.RecentReviewTitles) > 0 {
		titles := ps.RecentReviewTitles
		if len(titles) > 5 {
			titles = titles[:5]
		}
		segments = append(segments, "Recently reviewed titles: "+strings.Join(titles, ", "))
	}
	if len(segments) == 0 {
		segments = append(segments, "No prior favorites or reviews. Suggest accessible, high-quality books across popular genres.")
	}
	return strings.Join(segments, "\n")
}

// tokenize splits text into lowercase alphanumeric runs of length 4-30.
func tokenize(text string) []string {
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) >= minTokenLen && len(token) <= maxTokenLen {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func topKeys(weights map[string]float64, limit int) []string {
	keys := make([]string, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if weights[keys[i]] != weights[keys[j]] {
			return weights[keys[i]] > weights[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// buildUserSignals derives preference signals from up to 25 most-recent
// favorites and 20 most-recent reviews. Anonymous callers get empty signals
// without touching the repos. The two fetches are independent and run
// concurrently.
func (rs *recommendationService) buildUserSignals(ctx context.Context, userID uint) (*PreferenceSignals, error) {
	signals := NewPreferenceSignals()
	if userID == 0 {
		return signals, nil
	}

	var favorites []*types.Favorite
	var reviews []*types.Review

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := rs.favoriteRepo.GetRecentByUserID(gctx, nil, userID, favoritesTake)
		if err != nil {
			return err
		}
		favorites = rows
		return nil
	})
	g.Go(func() error {
		rows, err := rs.reviewRepo.GetRecentByUserID(gctx, nil, userID, recentReviewsTake)
		if err != nil {
			return err
		}
		reviews = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, fav := range favorites {
		signals.FavoriteBookIDs[fav.BookID] = struct{}{}
		if fav.Book == nil {
			continue
		}
		signals.addBook(fav.Book, 1)
		signals.addKeywords(fav.Book.Title+" "+fav.Book.Description, 1)
	}

	for _, review := range reviews {
		if review.Book != nil {
			signals.RecentReviewTitles = append(signals.RecentReviewTitles, review.Book.Title)
			signals.addBook(review.Book, 0.5)
		}
		// Review keywords come from the reviewer's own words, not the book blurb.
		signals.addKeywords(review.Text, 0.5)
	}

	return signals, nil
}
