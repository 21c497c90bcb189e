package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dinkarkumardk/book-review-backend/internal/types"
)

type scoredBook struct {
	book  *types.Book
	score float64
}

// seededRandom maps a seed string to [0, 1) with a stable 32-bit
// multiplicative hash. Used as a day-scoped tiebreak so rankings are
// reproducible within a calendar day without a stored seed.
func seededRandom(seed string) float64 {
	var hash int32
	for _, r := range seed {
		hash = 31*hash + int32(r)
	}
	return float64(uint32(hash)%1000) / 1000
}

// scoreBook combines a candidate's intrinsic quality with the user's
// preference signals into a single scalar. The function is deliberately a
// linear, auditable formula: with empty signals it degrades to pure
// popularity/quality ordering.
func scoreBook(book *types.Book, signals *PreferenceSignals, personalized bool, now time.Time) float64 {
	score := book.AvgRating / 5
	score += math.Min(float64(book.ReviewCount)/500, 0.35)
	score += math.Min(float64(len(book.Description))/4000, 0.4)

	currentYear := now.Year()
	recency := math.Max(0, 1-math.Min(float64(currentYear-book.PublishedYear)/40, 1))
	score += recency * 0.25

	if personalized {
		loweredAuthor := strings.ToLower(book.Author)
		loweredDescription := strings.ToLower(book.Description)

		hasFavoriteGenre := false
		for _, genre := range book.Genres {
			if _, ok := signals.GenreWeights[strings.ToLower(genre)]; ok {
				hasFavoriteGenre = true
				break
			}
		}
		if hasFavoriteGenre {
			score += 0.35
			for _, genre := range book.Genres {
				if weight, ok := signals.GenreWeights[strings.ToLower(genre)]; ok {
					score += math.Min(weight*0.05, 0.25)
				}
			}
		}

		if weight, ok := signals.AuthorWeights[loweredAuthor]; ok {
			score += math.Min(weight*0.1, 0.3)
		}

		for keyword, weight := range signals.KeywordWeights {
			if strings.Contains(loweredDescription, keyword) {
				score += math.Min(weight*0.03, 0.3)
			}
		}

		// Demotes rather than hard-excludes; the pool builder still skips
		// favorited ids outright.
		if _, ok := signals.FavoriteBookIDs[book.ID]; ok {
			score -= 0.5
		}
	}

	daySeed := now.UTC().Format("2006-01-02")
	score += seededRandom(fmt.Sprintf("%d:%s", book.ID, daySeed)) * 0.1

	return score
}
