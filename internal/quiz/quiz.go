package quiz

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/example/wordmaster/internal/selection"
	"github.com/example/wordmaster/pkg/models"
)

// Ranker supplies an optional externally ranked id list for the next
// test. A nil result means rank locally.
type Ranker interface {
	RankWordsWithFallback(ctx context.Context, words []models.Word, count int) []string
}

// Builder assembles spelling-test sessions from the word collection
type Builder struct {
	selector *selection.Selector
	ranker   Ranker
}

// NewBuilder creates a new test builder. The ranker may be nil when no
// AI oracle is configured.
func NewBuilder(selector *selection.Selector, ranker Ranker) *Builder {
	return &Builder{selector: selector, ranker: ranker}
}

// Question represents a single spelling question
type Question struct {
	Word   models.Word // The word being tested
	Prompt string      // The word with most letters masked
}

// CreateTest selects count words from the pool and builds questions for
// them. When a ranker is available it gets first pick; the adaptive
// selector fills whatever remains.
func (b *Builder) CreateTest(ctx context.Context, pool []models.Word, count int) ([]Question, selection.Stats) {
	// Soft-deleted and session-deleted words never appear in tests
	candidates := make([]models.Word, 0, len(pool))
	for _, w := range pool {
		if !w.Deleted {
			candidates = append(candidates, w)
		}
	}

	var rankedIDs []string
	if b.ranker != nil {
		rankedIDs = b.ranker.RankWordsWithFallback(ctx, candidates, count)
	}

	words, stats := b.selector.SelectWithRanked(candidates, rankedIDs, count)

	questions := make([]Question, 0, len(words))
	for _, w := range words {
		questions = append(questions, Question{
			Word:   w,
			Prompt: maskWord(w.Text),
		})
	}
	return questions, stats
}

// RecordAnswer updates a word's test history after one attempt.
// errorWeight allows fractional penalties (a near miss costs less than
// a blank). The accumulated error count is never reset here; only an
// explicit correction does that.
func RecordAnswer(word *models.Word, correct bool, errorWeight float64, elapsedMs int64) {
	now := time.Now().UnixMilli()
	word.Tested = true
	word.Correct = correct
	word.LastTested = &now

	if correct {
		if word.BestTimeMs == nil || elapsedMs < *word.BestTimeMs {
			word.BestTimeMs = &elapsedMs
		}
	} else {
		word.ErrorCount += errorWeight
	}
}

// CorrectErrorCount explicitly resets a word's accumulated errors
func CorrectErrorCount(word *models.Word, value float64) {
	if value < 0 {
		value = 0
	}
	word.ErrorCount = value
}

// Finish summarizes a completed test for the stats recording service
func Finish(userID string, questions []Question, correct int, durationSec int, points float64) models.TestResult {
	return models.TestResult{
		UserID:       userID,
		TotalWords:   len(questions),
		CorrectWords: correct,
		Points:       points,
		TestDate:     time.Now(),
		Duration:     durationSec,
	}
}

// maskWord keeps the first letter of each part and masks the rest, so
// the prompt hints at the word without giving away the spelling
func maskWord(text string) string {
	parts := strings.Fields(text)
	masked := make([]string, 0, len(parts))
	for _, part := range parts {
		runes := []rune(part)
		if len(runes) <= 1 {
			masked = append(masked, part)
			continue
		}
		masked = append(masked, string(runes[0])+strings.Repeat("_", len(runes)-1))
	}
	return strings.Join(masked, " ")
}

// Shuffle randomizes question order in place
func Shuffle(questions []Question) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
