package selection

import (
	"math"
	"math/rand"
	"time"

	"github.com/example/wordmaster/pkg/models"
)

// Config holds the tunable constants of the urgency model. The total
// urgency is bounded to 0-90: up to 40 from accumulated errors, up to 35
// from forgetting-curve decay, up to 15 from a freshness bonus that
// rotates long-untouched words back into circulation.
type Config struct {
	// Points of urgency per accumulated error
	ErrorWeight float64
	// Cap on the error component
	ErrorCap float64
	// Cap on the forgetting-curve component
	CurveCap float64
	// Days over which the forgetting curve saturates
	CurveHalfLifeDays float64
	// Default curve urgency for words never tested
	NeverTestedUrgency float64
	// Cap on the freshness bonus
	FreshnessCap float64
	// Days of inactivity before the freshness bonus starts
	FreshnessDelayDays float64
	// Softmax temperature: lower values sharpen the distribution
	Temperature float64
	// Probability of each pairwise swap in the diversity pass
	SwapChance float64
}

// DefaultConfig returns the default selection constants
func DefaultConfig() Config {
	return Config{
		ErrorWeight:        8,
		ErrorCap:           40,
		CurveCap:           35,
		CurveHalfLifeDays:  5,
		NeverTestedUrgency: 30,
		FreshnessCap:       15,
		FreshnessDelayDays: 14,
		Temperature:        12,
		SwapChance:         0.3,
	}
}

// Stats carries the auditable signals of one selection run: the pool
// and selection sizes, the error-level distribution of the chosen
// words, and their average urgency.
type Stats struct {
	PoolSize    int     `json:"pool_size"`
	Selected    int     `json:"selected"`
	Critical    int     `json:"critical"` // errorCount >= 3
	High        int     `json:"high"`     // errorCount 1.0-2.9
	Low         int     `json:"low"`      // errorCount 0.3-0.9
	Perfect     int     `json:"perfect"`  // errorCount < 0.3
	AvgUrgency  float64 `json:"avg_urgency"`
	FromOracle  int     `json:"from_oracle"`
}

// Selector scores candidate words by error-recency urgency and samples
// a test set from the resulting distribution
type Selector struct {
	config Config
	rnd    *rand.Rand
	now    func() time.Time
}

// New creates a selector with default settings
func New() *Selector {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a selector with custom settings
func NewWithConfig(config Config) *Selector {
	return &Selector{
		config: config,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Urgency computes the 0-90 composite urgency score for one word
func (s *Selector) Urgency(w models.Word) float64 {
	now := s.now().UnixMilli()

	// Error component: the primary signal
	errScore := w.ErrorCount * s.config.ErrorWeight
	if errScore > s.config.ErrorCap {
		errScore = s.config.ErrorCap
	}

	// Forgetting-curve component: grows with time since the last test
	// and saturates at the cap. Never-tested words get a high default
	// so they surface early.
	var curveScore float64
	if w.LastTested == nil {
		curveScore = s.config.NeverTestedUrgency
	} else {
		days := float64(now-*w.LastTested) / float64(24*time.Hour/time.Millisecond)
		if days < 0 {
			days = 0
		}
		curveScore = s.config.CurveCap * (1 - math.Exp(-days/s.config.CurveHalfLifeDays))
	}
	if curveScore > s.config.CurveCap {
		curveScore = s.config.CurveCap
	}

	// Freshness bonus: guarantees rotation of "perfect" words that have
	// sat untouched for a long stretch, independent of error history
	ref := w.CreatedAt
	if w.LastTested != nil {
		ref = *w.LastTested
	}
	idleDays := float64(now-ref) / float64(24*time.Hour/time.Millisecond)
	var freshScore float64
	if idleDays > s.config.FreshnessDelayDays {
		freshScore = idleDays - s.config.FreshnessDelayDays
		if freshScore > s.config.FreshnessCap {
			freshScore = s.config.FreshnessCap
		}
	}

	total := errScore + curveScore + freshScore
	bound := s.config.ErrorCap + s.config.CurveCap + s.config.FreshnessCap
	if total > bound {
		total = bound
	}
	return total
}

// SelectWords draws count distinct words from the pool, weighted by a
// softmax over urgency so higher-urgency words are proportionally more
// likely without any candidate ever dropping to zero probability.
func (s *Selector) SelectWords(pool []models.Word, count int) ([]models.Word, Stats) {
	stats := Stats{PoolSize: len(pool)}
	if count <= 0 || len(pool) == 0 {
		return nil, stats
	}
	if count > len(pool) {
		count = len(pool)
	}

	urgencies := make([]float64, len(pool))
	for i, w := range pool {
		urgencies[i] = s.Urgency(w)
	}

	// Softmax transform; exp keeps every weight strictly positive
	weights := make([]float64, len(pool))
	for i, u := range urgencies {
		weights[i] = math.Exp(u / s.config.Temperature)
	}

	// Weighted sampling without replacement: draw, remove, renormalize
	// over the survivors. Sampling with discard would skew toward the
	// head on repeated misses.
	candidates := make([]int, len(pool))
	for i := range candidates {
		candidates[i] = i
	}

	selected := make([]models.Word, 0, count)
	var urgencySum float64
	for len(selected) < count {
		var total float64
		for _, idx := range candidates {
			total += weights[idx]
		}

		r := s.rnd.Float64() * total
		chosen := len(candidates) - 1
		for pos, idx := range candidates {
			r -= weights[idx]
			if r <= 0 {
				chosen = pos
				break
			}
		}

		idx := candidates[chosen]
		selected = append(selected, pool[idx])
		urgencySum += urgencies[idx]
		candidates = append(candidates[:chosen], candidates[chosen+1:]...)
	}

	// Diversity perturbation: bounded-probability adjacent swaps keep
	// the chosen set intact while decorrelating presentation order from
	// score rank
	for i := 0; i < len(selected)-1; i++ {
		if s.rnd.Float64() < s.config.SwapChance {
			selected[i], selected[i+1] = selected[i+1], selected[i]
		}
	}

	stats.Selected = len(selected)
	stats.AvgUrgency = urgencySum / float64(len(selected))
	for _, w := range selected {
		switch {
		case w.ErrorCount >= 3:
			stats.Critical++
		case w.ErrorCount >= 1.0:
			stats.High++
		case w.ErrorCount >= 0.3:
			stats.Low++
		default:
			stats.Perfect++
		}
	}
	return selected, stats
}

// SelectWithRanked seeds the selection from an externally ranked id
// list (usually AI-supplied), then fills the remainder from the
// not-yet-selected candidates using the local urgency model. A nil or
// empty ranking degrades to fully local selection.
func (s *Selector) SelectWithRanked(pool []models.Word, rankedIDs []string, count int) ([]models.Word, Stats) {
	if len(rankedIDs) == 0 {
		return s.SelectWords(pool, count)
	}

	byID := make(map[string]models.Word, len(pool))
	for _, w := range pool {
		byID[w.ID] = w
	}

	selected := make([]models.Word, 0, count)
	taken := make(map[string]bool, count)
	for _, id := range rankedIDs {
		if len(selected) >= count {
			break
		}
		w, ok := byID[id]
		if !ok || taken[id] {
			continue
		}
		selected = append(selected, w)
		taken[id] = true
	}
	fromOracle := len(selected)

	if len(selected) < count {
		rest := make([]models.Word, 0, len(pool)-len(selected))
		for _, w := range pool {
			if !taken[w.ID] {
				rest = append(rest, w)
			}
		}
		fill, _ := s.SelectWords(rest, count-len(selected))
		selected = append(selected, fill...)
	}

	stats := Stats{PoolSize: len(pool), Selected: len(selected), FromOracle: fromOracle}
	var urgencySum float64
	for _, w := range selected {
		urgencySum += s.Urgency(w)
		switch {
		case w.ErrorCount >= 3:
			stats.Critical++
		case w.ErrorCount >= 1.0:
			stats.High++
		case w.ErrorCount >= 0.3:
			stats.Low++
		default:
			stats.Perfect++
		}
	}
	if len(selected) > 0 {
		stats.AvgUrgency = urgencySum / float64(len(selected))
	}
	return selected, stats
}
