package database

import (
	"fmt"

	"github.com/example/wordmaster/pkg/models"
)

// DayStatsRepository handles the local cache of versioned day statistics
type DayStatsRepository struct{}

// NewDayStatsRepository creates a new repository instance
func NewDayStatsRepository() *DayStatsRepository {
	return &DayStatsRepository{}
}

// GetAll returns every cached day record keyed by calendar day
func (r *DayStatsRepository) GetAll() (map[string]models.DayStats, error) {
	var stats []models.DayStats
	err := DB.Select(&stats, `
		SELECT date, total_count, correct_count, points, version, updated_at, is_frozen
		FROM day_stats_cache
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get day stats: %v", err)
	}

	byDate := make(map[string]models.DayStats, len(stats))
	for _, s := range stats {
		byDate[s.Date] = s
	}
	return byDate, nil
}

// Upsert writes one day record into the cache
func (r *DayStatsRepository) Upsert(stats models.DayStats) error {
	_, err := DB.Exec(`
		INSERT INTO day_stats_cache (date, total_count, correct_count, points, version, updated_at, is_frozen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_count = excluded.total_count,
			correct_count = excluded.correct_count,
			points = excluded.points,
			version = excluded.version,
			updated_at = excluded.updated_at,
			is_frozen = excluded.is_frozen
	`,
		stats.Date,
		stats.TotalCount,
		stats.CorrectCount,
		stats.Points,
		stats.Version,
		stats.UpdatedAt,
		stats.IsFrozen,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert day stats: %v", err)
	}
	return nil
}
