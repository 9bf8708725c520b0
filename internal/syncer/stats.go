package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/wordmaster/internal/cloud"
	"github.com/example/wordmaster/pkg/models"
)

// ErrDayFrozen is returned when a write targets a past calendar day.
// Frozen days are immutable by design: the operation fails outright and
// is never retried or merged.
var ErrDayFrozen = errors.New("day statistics are frozen")

// ErrStatsConflict is returned when the version conflict persists even
// after a reconciling fetch and merge
var ErrStatsConflict = errors.New("stats version conflict was not resolvable")

// StatsStore is the slice of the cloud backend the stats service needs
type StatsStore interface {
	ListDayStats(ctx context.Context, userID string) ([]models.DayStats, error)
	RecordTestAndSyncStats(ctx context.Context, userID, testDate string, testCount, correctCount int, points float64, expectedVersion int64) (*cloud.RecordOutcome, error)
}

// StatsCache is the local day-stats cache behind the service
type StatsCache interface {
	GetAll() (map[string]models.DayStats, error)
	Upsert(stats models.DayStats) error
}

// StatsService records finished tests into the versioned day statistics.
// The server holds the source of truth; a stale version comes back as a
// conflict and is recovered by fetching, max-merging, and retrying once
// with the reconciled version.
type StatsService struct {
	cloud StatsStore
	cache StatsCache
}

// NewStatsService creates a new stats service instance
func NewStatsService(cloudStore StatsStore, cache StatsCache) *StatsService {
	return &StatsService{cloud: cloudStore, cache: cache}
}

// RecordTestResult writes one test's totals into the day record for the
// test date, returning the updated local view of that day
func (s *StatsService) RecordTestResult(ctx context.Context, userID string, result models.TestResult) (*models.DayStats, error) {
	date := result.TestDate.Format("2006-01-02")

	local, err := s.cache.GetAll()
	if err != nil {
		return nil, err
	}

	var expectedVersion int64
	if day, ok := local[date]; ok {
		expectedVersion = day.Version
	}

	outcome, err := s.cloud.RecordTestAndSyncStats(ctx, userID, date,
		result.TotalWords, result.CorrectWords, result.Points, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to record test result: %v", err)
	}

	if outcome.Frozen {
		return nil, fmt.Errorf("cannot write stats for %s: %w", date, ErrDayFrozen)
	}

	if outcome.ConflictDetected {
		return s.recoverAndRetry(ctx, userID, date, result, local)
	}

	return s.applyLocal(date, result, outcome.NewVersion, local)
}

// recoverAndRetry reconciles the whole local cache against the server's
// day records, then replays the write once with the merged version
func (s *StatsService) recoverAndRetry(ctx context.Context, userID, date string, result models.TestResult, local map[string]models.DayStats) (*models.DayStats, error) {
	serverStats, err := s.cloud.ListDayStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server stats: %v", err)
	}

	resolved := ResolveStatsUpdate(local, serverStats)
	for _, day := range resolved {
		if err := s.cache.Upsert(day); err != nil {
			return nil, err
		}
	}

	mergedVersion := resolved[date].Version
	outcome, err := s.cloud.RecordTestAndSyncStats(ctx, userID, date,
		result.TotalWords, result.CorrectWords, result.Points, mergedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to record test result: %v", err)
	}
	if outcome.Frozen {
		return nil, fmt.Errorf("cannot write stats for %s: %w", date, ErrDayFrozen)
	}
	if outcome.ConflictDetected {
		return nil, fmt.Errorf("stats write for %s: %w", date, ErrStatsConflict)
	}

	return s.applyLocal(date, result, outcome.NewVersion, resolved)
}

func (s *StatsService) applyLocal(date string, result models.TestResult, newVersion int64, local map[string]models.DayStats) (*models.DayStats, error) {
	day := local[date]
	day.Date = date
	day.TotalCount += result.TotalWords
	day.CorrectCount += result.CorrectWords
	day.Points += result.Points
	day.Version = newVersion
	day.UpdatedAt = time.Now()

	if err := s.cache.Upsert(day); err != nil {
		return nil, err
	}
	return &day, nil
}

// RefreshFromServer pulls the server's day records and reconciles the
// local cache against them, returning the merged view
func (s *StatsService) RefreshFromServer(ctx context.Context, userID string) (map[string]models.DayStats, error) {
	local, err := s.cache.GetAll()
	if err != nil {
		return nil, err
	}

	serverStats, err := s.cloud.ListDayStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch server stats: %v", err)
	}

	resolved := ResolveStatsUpdate(local, serverStats)
	for _, day := range resolved {
		if err := s.cache.Upsert(day); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}
