package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordmaster/internal/cloud"
	"github.com/example/wordmaster/pkg/models"
)

type recordCall struct {
	date            string
	expectedVersion int64
}

type fakeStatsStore struct {
	outcomes    []*cloud.RecordOutcome
	calls       []recordCall
	serverStats []models.DayStats
	recordErr   error
	listErr     error
}

func (f *fakeStatsStore) ListDayStats(_ context.Context, _ string) ([]models.DayStats, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.serverStats, nil
}

func (f *fakeStatsStore) RecordTestAndSyncStats(_ context.Context, _, testDate string, _, _ int, _ float64, expectedVersion int64) (*cloud.RecordOutcome, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.calls = append(f.calls, recordCall{date: testDate, expectedVersion: expectedVersion})
	outcome := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}
	return outcome, nil
}

type fakeStatsCache struct {
	days map[string]models.DayStats
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{days: make(map[string]models.DayStats)}
}

func (f *fakeStatsCache) GetAll() (map[string]models.DayStats, error) {
	copied := make(map[string]models.DayStats, len(f.days))
	for k, v := range f.days {
		copied[k] = v
	}
	return copied, nil
}

func (f *fakeStatsCache) Upsert(stats models.DayStats) error {
	f.days[stats.Date] = stats
	return nil
}

func testResultOn(date time.Time) models.TestResult {
	return models.TestResult{
		UserID:       "u1",
		TotalWords:   10,
		CorrectWords: 8,
		Points:       12.5,
		TestDate:     date,
	}
}

func TestRecordTestResultHappyPath(t *testing.T) {
	store := &fakeStatsStore{outcomes: []*cloud.RecordOutcome{{NewVersion: 1}}}
	cache := newFakeStatsCache()
	s := NewStatsService(store, cache)

	testDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day, err := s.RecordTestResult(context.Background(), "u1", testResultOn(testDate))

	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", day.Date)
	assert.Equal(t, 10, day.TotalCount)
	assert.Equal(t, 8, day.CorrectCount)
	assert.EqualValues(t, 1, day.Version)

	require.Len(t, store.calls, 1)
	assert.EqualValues(t, 0, store.calls[0].expectedVersion, "first write for a day expects version 0")
	assert.Equal(t, 10, cache.days["2026-03-01"].TotalCount)
}

func TestRecordTestResultFrozenDayRejected(t *testing.T) {
	store := &fakeStatsStore{outcomes: []*cloud.RecordOutcome{{Frozen: true}}}
	cache := newFakeStatsCache()
	cache.days["2026-02-01"] = models.DayStats{Date: "2026-02-01", TotalCount: 5, Version: 3}
	s := NewStatsService(store, cache)

	testDate := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	_, err := s.RecordTestResult(context.Background(), "u1", testResultOn(testDate))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDayFrozen))
	require.Len(t, store.calls, 1, "frozen rejection is never retried")
	assert.EqualValues(t, 3, cache.days["2026-02-01"].Version, "local version must not change")
	assert.Equal(t, 5, cache.days["2026-02-01"].TotalCount)
}

func TestRecordTestResultConflictRecoversViaMerge(t *testing.T) {
	store := &fakeStatsStore{
		outcomes: []*cloud.RecordOutcome{
			{ConflictDetected: true},
			{NewVersion: 6},
		},
		serverStats: []models.DayStats{
			{Date: "2026-03-01", TotalCount: 30, CorrectCount: 20, Points: 40, Version: 5},
		},
	}
	cache := newFakeStatsCache()
	cache.days["2026-03-01"] = models.DayStats{Date: "2026-03-01", TotalCount: 12, CorrectCount: 9, Points: 11, Version: 2}
	s := NewStatsService(store, cache)

	testDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day, err := s.RecordTestResult(context.Background(), "u1", testResultOn(testDate))

	require.NoError(t, err)
	require.Len(t, store.calls, 2)
	assert.EqualValues(t, 2, store.calls[0].expectedVersion)
	assert.EqualValues(t, 5, store.calls[1].expectedVersion, "retry must use the merged server version")

	// Merged server totals plus this test's contribution
	assert.Equal(t, 40, day.TotalCount)
	assert.Equal(t, 28, day.CorrectCount)
	assert.EqualValues(t, 6, day.Version)
}

func TestRecordTestResultUnresolvableConflict(t *testing.T) {
	store := &fakeStatsStore{
		outcomes: []*cloud.RecordOutcome{
			{ConflictDetected: true},
			{ConflictDetected: true},
		},
	}
	s := NewStatsService(store, newFakeStatsCache())

	testDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := s.RecordTestResult(context.Background(), "u1", testResultOn(testDate))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatsConflict))
	assert.Len(t, store.calls, 2, "exactly one retry after a reconciling fetch")
}

func TestRecordTestResultTransientFailure(t *testing.T) {
	store := &fakeStatsStore{recordErr: errors.New("connection refused")}
	cache := newFakeStatsCache()
	s := NewStatsService(store, cache)

	testDate := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := s.RecordTestResult(context.Background(), "u1", testResultOn(testDate))

	require.Error(t, err)
	assert.Empty(t, cache.days, "nothing is written locally on a failed cloud call")
}

func TestRefreshFromServer(t *testing.T) {
	store := &fakeStatsStore{
		serverStats: []models.DayStats{
			{Date: "2026-03-01", TotalCount: 30, Version: 5},
			{Date: "2026-03-02", TotalCount: 4, Version: 1},
		},
	}
	cache := newFakeStatsCache()
	cache.days["2026-03-01"] = models.DayStats{Date: "2026-03-01", TotalCount: 12, Version: 2}
	s := NewStatsService(store, cache)

	resolved, err := s.RefreshFromServer(context.Background(), "u1")

	require.NoError(t, err)
	assert.Len(t, resolved, 2)
	assert.Equal(t, 30, cache.days["2026-03-01"].TotalCount)
	assert.True(t, cache.days["2026-03-01"].Conflict)
	assert.Equal(t, 4, cache.days["2026-03-02"].TotalCount)
}
