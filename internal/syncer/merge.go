package syncer

import "github.com/example/wordmaster/pkg/models"

// MergeStats reconciles two divergent day-records by taking the
// field-wise maximum of every counter. Different devices may have
// recorded overlapping test activity for the same day; max never loses
// already-recorded progress and never fabricates extra progress, unlike
// summing which would double count overlap. This is a deliberate
// approximation: a true union would need event-level logs, not daily
// aggregates.
func MergeStats(local, server models.DayStats) models.DayStats {
	merged := models.DayStats{
		Date:         server.Date,
		TotalCount:   maxInt(local.TotalCount, server.TotalCount),
		CorrectCount: maxInt(local.CorrectCount, server.CorrectCount),
		Points:       maxFloat(local.Points, server.Points),
		Version:      maxInt64(local.Version, server.Version),
		UpdatedAt:    server.UpdatedAt,
		IsFrozen:     server.IsFrozen,
		Conflict:     true,
		Resolved:     string(ResolutionMerged),
	}
	return merged
}

// ResolveStatsUpdate applies per-date resolution across the whole local
// dictionary of day-records. Server-only dates are adopted verbatim,
// local-only dates are left untouched, matching versions are left
// untouched, and diverging dates are max-merged.
func ResolveStatsUpdate(local map[string]models.DayStats, server []models.DayStats) map[string]models.DayStats {
	resolved := make(map[string]models.DayStats, len(local)+len(server))
	for date, stats := range local {
		resolved[date] = stats
	}

	for _, serverStats := range server {
		localStats, ok := resolved[serverStats.Date]
		var localRef *models.DayStats
		if ok {
			localRef = &localStats
		}

		switch CompareVersions(localRef, serverStats).Resolution {
		case ResolutionServer:
			resolved[serverStats.Date] = serverStats
		case ResolutionMerged:
			resolved[serverStats.Date] = MergeStats(localStats, serverStats)
		}
		// ResolutionNone: keep the local record
	}

	return resolved
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
