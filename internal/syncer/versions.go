package syncer

import "github.com/example/wordmaster/pkg/models"

// Resolution says how a local/server day-record pair should be reconciled
type Resolution string

const (
	// ResolutionNone means the records are already in sync
	ResolutionNone Resolution = "none"
	// ResolutionServer means the server record should be adopted as-is
	ResolutionServer Resolution = "server"
	// ResolutionMerged means the records diverged and must be merged
	ResolutionMerged Resolution = "merged"
)

// VersionComparison is the outcome of comparing a local day-record
// against the server's copy
type VersionComparison struct {
	HasConflict   bool
	Resolution    Resolution
	LocalVersion  int64
	ServerVersion int64
}

// CompareVersions compares a local versioned day-record against the
// server record. A missing local record means first sync: adopt the
// server copy. Equal versions mean nothing to do. Anything else is a
// divergence the caller must merge.
func CompareVersions(local *models.DayStats, server models.DayStats) VersionComparison {
	if local == nil {
		return VersionComparison{
			HasConflict:   false,
			Resolution:    ResolutionServer,
			ServerVersion: server.Version,
		}
	}

	if local.Version == server.Version {
		return VersionComparison{
			HasConflict:   false,
			Resolution:    ResolutionNone,
			LocalVersion:  local.Version,
			ServerVersion: server.Version,
		}
	}

	return VersionComparison{
		HasConflict:   true,
		Resolution:    ResolutionMerged,
		LocalVersion:  local.Version,
		ServerVersion: server.Version,
	}
}

// IsLocalNewer reports whether a deferred local write should still be
// attempted after a reconciling fetch. Version wins; updated_at is the
// tiebreaker when versions are equal.
func IsLocalNewer(local, server models.DayStats) bool {
	if local.Version != server.Version {
		return local.Version > server.Version
	}
	return local.UpdatedAt.After(server.UpdatedAt)
}
