package syncer

import (
	"context"
	"log"

	"github.com/example/wordmaster/pkg/models"
)

// SyncAllPendingSessions walks every backed-up session still waiting for
// a sync (pending or failed) and syncs each one independently. A single
// session's failure or conflict never aborts the batch. With nothing
// pending this is a no-op, so repeated invocation is harmless.
func (o *Orchestrator) SyncAllPendingSessions(ctx context.Context, userID string) models.SyncSummary {
	var summary models.SyncSummary

	pending, err := o.backup.PendingSessions()
	if err != nil {
		log.Printf("Error listing pending sessions: %v", err)
		return summary
	}

	for _, entry := range pending {
		sessionID := entry.Session.ID

		if err := o.backup.SetSyncStatus(sessionID, models.SyncStatusSyncing); err != nil {
			log.Printf("Error marking session %s syncing: %v", sessionID, err)
		}

		result := o.SyncSessionToCloud(ctx, userID, entry.Session, entry.Words)
		switch {
		case result.Success:
			summary.Synced++
		case result.Action == models.SyncActionConflict:
			summary.Conflicts++
		default:
			summary.Failed++
			// Keep the backup entry so the next run retries it
			if err := o.backup.SetSyncStatus(sessionID, models.SyncStatusFailed); err != nil {
				log.Printf("Error marking session %s failed: %v", sessionID, err)
			}
			log.Printf("Sync failed for session %s: %s", sessionID, result.Message)
		}
	}

	return summary
}
