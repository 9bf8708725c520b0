package syncer

import (
	"context"
	"fmt"
	"log"

	"github.com/example/wordmaster/pkg/models"
)

// CloudStore is the slice of the cloud backend the orchestrator needs
type CloudStore interface {
	GetSessionPackage(ctx context.Context, userID, sessionID string) (*models.SessionPackage, error)
	UpsertSessionPackage(ctx context.Context, userID string, pkg models.SessionPackage) error
}

// BackupStore is the slice of local persistence the orchestrator needs
type BackupStore interface {
	SaveSession(session models.Session, words []models.Word, status models.SyncStatus) error
	SetSyncStatus(sessionID string, status models.SyncStatus) error
	DeleteSession(sessionID string) error
	PendingSessions() ([]models.BackupSession, error)
}

// Orchestrator decides, per session, whether local or cloud wins and
// performs the transfer. Both stores are injected so tests can run
// against fakes.
type Orchestrator struct {
	cloud  CloudStore
	backup BackupStore
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(cloud CloudStore, backup BackupStore) *Orchestrator {
	return &Orchestrator{cloud: cloud, backup: backup}
}

// SyncSessionToCloud syncs one session against its cloud copy.
//
// Priority order: a deletion on either side wins over an edit on the
// other; otherwise the strictly newer snapshot wins, but only when it
// also has at least as many words. Identical content is a skip.
// Anything ambiguous (newer but fewer words, equal timestamps with
// differing content) is surfaced as a conflict for the user to resolve.
//
// On upload/download/skip the pending backup entry is cleared; on error
// it is left untouched so the data stays recoverable.
func (o *Orchestrator) SyncSessionToCloud(ctx context.Context, userID string, session models.Session, words []models.Word) models.SyncResult {
	sessionID := session.ID
	local := models.SessionPackage{Session: session, Words: words}

	cloudPkg, err := o.cloud.GetSessionPackage(ctx, userID, sessionID)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to fetch cloud session: %v", err))
	}

	// No cloud copy: local wins by default
	if cloudPkg == nil {
		return o.upload(ctx, userID, local)
	}

	switch {
	case cloudPkg.Session.Deleted && !local.Session.Deleted:
		// Cloud-side delete always wins over a local edit
		return o.download(sessionID, cloudPkg)

	case local.Session.Deleted && !cloudPkg.Session.Deleted:
		// Local delete wins: push it up
		return o.upload(ctx, userID, local)

	case packagesEqual(local, *cloudPkg):
		if err := o.backup.DeleteSession(sessionID); err != nil {
			return errorResult(fmt.Sprintf("failed to clear backup: %v", err))
		}
		return models.SyncResult{Success: true, Action: models.SyncActionSkipped}
	}

	localTS := latestActivity(local)
	cloudTS := latestActivity(*cloudPkg)

	switch {
	case localTS > cloudTS && len(local.Words) >= len(cloudPkg.Words):
		return o.upload(ctx, userID, local)
	case cloudTS > localTS && len(cloudPkg.Words) >= len(local.Words):
		return o.download(sessionID, cloudPkg)
	}

	// Ambiguous: hand both snapshots to the user
	if err := o.backup.SetSyncStatus(sessionID, models.SyncStatusFailed); err != nil {
		log.Printf("Error marking session %s failed: %v", sessionID, err)
	}
	localCopy := local
	return models.SyncResult{
		Success: false,
		Action:  models.SyncActionConflict,
		Conflict: &models.ConflictRecord{
			SessionID: sessionID,
			Cloud:     cloudPkg,
			Local:     &localCopy,
		},
	}
}

// ResolveConflict applies an explicit user choice for a conflicted
// session, then clears its pending backup entry
func (o *Orchestrator) ResolveConflict(ctx context.Context, userID, sessionID, choice string, local, cloudPkg models.SessionPackage) models.SyncResult {
	switch choice {
	case "local":
		return o.upload(ctx, userID, local)
	case "cloud":
		return o.download(sessionID, &cloudPkg)
	default:
		return errorResult(fmt.Sprintf("unknown conflict choice: %q", choice))
	}
}

func (o *Orchestrator) upload(ctx context.Context, userID string, pkg models.SessionPackage) models.SyncResult {
	pkg.Session.WordCount = len(pkg.Words)
	if err := o.cloud.UpsertSessionPackage(ctx, userID, pkg); err != nil {
		return errorResult(fmt.Sprintf("failed to upload session: %v", err))
	}
	if err := o.backup.DeleteSession(pkg.Session.ID); err != nil {
		return errorResult(fmt.Sprintf("failed to clear backup: %v", err))
	}
	return models.SyncResult{Success: true, Action: models.SyncActionUploaded}
}

func (o *Orchestrator) download(sessionID string, cloudPkg *models.SessionPackage) models.SyncResult {
	// The cloud copy is returned for the caller to apply to its word
	// collection; the pending entry just goes away.
	if err := o.backup.DeleteSession(sessionID); err != nil {
		return errorResult(fmt.Sprintf("failed to clear backup: %v", err))
	}
	return models.SyncResult{Success: true, Action: models.SyncActionDownloaded, Cloud: cloudPkg}
}

func errorResult(message string) models.SyncResult {
	return models.SyncResult{Success: false, Action: models.SyncActionError, Message: message}
}

// latestActivity is the newest timestamp found anywhere in a snapshot.
// Sessions carry no updated_at of their own, so word creation and test
// times stand in for it.
func latestActivity(pkg models.SessionPackage) int64 {
	ts := pkg.Session.CreatedAt
	for _, w := range pkg.Words {
		if w.CreatedAt > ts {
			ts = w.CreatedAt
		}
		if w.LastTested != nil && *w.LastTested > ts {
			ts = *w.LastTested
		}
	}
	return ts
}

// packagesEqual reports whether two snapshots carry identical content,
// ignoring sync status
func packagesEqual(a, b models.SessionPackage) bool {
	if a.Session.Deleted != b.Session.Deleted ||
		a.Session.LibraryTag != b.Session.LibraryTag ||
		a.Session.TargetWordCount != b.Session.TargetWordCount ||
		len(a.Words) != len(b.Words) {
		return false
	}

	byID := make(map[string]models.Word, len(b.Words))
	for _, w := range b.Words {
		byID[w.ID] = w
	}
	for _, w := range a.Words {
		other, ok := byID[w.ID]
		if !ok || !wordsEqual(w, other) {
			return false
		}
	}
	return true
}

func wordsEqual(a, b models.Word) bool {
	if a.Text != b.Text || a.Correct != b.Correct || a.Tested != b.Tested ||
		a.ErrorCount != b.ErrorCount || a.Deleted != b.Deleted {
		return false
	}
	if !int64PtrEqual(a.BestTimeMs, b.BestTimeMs) || !int64PtrEqual(a.LastTested, b.LastTested) {
		return false
	}
	return true
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
