package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/wordmaster/pkg/models"
)

// MaxBackupBytes caps the serialized backup blob. Local storage is
// size-bounded, so oversized payloads (usually embedded binary data the
// caller forgot to strip) are rejected outright instead of written partially.
const MaxBackupBytes = 4 * 1024 * 1024

// ErrBackupTooLarge is returned when a backup exceeds MaxBackupBytes
var ErrBackupTooLarge = errors.New("backup payload exceeds storage limit")

// BackupRepository handles the single-slot local backup blob
type BackupRepository struct{}

// NewBackupRepository creates a new repository instance
func NewBackupRepository() *BackupRepository {
	return &BackupRepository{}
}

// Load reads the backup snapshot. Returns nil without error when no
// backup has been written yet.
func (r *BackupRepository) Load() (*models.LocalBackup, error) {
	var payload string
	err := DB.Get(&payload, "SELECT payload FROM local_backup WHERE slot = 1")
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load backup: %v", err)
	}

	var backup models.LocalBackup
	if err := json.Unmarshal([]byte(payload), &backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %v", err)
	}
	return &backup, nil
}

// Save overwrites the backup snapshot in full. No partial merge happens
// at this layer; callers mutate the snapshot and hand it back whole.
func (r *BackupRepository) Save(backup *models.LocalBackup) error {
	backup.UpdatedAt = time.Now().UnixMilli()

	payload, err := json.Marshal(backup)
	if err != nil {
		return fmt.Errorf("failed to encode backup: %v", err)
	}
	if len(payload) > MaxBackupBytes {
		return fmt.Errorf("failed to save backup: %w", ErrBackupTooLarge)
	}

	_, err = DB.Exec(`
		INSERT INTO local_backup (slot, payload, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
	`, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save backup: %v", err)
	}
	return nil
}

// SaveSession upserts one session and its words into the backup with the
// given sync status
func (r *BackupRepository) SaveSession(session models.Session, words []models.Word, status models.SyncStatus) error {
	backup, err := r.Load()
	if err != nil {
		return err
	}
	if backup == nil {
		backup = &models.LocalBackup{}
	}

	session.SyncStatus = status
	entry := backup.FindSession(session.ID)
	if entry != nil {
		entry.Session = session
		entry.Words = words
	} else {
		backup.Sessions = append(backup.Sessions, models.BackupSession{
			Session: session,
			Words:   words,
		})
	}

	return r.Save(backup)
}

// SetSyncStatus updates the sync status of one backed-up session
func (r *BackupRepository) SetSyncStatus(sessionID string, status models.SyncStatus) error {
	backup, err := r.Load()
	if err != nil {
		return err
	}
	if backup == nil {
		return nil
	}

	entry := backup.FindSession(sessionID)
	if entry == nil {
		return nil
	}
	entry.Session.SyncStatus = status

	return r.Save(backup)
}

// DeleteSession removes a session's backup entry, typically after a
// successful sync made the local copy redundant
func (r *BackupRepository) DeleteSession(sessionID string) error {
	backup, err := r.Load()
	if err != nil {
		return err
	}
	if backup == nil {
		return nil
	}

	backup.RemoveSession(sessionID)
	return r.Save(backup)
}

// PendingSessions returns backed-up sessions still waiting for a sync
// (pending or failed)
func (r *BackupRepository) PendingSessions() ([]models.BackupSession, error) {
	backup, err := r.Load()
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, nil
	}

	var pending []models.BackupSession
	for _, entry := range backup.Sessions {
		if entry.Session.SyncStatus == models.SyncStatusPending || entry.Session.SyncStatus == models.SyncStatusFailed {
			pending = append(pending, entry)
		}
	}
	return pending, nil
}
