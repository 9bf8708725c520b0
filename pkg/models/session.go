package models

// SyncStatus tracks whether a session's local data matches the cloud copy
type SyncStatus string

const (
	// SyncStatusSynced means local and cloud copies are identical
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusPending means local changes have not been uploaded yet
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSyncing means a sync for this session is in flight
	SyncStatusSyncing SyncStatus = "syncing"
	// SyncStatusFailed means the last sync attempt did not complete
	SyncStatusFailed SyncStatus = "failed"
	// SyncStatusConflict means local and cloud diverged and need user resolution
	SyncStatusConflict SyncStatus = "conflict"
)

// Session represents a batch of words entered together by the user
type Session struct {
	ID              string     `json:"id" db:"id"`
	CreatedAt       int64      `json:"created_at" db:"created_at"` // Unix milliseconds
	WordCount       int        `json:"word_count" db:"word_count"`
	TargetWordCount int        `json:"target_word_count" db:"target_word_count"`
	Deleted         bool       `json:"deleted" db:"deleted"`
	LibraryTag      string     `json:"library_tag" db:"library_tag"`
	SyncStatus      SyncStatus `json:"sync_status" db:"sync_status"`
}
