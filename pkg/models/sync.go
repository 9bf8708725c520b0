package models

// SyncAction describes what a single-session sync ended up doing
type SyncAction string

const (
	SyncActionUploaded   SyncAction = "uploaded"
	SyncActionDownloaded SyncAction = "downloaded"
	SyncActionSkipped    SyncAction = "skipped"
	SyncActionConflict   SyncAction = "conflict"
	SyncActionError      SyncAction = "error"
)

// SessionPackage is a full session+words snapshot, the unit the
// orchestrator compares and transfers as a whole.
type SessionPackage struct {
	Session Session `json:"session"`
	Words   []Word  `json:"words"`
}

// ConflictRecord carries both divergent snapshots of a session when
// automatic resolution is impossible. It is resolved only by an explicit
// user choice, never silently.
type ConflictRecord struct {
	SessionID string          `json:"session_id"`
	Cloud     *SessionPackage `json:"cloud"`
	Local     *SessionPackage `json:"local"`
}

// SyncResult reports the outcome of syncing one session
type SyncResult struct {
	Success  bool            `json:"success"`
	Action   SyncAction      `json:"action"`
	Cloud    *SessionPackage `json:"cloud,omitempty"`
	Conflict *ConflictRecord `json:"conflict,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// SyncSummary aggregates a batch run over all pending sessions
type SyncSummary struct {
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
	Conflicts int `json:"conflicts"`
}
