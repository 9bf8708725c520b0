package models

// BackupSession pairs a session with the words it owned at backup time
type BackupSession struct {
	Session Session `json:"session"`
	Words   []Word  `json:"words"`
}

// LocalBackup is the single serialized snapshot kept in local storage.
// It is rewritten in full on every local mutation and is the durability
// guarantee whenever cloud writes fail. Binary payloads (images, audio)
// must be stripped before a backup is saved.
type LocalBackup struct {
	Sessions  []BackupSession `json:"sessions"`
	UpdatedAt int64           `json:"updated_at"` // Unix milliseconds
}

// FindSession returns the backup entry for the given session id, or nil
func (b *LocalBackup) FindSession(id string) *BackupSession {
	for i := range b.Sessions {
		if b.Sessions[i].Session.ID == id {
			return &b.Sessions[i]
		}
	}
	return nil
}

// RemoveSession deletes the backup entry for the given session id, if present
func (b *LocalBackup) RemoveSession(id string) {
	for i := range b.Sessions {
		if b.Sessions[i].Session.ID == id {
			b.Sessions = append(b.Sessions[:i], b.Sessions[i+1:]...)
			return
		}
	}
}
