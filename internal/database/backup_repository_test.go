package database

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordmaster/pkg/models"
)

func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, ConnectInMemory())
	t.Cleanup(func() { Close() })
}

func sampleSession(id string) (models.Session, []models.Word) {
	now := time.Now().UnixMilli()
	session := models.Session{ID: id, CreatedAt: now, WordCount: 2, TargetWordCount: 2}
	words := []models.Word{
		{ID: id + "-w1", Text: "serendipity", SessionID: id, CreatedAt: now, Tags: []string{"noun"}},
		{ID: id + "-w2", Text: "ambivalent", SessionID: id, CreatedAt: now, ErrorCount: 1.5},
	}
	return session, words
}

func TestBackupLoadEmpty(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	backup, err := r.Load()
	require.NoError(t, err)
	assert.Nil(t, backup, "no backup written yet")
}

func TestBackupSaveAndLoadRoundTrip(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	session, words := sampleSession("s1")
	require.NoError(t, r.SaveSession(session, words, models.SyncStatusPending))

	backup, err := r.Load()
	require.NoError(t, err)
	require.NotNil(t, backup)
	require.Len(t, backup.Sessions, 1)

	entry := backup.Sessions[0]
	assert.Equal(t, "s1", entry.Session.ID)
	assert.Equal(t, models.SyncStatusPending, entry.Session.SyncStatus)
	require.Len(t, entry.Words, 2)
	assert.Equal(t, "serendipity", entry.Words[0].Text)
	assert.Equal(t, []string{"noun"}, entry.Words[0].Tags)
	assert.Equal(t, 1.5, entry.Words[1].ErrorCount)
	assert.NotZero(t, backup.UpdatedAt)
}

func TestBackupSaveSessionOverwritesExisting(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	session, words := sampleSession("s1")
	require.NoError(t, r.SaveSession(session, words, models.SyncStatusPending))

	// Edit: drop one word, change status
	require.NoError(t, r.SaveSession(session, words[:1], models.SyncStatusFailed))

	backup, err := r.Load()
	require.NoError(t, err)
	require.Len(t, backup.Sessions, 1)
	assert.Len(t, backup.Sessions[0].Words, 1)
	assert.Equal(t, models.SyncStatusFailed, backup.Sessions[0].Session.SyncStatus)
}

func TestBackupSetSyncStatus(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	session, words := sampleSession("s1")
	require.NoError(t, r.SaveSession(session, words, models.SyncStatusPending))
	require.NoError(t, r.SetSyncStatus("s1", models.SyncStatusSyncing))

	backup, err := r.Load()
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSyncing, backup.Sessions[0].Session.SyncStatus)

	// Unknown session is a no-op, not an error
	require.NoError(t, r.SetSyncStatus("missing", models.SyncStatusFailed))
}

func TestBackupDeleteSession(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	s1, w1 := sampleSession("s1")
	s2, w2 := sampleSession("s2")
	require.NoError(t, r.SaveSession(s1, w1, models.SyncStatusPending))
	require.NoError(t, r.SaveSession(s2, w2, models.SyncStatusPending))

	require.NoError(t, r.DeleteSession("s1"))

	backup, err := r.Load()
	require.NoError(t, err)
	require.Len(t, backup.Sessions, 1)
	assert.Equal(t, "s2", backup.Sessions[0].Session.ID)
}

func TestBackupPendingSessions(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	for _, status := range []models.SyncStatus{
		models.SyncStatusPending,
		models.SyncStatusFailed,
		models.SyncStatusSynced,
		models.SyncStatusConflict,
	} {
		session, words := sampleSession("s-" + string(status))
		require.NoError(t, r.SaveSession(session, words, status))
	}

	pending, err := r.PendingSessions()
	require.NoError(t, err)
	require.Len(t, pending, 2, "only pending and failed sessions are sync work")

	ids := []string{pending[0].Session.ID, pending[1].Session.ID}
	assert.Contains(t, ids, "s-pending")
	assert.Contains(t, ids, "s-failed")
}

func TestBackupRejectsOversizedPayload(t *testing.T) {
	setupDB(t)
	r := NewBackupRepository()

	// A word with a huge embedded payload, as if a caller forgot to
	// strip binary data
	session, words := sampleSession("s1")
	words[0].Text = strings.Repeat("x", MaxBackupBytes+1)

	err := r.SaveSession(session, words, models.SyncStatusPending)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackupTooLarge)

	// Nothing was partially written
	backup, err := r.Load()
	require.NoError(t, err)
	assert.Nil(t, backup)
}

func TestDayStatsRepository(t *testing.T) {
	setupDB(t)
	r := NewDayStatsRepository()

	all, err := r.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	day := models.DayStats{
		Date:         "2026-03-01",
		TotalCount:   10,
		CorrectCount: 8,
		Points:       12.5,
		Version:      2,
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, r.Upsert(day))

	// Upsert replaces on the same date
	day.TotalCount = 15
	day.Version = 3
	require.NoError(t, r.Upsert(day))

	all, err = r.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 15, all["2026-03-01"].TotalCount)
	assert.EqualValues(t, 3, all["2026-03-01"].Version)
	assert.Equal(t, 12.5, all["2026-03-01"].Points)
}
