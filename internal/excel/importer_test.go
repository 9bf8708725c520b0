package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/wordmaster/pkg/models"
)

type fakeSaver struct {
	session models.Session
	words   []models.Word
	status  models.SyncStatus
	calls   int
}

func (f *fakeSaver) SaveSession(session models.Session, words []models.Word, status models.SyncStatus) error {
	f.session = session
	f.words = words
	f.status = status
	f.calls++
	return nil
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportWordsFromCSV(t *testing.T) {
	path := writeCSV(t, "word,tags\nserendipity,\"noun, rare\"\nambivalent,\nserendipity,\n,\n")
	saver := &fakeSaver{}

	config := DefaultImportConfig()
	config.FilePath = path
	config.LibraryTag = "imported"

	result, err := ImportWords(config, saver)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Skipped, "duplicate and blank rows are skipped")
	assert.Len(t, result.Errors, 1)

	require.Equal(t, 1, saver.calls)
	assert.Equal(t, models.SyncStatusPending, saver.status, "imported sessions wait for the next sync")
	assert.Equal(t, "imported", saver.session.LibraryTag)
	assert.Equal(t, 2, saver.session.WordCount)
	assert.NotEmpty(t, saver.session.ID)

	require.Len(t, saver.words, 2)
	assert.Equal(t, "serendipity", saver.words[0].Text)
	assert.Equal(t, []string{"noun", "rare"}, saver.words[0].Tags)
	assert.Equal(t, saver.session.ID, saver.words[0].SessionID)
	assert.NotEqual(t, saver.words[0].ID, saver.words[1].ID)
}

func TestImportWordsEmptyFileSavesNothing(t *testing.T) {
	path := writeCSV(t, "word,tags\n")
	saver := &fakeSaver{}

	config := DefaultImportConfig()
	config.FilePath = path

	result, err := ImportWords(config, saver)
	require.NoError(t, err)

	assert.Zero(t, result.Created)
	assert.Zero(t, saver.calls, "no session is created for an empty import")
}

func TestImportWordsMissingFile(t *testing.T) {
	config := DefaultImportConfig()
	config.FilePath = filepath.Join(t.TempDir(), "does-not-exist.csv")

	_, err := ImportWords(config, &fakeSaver{})
	assert.Error(t, err)
}

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 0, columnIndex("A"))
	assert.Equal(t, 1, columnIndex("b"))
	assert.Equal(t, 25, columnIndex("Z"))
	assert.Equal(t, 26, columnIndex("AA"))
	assert.Equal(t, -1, columnIndex(""))
	assert.Equal(t, -1, columnIndex("1"))
}
