package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/wordmaster/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath   string // Path to the Excel or CSV file
	WordColumn string // Column with the word text
	TagsColumn string // Column with comma-separated tags
	SheetName  string // Name of the sheet to import
	SkipHeader bool   // Skip the header row
	StartRow   int    // The row to start importing from (1-based index)
	LibraryTag string // Library tag for the created session
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn: "A",
		TagsColumn: "B",
		SheetName:  "Sheet1",
		SkipHeader: true,
		StartRow:   2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
	Session        models.Session
	Words          []models.Word
}

// SessionSaver persists the imported session as pending work for the
// next sync run
type SessionSaver interface {
	SaveSession(session models.Session, words []models.Word, status models.SyncStatus) error
}

// ImportWords imports a word batch from an Excel or CSV file and saves
// it as a new pending session
func ImportWords(config ImportConfig, saver SessionSaver) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var rows [][]string
	var err error
	if ext == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	now := time.Now().UnixMilli()
	session := models.Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		LibraryTag: config.LibraryTag,
		SyncStatus: models.SyncStatusPending,
	}

	seen := make(map[string]bool)
	words := make([]models.Word, 0, len(rows))

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}

		result.TotalProcessed++

		text := cellValue(row, config.WordColumn)
		text = strings.TrimSpace(text)
		if text == "" {
			result.Skipped++
			continue
		}
		if seen[strings.ToLower(text)] {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate word %q", i+1, text))
			continue
		}
		seen[strings.ToLower(text)] = true

		var tags []string
		if raw := strings.TrimSpace(cellValue(row, config.TagsColumn)); raw != "" {
			for _, tag := range strings.Split(raw, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					tags = append(tags, tag)
				}
			}
		}

		words = append(words, models.Word{
			ID:        uuid.NewString(),
			Text:      text,
			CreatedAt: now,
			SessionID: session.ID,
			Tags:      tags,
		})
		result.Created++
	}

	session.WordCount = len(words)
	session.TargetWordCount = len(words)
	result.Session = session
	result.Words = words

	if len(words) == 0 {
		return result, nil
	}

	if err := saver.SaveSession(session, words, models.SyncStatusPending); err != nil {
		return nil, fmt.Errorf("failed to save imported session: %v", err)
	}
	return result, nil
}

// readExcel reads rows from an Excel file
func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

// readCSV reads rows from a CSV file
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// cellValue resolves a column letter ("A", "B", ...) against a row
func cellValue(row []string, column string) string {
	idx := columnIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnIndex converts a column letter to a zero-based index
func columnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
