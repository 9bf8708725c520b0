package cloud

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/example/wordmaster/pkg/models"
)

// Client talks to the hosted cloud database (Postgres). It covers the
// row-level session/word CRUD and the stats RPC the sync core needs;
// everything else about the backend is out of scope here.
type Client struct {
	db *sqlx.DB
}

// Connect establishes a connection to the cloud database
func Connect(dsn string) (*Client, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cloud database: %v", err)
	}
	db.SetMaxOpenConns(4)
	return NewClient(db), nil
}

// NewClient wraps an existing connection
func NewClient(db *sqlx.DB) *Client {
	return &Client{db: db}
}

// Close closes the cloud connection
func (c *Client) Close() error {
	return c.db.Close()
}

// wordRow is the words table shape; tags are stored comma-joined
type wordRow struct {
	ID         string   `db:"id"`
	Text       string   `db:"text"`
	CreatedAt  int64    `db:"created_at"`
	SessionID  string   `db:"session_id"`
	Correct    bool     `db:"correct"`
	Tested     bool     `db:"tested"`
	ErrorCount float64  `db:"error_count"`
	BestTimeMs *int64   `db:"best_time_ms"`
	LastTested *int64   `db:"last_tested"`
	Score      *float64 `db:"score"`
	Deleted    bool     `db:"deleted"`
	Tags       string   `db:"tags"`
}

func (r wordRow) toModel() models.Word {
	var tags []string
	if r.Tags != "" {
		tags = strings.Split(r.Tags, ",")
	}
	return models.Word{
		ID:         r.ID,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
		SessionID:  r.SessionID,
		Correct:    r.Correct,
		Tested:     r.Tested,
		ErrorCount: r.ErrorCount,
		BestTimeMs: r.BestTimeMs,
		LastTested: r.LastTested,
		Score:      r.Score,
		Deleted:    r.Deleted,
		Tags:       tags,
	}
}

// GetSessionPackage fetches the cloud snapshot of one session and its
// words. Returns nil without error when the session doesn't exist.
func (c *Client) GetSessionPackage(ctx context.Context, userID, sessionID string) (*models.SessionPackage, error) {
	var session models.Session
	err := c.db.GetContext(ctx, &session, `
		SELECT id, created_at, word_count, target_word_count, deleted, library_tag
		FROM sessions
		WHERE user_id = $1 AND id = $2
	`, userID, sessionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cloud session: %v", err)
	}

	var rows []wordRow
	err = c.db.SelectContext(ctx, &rows, `
		SELECT id, text, created_at, session_id, correct, tested, error_count,
		       best_time_ms, last_tested, score, deleted, tags
		FROM words
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at
	`, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cloud words: %v", err)
	}

	words := make([]models.Word, 0, len(rows))
	for _, r := range rows {
		words = append(words, r.toModel())
	}
	return &models.SessionPackage{Session: session, Words: words}, nil
}

// UpsertSessionPackage replaces the cloud copy of one session with the
// given snapshot. Words are rewritten wholesale; the snapshot is the
// unit of transfer.
func (c *Client) UpsertSessionPackage(ctx context.Context, userID string, pkg models.SessionPackage) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cloud transaction: %v", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, word_count, target_word_count, deleted, library_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			word_count = EXCLUDED.word_count,
			target_word_count = EXCLUDED.target_word_count,
			deleted = EXCLUDED.deleted,
			library_tag = EXCLUDED.library_tag
	`,
		pkg.Session.ID,
		userID,
		pkg.Session.CreatedAt,
		pkg.Session.WordCount,
		pkg.Session.TargetWordCount,
		pkg.Session.Deleted,
		pkg.Session.LibraryTag,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cloud session: %v", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM words WHERE user_id = $1 AND session_id = $2", userID, pkg.Session.ID)
	if err != nil {
		return fmt.Errorf("failed to clear cloud words: %v", err)
	}

	for _, w := range pkg.Words {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO words (id, user_id, text, created_at, session_id, correct, tested,
			                   error_count, best_time_ms, last_tested, score, deleted, tags)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`,
			w.ID,
			userID,
			w.Text,
			w.CreatedAt,
			pkg.Session.ID,
			w.Correct,
			w.Tested,
			w.ErrorCount,
			w.BestTimeMs,
			w.LastTested,
			w.Score,
			w.Deleted,
			strings.Join(w.Tags, ","),
		)
		if err != nil {
			return fmt.Errorf("failed to insert cloud word: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cloud transaction: %v", err)
	}
	return nil
}

// ListDayStats returns every day-stats row for the user
func (c *Client) ListDayStats(ctx context.Context, userID string) ([]models.DayStats, error) {
	var stats []models.DayStats
	err := c.db.SelectContext(ctx, &stats, `
		SELECT date, total_count, correct_count, points, version, updated_at, is_frozen
		FROM day_stats
		WHERE user_id = $1
		ORDER BY date
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list day stats: %v", err)
	}
	return stats, nil
}

// RecordOutcome is the stats RPC result
type RecordOutcome struct {
	NewVersion       int64 `db:"new_version"`
	ConflictDetected bool  `db:"conflict_detected"`
	Frozen           bool  `db:"frozen"`
}

// RecordTestAndSyncStats invokes the server-side stats function. The
// server enforces day freezing and optimistic concurrency: a stale
// expected version comes back as conflict_detected rather than a silent
// overwrite, and a write to a past day comes back frozen.
func (c *Client) RecordTestAndSyncStats(ctx context.Context, userID, testDate string, testCount, correctCount int, points float64, expectedVersion int64) (*RecordOutcome, error) {
	var outcome RecordOutcome
	err := c.db.GetContext(ctx, &outcome, `
		SELECT new_version, conflict_detected, frozen
		FROM record_test_and_sync_stats($1, $2, $3, $4, $5, $6)
	`, userID, testDate, testCount, correctCount, points, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to record test stats: %v", err)
	}
	return &outcome, nil
}
