package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global local database connection
var DB *sqlx.DB

// Connect establishes a connection to the local database
func Connect() error {
	// Create data directory if it doesn't exist
	dataDir := "data"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	// Open database connection
	dbPath := filepath.Join(dataDir, "wordmaster.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
	db.SetMaxIdleConns(1)

	DB = db

	// Initialize schema
	return initializeSchema()
}

// ConnectInMemory opens an in-memory database, used by tests
func ConnectInMemory() error {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	// Single-slot backup blob. All session/word state is serialized into
	// the payload column; the slot check keeps it a one-row table.
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS local_backup (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			payload TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create local_backup table: %v", err)
	}

	// Cached day statistics, keyed by calendar day
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS day_stats_cache (
			date TEXT PRIMARY KEY,
			total_count INTEGER DEFAULT 0,
			correct_count INTEGER DEFAULT 0,
			points REAL DEFAULT 0,
			version INTEGER DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_frozen BOOLEAN DEFAULT false
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create day_stats_cache table: %v", err)
	}

	return nil
}
