package models

// Word represents a single vocabulary entry with its test history
type Word struct {
	ID         string   `json:"id" db:"id"`
	Text       string   `json:"text" db:"text"`
	CreatedAt  int64    `json:"created_at" db:"created_at"` // Unix milliseconds
	SessionID  string   `json:"session_id" db:"session_id"` // Owning session
	Correct    bool     `json:"correct" db:"correct"`
	Tested     bool     `json:"tested" db:"tested"`
	ErrorCount float64  `json:"error_count" db:"error_count"` // Fractional increments allowed
	BestTimeMs *int64   `json:"best_time_ms" db:"best_time_ms"`
	LastTested *int64   `json:"last_tested" db:"last_tested"` // Unix milliseconds, nil if never
	Score      *float64 `json:"score" db:"score"`
	Deleted    bool     `json:"deleted" db:"deleted"`
	Tags       []string `json:"tags" db:"-"`
}
