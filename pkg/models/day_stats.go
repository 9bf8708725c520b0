package models

import "time"

// DayStats holds the aggregated test counts and points for one calendar day.
// Version is the optimistic-concurrency token: it increments on every
// successful cloud write, and a stale version is rejected by the server.
type DayStats struct {
	Date         string    `json:"date" db:"date"` // YYYY-MM-DD calendar day key
	TotalCount   int       `json:"total_count" db:"total_count"`
	CorrectCount int       `json:"correct_count" db:"correct_count"`
	Points       float64   `json:"points" db:"points"`
	Version      int64     `json:"version" db:"version"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	IsFrozen     bool      `json:"is_frozen" db:"is_frozen"` // Past days are immutable

	// Conflict provenance, set only on records produced by a merge so the
	// caller can disclose that automatic reconciliation happened.
	Conflict bool   `json:"_conflict,omitempty" db:"-"`
	Resolved string `json:"_resolved,omitempty" db:"-"` // "merged" | "server"
}
