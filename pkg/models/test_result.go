package models

import "time"

// TestResult tracks the totals of one completed spelling test, the unit
// handed to the day-stats recording service.
type TestResult struct {
	UserID       string    `json:"user_id"`
	TotalWords   int       `json:"total_words"`
	CorrectWords int       `json:"correct_words"`
	Points       float64   `json:"points"`
	TestDate     time.Time `json:"test_date"`
	Duration     int       `json:"duration"` // Duration in seconds
}
