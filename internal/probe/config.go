// Package probe drives a running attrition predictor with random in-domain
// employees and verifies that every answer is well formed and repeatable.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumRecords int           // Number of random records to submit
	Workers    int           // Number of concurrent submitters
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Where generated records are saved; empty skips saving
	Seed       uint64        // Generator seed; 0 picks one from the clock
	Resubmit   int           // Records re-submitted for the idempotence check
	Verbose    bool          // Log every failed record
}

// Sample is one generated employee and the id it is submitted under.
type Sample struct {
	ID    string         `json:"id"`
	Input map[string]any `json:"input"`
}

// Outcome is the verified answer to one sample.
type Outcome struct {
	Sample Sample
	Status int
	Label  string
	Stay   *float64
	Leave  *float64
	Err    error
}

// Stats holds probe statistics.
type Stats struct {
	RecordsGenerated      int
	Submitted             int
	Successful            int
	Failed                int
	LeaveCount            int
	StayCount             int
	WithoutProbability    int
	IdempotenceChecked    int
	IdempotenceMismatches int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
