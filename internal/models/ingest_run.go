package models

import "time"

// Ingest run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// IngestRun records one execution of the preprocessing job.
type IngestRun struct {
	ID           string     `json:"id" db:"id"`
	Status       string     `json:"status" db:"status"`
	RootDir      string     `json:"root_dir" db:"root_dir"`
	OutputPath   string     `json:"output_path" db:"output_path"`
	TotalRecords int        `json:"total_records" db:"total_records"`
	SpamCount    int        `json:"spam_count" db:"spam_count"`
	HamCount     int        `json:"ham_count" db:"ham_count"`
	SkippedFiles int        `json:"skipped_files" db:"skipped_files"`
	SkippedRows  int        `json:"skipped_rows" db:"skipped_rows"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
}
