package domain

import "time"

// Batch modes
const (
	BatchModeSubmit = "submit"
	BatchModeDryRun = "dry_run"
)

// Batch statuses
const (
	BatchStatusInProgress = "in_progress"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)

// SubmissionBatch represents one run of the submit workflow
type SubmissionBatch struct {
	ID             string    `json:"id"`
	Mode           string    `json:"mode"` // "submit" or "dry_run"
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"` // "in_progress", "completed", "failed"
	RecordCount    int       `json:"record_count"`
	EntryCount     int       `json:"entry_count"`
	SubmittedCount int       `json:"submitted_count"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
