package models

import "time"

// ReportStatus tracks the lifecycle of an async PDF generation job.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// Report points at the current generated PDF for a record. One row per record;
// regeneration overwrites the row and the underlying file.
type Report struct {
	RecordID    string       `db:"record_id" json:"record_id"`
	FilePath    string       `db:"file_path" json:"file_path"`
	Status      ReportStatus `db:"status" json:"status"`
	Error       *string      `db:"error" json:"error,omitempty"`
	GeneratedAt *time.Time   `db:"generated_at" json:"generated_at,omitempty"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}
