package dto

// GenerateReportRequest asks for a PDF report of one record.
type GenerateReportRequest struct {
	RecordID string `json:"record_id" validate:"required"`
}

// ReportStatusResponse reports async generation progress.
type ReportStatusResponse struct {
	RecordID    string  `json:"record_id"`
	Status      string  `json:"status"`
	DownloadURL *string `json:"download_url,omitempty"`
	Error       *string `json:"error,omitempty"`
	GeneratedAt *string `json:"generated_at,omitempty"`
}
