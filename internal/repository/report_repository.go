package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

// ReportRepository tracks the single current report row per emission record.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Upsert writes the report row for a record, replacing any previous one.
func (r *ReportRepository) Upsert(ctx context.Context, report *models.Report) error {
	report.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO reports (record_id, file_path, status, error, generated_at, updated_at)
		VALUES (:record_id, :file_path, :status, :error, :generated_at, :updated_at)
		ON CONFLICT (record_id) DO UPDATE SET
			file_path = EXCLUDED.file_path,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			generated_at = EXCLUDED.generated_at,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

// UpdateStatus transitions a report row's lifecycle status.
func (r *ReportRepository) UpdateStatus(ctx context.Context, recordID string, status models.ReportStatus, errMsg *string) error {
	const query = `UPDATE reports SET status = $2, error = $3, updated_at = $4 WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID, status, errMsg, time.Now().UTC()); err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return nil
}

// MarkFinished records a successful generation with its file path.
func (r *ReportRepository) MarkFinished(ctx context.Context, recordID, filePath string, generatedAt time.Time) error {
	const query = `UPDATE reports SET status = $2, file_path = $3, error = NULL, generated_at = $4, updated_at = $5 WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID, models.ReportStatusFinished, filePath, generatedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark report finished: %w", err)
	}
	return nil
}

// FindByRecordID returns the current report row for a record.
func (r *ReportRepository) FindByRecordID(ctx context.Context, recordID string) (*models.Report, error) {
	const query = `SELECT record_id, file_path, status, error, generated_at, updated_at FROM reports WHERE record_id = $1 LIMIT 1`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, recordID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// ListFilePaths returns the file paths of all finished reports. The cleanup
// sweep uses it to tell live files from orphans.
func (r *ReportRepository) ListFilePaths(ctx context.Context) ([]string, error) {
	const query = `SELECT file_path FROM reports WHERE status = 'FINISHED' AND file_path <> ''`
	var paths []string
	if err := r.db.SelectContext(ctx, &paths, query); err != nil {
		return nil, fmt.Errorf("list report paths: %w", err)
	}
	return paths, nil
}

// DeleteByRecordID removes the report row for a record.
func (r *ReportRepository) DeleteByRecordID(ctx context.Context, recordID string) error {
	const query = `DELETE FROM reports WHERE record_id = $1`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}
