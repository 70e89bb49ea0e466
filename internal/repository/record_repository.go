package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

// RecordRepository provides database access for emission records and details.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// CreateWithDetails inserts a record and its detail rows atomically. Either
// everything lands or nothing does.
func (r *RecordRepository) CreateWithDetails(ctx context.Context, record *models.EmissionRecord, details []models.EmissionDetail) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const recordQuery = `INSERT INTO emission_records (id, user_id, record_date, period, total_emissions, created_at) VALUES (:id, :user_id, :record_date, :period, :total_emissions, :created_at)`
	if _, err := tx.NamedExecContext(ctx, recordQuery, record); err != nil {
		return fmt.Errorf("create emission record: %w", err)
	}

	const detailQuery = `INSERT INTO emission_details (id, record_id, category_id, quantity, subtype, emissions) VALUES (:id, :record_id, :category_id, :quantity, :subtype, :emissions)`
	for i := range details {
		if details[i].ID == "" {
			details[i].ID = uuid.NewString()
		}
		details[i].RecordID = record.ID
		if _, err := tx.NamedExecContext(ctx, detailQuery, details[i]); err != nil {
			return fmt.Errorf("create emission detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create record: %w", err)
	}
	return nil
}

// FindByID returns a record by identifier.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.EmissionRecord, error) {
	const query = `SELECT id, user_id, record_date, period, total_emissions, created_at FROM emission_records WHERE id = $1 LIMIT 1`
	var record models.EmissionRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	return &record, nil
}

// FindDetails returns the detail rows of a record joined with category names.
func (r *RecordRepository) FindDetails(ctx context.Context, recordID string) ([]models.DetailWithCategory, error) {
	const query = `SELECT d.id, d.record_id, d.category_id, d.quantity, d.subtype, d.emissions, c.name AS category_name, c.unit AS category_unit
		FROM emission_details d
		JOIN emission_categories c ON c.id = d.category_id
		WHERE d.record_id = $1
		ORDER BY d.emissions DESC`
	var details []models.DetailWithCategory
	if err := r.db.SelectContext(ctx, &details, query, recordID); err != nil {
		return nil, fmt.Errorf("find record details: %w", err)
	}
	return details, nil
}

// ListByUser returns a user's records newest first with a total count.
func (r *RecordRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.EmissionRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT id, user_id, record_date, period, total_emissions, created_at FROM emission_records WHERE user_id = $1 ORDER BY record_date DESC, created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)
	var records []models.EmissionRecord
	if err := r.db.SelectContext(ctx, &records, listQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM emission_records WHERE user_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}
	return records, total, nil
}

// ListFiltered returns records joined with their owners, applying the admin
// filters conjunctively. The level filter becomes a range predicate on the
// persisted total.
func (r *RecordRepository) ListFiltered(ctx context.Context, filter models.RecordFilter) ([]models.RecordWithUser, int, error) {
	baseQuery := `FROM emission_records er JOIN users u ON u.id = er.user_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("er.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("u.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("er.record_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("er.record_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	switch filter.Level {
	case emissions.LevelLow:
		conditions = append(conditions, fmt.Sprintf("er.total_emissions < $%d", len(args)+1))
		args = append(args, emissions.ThresholdMedium)
	case emissions.LevelMedium:
		conditions = append(conditions, fmt.Sprintf("er.total_emissions >= $%d AND er.total_emissions < $%d", len(args)+1, len(args)+2))
		args = append(args, emissions.ThresholdMedium, emissions.ThresholdHigh)
	case emissions.LevelHigh:
		conditions = append(conditions, fmt.Sprintf("er.total_emissions >= $%d", len(args)+1))
		args = append(args, emissions.ThresholdHigh)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT er.id, er.user_id, er.record_date, er.period, er.total_emissions, er.created_at, u.name AS user_name, u.department %s ORDER BY er.record_date DESC, er.created_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	var records []models.RecordWithUser
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list filtered records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count filtered records: %w", err)
	}
	return records, total, nil
}

// Delete removes a record together with its details and report row.
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		`DELETE FROM emission_details WHERE record_id = $1`,
		`DELETE FROM reports WHERE record_id = $1`,
		`DELETE FROM emission_records WHERE id = $1`,
	}
	for _, query := range steps {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("delete record data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete record: %w", err)
	}
	return nil
}
