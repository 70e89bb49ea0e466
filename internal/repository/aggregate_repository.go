package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

// AggregateRepository runs the read-side rollup queries that power the
// dashboard and admin analytics.
type AggregateRepository struct {
	db *sqlx.DB
}

// NewAggregateRepository creates a new instance of AggregateRepository.
func NewAggregateRepository(db *sqlx.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// UserTotalBetween sums a user's emissions over the half-open interval [from, to).
func (r *AggregateRepository) UserTotalBetween(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	const query = `SELECT COALESCE(SUM(total_emissions), 0) FROM emission_records WHERE user_id = $1 AND record_date >= $2 AND record_date < $3`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, userID, from, to); err != nil {
		return 0, fmt.Errorf("sum user emissions: %w", err)
	}
	return total, nil
}

// UserCategoryTotals returns a user's per-category totals over [from, to),
// largest first.
func (r *AggregateRepository) UserCategoryTotals(ctx context.Context, userID string, from, to time.Time) ([]models.CategoryTotal, error) {
	const query = `SELECT d.category_id, c.name AS category_name, COALESCE(SUM(d.emissions), 0) AS total, COUNT(DISTINCT d.record_id) AS record_count
		FROM emission_details d
		JOIN emission_records er ON er.id = d.record_id
		JOIN emission_categories c ON c.id = d.category_id
		WHERE er.user_id = $1 AND er.record_date >= $2 AND er.record_date < $3
		GROUP BY d.category_id, c.name
		ORDER BY total DESC`
	var totals []models.CategoryTotal
	if err := r.db.SelectContext(ctx, &totals, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("user category totals: %w", err)
	}
	return totals, nil
}

// UserMonthlyTotals returns a user's month-by-month totals over [from, to),
// keyed YYYY-MM. Months with no records are absent; callers fill the gaps.
func (r *AggregateRepository) UserMonthlyTotals(ctx context.Context, userID string, from, to time.Time) ([]models.MonthlyTotal, error) {
	const query = `SELECT TO_CHAR(record_date, 'YYYY-MM') AS month, COALESCE(SUM(total_emissions), 0) AS total
		FROM emission_records
		WHERE user_id = $1 AND record_date >= $2 AND record_date < $3
		GROUP BY month
		ORDER BY month`
	var totals []models.MonthlyTotal
	if err := r.db.SelectContext(ctx, &totals, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("user monthly totals: %w", err)
	}
	return totals, nil
}

// GlobalCounts returns the platform-wide user and record counts plus the
// grand emissions total.
func (r *AggregateRepository) GlobalCounts(ctx context.Context) (userCount, recordCount int, totalEmissions float64, err error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM users WHERE role = 'USER') AS user_count,
		(SELECT COUNT(*) FROM emission_records) AS record_count,
		(SELECT COALESCE(SUM(total_emissions), 0) FROM emission_records) AS total_emissions`
	row := struct {
		UserCount      int     `db:"user_count"`
		RecordCount    int     `db:"record_count"`
		TotalEmissions float64 `db:"total_emissions"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return 0, 0, 0, fmt.Errorf("global counts: %w", err)
	}
	return row.UserCount, row.RecordCount, row.TotalEmissions, nil
}

// GlobalMonthlyTotals returns platform-wide monthly totals over [from, to).
func (r *AggregateRepository) GlobalMonthlyTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error) {
	const query = `SELECT TO_CHAR(record_date, 'YYYY-MM') AS month, COALESCE(SUM(total_emissions), 0) AS total
		FROM emission_records
		WHERE record_date >= $1 AND record_date < $2
		GROUP BY month
		ORDER BY month`
	var totals []models.MonthlyTotal
	if err := r.db.SelectContext(ctx, &totals, query, from, to); err != nil {
		return nil, fmt.Errorf("global monthly totals: %w", err)
	}
	return totals, nil
}

// GlobalCategoryTotals returns platform-wide per-category totals, largest first.
func (r *AggregateRepository) GlobalCategoryTotals(ctx context.Context) ([]models.CategoryTotal, error) {
	const query = `SELECT d.category_id, c.name AS category_name, COALESCE(SUM(d.emissions), 0) AS total, COUNT(DISTINCT d.record_id) AS record_count
		FROM emission_details d
		JOIN emission_categories c ON c.id = d.category_id
		GROUP BY d.category_id, c.name
		ORDER BY total DESC`
	var totals []models.CategoryTotal
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("global category totals: %w", err)
	}
	return totals, nil
}

// DepartmentSummaries aggregates user, record and emissions counts per department.
func (r *AggregateRepository) DepartmentSummaries(ctx context.Context) ([]models.DepartmentSummary, error) {
	const query = `SELECT u.department,
		COUNT(DISTINCT u.id) AS user_count,
		COUNT(er.id) AS record_count,
		COALESCE(SUM(er.total_emissions), 0) AS total_emissions
		FROM users u
		LEFT JOIN emission_records er ON er.user_id = u.id
		WHERE u.role = 'USER'
		GROUP BY u.department
		ORDER BY total_emissions DESC`
	var summaries []models.DepartmentSummary
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("department summaries: %w", err)
	}
	return summaries, nil
}

// LevelDistribution buckets all records by the fixed classification thresholds.
func (r *AggregateRepository) LevelDistribution(ctx context.Context, mediumThreshold, highThreshold float64) ([]models.LevelCount, error) {
	const query = `SELECT CASE
			WHEN total_emissions < $1 THEN 'Low'
			WHEN total_emissions < $2 THEN 'Medium'
			ELSE 'High'
		END AS level, COUNT(*) AS count
		FROM emission_records
		GROUP BY level`
	var counts []models.LevelCount
	if err := r.db.SelectContext(ctx, &counts, query, mediumThreshold, highThreshold); err != nil {
		return nil, fmt.Errorf("level distribution: %w", err)
	}
	return counts, nil
}
