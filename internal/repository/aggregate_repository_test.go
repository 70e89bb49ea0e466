package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
)

func TestAggregateUserTotalBetween(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAggregateRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(total_emissions\\), 0\\) FROM emission_records").
		WithArgs("u1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(123.45))

	total, err := repo.UserTotalBetween(context.Background(), "u1", from, to)
	require.NoError(t, err)
	assert.InDelta(t, 123.45, total, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateUserCategoryTotals(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAggregateRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows := sqlmock.NewRows([]string{"category_id", "category_name", "total", "record_count"}).
		AddRow(1, "electricity", 102.0, 2).
		AddRow(3, "water", 2.09, 1)
	mock.ExpectQuery("SELECT d.category_id, c.name AS category_name").
		WithArgs("u1", from, to).
		WillReturnRows(rows)

	totals, err := repo.UserCategoryTotals(context.Background(), "u1", from, to)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "electricity", totals[0].CategoryName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateGlobalCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAggregateRepository(db)

	rows := sqlmock.NewRows([]string{"user_count", "record_count", "total_emissions"}).AddRow(12, 48, 2345.6)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	users, records, total, err := repo.GlobalCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, users)
	assert.Equal(t, 48, records)
	assert.InDelta(t, 2345.6, total, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregateLevelDistribution(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAggregateRepository(db)

	rows := sqlmock.NewRows([]string{"level", "count"}).
		AddRow("Low", 10).
		AddRow("High", 3)
	mock.ExpectQuery("SELECT CASE").
		WithArgs(float64(emissions.ThresholdMedium), float64(emissions.ThresholdHigh)).
		WillReturnRows(rows)

	counts, err := repo.LevelDistribution(context.Background(), emissions.ThresholdMedium, emissions.ThresholdHigh)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, emissions.LevelLow, counts[0].Level)
	assert.Equal(t, 10, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
