package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

func TestRecordCreateWithDetails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO emission_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO emission_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO emission_details").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record := &models.EmissionRecord{UserID: "u1", RecordDate: time.Now(), Period: models.PeriodMonthly, TotalEmissions: 104.09}
	details := []models.EmissionDetail{
		{CategoryID: 1, Quantity: 120, Emissions: 102},
		{CategoryID: 3, Quantity: 7000, Emissions: 2.09},
	}
	err := repo.CreateWithDetails(context.Background(), record, details)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, record.ID, details[0].RecordID)
	assert.Equal(t, record.ID, details[1].RecordID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCreateWithDetailsRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO emission_records").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO emission_details").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	record := &models.EmissionRecord{UserID: "u1", RecordDate: time.Now(), Period: models.PeriodDaily, TotalEmissions: 10}
	err := repo.CreateWithDetails(context.Background(), record, []models.EmissionDetail{{CategoryID: 1, Quantity: 5, Emissions: 10}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordListFilteredByLevel(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "user_id", "record_date", "period", "total_emissions", "created_at", "user_name", "department"}).
		AddRow("r1", "u1", now, string(models.PeriodMonthly), 120.0, now, "Jane", "Operations")
	mock.ExpectQuery("SELECT er.id, er.user_id, er.record_date").
		WithArgs(emissions.ThresholdHigh).
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(emissions.ThresholdHigh).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.ListFiltered(context.Background(), models.RecordFilter{Level: emissions.LevelHigh})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Jane", records[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordListFilteredMediumUsesRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectQuery("SELECT er.id, er.user_id, er.record_date").
		WithArgs(emissions.ThresholdMedium, emissions.ThresholdHigh).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "record_date", "period", "total_emissions", "created_at", "user_name", "department"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(emissions.ThresholdMedium, emissions.ThresholdHigh).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.ListFiltered(context.Background(), models.RecordFilter{Level: emissions.LevelMedium})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRecordRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM emission_details").WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM reports").WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM emission_records").WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
