package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

func TestReportUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("INSERT INTO reports").WillReturnResult(sqlmock.NewResult(1, 1))

	report := &models.Report{RecordID: "r1", Status: models.ReportStatusQueued}
	err := repo.Upsert(context.Background(), report)
	require.NoError(t, err)
	assert.False(t, report.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportMarkFinished(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectExec("UPDATE reports SET status").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFinished(context.Background(), "r1", "2025/06/r1.pdf", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportFindByRecordID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"record_id", "file_path", "status", "error", "generated_at", "updated_at"}).
		AddRow("r1", "2025/06/r1.pdf", string(models.ReportStatusFinished), nil, now, now)
	mock.ExpectQuery("SELECT record_id, file_path, status").
		WithArgs("r1").
		WillReturnRows(rows)

	report, err := repo.FindByRecordID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, report.Status)
	assert.Equal(t, "2025/06/r1.pdf", report.FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}
