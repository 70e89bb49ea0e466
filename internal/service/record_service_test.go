package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/export"
)

type fakeRecordRepo struct {
	record     *models.EmissionRecord
	details    []models.DetailWithCategory
	filtered   []models.RecordWithUser
	deletedIDs []string
	lastFilter models.RecordFilter
}

func (f *fakeRecordRepo) FindByID(_ context.Context, id string) (*models.EmissionRecord, error) {
	if f.record == nil || f.record.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.record, nil
}

func (f *fakeRecordRepo) FindDetails(context.Context, string) ([]models.DetailWithCategory, error) {
	return f.details, nil
}

func (f *fakeRecordRepo) ListByUser(context.Context, string, int, int) ([]models.EmissionRecord, int, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) ListFiltered(_ context.Context, filter models.RecordFilter) ([]models.RecordWithUser, int, error) {
	f.lastFilter = filter
	return f.filtered, len(f.filtered), nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id string) error {
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func sampleRecord(owner string, total float64) *models.EmissionRecord {
	return &models.EmissionRecord{
		ID:             "r1",
		UserID:         owner,
		RecordDate:     time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC),
		Period:         models.PeriodMonthly,
		TotalEmissions: total,
	}
}

func TestRecordDetailOwnerOnly(t *testing.T) {
	repo := &fakeRecordRepo{
		record: sampleRecord("u1", 111.8),
		details: []models.DetailWithCategory{
			{EmissionDetail: models.EmissionDetail{Quantity: 100, Emissions: 85}, CategoryName: "electricity"},
		},
	}
	svc := NewRecordService(repo, nil, nil, nil)

	_, err := svc.Detail(context.Background(), "r1", "intruder", models.RoleUser)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	resp, err := svc.Detail(context.Background(), "r1", "u1", models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "High", resp.Level)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "electricity", resp.Details[0].Category)
}

func TestRecordDetailAdminBypassesOwnership(t *testing.T) {
	repo := &fakeRecordRepo{record: sampleRecord("u1", 10)}
	svc := NewRecordService(repo, nil, nil, nil)

	resp, err := svc.Detail(context.Background(), "r1", "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Low", resp.Level)
}

func TestRecordDetailNotFound(t *testing.T) {
	svc := NewRecordService(&fakeRecordRepo{}, nil, nil, nil)

	_, err := svc.Detail(context.Background(), "missing", "u1", models.RoleUser)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecordDeleteInvalidatesOwnerDashboard(t *testing.T) {
	repo := &fakeRecordRepo{record: sampleRecord("u1", 10)}
	cache := &fakeInvalidator{}
	svc := NewRecordService(repo, cache, nil, nil)

	err := svc.Delete(context.Background(), "r1", "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, repo.deletedIDs)
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "dashboard:u1:*", cache.patterns[0])
}

func TestAdminListRejectsBadLevel(t *testing.T) {
	svc := NewRecordService(&fakeRecordRepo{}, nil, nil, nil)

	_, _, err := svc.AdminList(context.Background(), models.RecordFilter{Level: emissions.Level("Extreme")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminListRejectsInvertedDateRange(t *testing.T) {
	svc := NewRecordService(&fakeRecordRepo{}, nil, nil, nil)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)
	_, _, err := svc.AdminList(context.Background(), models.RecordFilter{DateFrom: &from, DateTo: &to})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminListClassifiesRows(t *testing.T) {
	repo := &fakeRecordRepo{filtered: []models.RecordWithUser{
		{EmissionRecord: *sampleRecord("u1", 72.4), UserName: "Jane", Department: "Operations"},
	}}
	svc := NewRecordService(repo, nil, nil, nil)

	rows, pagination, err := svc.AdminList(context.Background(), models.RecordFilter{Level: emissions.LevelMedium})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Medium", rows[0].Level)
	assert.Equal(t, "Jane", rows[0].UserName)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, emissions.LevelMedium, repo.lastFilter.Level)
}

func TestExportCSVRendersFilteredRows(t *testing.T) {
	repo := &fakeRecordRepo{filtered: []models.RecordWithUser{
		{EmissionRecord: *sampleRecord("u1", 42.5), UserName: "Jane", Department: "Operations"},
	}}
	svc := NewRecordService(repo, nil, export.NewCSVExporter(), nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC) }

	payload, filename, err := svc.ExportCSV(context.Background(), models.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, "emission_records_20250615_093000.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "record_id,record_date,user_name,department,total_emissions,level", lines[0])
	assert.Contains(t, lines[1], "42.50")
	assert.Contains(t, lines[1], "Low")
}
