package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

type fakeAggregates struct {
	currentTotal  float64
	previousTotal float64
	lifetime      float64
	categories    []models.CategoryTotal
	monthly       []models.MonthlyTotal
	calls         int
}

func (f *fakeAggregates) UserTotalBetween(_ context.Context, _ string, from, to time.Time) (float64, error) {
	f.calls++
	if from.IsZero() {
		return f.lifetime, nil
	}
	if to.Sub(from) > 32*24*time.Hour {
		return f.lifetime, nil
	}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if from.Equal(monthStart) {
		return f.currentTotal, nil
	}
	return f.previousTotal, nil
}

func (f *fakeAggregates) UserCategoryTotals(context.Context, string, time.Time, time.Time) ([]models.CategoryTotal, error) {
	return f.categories, nil
}

func (f *fakeAggregates) UserMonthlyTotals(context.Context, string, time.Time, time.Time) ([]models.MonthlyTotal, error) {
	return f.monthly, nil
}

type fakeRecordLister struct {
	records []models.EmissionRecord
	details map[string][]models.DetailWithCategory
}

func (f *fakeRecordLister) ListByUser(context.Context, string, int, int) ([]models.EmissionRecord, int, error) {
	return f.records, len(f.records), nil
}

func (f *fakeRecordLister) FindDetails(_ context.Context, recordID string) ([]models.DetailWithCategory, error) {
	return f.details[recordID], nil
}

type fakeRecommender struct {
	tips         []dto.TipItem
	general      []dto.TipItem
	categoryIDs  []int
	level        emissions.Level
	generalCalls int
}

func (f *fakeRecommender) Recommend(_ context.Context, categoryIDs []int, level emissions.Level) ([]dto.TipItem, error) {
	f.categoryIDs = categoryIDs
	f.level = level
	return f.tips, nil
}

func (f *fakeRecommender) GeneralTips(context.Context) ([]dto.TipItem, error) {
	f.generalCalls++
	return f.general, nil
}

type fakeDashboardCache struct {
	stored map[string]interface{}
	hit    *dto.DashboardResponse
}

func (f *fakeDashboardCache) Get(_ context.Context, _ string, dest interface{}) (bool, error) {
	if f.hit == nil {
		return false, nil
	}
	*(dest.(*dto.DashboardResponse)) = *f.hit
	return true, nil
}

func (f *fakeDashboardCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if f.stored == nil {
		f.stored = map[string]interface{}{}
	}
	f.stored[key] = value
	return nil
}

func TestDashboardSummaryBuildsPayload(t *testing.T) {
	aggregates := &fakeAggregates{
		currentTotal:  120,
		previousTotal: 100,
		lifetime:      560,
		categories: []models.CategoryTotal{
			{CategoryID: 1, CategoryName: "electricity", Total: 90, RecordCount: 2},
			{CategoryID: 3, CategoryName: "water", Total: 30, RecordCount: 1},
		},
	}
	records := &fakeRecordLister{
		records: []models.EmissionRecord{{ID: "r1", RecordDate: time.Now().UTC(), TotalEmissions: 120}},
		details: map[string][]models.DetailWithCategory{"r1": {
			{EmissionDetail: models.EmissionDetail{CategoryID: 1, Emissions: 90}, CategoryName: "electricity"},
			{EmissionDetail: models.EmissionDetail{CategoryID: 3, Emissions: 30}, CategoryName: "water"},
		}},
	}
	recommender := &fakeRecommender{tips: []dto.TipItem{{ID: "c1", Title: "Switch to LED"}}}
	cache := &fakeDashboardCache{}
	svc := NewDashboardService(aggregates, records, recommender, cache, time.Minute, nil)

	resp, cacheHit, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, cacheHit)

	assert.InDelta(t, 120, resp.CurrentMonth, 0.001)
	assert.Equal(t, "High", resp.CurrentLevel)
	assert.Equal(t, "electricity", resp.HighestCategory)

	require.NotNil(t, resp.Comparison.ChangePercent)
	assert.InDelta(t, 20, *resp.Comparison.ChangePercent, 0.001)
	assert.Equal(t, "up", resp.Comparison.Trend)

	require.Len(t, resp.Breakdown, 2)
	assert.InDelta(t, 75, resp.Breakdown[0].Percentage, 0.001)

	require.Len(t, resp.PersonalizedTips, 1)
	assert.Equal(t, []int{1, 3}, recommender.categoryIDs)
	assert.Equal(t, emissions.LevelHigh, recommender.level)

	assert.Len(t, cache.stored, 1)
}

func TestPersonalizedTipsFallBackToLatestRecordLevel(t *testing.T) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	records := &fakeRecordLister{
		records: []models.EmissionRecord{{ID: "r1", RecordDate: monthStart.AddDate(0, -1, 3), TotalEmissions: 120}},
		details: map[string][]models.DetailWithCategory{"r1": {
			{EmissionDetail: models.EmissionDetail{CategoryID: 2, Emissions: 120}, CategoryName: "fuel"},
		}},
	}
	recommender := &fakeRecommender{tips: []dto.TipItem{{ID: "t1", Title: "T1"}}}
	svc := NewDashboardService(&fakeAggregates{}, records, recommender, nil, time.Minute, nil)

	tips, err := svc.PersonalizedTips(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tips, 1)
	// the empty current month defers to the latest record's classified level
	assert.Equal(t, emissions.LevelHigh, recommender.level)
	assert.Equal(t, []int{2}, recommender.categoryIDs)
}

func TestPersonalizedTipsGeneralForNewUsers(t *testing.T) {
	recommender := &fakeRecommender{general: []dto.TipItem{{ID: "g1", Title: "G1"}}}
	svc := NewDashboardService(&fakeAggregates{}, &fakeRecordLister{}, recommender, nil, time.Minute, nil)

	tips, err := svc.PersonalizedTips(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, "g1", tips[0].ID)
	assert.Equal(t, 1, recommender.generalCalls)
	assert.Nil(t, recommender.categoryIDs)
}

func TestDashboardSummaryServesCachedCopy(t *testing.T) {
	cached := &dto.DashboardResponse{CurrentMonth: 42, CurrentLevel: "Low"}
	svc := NewDashboardService(&fakeAggregates{}, &fakeRecordLister{}, nil, &fakeDashboardCache{hit: cached}, time.Minute, nil)

	resp, cacheHit, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.InDelta(t, 42, resp.CurrentMonth, 0.001)
}

func TestDashboardComparisonNilWhenNoPrevious(t *testing.T) {
	comparison := CompareMonths(50, 0)
	assert.Nil(t, comparison.ChangePercent)
	assert.Equal(t, "up", comparison.Trend)
	assert.InDelta(t, 50, comparison.CurrentTotal, 0.001)
}

func TestDenseTrendFillsGaps(t *testing.T) {
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	monthly := []models.MonthlyTotal{
		{Month: "2025-02", Total: 75},
		{Month: "2025-06", Total: 130},
	}

	points := DenseTrend(monthly, end, 6)
	require.Len(t, points, 6)

	assert.Equal(t, "2025-01", points[0].Month)
	assert.InDelta(t, 0, points[0].Total, 0.001)
	assert.Equal(t, "Low", points[0].Level)

	assert.Equal(t, "2025-02", points[1].Month)
	assert.InDelta(t, 75, points[1].Total, 0.001)
	assert.Equal(t, "Medium", points[1].Level)

	assert.Equal(t, "2025-06", points[5].Month)
	assert.Equal(t, "High", points[5].Level)
}
