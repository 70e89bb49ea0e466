package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

// trendMonths is the width of the dashboard trend window.
const trendMonths = 6

type dashboardAggregateRepository interface {
	UserTotalBetween(ctx context.Context, userID string, from, to time.Time) (float64, error)
	UserCategoryTotals(ctx context.Context, userID string, from, to time.Time) ([]models.CategoryTotal, error)
	UserMonthlyTotals(ctx context.Context, userID string, from, to time.Time) ([]models.MonthlyTotal, error)
}

type dashboardRecordRepository interface {
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.EmissionRecord, int, error)
	FindDetails(ctx context.Context, recordID string) ([]models.DetailWithCategory, error)
}

type dashboardRecommender interface {
	Recommend(ctx context.Context, categoryIDs []int, level emissions.Level) ([]dto.TipItem, error)
	GeneralTips(ctx context.Context) ([]dto.TipItem, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardService assembles the per-user dashboard summary.
type DashboardService struct {
	aggregates  dashboardAggregateRepository
	records     dashboardRecordRepository
	recommender dashboardRecommender
	cache       dashboardCache
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(aggregates dashboardAggregateRepository, records dashboardRecordRepository, recommender dashboardRecommender, cache dashboardCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		aggregates:  aggregates,
		records:     records,
		recommender: recommender,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Summary builds the dashboard for the current month. Cached copies are
// served when fresh; cacheHit reports which path answered.
func (s *DashboardService) Summary(ctx context.Context, userID string) (*dto.DashboardResponse, bool, error) {
	now := s.now()
	cacheKey := fmt.Sprintf("dashboard:%s:%s", userID, now.Format("2006-01"))

	if s.cache != nil {
		var cached dto.DashboardResponse
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	response, err := s.build(ctx, userID, now)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return response, false, nil
}

func (s *DashboardService) build(ctx context.Context, userID string, now time.Time) (*dto.DashboardResponse, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	prevMonth := monthStart.AddDate(0, -1, 0)
	windowStart := monthStart.AddDate(0, -(trendMonths - 1), 0)

	currentTotal, err := s.aggregates.UserTotalBetween(ctx, userID, monthStart, nextMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum current month")
	}
	previousTotal, err := s.aggregates.UserTotalBetween(ctx, userID, prevMonth, monthStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum previous month")
	}
	lifetimeTotal, err := s.aggregates.UserTotalBetween(ctx, userID, time.Time{}, nextMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum lifetime total")
	}

	categoryTotals, err := s.aggregates.UserCategoryTotals(ctx, userID, monthStart, nextMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category totals")
	}

	monthly, err := s.aggregates.UserMonthlyTotals(ctx, userID, windowStart, nextMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly totals")
	}

	recent, _, err := s.records.ListByUser(ctx, userID, 1, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent records")
	}

	level := emissions.Classify(currentTotal)

	response := &dto.DashboardResponse{
		TotalEmissions:   lifetimeTotal,
		CurrentMonth:     currentTotal,
		CurrentLevel:     string(level),
		Comparison:       CompareMonths(currentTotal, previousTotal),
		Trend:            DenseTrend(monthly, monthStart, trendMonths),
		Breakdown:        toCategoryShares(categoryTotals, currentTotal),
		RecentRecords:    toRecordSummaries(recent),
		PersonalizedTips: []dto.TipItem{},
	}

	if len(categoryTotals) > 0 {
		response.HighestCategory = categoryTotals[0].CategoryName
	}

	tips, err := s.personalTips(ctx, userID, monthStart, currentTotal, recent)
	if err != nil {
		s.logger.Warn("failed to load recommendations", zap.String("user_id", userID), zap.Error(err))
	} else {
		response.PersonalizedTips = tips
	}

	return response, nil
}

// PersonalizedTips returns tips matched to the caller's effective emissions
// level and latest breakdown, without building the full dashboard.
func (s *DashboardService) PersonalizedTips(ctx context.Context, userID string) ([]dto.TipItem, error) {
	if s.recommender == nil {
		return []dto.TipItem{}, nil
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	recent, _, err := s.records.ListByUser(ctx, userID, 1, 1)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest record")
	}

	currentTotal := 0.0
	if len(recent) > 0 && !recent[0].RecordDate.Before(monthStart) {
		currentTotal, err = s.aggregates.UserTotalBetween(ctx, userID, monthStart, nextMonth)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum current month")
		}
	}
	return s.personalTips(ctx, userID, monthStart, currentTotal, recent)
}

// personalTips feeds the recommendation engine. Users without any record get
// general tips only. The effective level is the current month's classified
// total when the month has records; otherwise the latest record's classified
// total. The latest record's breakdown, highest-impact first, drives the
// category walk.
func (s *DashboardService) personalTips(ctx context.Context, userID string, monthStart time.Time, currentTotal float64, recent []models.EmissionRecord) ([]dto.TipItem, error) {
	if s.recommender == nil {
		return []dto.TipItem{}, nil
	}
	if len(recent) == 0 {
		return s.recommender.GeneralTips(ctx)
	}

	latest := recent[0]
	level := emissions.Classify(currentTotal)
	if latest.RecordDate.Before(monthStart) {
		level = emissions.Classify(latest.TotalEmissions)
	}

	details, err := s.records.FindDetails(ctx, latest.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record breakdown")
	}
	categoryIDs := make([]int, 0, len(details))
	for _, detail := range details {
		categoryIDs = append(categoryIDs, detail.CategoryID)
	}
	return s.recommender.Recommend(ctx, categoryIDs, level)
}

// CompareMonths derives the month-over-month movement. The percentage is nil
// when the previous month has nothing to compare against.
func CompareMonths(current, previous float64) dto.MonthComparison {
	comparison := dto.MonthComparison{
		CurrentTotal:  current,
		PreviousTotal: previous,
		Trend:         "flat",
	}
	if previous > 0 {
		change := (current - previous) / previous * 100
		comparison.ChangePercent = &change
	}
	switch {
	case current > previous:
		comparison.Trend = "up"
	case current < previous:
		comparison.Trend = "down"
	}
	return comparison
}

// DenseTrend spreads sparse monthly totals across a fixed window ending at
// endMonth, filling gaps with zero so charts always get a full series.
func DenseTrend(monthly []models.MonthlyTotal, endMonth time.Time, months int) []dto.MonthPoint {
	totals := make(map[string]float64, len(monthly))
	for _, m := range monthly {
		totals[m.Month] = m.Total
	}

	points := make([]dto.MonthPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := endMonth.AddDate(0, -i, 0)
		key := month.Format("2006-01")
		total := totals[key]
		points = append(points, dto.MonthPoint{
			Month: key,
			Total: total,
			Level: string(emissions.Classify(total)),
		})
	}
	return points
}

func toCategoryShares(totals []models.CategoryTotal, grandTotal float64) []dto.CategoryShare {
	shares := make([]dto.CategoryShare, 0, len(totals))
	for _, t := range totals {
		share := dto.CategoryShare{
			Category:    t.CategoryName,
			Total:       t.Total,
			RecordCount: t.RecordCount,
		}
		if grandTotal > 0 {
			share.Percentage = t.Total / grandTotal * 100
		}
		shares = append(shares, share)
	}
	return shares
}

func toRecordSummaries(records []models.EmissionRecord) []dto.RecordSummary {
	summaries := make([]dto.RecordSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, dto.RecordSummary{
			RecordID:       r.ID,
			RecordDate:     r.RecordDate.Format("2006-01-02"),
			Period:         string(r.Period),
			TotalEmissions: r.TotalEmissions,
			Level:          string(emissions.Classify(r.TotalEmissions)),
		})
	}
	return summaries
}
