package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

type analyticsAggregateRepository interface {
	GlobalCounts(ctx context.Context) (userCount, recordCount int, totalEmissions float64, err error)
	GlobalMonthlyTotals(ctx context.Context, from, to time.Time) ([]models.MonthlyTotal, error)
	GlobalCategoryTotals(ctx context.Context) ([]models.CategoryTotal, error)
	DepartmentSummaries(ctx context.Context) ([]models.DepartmentSummary, error)
	LevelDistribution(ctx context.Context, mediumThreshold, highThreshold float64) ([]models.LevelCount, error)
}

// AnalyticsService assembles the platform-wide admin analytics view.
type AnalyticsService struct {
	aggregates analyticsAggregateRepository
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService instance.
func NewAnalyticsService(aggregates analyticsAggregateRepository, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{aggregates: aggregates, metrics: metrics, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Overview returns counts, trends and distributions across all users.
func (s *AnalyticsService) Overview(ctx context.Context) (*dto.AdminAnalyticsResponse, error) {
	userCount, recordCount, totalEmissions, err := s.aggregates.GlobalCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counts")
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := monthStart.AddDate(0, -(trendMonths - 1), 0)

	monthly, err := s.aggregates.GlobalMonthlyTotals(ctx, windowStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load monthly totals")
	}

	categoryTotals, err := s.aggregates.GlobalCategoryTotals(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category totals")
	}

	departments, err := s.aggregates.DepartmentSummaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}

	levels, err := s.aggregates.LevelDistribution(ctx, emissions.ThresholdMedium, emissions.ThresholdHigh)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load level distribution")
	}

	response := &dto.AdminAnalyticsResponse{
		UserCount:         userCount,
		RecordCount:       recordCount,
		TotalEmissions:    totalEmissions,
		MonthlyTrend:      DenseTrend(monthly, monthStart, trendMonths),
		CategoryBreakdown: toCategoryShares(categoryTotals, totalEmissions),
		Departments:       make([]dto.DepartmentRollup, 0, len(departments)),
		LevelDistribution: make([]dto.LevelBucket, 0, len(levels)),
	}
	for _, d := range departments {
		response.Departments = append(response.Departments, dto.DepartmentRollup{
			Department:     d.Department,
			UserCount:      d.UserCount,
			RecordCount:    d.RecordCount,
			TotalEmissions: d.TotalEmissions,
		})
	}
	for _, l := range levels {
		response.LevelDistribution = append(response.LevelDistribution, dto.LevelBucket{
			Level: string(l.Level),
			Count: l.Count,
		})
	}
	return response, nil
}

// SystemMetrics exposes the runtime counter snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}
