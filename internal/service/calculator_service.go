package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

type calculatorRecordRepository interface {
	CreateWithDetails(ctx context.Context, record *models.EmissionRecord, details []models.EmissionDetail) error
}

type calculatorCategoryRepository interface {
	List(ctx context.Context) ([]models.EmissionCategory, error)
}

type calculatorCache interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CalculatorService turns consumption submissions into persisted emission
// records.
type CalculatorService struct {
	records    calculatorRecordRepository
	categories calculatorCategoryRepository
	cache      calculatorCache
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewCalculatorService constructs a CalculatorService instance.
func NewCalculatorService(records calculatorRecordRepository, categories calculatorCategoryRepository, cache calculatorCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CalculatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CalculatorService{
		records:    records,
		categories: categories,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Calculate validates the submission, derives per-category emissions and the
// total, classifies it and persists everything atomically.
func (s *CalculatorService) Calculate(ctx context.Context, userID string, req dto.CalculateRequest) (*dto.CalculateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calculator payload")
	}

	entries := collectEntries(req)
	if len(entries) == 0 {
		return nil, appErrors.ErrEmptySubmission
	}

	recordDate, err := s.resolveRecordDate(req.RecordDate)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.categoryIDsBySlug(ctx)
	if err != nil {
		return nil, err
	}

	var (
		details []models.EmissionDetail
		results []dto.DetailResult
		total   float64
	)
	for _, entry := range entries {
		if entry.input.Quantity < 0 || entry.input.Quantity > emissions.MaxQuantity {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s quantity out of range", entry.category))
		}
		subtype := emissions.Subtype(entry.input.Subtype)
		if subtype != "" && !entry.category.ValidSubtype(subtype) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown %s subtype %q", entry.category, entry.input.Subtype))
		}
		if entry.input.Quantity == 0 {
			continue
		}

		categoryID, ok := categoryIDs[string(entry.category)]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("category %s is not configured", entry.category))
		}

		value := emissions.Calculate(entry.category, entry.input.Quantity, subtype)
		total += value

		details = append(details, models.EmissionDetail{
			CategoryID: categoryID,
			Quantity:   entry.input.Quantity,
			Subtype:    subtype,
			Emissions:  value,
		})
		results = append(results, dto.DetailResult{
			Category:  string(entry.category),
			Quantity:  entry.input.Quantity,
			Subtype:   entry.input.Subtype,
			Emissions: value,
		})
	}

	if len(details) == 0 {
		return nil, appErrors.ErrEmptySubmission
	}

	record := &models.EmissionRecord{
		UserID:         userID,
		RecordDate:     recordDate,
		Period:         models.Period(req.Period),
		TotalEmissions: total,
		CreatedAt:      s.now(),
	}
	if err := s.records.CreateWithDetails(ctx, record, details); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store record")
	}
	s.metrics.RecordCreated()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dashboard:"+userID+":*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.logger.Info("record created",
		zap.String("record_id", record.ID),
		zap.String("user_id", userID),
		zap.Float64("total_emissions", total),
	)

	return &dto.CalculateResponse{
		RecordID:       record.ID,
		RecordDate:     recordDate.Format("2006-01-02"),
		Period:         req.Period,
		TotalEmissions: total,
		Level:          string(emissions.Classify(total)),
		Details:        results,
	}, nil
}

type categoryEntry struct {
	category emissions.Category
	input    dto.CategoryEntry
}

func collectEntries(req dto.CalculateRequest) []categoryEntry {
	var entries []categoryEntry
	add := func(category emissions.Category, input *dto.CategoryEntry) {
		if input != nil {
			entries = append(entries, categoryEntry{category: category, input: *input})
		}
	}
	add(emissions.CategoryElectricity, req.Electricity)
	add(emissions.CategoryFuel, req.Fuel)
	add(emissions.CategoryWater, req.Water)
	add(emissions.CategoryWaste, req.Waste)
	add(emissions.CategoryPaper, req.Paper)
	add(emissions.CategoryFood, req.Food)
	return entries
}

func (s *CalculatorService) resolveRecordDate(raw string) (time.Time, error) {
	if raw == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "record_date must be YYYY-MM-DD")
	}
	if parsed.After(s.now()) {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "record_date cannot be in the future")
	}
	return parsed, nil
}

func (s *CalculatorService) categoryIDsBySlug(ctx context.Context) (map[string]int, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories")
	}
	ids := make(map[string]int, len(categories))
	for _, c := range categories {
		ids[c.Slug] = c.ID
	}
	return ids, nil
}
