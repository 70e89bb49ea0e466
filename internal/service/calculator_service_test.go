package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

type fakeRecordWriter struct {
	record  *models.EmissionRecord
	details []models.EmissionDetail
	err     error
}

func (f *fakeRecordWriter) CreateWithDetails(_ context.Context, record *models.EmissionRecord, details []models.EmissionDetail) error {
	if f.err != nil {
		return f.err
	}
	record.ID = "r1"
	f.record = record
	f.details = details
	return nil
}

type fakeCategoryRepo struct{}

func (f *fakeCategoryRepo) List(context.Context) ([]models.EmissionCategory, error) {
	return []models.EmissionCategory{
		{ID: 1, Name: "electricity", Slug: "electricity", Unit: "kWh"},
		{ID: 2, Name: "fuel", Slug: "fuel", Unit: "liters"},
		{ID: 3, Name: "water", Slug: "water", Unit: "liters"},
		{ID: 4, Name: "waste", Slug: "waste", Unit: "kg"},
		{ID: 5, Name: "paper", Slug: "paper", Unit: "pages"},
		{ID: 6, Name: "food", Slug: "food", Unit: "meals"},
	}, nil
}

type fakeInvalidator struct {
	patterns []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func TestCalculateRejectsEmptySubmission(t *testing.T) {
	svc := NewCalculatorService(&fakeRecordWriter{}, &fakeCategoryRepo{}, nil, nil, nil, nil)

	_, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{Period: "monthly"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptySubmission.Code, appErrors.FromError(err).Code)
}

func TestCalculateAllZeroQuantitiesIsEmpty(t *testing.T) {
	svc := NewCalculatorService(&fakeRecordWriter{}, &fakeCategoryRepo{}, nil, nil, nil, nil)

	_, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{
		Electricity: &dto.CategoryEntry{Quantity: 0},
		Period:      "monthly",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptySubmission.Code, appErrors.FromError(err).Code)
}

func TestCalculateComputesTotalsAndLevel(t *testing.T) {
	writer := &fakeRecordWriter{}
	cache := &fakeInvalidator{}
	svc := NewCalculatorService(writer, &fakeCategoryRepo{}, cache, nil, nil, nil)

	resp, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{
		Electricity: &dto.CategoryEntry{Quantity: 100},
		Fuel:        &dto.CategoryEntry{Quantity: 10, Subtype: "diesel"},
		Period:      "monthly",
	})
	require.NoError(t, err)

	// 100*0.85 + 10*2.68 = 111.8
	assert.InDelta(t, 111.8, resp.TotalEmissions, 0.001)
	assert.Equal(t, "High", resp.Level)
	assert.Len(t, resp.Details, 2)

	require.NotNil(t, writer.record)
	assert.InDelta(t, 111.8, writer.record.TotalEmissions, 0.001)
	require.Len(t, writer.details, 2)
	assert.Equal(t, 2, writer.details[1].CategoryID)

	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "dashboard:u1:*", cache.patterns[0])
}

func TestCalculateDefaultSubtypes(t *testing.T) {
	writer := &fakeRecordWriter{}
	svc := NewCalculatorService(writer, &fakeCategoryRepo{}, nil, nil, nil, nil)

	resp, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{
		Fuel:   &dto.CategoryEntry{Quantity: 10},
		Waste:  &dto.CategoryEntry{Quantity: 10},
		Food:   &dto.CategoryEntry{Quantity: 2},
		Period: "weekly",
	})
	require.NoError(t, err)

	// petrol 10*2.31 + non-recyclable 10*0.5 + meat 2*7.2 = 42.5
	assert.InDelta(t, 42.5, resp.TotalEmissions, 0.001)
	assert.Equal(t, "Low", resp.Level)
}

func TestCalculateRejectsUnknownSubtype(t *testing.T) {
	svc := NewCalculatorService(&fakeRecordWriter{}, &fakeCategoryRepo{}, nil, nil, nil, nil)

	_, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{
		Fuel:   &dto.CategoryEntry{Quantity: 10, Subtype: "kerosene"},
		Period: "daily",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalculateRejectsFutureDate(t *testing.T) {
	svc := NewCalculatorService(&fakeRecordWriter{}, &fakeCategoryRepo{}, nil, nil, nil, nil)

	_, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{
		Electricity: &dto.CategoryEntry{Quantity: 5},
		Period:      "daily",
		RecordDate:  "2999-01-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalculateRejectsOversizedQuantity(t *testing.T) {
	svc := NewCalculatorService(&fakeRecordWriter{}, &fakeCategoryRepo{}, nil, nil, nil, nil)

	_, err := svc.Calculate(context.Background(), "u1", dto.CalculateRequest{
		Electricity: &dto.CategoryEntry{Quantity: 2_000_000},
		Period:      "monthly",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
