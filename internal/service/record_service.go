package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/export"
)

type recordRepository interface {
	FindByID(ctx context.Context, id string) (*models.EmissionRecord, error)
	FindDetails(ctx context.Context, recordID string) ([]models.DetailWithCategory, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.EmissionRecord, int, error)
	ListFiltered(ctx context.Context, filter models.RecordFilter) ([]models.RecordWithUser, int, error)
	Delete(ctx context.Context, id string) error
}

type recordCache interface {
	Invalidate(ctx context.Context, pattern string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// RecordService serves history listings, record detail and deletion, plus
// the admin-facing filtered listing and CSV export.
type RecordService struct {
	records recordRepository
	cache   recordCache
	csv     csvRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecordService constructs a RecordService instance.
func NewRecordService(records recordRepository, cache recordCache, csv csvRenderer, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService{records: records, cache: cache, csv: csv, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// History returns the caller's records newest first.
func (s *RecordService) History(ctx context.Context, userID string, page, pageSize int) ([]dto.RecordSummary, *models.Pagination, error) {
	records, total, err := s.records.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return toRecordSummaries(records), &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Detail returns one record with its category breakdown. Non-admin callers
// only see their own records.
func (s *RecordService) Detail(ctx context.Context, recordID, callerID string, callerRole models.UserRole) (*dto.CalculateResponse, error) {
	record, err := s.ownedRecord(ctx, recordID, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	details, err := s.records.FindDetails(ctx, recordID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record details")
	}

	results := make([]dto.DetailResult, 0, len(details))
	for _, d := range details {
		results = append(results, dto.DetailResult{
			Category:  d.CategoryName,
			Quantity:  d.Quantity,
			Subtype:   string(d.Subtype),
			Emissions: d.Emissions,
		})
	}

	return &dto.CalculateResponse{
		RecordID:       record.ID,
		RecordDate:     record.RecordDate.Format("2006-01-02"),
		Period:         string(record.Period),
		TotalEmissions: record.TotalEmissions,
		Level:          string(emissions.Classify(record.TotalEmissions)),
		Details:        results,
	}, nil
}

// Delete removes a record with its details and report. Owners and admins only.
func (s *RecordService) Delete(ctx context.Context, recordID, callerID string, callerRole models.UserRole) error {
	record, err := s.ownedRecord(ctx, recordID, callerID, callerRole)
	if err != nil {
		return err
	}

	if err := s.records.Delete(ctx, recordID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete record")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dashboard:"+record.UserID+":*"); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.String("user_id", record.UserID), zap.Error(err))
		}
	}
	s.logger.Info("record deleted", zap.String("record_id", recordID), zap.String("deleted_by", callerID))
	return nil
}

// AdminList returns records across all users with the conjunctive filters.
func (s *RecordService) AdminList(ctx context.Context, filter models.RecordFilter) ([]dto.AdminRecordRow, *models.Pagination, error) {
	if filter.Level != "" && !emissions.ValidLevel(string(filter.Level)) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "level must be Low, Medium or High")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "date_to must not precede date_from")
	}

	records, total, err := s.records.ListFiltered(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}

	rows := make([]dto.AdminRecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, dto.AdminRecordRow{
			RecordID:       r.ID,
			RecordDate:     r.RecordDate.Format("2006-01-02"),
			TotalEmissions: r.TotalEmissions,
			Level:          string(emissions.Classify(r.TotalEmissions)),
			UserID:         r.UserID,
			UserName:       r.UserName,
			Department:     r.Department,
		})
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return rows, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ExportCSV renders the filtered admin listing as a CSV download.
func (s *RecordService) ExportCSV(ctx context.Context, filter models.RecordFilter) ([]byte, string, error) {
	filter.PageSize = 100
	var rows []dto.AdminRecordRow
	for page := 1; ; page++ {
		filter.Page = page
		batch, pagination, err := s.AdminList(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		rows = append(rows, batch...)
		if len(rows) >= pagination.TotalCount || len(batch) == 0 {
			break
		}
	}

	headers := []string{"record_id", "record_date", "user_name", "department", "total_emissions", "level"}
	dataset := export.Dataset{Headers: headers}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"record_id":       row.RecordID,
			"record_date":     row.RecordDate,
			"user_name":       row.UserName,
			"department":      row.Department,
			"total_emissions": fmt.Sprintf("%.2f", row.TotalEmissions),
			"level":           row.Level,
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return payload, export.ExportFilename("emission_records", s.now()), nil
}

func (s *RecordService) ownedRecord(ctx context.Context, recordID, callerID string, callerRole models.UserRole) (*models.EmissionRecord, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	if record.UserID != callerID && callerRole != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "record belongs to another user")
	}
	return record, nil
}
