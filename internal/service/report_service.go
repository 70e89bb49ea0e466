package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
	"github.com/noah-isme/carbon-tracker-api/pkg/export"
	"github.com/noah-isme/carbon-tracker-api/pkg/jobs"
)

type reportRecordRepository interface {
	FindByID(ctx context.Context, id string) (*models.EmissionRecord, error)
	FindDetails(ctx context.Context, recordID string) ([]models.DetailWithCategory, error)
}

type reportUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type reportStateRepository interface {
	Upsert(ctx context.Context, report *models.Report) error
	UpdateStatus(ctx context.Context, recordID string, status models.ReportStatus, errMsg *string) error
	MarkFinished(ctx context.Context, recordID, filePath string, generatedAt time.Time) error
	FindByRecordID(ctx context.Context, recordID string) (*models.Report, error)
	ListFilePaths(ctx context.Context) ([]string, error)
}

type reportAggregateRepository interface {
	UserMonthlyTotals(ctx context.Context, userID string, from, to time.Time) ([]models.MonthlyTotal, error)
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration, keep map[string]bool) ([]string, error)
}

type reportSigner interface {
	Generate(recordID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (recordID, relPath string, expiresAt time.Time, err error)
}

type reportRenderer interface {
	Render(in export.ReportInput) ([]byte, error)
}

type reportTask struct {
	RecordID string
	UserID   string
}

// ReportConfig tunes the asynchronous report pipeline.
type ReportConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	CleanupInterval   time.Duration
	OrphanTTL         time.Duration
}

// ReportService builds PDF reports asynchronously. Each record has at most
// one current report; regeneration replaces the previous row and file.
type ReportService struct {
	records    reportRecordRepository
	users      reportUserRepository
	reports    reportStateRepository
	aggregates reportAggregateRepository
	storage    reportStorage
	signer     reportSigner
	renderer   reportRenderer
	metrics    *MetricsService
	logger     *zap.Logger
	config     ReportConfig
	queue      *jobs.Queue[reportTask]
	now        func() time.Time
}

// NewReportService constructs a ReportService and its worker queue.
func NewReportService(records reportRecordRepository, users reportUserRepository, reports reportStateRepository, aggregates reportAggregateRepository, storage reportStorage, signer reportSigner, renderer reportRenderer, metrics *MetricsService, logger *zap.Logger, config ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}
	if config.OrphanTTL <= 0 {
		config.OrphanTTL = 7 * 24 * time.Hour
	}

	s := &ReportService{
		records:    records,
		users:      users,
		reports:    reports,
		aggregates: aggregates,
		storage:    storage,
		signer:     signer,
		renderer:   renderer,
		metrics:    metrics,
		logger:     logger,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
	s.queue = jobs.NewQueue[reportTask]("reports", s.process, jobs.QueueConfig[reportTask]{
		Workers:    config.WorkerConcurrency,
		MaxRetries: config.WorkerRetries,
		Logger:     logger,
		OnExhausted: func(task jobs.Task[reportTask], err error) {
			msg := err.Error()
			if updateErr := s.reports.UpdateStatus(context.Background(), task.Payload.RecordID, models.ReportStatusFailed, &msg); updateErr != nil {
				logger.Error("failed to mark report failed", zap.String("record_id", task.Payload.RecordID), zap.Error(updateErr))
			}
		},
	})
	return s
}

// Start launches the worker pool and the orphan cleanup loop.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the worker pool.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Generate queues report generation for a record. Re-requesting a record
// that already has a report replaces it.
func (s *ReportService) Generate(ctx context.Context, recordID, callerID string, callerRole models.UserRole) (*dto.ReportStatusResponse, error) {
	record, err := s.ownedRecord(ctx, recordID, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		RecordID: record.ID,
		Status:   models.ReportStatusQueued,
	}
	if err := s.reports.Upsert(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report")
	}

	if err := s.queue.Enqueue(jobs.Task[reportTask]{ID: record.ID, Payload: reportTask{RecordID: record.ID, UserID: record.UserID}}); err != nil {
		msg := err.Error()
		_ = s.reports.UpdateStatus(ctx, record.ID, models.ReportStatusFailed, &msg)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue report")
	}

	return &dto.ReportStatusResponse{RecordID: record.ID, Status: string(models.ReportStatusQueued)}, nil
}

// Status reports generation progress. Finished reports include a signed
// download URL.
func (s *ReportService) Status(ctx context.Context, recordID, callerID string, callerRole models.UserRole) (*dto.ReportStatusResponse, error) {
	if _, err := s.ownedRecord(ctx, recordID, callerID, callerRole); err != nil {
		return nil, err
	}

	report, err := s.reports.FindByRecordID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no report requested for this record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}

	response := &dto.ReportStatusResponse{
		RecordID: report.RecordID,
		Status:   string(report.Status),
		Error:    report.Error,
	}
	if report.GeneratedAt != nil {
		formatted := report.GeneratedAt.Format(time.RFC3339)
		response.GeneratedAt = &formatted
	}
	if report.Status == models.ReportStatusFinished && report.FilePath != "" {
		token, _, err := s.signer.Generate(report.RecordID, report.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		url := "/reports/download/" + token
		response.DownloadURL = &url
	}
	return response, nil
}

// Download validates a signed token and opens the report file for streaming.
func (s *ReportService) Download(ctx context.Context, token string) (*os.File, string, error) {
	recordID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}

	report, err := s.reports.FindByRecordID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report no longer exists")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if report.Status != models.ReportStatusFinished || report.FilePath != relPath {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report no longer exists")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return file, fmt.Sprintf("carbon-report-%s.pdf", recordID), nil
}

func (s *ReportService) process(ctx context.Context, task jobs.Task[reportTask]) error {
	recordID := task.Payload.RecordID
	start := s.now()

	if err := s.reports.UpdateStatus(ctx, recordID, models.ReportStatusProcessing, nil); err != nil {
		return fmt.Errorf("mark report processing: %w", err)
	}

	input, err := s.buildInput(ctx, recordID, task.Payload.UserID)
	if err != nil {
		s.metrics.ObserveReportGeneration(false, time.Since(start))
		return err
	}

	payload, err := s.renderer.Render(*input)
	if err != nil {
		s.metrics.ObserveReportGeneration(false, time.Since(start))
		return fmt.Errorf("render report: %w", err)
	}

	relPath := fmt.Sprintf("%s/%s.pdf", input.RecordDate.Format("2006/01"), recordID)
	if _, err := s.storage.Save(relPath, payload); err != nil {
		s.metrics.ObserveReportGeneration(false, time.Since(start))
		return fmt.Errorf("store report: %w", err)
	}

	if err := s.reports.MarkFinished(ctx, recordID, relPath, s.now()); err != nil {
		return fmt.Errorf("mark report finished: %w", err)
	}

	s.metrics.ObserveReportGeneration(true, time.Since(start))
	s.logger.Info("report generated", zap.String("record_id", recordID), zap.String("path", relPath))
	return nil
}

func (s *ReportService) buildInput(ctx context.Context, recordID, userID string) (*export.ReportInput, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	details, err := s.records.FindDetails(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("load details: %w", err)
	}

	recordMonth := time.Date(record.RecordDate.Year(), record.RecordDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := recordMonth.AddDate(0, -(trendMonths - 1), 0)
	monthly, err := s.aggregates.UserMonthlyTotals(ctx, userID, windowStart, recordMonth.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	input := &export.ReportInput{
		UserName:    user.Name,
		UserEmail:   user.Email,
		Department:  user.Department,
		RecordDate:  record.RecordDate,
		Period:      string(record.Period),
		GeneratedAt: s.now(),
		Total:       record.TotalEmissions,
		Level:       string(emissions.Classify(record.TotalEmissions)),
	}
	for _, d := range details {
		line := export.CategoryLine{
			Name:      d.CategoryName,
			Quantity:  d.Quantity,
			Unit:      d.CategoryUnit,
			Emissions: d.Emissions,
		}
		if record.TotalEmissions > 0 {
			line.Percent = d.Emissions / record.TotalEmissions * 100
		}
		input.Categories = append(input.Categories, line)
	}
	input.History = buildHistoryLines(monthly, recordMonth)
	return input, nil
}

// buildHistoryLines densifies the six-month window and derives month-over-month
// change between consecutive rows.
func buildHistoryLines(monthly []models.MonthlyTotal, endMonth time.Time) []export.HistoryLine {
	totals := make(map[string]float64, len(monthly))
	for _, m := range monthly {
		totals[m.Month] = m.Total
	}

	lines := make([]export.HistoryLine, 0, trendMonths)
	var previous float64
	for i := trendMonths - 1; i >= 0; i-- {
		month := endMonth.AddDate(0, -i, 0)
		total := totals[month.Format("2006-01")]
		line := export.HistoryLine{
			Month: month.Format("January 2006"),
			Total: total,
		}
		if i < trendMonths-1 && previous > 0 {
			change := (total - previous) / previous * 100
			line.ChangePercent = &change
		}
		previous = total
		lines = append(lines, line)
	}
	return lines
}

func (s *ReportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOrphans(ctx)
		}
	}
}

func (s *ReportService) sweepOrphans(ctx context.Context) {
	live, err := s.reports.ListFilePaths(ctx)
	if err != nil {
		s.logger.Warn("orphan sweep skipped", zap.Error(err))
		return
	}
	keep := make(map[string]bool, len(live))
	for _, path := range live {
		keep[path] = true
	}

	deleted, err := s.storage.CleanupOlderThan(s.config.OrphanTTL, keep)
	if err != nil {
		s.logger.Warn("orphan sweep failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("orphaned report files removed", zap.Int("count", len(deleted)))
	}
}

func (s *ReportService) ownedRecord(ctx context.Context, recordID, callerID string, callerRole models.UserRole) (*models.EmissionRecord, error) {
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
