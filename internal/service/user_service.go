package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.UserWithStats, int, error)
	Delete(ctx context.Context, id string) error
}

type adminAggregateRepository interface {
	UserTotalBetween(ctx context.Context, userID string, from, to time.Time) (float64, error)
	UserCategoryTotals(ctx context.Context, userID string, from, to time.Time) ([]models.CategoryTotal, error)
}

type adminRecordRepository interface {
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.EmissionRecord, int, error)
}

// UserService serves the admin user management surface.
type UserService struct {
	users      adminUserRepository
	aggregates adminAggregateRepository
	records    adminRecordRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewUserService constructs a UserService instance.
func NewUserService(users adminUserRepository, aggregates adminAggregateRepository, records adminRecordRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, aggregates: aggregates, records: records, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// List returns registered users with their lifetime aggregates.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]dto.AdminUserRow, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	rows := make([]dto.AdminUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, dto.AdminUserRow{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			Department:  u.Department,
			RecordCount: u.RecordCount,
			TotalToDate: u.TotalEmissions,
			CreatedAt:   u.CreatedAt.Format(time.RFC3339),
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

// Detail pairs a user's profile with current-month aggregates and their most
// recent records.
func (s *UserService) Detail(ctx context.Context, userID string) (*dto.AdminUserDetail, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	monthTotal, err := s.aggregates.UserTotalBetween(ctx, userID, monthStart, nextMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum user emissions")
	}
	categoryTotals, err := s.aggregates.UserCategoryTotals(ctx, userID, monthStart, nextMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category totals")
	}
	recent, _, err := s.records.ListByUser(ctx, userID, 1, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent records")
	}

	detail := &dto.AdminUserDetail{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Department:     user.Department,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		TotalEmissions: monthTotal,
		CurrentLevel:   string(emissions.Classify(monthTotal)),
		Breakdown:      toCategoryShares(categoryTotals, monthTotal),
		RecentRecords:  toRecordSummaries(recent),
	}
	if len(categoryTotals) > 0 {
		detail.HighestCategory = categoryTotals[0].CategoryName
	}
	return detail, nil
}

// Delete removes a user and everything they own. Admin accounts cannot be
// deleted through this surface.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin accounts cannot be deleted")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("user deleted by admin", zap.String("user_id", userID))
	return nil
}
