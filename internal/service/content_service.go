package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/carbon-tracker-api/internal/dto"
	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
	appErrors "github.com/noah-isme/carbon-tracker-api/pkg/errors"
)

type contentRepository interface {
	Create(ctx context.Context, content *models.EducationalContent) error
	FindByID(ctx context.Context, id string) (*models.EducationalContent, error)
	FindImage(ctx context.Context, id string) ([]byte, string, error)
	List(ctx context.Context, filter models.ContentFilter) ([]models.EducationalContent, int, error)
	Update(ctx context.Context, content *models.EducationalContent) error
	ClearImage(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ContentService manages educational content and its inline images.
type ContentService struct {
	contents     contentRepository
	validator    *validator.Validate
	logger       *zap.Logger
	maxImageSize int64
}

// NewContentService constructs a ContentService instance.
func NewContentService(contents contentRepository, validate *validator.Validate, logger *zap.Logger, maxImageSize int64) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if maxImageSize <= 0 {
		maxImageSize = 5 * 1024 * 1024
	}
	return &ContentService{contents: contents, validator: validate, logger: logger, maxImageSize: maxImageSize}
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// ValidateImage checks size and sniffs the actual content type. The client's
// declared MIME is ignored.
func (s *ContentService) ValidateImage(image []byte) (string, error) {
	if int64(len(image)) > s.maxImageSize {
		return "", appErrors.Clone(appErrors.ErrValidation, "image exceeds the 5MB limit")
	}
	mime := http.DetectContentType(image)
	if !allowedImageTypes[mime] {
		return "", appErrors.Clone(appErrors.ErrValidation, "image must be JPEG, PNG or GIF")
	}
	return mime, nil
}

// Create stores a new content entry authored by the given admin.
func (s *ContentService) Create(ctx context.Context, adminID string, req dto.CreateContentRequest, image []byte) (*dto.ContentItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}

	content := &models.EducationalContent{
		AdminID:        adminID,
		CategoryID:     req.CategoryID,
		Title:          req.Title,
		Description:    req.Description,
		ContentType:    models.ContentType(req.ContentType),
		EmissionsLevel: emissions.Level(req.EmissionsLevel),
	}

	if len(image) > 0 {
		mime, err := s.ValidateImage(image)
		if err != nil {
			return nil, err
		}
		content.Image = image
		content.ImageMIME = mime
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content")
	}

	s.logger.Info("content created", zap.String("content_id", content.ID), zap.String("admin_id", adminID))
	item := toContentItem(*content)
	return &item, nil
}

// Get returns a single content entry.
func (s *ContentService) Get(ctx context.Context, id string) (*dto.ContentItem, error) {
	content, err := s.contents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	item := toContentItem(*content)
	return &item, nil
}

// Image returns the raw image bytes and MIME type of a content entry.
func (s *ContentService) Image(ctx context.Context, id string) ([]byte, string, error) {
	image, mime, err := s.contents.FindImage(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load image")
	}
	if len(image) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "content has no image")
	}
	return image, mime, nil
}

// List returns published content matching the filter.
func (s *ContentService) List(ctx context.Context, filter models.ContentFilter) ([]dto.ContentItem, *models.Pagination, error) {
	if filter.ContentType != "" && !models.ValidContentType(string(filter.ContentType)) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "content_type must be tip, article or guide")
	}

	contents, total, err := s.contents.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}

	items := make([]dto.ContentItem, 0, len(contents))
	for _, c := range contents {
		items = append(items, toContentItem(c))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update mutates an existing content entry.
func (s *ContentService) Update(ctx context.Context, id string, req dto.UpdateContentRequest, image []byte) (*dto.ContentItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}

	content, err := s.contents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}

	content.Title = req.Title
	content.Description = req.Description
	content.ContentType = models.ContentType(req.ContentType)
	content.CategoryID = req.CategoryID
	content.EmissionsLevel = emissions.Level(req.EmissionsLevel)

	if len(image) > 0 {
		mime, err := s.ValidateImage(image)
		if err != nil {
			return nil, err
		}
		content.Image = image
		content.ImageMIME = mime
	}

	if err := s.contents.Update(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content")
	}

	if len(image) == 0 && req.RemoveImage {
		if err := s.contents.ClearImage(ctx, id); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove image")
		}
		content.Image = nil
		content.ImageMIME = ""
	}
	item := toContentItem(*content)
	return &item, nil
}

// Delete removes a content entry.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if _, err := s.contents.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if err := s.contents.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content")
	}
	return nil
}

func toContentItem(content models.EducationalContent) dto.ContentItem {
	item := dto.ContentItem{
		ID:             content.ID,
		Title:          content.Title,
		Description:    content.Description,
		ContentType:    string(content.ContentType),
		EmissionsLevel: string(content.EmissionsLevel),
		HasImage:       len(content.Image) > 0 || content.ImageMIME != "",
		CreatedAt:      content.CreatedAt.Format(time.RFC3339),
	}
	if content.CategoryName != nil {
		item.CategoryName = *content.CategoryName
	}
	return item
}
