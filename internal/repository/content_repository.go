package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/carbon-tracker-api/internal/emissions"
	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

// ContentRepository provides database access for educational content.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new instance of ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `ec.id, ec.admin_id, ec.category_id, c.name AS category_name, ec.title, ec.description, ec.content_type, ec.emissions_level, ec.image_mime, ec.created_at, ec.updated_at`

// Create inserts a new content entry.
func (r *ContentRepository) Create(ctx context.Context, content *models.EducationalContent) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	content.CreatedAt = now
	content.UpdatedAt = now

	const query = `INSERT INTO educational_contents (id, admin_id, category_id, title, description, content_type, emissions_level, image, image_mime, created_at, updated_at)
		VALUES (:id, :admin_id, :category_id, :title, :description, :content_type, :emissions_level, :image, :image_mime, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// FindByID returns a content entry without its image blob.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.EducationalContent, error) {
	query := fmt.Sprintf(`SELECT %s FROM educational_contents ec LEFT JOIN emission_categories c ON c.id = ec.category_id WHERE ec.id = $1 LIMIT 1`, contentColumns)
	var content models.EducationalContent
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return &content, nil
}

// FindImage returns the stored image bytes and MIME type for a content entry.
func (r *ContentRepository) FindImage(ctx context.Context, id string) ([]byte, string, error) {
	const query = `SELECT image, image_mime FROM educational_contents WHERE id = $1 LIMIT 1`
	row := struct {
		Image     []byte `db:"image"`
		ImageMIME string `db:"image_mime"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("find content image: %w", err)
	}
	return row.Image, row.ImageMIME, nil
}

// List returns content entries matching the filter, newest first.
func (r *ContentRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.EducationalContent, int, error) {
	baseQuery := `FROM educational_contents ec LEFT JOIN emission_categories c ON c.id = ec.category_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ContentType != "" {
		conditions = append(conditions, fmt.Sprintf("ec.content_type = $%d", len(args)+1))
		args = append(args, filter.ContentType)
	}
	if filter.CategoryID > 0 {
		conditions = append(conditions, fmt.Sprintf("ec.category_id = $%d", len(args)+1))
		args = append(args, filter.CategoryID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT %s %s ORDER BY ec.created_at DESC LIMIT %d OFFSET %d`, contentColumns, baseQuery, pageSize, offset)
	var contents []models.EducationalContent
	if err := r.db.SelectContext(ctx, &contents, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list contents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contents: %w", err)
	}
	return contents, total, nil
}

// FindTips returns the newest tip entries matching category and level. Either
// filter may be absent; matching rows come back newest first up to limit.
func (r *ContentRepository) FindTips(ctx context.Context, categoryID int, level emissions.Level, limit int) ([]models.EducationalContent, error) {
	baseQuery := `FROM educational_contents ec LEFT JOIN emission_categories c ON c.id = ec.category_id WHERE ec.content_type = 'tip'`
	var args []interface{}

	if categoryID > 0 {
		args = append(args, categoryID)
		baseQuery += fmt.Sprintf(" AND ec.category_id = $%d", len(args))
	}
	if level != "" {
		args = append(args, level)
		baseQuery += fmt.Sprintf(" AND ec.emissions_level = $%d", len(args))
	}
	if limit <= 0 {
		limit = 3
	}

	query := fmt.Sprintf(`SELECT %s %s ORDER BY ec.created_at DESC LIMIT %d`, contentColumns, baseQuery, limit)
	var tips []models.EducationalContent
	if err := r.db.SelectContext(ctx, &tips, query, args...); err != nil {
		return nil, fmt.Errorf("find tips: %w", err)
	}
	return tips, nil
}

// FindGeneralTips returns the newest untargeted tips: entries typed tip with
// neither a category nor an emissions level tag.
func (r *ContentRepository) FindGeneralTips(ctx context.Context, limit int) ([]models.EducationalContent, error) {
	if limit <= 0 {
		limit = 3
	}
	query := fmt.Sprintf(`SELECT %s FROM educational_contents ec LEFT JOIN emission_categories c ON c.id = ec.category_id
		WHERE ec.content_type = 'tip' AND ec.category_id IS NULL AND (ec.emissions_level IS NULL OR ec.emissions_level = '')
		ORDER BY ec.created_at DESC LIMIT %d`, contentColumns, limit)
	var tips []models.EducationalContent
	if err := r.db.SelectContext(ctx, &tips, query); err != nil {
		return nil, fmt.Errorf("find general tips: %w", err)
	}
	return tips, nil
}

// Update overwrites the mutable fields of a content entry. Image columns are
// only touched when a new image was supplied.
func (r *ContentRepository) Update(ctx context.Context, content *models.EducationalContent) error {
	content.UpdatedAt = time.Now().UTC()
	if len(content.Image) > 0 {
		const query = `UPDATE educational_contents SET category_id = :category_id, title = :title, description = :description, content_type = :content_type, emissions_level = :emissions_level, image = :image, image_mime = :image_mime, updated_at = :updated_at WHERE id = :id`
		if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
			return fmt.Errorf("update content: %w", err)
		}
		return nil
	}
	const query = `UPDATE educational_contents SET category_id = :category_id, title = :title, description = :description, content_type = :content_type, emissions_level = :emissions_level, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// ClearImage drops the stored image of a content entry.
func (r *ContentRepository) ClearImage(ctx context.Context, id string) error {
	const query = `UPDATE educational_contents SET image = NULL, image_mime = '', updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear content image: %w", err)
	}
	return nil
}

// Delete removes a content entry.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM educational_contents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}
