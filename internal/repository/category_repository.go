package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/carbon-tracker-api/internal/models"
)

// CategoryRepository reads the emission category reference table.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all emission categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]models.EmissionCategory, error) {
	const query = `SELECT id, name, slug, unit FROM emission_categories ORDER BY id`
	var categories []models.EmissionCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindBySlug returns a category by its slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.EmissionCategory, error) {
	const query = `SELECT id, name, slug, unit FROM emission_categories WHERE slug = $1 LIMIT 1`
	var category models.EmissionCategory
	if err := r.db.GetContext(ctx, &category, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return &category, nil
}
