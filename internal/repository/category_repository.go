package repository

import (
	"context"
	"errors"

	"catalog-service/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindByName retrieves a category by exact name match. Name matching is
// case-sensitive: "Дрели" and "дрели" are distinct categories.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// SlugExists checks whether a category slug is already taken
func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// CategoriesWithImage runs the storefront navigation aggregation: every
// category joined to its active products, producing a live product count and
// one representative image per category in a single pass. supplier narrows
// the counted products to one supplier; empty means all.
//
// Callers go through catalog.AggregateService, which fronts this query with
// a TTL cache.
func (r *CategoryRepository) CategoriesWithImage(ctx context.Context, supplier string) ([]models.CategoryWithImage, error) {
	var results []models.CategoryWithImage

	join := "LEFT JOIN products p ON p.category_id = categories.id AND p.is_active = true"
	args := []interface{}{}
	if supplier != "" {
		join += " AND p.supplier = ?"
		args = append(args, supplier)
	}

	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.id, categories.name, categories.slug, categories.description, categories.icon, "+
			"COUNT(p.id) AS product_count, MIN(p.image_url) AS image_url").
		Joins(join, args...).
		Group("categories.id").
		Order("categories.name").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
