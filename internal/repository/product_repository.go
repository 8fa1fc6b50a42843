package repository

import (
	"context"
	"errors"

	"catalog-service/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update saves all fields of an existing product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// FindBySKUOrSlug retrieves the product matching either identity. Both SKU
// and slug are unique columns; a hit on either one means the incoming row
// describes this product.
func (r *ProductRepository) FindBySKUOrSlug(ctx context.Context, sku, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("sku = ? OR slug = ?", sku, slug).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// SlugExists checks whether a product slug is already taken
func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// ProductFilters narrows List results
type ProductFilters struct {
	CategoryID *string
	Supplier   *string
	ActiveOnly bool
	Featured   *bool
	Search     string
}

// List retrieves products with filters and pagination
func (r *ProductRepository) List(ctx context.Context, filters ProductFilters, limit, offset int) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Supplier != nil {
		query = query.Where("supplier = ?", *filters.Supplier)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Featured != nil {
		query = query.Where("is_featured = ?", *filters.Featured)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ? OR sku ILIKE ?", "%"+filters.Search+"%", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug retrieves a product by slug
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}
