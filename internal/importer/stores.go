package importer

import (
	"context"

	"catalog-service/internal/models"
)

// CategoryStore is the persistence surface the resolver needs. Implemented by
// repository.CategoryRepository; mocked in tests.
type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByName(ctx context.Context, name string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ProductStore is the persistence surface the merger needs. Implemented by
// repository.ProductRepository; mocked in tests.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	FindBySKUOrSlug(ctx context.Context, sku, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// EventPublisher receives import notifications. Implementations must
// tolerate being nil-valued.
type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, format models.SourceFormat, result *models.ImportResult)
	PublishCategoryCreated(ctx context.Context, category *models.Category)
}
