package importer

import (
	"context"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
)

// memCategoryStore is an in-memory CategoryStore for batch-level tests, where
// scripting every store interaction with a mock would obscure the scenario.
type memCategoryStore struct {
	byName      map[string]*models.Category
	createCalls int
}

func newMemCategoryStore() *memCategoryStore {
	return &memCategoryStore{byName: make(map[string]*models.Category)}
}

func (s *memCategoryStore) Create(ctx context.Context, category *models.Category) error {
	s.createCalls++
	category.ID = uuid.New()
	s.byName[category.Name] = category
	return nil
}

func (s *memCategoryStore) FindByName(ctx context.Context, name string) (*models.Category, error) {
	if c, ok := s.byName[name]; ok {
		return c, nil
	}
	return nil, repository.ErrCategoryNotFound
}

func (s *memCategoryStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, c := range s.byName {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// memProductStore is an in-memory ProductStore. createErrs injects a creation
// failure for specific SKUs to exercise persistence-error handling.
type memProductStore struct {
	products    []*models.Product
	createErrs  map[string]error
	createCalls int
	updateCalls int
}

func newMemProductStore() *memProductStore {
	return &memProductStore{createErrs: make(map[string]error)}
}

func (s *memProductStore) Create(ctx context.Context, product *models.Product) error {
	s.createCalls++
	if err, ok := s.createErrs[product.SKU]; ok {
		return err
	}
	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	s.products = append(s.products, product)
	return nil
}

func (s *memProductStore) Update(ctx context.Context, product *models.Product) error {
	s.updateCalls++
	return nil
}

func (s *memProductStore) FindBySKUOrSlug(ctx context.Context, sku, slug string) (*models.Product, error) {
	for _, p := range s.products {
		if p.SKU == sku || p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (s *memProductStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, p := range s.products {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *memProductStore) bySKU(sku string) *models.Product {
	for _, p := range s.products {
		if p.SKU == sku {
			return p
		}
	}
	return nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	formats    []models.SourceFormat
	results    []*models.ImportResult
	categories []*models.Category
}

func (p *recordingPublisher) PublishImportCompleted(ctx context.Context, format models.SourceFormat, result *models.ImportResult) {
	p.formats = append(p.formats, format)
	p.results = append(p.results, result)
}

func (p *recordingPublisher) PublishCategoryCreated(ctx context.Context, category *models.Category) {
	p.categories = append(p.categories, category)
}
