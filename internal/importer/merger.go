package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/slug"

	"github.com/google/uuid"
)

// MergeOutcome reports what Merge did with a record.
type MergeOutcome string

const (
	MergeInserted MergeOutcome = "inserted"
	MergeUpdated  MergeOutcome = "updated"
)

// UpsertMerger decides whether a normalized record is a new product or a
// reimport of an existing one. Identity is SKU or slug - a match on either
// means "same product", which is what makes reimporting a supplier file
// idempotent.
type UpsertMerger struct {
	store ProductStore
}

func NewUpsertMerger(store ProductStore) *UpsertMerger {
	return &UpsertMerger{store: store}
}

// Merge upserts one normalized record into the catalog.
func (m *UpsertMerger) Merge(ctx context.Context, rec *models.NormalizedProduct, categoryID uuid.UUID) (MergeOutcome, error) {
	candidate := slug.Generate(rec.Name)
	if candidate == "" {
		candidate = fmt.Sprintf("product-%d-%d", time.Now().UnixMilli(), rec.RowNum)
	}

	existing, err := m.store.FindBySKUOrSlug(ctx, rec.SKU, candidate)
	if err == nil {
		m.applyUpdate(existing, rec, categoryID)
		if err := m.store.Update(ctx, existing); err != nil {
			return "", fmt.Errorf("update product %s: %w", rec.SKU, err)
		}
		return MergeUpdated, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return "", fmt.Errorf("lookup product %s: %w", rec.SKU, err)
	}

	finalSlug, err := slug.ResolveUnique(candidate, func(s string) (bool, error) {
		return m.store.SlugExists(ctx, s)
	})
	if err != nil {
		return "", fmt.Errorf("resolve slug for product %s: %w", rec.SKU, err)
	}

	product := &models.Product{
		SKU:           rec.SKU,
		Slug:          finalSlug,
		Name:          rec.Name,
		Description:   rec.Description,
		Price:         rec.Price,
		OriginalPrice: rec.OriginalPrice,
		Stock:         rec.Stock,
		CategoryID:    categoryID,
		ImageURL:      rec.ImageURL,
		IsActive:      true,
		IsFeatured:    rec.IsFeatured != nil && *rec.IsFeatured,
		Supplier:      rec.Supplier,
		Attributes:    attributesJSON(rec.Attributes),
	}
	if err := m.store.Create(ctx, product); err != nil {
		return "", fmt.Errorf("insert product %s: %w", rec.SKU, err)
	}
	return MergeInserted, nil
}

// applyUpdate copies the mutable fields onto the stored product. ID, SKU,
// slug and CreatedAt are identity and stay untouched; gorm bumps UpdatedAt
// on save.
func (m *UpsertMerger) applyUpdate(existing *models.Product, rec *models.NormalizedProduct, categoryID uuid.UUID) {
	existing.Name = rec.Name
	existing.Price = rec.Price
	existing.OriginalPrice = rec.OriginalPrice
	existing.Stock = rec.Stock
	existing.CategoryID = categoryID
	existing.IsActive = true
	if rec.IsFeatured != nil {
		existing.IsFeatured = *rec.IsFeatured
	}
	if rec.Description != nil {
		existing.Description = rec.Description
	}
	if rec.ImageURL != nil {
		existing.ImageURL = rec.ImageURL
	}
	if rec.Supplier != nil {
		existing.Supplier = rec.Supplier
	}
	if attrs := attributesJSON(rec.Attributes); attrs != nil {
		existing.Attributes = attrs
	}
}

func attributesJSON(attrs map[string]string) *models.JSON {
	if len(attrs) == 0 {
		return nil
	}
	j := make(models.JSON, len(attrs))
	for k, v := range attrs {
		j[k] = v
	}
	return &j
}
