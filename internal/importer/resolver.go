package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
	"catalog-service/internal/slug"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp"}

// CategoryResolver maps raw category labels to canonical category IDs,
// creating categories on demand. The label cache lives for one batch only:
// N rows sharing a label produce one lookup and at most one creation, and
// separate batches never see each other's cache.
type CategoryResolver struct {
	store     CategoryStore
	publisher EventPublisher
	logger    *logrus.Entry
	cache     map[string]uuid.UUID
}

// NewCategoryResolver returns a resolver with a fresh per-batch cache.
// Callers must create a new resolver for every batch. publisher may be nil.
func NewCategoryResolver(store CategoryStore, publisher EventPublisher, logger *logrus.Entry) *CategoryResolver {
	return &CategoryResolver{
		store:     store,
		publisher: publisher,
		logger:    logger,
		cache:     make(map[string]uuid.UUID),
	}
}

// Resolve returns the category ID for a raw label, creating the category if
// it does not exist. Unusable labels (URLs, image filenames, punctuation)
// collapse into the sentinel category instead of polluting the taxonomy.
func (r *CategoryResolver) Resolve(ctx context.Context, rawLabel string) (uuid.UUID, error) {
	label := SanitizeLabel(rawLabel)

	if id, ok := r.cache[label]; ok {
		return id, nil
	}

	category, err := r.store.FindByName(ctx, label)
	if err == nil {
		r.cache[label] = category.ID
		return category.ID, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return uuid.Nil, fmt.Errorf("lookup category %q: %w", label, err)
	}

	base := slug.Generate(label)
	if base == "" {
		base = slug.Fallback("category")
	}
	categorySlug, err := slug.ResolveUnique(base, func(candidate string) (bool, error) {
		return r.store.SlugExists(ctx, candidate)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve slug for category %q: %w", label, err)
	}

	category = &models.Category{
		Name:     label,
		Slug:     categorySlug,
		IsActive: true,
	}
	if err := r.store.Create(ctx, category); err != nil {
		// Most likely a slug race with a concurrent import that claimed the
		// slug between the uniqueness probe and the insert. One retry with a
		// forced-unique slug; the batch is never aborted for this.
		r.logger.WithError(err).WithField("category", label).
			Warn("category create conflict, retrying with synthetic slug")
		category.Slug = slug.Synthetic(base)
		if err := r.store.Create(ctx, category); err != nil {
			return uuid.Nil, fmt.Errorf("create category %q: %w", label, err)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"category": category.Name,
		"slug":     category.Slug,
	}).Info("auto-created category")

	if r.publisher != nil {
		r.publisher.PublishCategoryCreated(ctx, category)
	}

	r.cache[label] = category.ID
	return category.ID, nil
}

// SanitizeLabel guards the taxonomy against scraped and malformed spreadsheet
// cells. Labels that are empty, shorter than 2 runes, look like URLs or image
// filenames, or contain no word characters at all resolve to the sentinel
// category.
func SanitizeLabel(raw string) string {
	label := strings.TrimSpace(raw)
	lower := strings.ToLower(label)

	switch {
	case label == "":
		return models.SentinelCategoryName
	case utf8.RuneCountInString(label) < 2:
		return models.SentinelCategoryName
	case strings.HasPrefix(lower, "http"):
		return models.SentinelCategoryName
	case hasImageExtension(lower):
		return models.SentinelCategoryName
	case !hasWordCharacter(label):
		return models.SentinelCategoryName
	}
	return label
}

func hasImageExtension(s string) bool {
	for _, ext := range imageExtensions {
		if strings.Contains(s, ext) {
			return true
		}
	}
	return false
}

func hasWordCharacter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
