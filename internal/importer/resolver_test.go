package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal label", "Перфораторы", "Перфораторы"},
		{"trimmed", "  Дрели  ", "Дрели"},
		{"empty", "", models.SentinelCategoryName},
		{"whitespace only", "   ", models.SentinelCategoryName},
		{"single rune", "Д", models.SentinelCategoryName},
		{"url", "https://supplier.ru/catalog/drills", models.SentinelCategoryName},
		{"image filename", "photo_123.jpg", models.SentinelCategoryName},
		{"uppercase image filename", "PHOTO.PNG", models.SentinelCategoryName},
		{"punctuation only", "---", models.SentinelCategoryName},
		{"two runes ok", "3D", "3D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeLabel(tt.input))
		})
	}
}

func TestResolveExistingCategory(t *testing.T) {
	store := new(MockCategoryStore)
	existing := &models.Category{ID: uuid.New(), Name: "Дрели", Slug: "дрели"}
	store.On("FindByName", mock.Anything, "Дрели").Return(existing, nil).Once()

	resolver := NewCategoryResolver(store, nil, testLogger())
	id, err := resolver.Resolve(context.Background(), "Дрели")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, id)
	store.AssertExpectations(t)
}

func TestResolveCachesWithinBatch(t *testing.T) {
	store := new(MockCategoryStore)
	existing := &models.Category{ID: uuid.New(), Name: "Дрели"}
	store.On("FindByName", mock.Anything, "Дрели").Return(existing, nil).Once()

	resolver := NewCategoryResolver(store, nil, testLogger())
	for i := 0; i < 5; i++ {
		id, err := resolver.Resolve(context.Background(), "Дрели")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, id)
	}

	// One lookup serves all five rows.
	store.AssertNumberOfCalls(t, "FindByName", 1)
}

func TestResolveAutoCreatesCategory(t *testing.T) {
	store := new(MockCategoryStore)
	store.On("FindByName", mock.Anything, "Перфораторы").Return(nil, repository.ErrCategoryNotFound).Once()
	store.On("SlugExists", mock.Anything, "перфораторы").Return(false, nil).Once()
	store.On("Create", mock.Anything, mock.AnythingOfType("*models.Category")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Category).ID = uuid.New()
		}).Return(nil).Once()

	resolver := NewCategoryResolver(store, nil, testLogger())
	id, err := resolver.Resolve(context.Background(), "Перфораторы")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	created := store.Calls[2].Arguments.Get(1).(*models.Category)
	assert.Equal(t, "Перфораторы", created.Name)
	assert.Equal(t, "перфораторы", created.Slug)
	assert.True(t, created.IsActive)
	store.AssertExpectations(t)
}

func TestResolveUnusableLabelFallsToSentinel(t *testing.T) {
	store := new(MockCategoryStore)
	sentinel := &models.Category{ID: uuid.New(), Name: models.SentinelCategoryName}
	store.On("FindByName", mock.Anything, models.SentinelCategoryName).Return(sentinel, nil).Once()

	resolver := NewCategoryResolver(store, nil, testLogger())
	id, err := resolver.Resolve(context.Background(), "https://supplier.ru/img/drill.jpg")

	require.NoError(t, err)
	assert.Equal(t, sentinel.ID, id)
	store.AssertExpectations(t)
}

func TestResolveRetriesCreateWithSyntheticSlug(t *testing.T) {
	store := new(MockCategoryStore)
	store.On("FindByName", mock.Anything, "Дрели").Return(nil, repository.ErrCategoryNotFound).Once()
	store.On("SlugExists", mock.Anything, "дрели").Return(false, nil).Once()
	// First insert loses a slug race; the retry must not fail the row.
	store.On("Create", mock.Anything, mock.AnythingOfType("*models.Category")).
		Return(errors.New("duplicate key value violates unique constraint")).Once()
	store.On("Create", mock.Anything, mock.AnythingOfType("*models.Category")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Category).ID = uuid.New()
		}).Return(nil).Once()

	resolver := NewCategoryResolver(store, nil, testLogger())
	id, err := resolver.Resolve(context.Background(), "Дрели")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	created := store.Calls[3].Arguments.Get(1).(*models.Category)
	assert.True(t, strings.HasPrefix(created.Slug, "дрели-"))
	store.AssertExpectations(t)
}

func TestResolvePropagatesLookupError(t *testing.T) {
	store := new(MockCategoryStore)
	store.On("FindByName", mock.Anything, "Дрели").Return(nil, errors.New("connection reset")).Once()

	resolver := NewCategoryResolver(store, nil, testLogger())
	_, err := resolver.Resolve(context.Background(), "Дрели")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lookup category")
}
