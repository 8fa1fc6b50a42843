package importer

import (
	"strconv"
	"testing"

	"catalog-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importRow(num int, cells map[string]string) models.ImportRow {
	row := models.ImportRow{models.RowNumberKey: strconv.Itoa(num)}
	for k, v := range cells {
		row[k] = v
	}
	return row
}

func TestBindColumnsRussianHeaders(t *testing.T) {
	binding := BindColumns([]string{"Наименование товара", "Артикул", "Цена, руб", "Категория", "Остаток"})

	assert.Equal(t, "наименование товара", binding["name"])
	assert.Equal(t, "артикул", binding["sku"])
	assert.Equal(t, "цена, руб", binding["price"])
	assert.Equal(t, "категория", binding["category"])
	assert.Equal(t, "остаток", binding["stock"])
}

func TestBindColumnsFirstHeaderWins(t *testing.T) {
	// Two headers match "price"; the earlier column claims the field.
	binding := BindColumns([]string{"Цена", "Стоимость доставки"})
	assert.Equal(t, "цена", binding["price"])
}

func TestBindColumnsEnglishHeaders(t *testing.T) {
	binding := BindColumns([]string{"Product Name", "SKU", "Price", "Category", "Qty", "Image"})

	assert.Equal(t, "product name", binding["name"])
	assert.Equal(t, "sku", binding["sku"])
	assert.Equal(t, "qty", binding["stock"])
	assert.Equal(t, "image", binding["image"])
}

func TestBindColumnsUnknownHeadersUnbound(t *testing.T) {
	binding := BindColumns([]string{"Колонка1", "xyz"})
	_, ok := binding["name"]
	assert.False(t, ok)
}

func TestNormalizeFullRow(t *testing.T) {
	binding := CanonicalBinding()
	row := importRow(3, map[string]string{
		"name":         "Перфоратор Makita HR2470",
		"sku":          "MAK-HR2470",
		"price":        "12 990 ₽",
		"category":     "Перфораторы",
		"stock":        "14 шт",
		"description":  "Мощность 780 Вт",
		"image":        "https://cdn.example.com/hr2470.jpg",
		"supplier":     "toolsupply",
		"brand":        "Makita",
		"warranty":     "12 мес",
		"availability": "в наличии",
	})

	rec, err := Normalize(row, binding)
	require.NoError(t, err)

	assert.Equal(t, 3, rec.RowNum)
	assert.Equal(t, "Перфоратор Makita HR2470", rec.Name)
	assert.Equal(t, "MAK-HR2470", rec.SKU)
	assert.Equal(t, "12990.00", rec.Price)
	assert.Equal(t, "Перфораторы", rec.CategoryLabel)
	assert.Equal(t, 14, rec.Stock)
	require.NotNil(t, rec.Description)
	assert.Equal(t, "Мощность 780 Вт", *rec.Description)
	require.NotNil(t, rec.Supplier)
	assert.Equal(t, "toolsupply", *rec.Supplier)
	assert.Equal(t, map[string]string{
		"brand":        "Makita",
		"warranty":     "12 мес",
		"availability": "в наличии",
	}, rec.Attributes)
}

func TestNormalizeMissingName(t *testing.T) {
	row := importRow(5, map[string]string{"sku": "A-1", "price": "100"})

	_, err := Normalize(row, CanonicalBinding())

	var rejected *RejectedRowError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, 5, rejected.Row)
	assert.Equal(t, "name", rejected.Field)
}

func TestNormalizeMissingSKU(t *testing.T) {
	row := importRow(7, map[string]string{"name": "Дрель", "sku": "   "})

	_, err := Normalize(row, CanonicalBinding())

	var rejected *RejectedRowError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "sku", rejected.Field)
	assert.Contains(t, rejected.Error(), "row 7")
}

func TestNormalizeMalformedNumbersCoerce(t *testing.T) {
	row := importRow(1, map[string]string{
		"name":  "Дрель",
		"sku":   "D-1",
		"price": "договорная",
		"stock": "много",
	})

	rec, err := Normalize(row, CanonicalBinding())
	require.NoError(t, err)
	assert.Equal(t, "0.00", rec.Price)
	assert.Equal(t, 0, rec.Stock)
	assert.Nil(t, rec.OriginalPrice)
}

func TestNormalizeFeaturedFlag(t *testing.T) {
	binding := CanonicalBinding()

	rec, err := Normalize(importRow(1, map[string]string{
		"name": "Дрель", "sku": "D-1", "featured": "да",
	}), binding)
	require.NoError(t, err)
	require.NotNil(t, rec.IsFeatured)
	assert.True(t, *rec.IsFeatured)

	rec, err = Normalize(importRow(2, map[string]string{
		"name": "Дрель", "sku": "D-2", "featured": "нет",
	}), binding)
	require.NoError(t, err)
	require.NotNil(t, rec.IsFeatured)
	assert.False(t, *rec.IsFeatured)

	// No featured column means no opinion, not false.
	rec, err = Normalize(importRow(3, map[string]string{
		"name": "Дрель", "sku": "D-3",
	}), binding)
	require.NoError(t, err)
	assert.Nil(t, rec.IsFeatured)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"1 234,56 ₽", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1.234.567,89", "1234567.89"},
		{"5990", "5990.00"},
		{"5990 руб.", "5990.00"},
		{"99,9", "99.90"},
		{"1.234.567", "1234567.00"},
		{"$12.5", "12.50"},
		{"N/A", "0.00"},
		{"", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePrice(tt.raw))
		})
	}
}
