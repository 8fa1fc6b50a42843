package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := "Наименование *,Артикул *,Цена,Категория\n" +
		"Дрель Makita,MAK-1,4990,Дрели\n" +
		"Перфоратор,MAK-2,12990,Перфораторы\n"

	headers, rows, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)

	// Template headers are lower-cased and the required marker is stripped.
	assert.Equal(t, []string{"наименование", "артикул", "цена", "категория"}, headers)

	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[0][models.RowNumberKey])
	assert.Equal(t, "Дрель Makita", rows[0]["наименование"])
	assert.Equal(t, "MAK-1", rows[0]["артикул"])
	assert.Equal(t, "3", rows[1][models.RowNumberKey])
	assert.Equal(t, "Перфоратор", rows[1]["наименование"])
}

func TestParseCSVRaggedRows(t *testing.T) {
	input := "name,sku,price\n" +
		"Дрель,D-1\n" +
		"Перфоратор,P-1,12990,extra-cell\n"

	_, rows, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Missing trailing cells stay absent, surplus cells are ignored.
	_, ok := rows[0]["price"]
	assert.False(t, ok)
	assert.Equal(t, "12990", rows[1]["price"])
}

func TestParseCSVDuplicateHeaders(t *testing.T) {
	input := "Наименование,Артикул,Цена,Цена\n" +
		"Дрель,D-1,4990,9999\n"

	headers, rows, err := parseCSV(strings.NewReader(input))
	require.NoError(t, err)

	// The second duplicate is suffixed so it cannot shadow the first column.
	assert.Equal(t, []string{"наименование", "артикул", "цена", "цена#2"}, headers)
	assert.Equal(t, "4990", rows[0]["цена"])
	assert.Equal(t, "9999", rows[0]["цена#2"])
}

func TestParseCSVEmptyFile(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	input := `[
		{"Name": "Дрель Makita", "SKU": "MAK-1", "Price": 4990.5, "Stock": 5, "featured": true},
		{"name": "Перфоратор", "sku": "MAK-2", "price": "12 990 ₽"}
	]`

	rows, err := parseJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Keys are lower-cased, numbers and booleans are stringified.
	assert.Equal(t, "1", rows[0][models.RowNumberKey])
	assert.Equal(t, "Дрель Makita", rows[0]["name"])
	assert.Equal(t, "4990.5", rows[0]["price"])
	assert.Equal(t, "5", rows[0]["stock"])
	assert.Equal(t, "true", rows[0]["featured"])
	assert.Equal(t, "12 990 ₽", rows[1]["price"])
}

func TestParseJSONRejectsNonArray(t *testing.T) {
	_, err := parseJSON(strings.NewReader(`{"name": "Дрель"}`))
	assert.Error(t, err)
}

func TestCatalogImportTemplateColumns(t *testing.T) {
	template := CatalogImportTemplate()

	assert.Equal(t, "products", template.Entity)

	required := map[string]bool{}
	for _, col := range template.Columns {
		required[col.Name] = col.Required
	}
	assert.True(t, required["Наименование"])
	assert.True(t, required["Артикул"])
	assert.False(t, required["Цена"])
	assert.False(t, required["Категория"])
}

func TestGetImportTemplateJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/catalog/import/template", nil)

	h := &ImportHandler{}
	h.GetImportTemplate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Наименование")
	assert.Contains(t, w.Body.String(), `"required":true`)
}

func TestGetImportTemplateCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/catalog/import/template?format=csv", nil)

	h := &ImportHandler{}
	h.GetImportTemplate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	firstLine := strings.SplitN(w.Body.String(), "\n", 2)[0]
	assert.Contains(t, firstLine, "Наименование")
	assert.Contains(t, firstLine, "Артикул")
}
