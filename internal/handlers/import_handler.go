package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
	"catalog-service/internal/scraper"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

type ImportHandler struct {
	importer *importer.Importer
	logger   *logrus.Entry
}

func NewImportHandler(imp *importer.Importer, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		importer: imp,
		logger:   logger.WithField("component", "handlers.import"),
	}
}

// CatalogImportTemplate returns the template definition for product imports.
// Column headers are sniffed by synonym, so the names here are suggestions,
// not requirements.
func CatalogImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "Наименование", Description: "Product name", Required: true, Example: "Дрель ударная Makita HP1640"},
			{Name: "Артикул", Description: "Supplier SKU", Required: true, Example: "MK-HP1640"},
			{Name: "Цена", Description: "Price, decimal", Required: false, Example: "5 990,00"},
			{Name: "Старая цена", Description: "Pre-discount price", Required: false, Example: "6 490,00"},
			{Name: "Категория", Description: "Category label (auto-created if new)", Required: false, Example: "Дрели"},
			{Name: "Остаток", Description: "Stock quantity", Required: false, Example: "12"},
			{Name: "Описание", Description: "Product description", Required: false, Example: "Ударная дрель 680 Вт"},
			{Name: "Фото", Description: "Image URL", Required: false, Example: "https://cdn.example.com/hp1640.jpg"},
			{Name: "Поставщик", Description: "Supplier identifier", Required: false, Example: "toolsupply"},
		},
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/catalog/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := CatalogImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Catalog Import Instructions")
	f.SetCellValue("Instructions", "A3", "Column headers are matched by synonym (Russian or English), so existing supplier price lists usually import without renaming columns.")
	f.SetCellValue("Instructions", "A4", "Rows are matched to existing products by SKU or slug; matching rows are updated in place, so reimporting a file is safe.")

	for i, col := range template.Columns {
		row := i + 6
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 20)
	f.SetColWidth("Instructions", "B", "B", 50)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=catalog_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportCatalog imports products from an uploaded CSV, XLSX or JSON file
// POST /api/v1/catalog/import
func (h *ImportHandler) ImportCatalog(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_REQUIRED",
				Message: "Please upload a CSV, XLSX or JSON file",
			},
		})
		return
	}
	defer file.Close()

	var format models.SourceFormat
	filename := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(filename, ".csv"):
		format = models.SourceCSV
	case strings.HasSuffix(filename, ".xlsx"):
		format = models.SourceXLSX
	case strings.HasSuffix(filename, ".json"):
		format = models.SourceJSON
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_FORMAT",
				Message: "Only CSV, XLSX and JSON files are supported",
			},
		})
		return
	}

	var headers []string
	var rows []models.ImportRow
	var parseErr error

	switch format {
	case models.SourceCSV:
		headers, rows, parseErr = parseCSV(file)
	case models.SourceXLSX:
		headers, rows, parseErr = parseXLSX(file)
	case models.SourceJSON:
		rows, parseErr = parseJSON(file)
	}

	if parseErr != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PARSE_ERROR",
				Message: parseErr.Error(),
			},
		})
		return
	}

	result, err := h.importer.ImportBatch(c.Request.Context(), headers, rows, format)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyBatch) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "EMPTY_FILE",
					Message: "The file contains no data rows",
				},
			})
			return
		}
		h.logger.WithError(err).Error("import failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "IMPORT_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ImportScraped imports products scraped from a supplier catalog
// POST /api/v1/catalog/import/scrape
func (h *ImportHandler) ImportScraped(c *gin.Context) {
	var records []scraper.SupplierRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_BODY",
				Message: "Request body must be a JSON array of supplier records",
			},
		})
		return
	}

	result, err := h.importer.ImportBatch(c.Request.Context(), nil, scraper.Rows(records), models.SourceScrape)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyBatch) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "EMPTY_BATCH",
					Message: "No supplier records to import",
				},
			})
			return
		}
		h.logger.WithError(err).Error("scrape import failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "IMPORT_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// normalizeHeaders lower-cases headers in place, strips the template's
// required marker, and suffixes repeated header names so a duplicate column
// cannot shadow the first one's values in the row map.
func normalizeHeaders(headers []string) {
	seen := make(map[string]int, len(headers))
	for i := range headers {
		h := strings.TrimSpace(strings.ToLower(headers[i]))
		h = strings.TrimSuffix(h, " *")
		if h != "" {
			if n := seen[h]; n > 0 {
				headers[i] = fmt.Sprintf("%s#%d", h, n+1)
				seen[h]++
				continue
			}
		}
		headers[i] = h
		seen[h]++
	}
}

// parseCSV parses a CSV file into rows, preserving header order for sniffing
func parseCSV(file io.Reader) ([]string, []models.ImportRow, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []models.ImportRow
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(models.ImportRow)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row[models.RowNumberKey] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return headers, rows, nil
}

// parseXLSX parses an Excel file into rows, preserving header order
func parseXLSX(file io.Reader) ([]string, []models.ImportRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	var rows []models.ImportRow
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(models.ImportRow)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row[models.RowNumberKey] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return headers, rows, nil
}

// parseJSON parses a JSON array of objects into rows. Keys are taken as
// canonical field names, so no header sniffing is needed.
func parseJSON(file io.Reader) ([]models.ImportRow, error) {
	var raw []map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	var rows []models.ImportRow
	for i, obj := range raw {
		row := make(models.ImportRow)
		for key, value := range obj {
			row[strings.ToLower(strings.TrimSpace(key))] = stringifyValue(value)
		}
		row[models.RowNumberKey] = strconv.Itoa(i + 1)
		rows = append(rows, row)
	}

	return rows, nil
}

func stringifyValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
