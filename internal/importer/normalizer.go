package importer

import (
	"fmt"
	"strconv"
	"strings"

	"catalog-service/internal/models"

	"github.com/shopspring/decimal"
)

// RejectedRowError marks a row that is missing a mandatory identity field.
// Rejected rows never reach the merger and never count toward success.
type RejectedRowError struct {
	Row   int
	Field string
}

func (e *RejectedRowError) Error() string {
	return fmt.Sprintf("row %d: missing required field '%s'", e.Row, e.Field)
}

// boundFields is the fixed order in which fields claim headers.
var boundFields = []string{
	"name", "sku", "price", "originalprice", "category",
	"stock", "description", "image", "supplier", "featured",
	"brand", "model", "warranty", "availability",
}

// fieldSynonyms drives header sniffing: a header binds to a field when its
// lower-cased text contains any synonym as a substring. Suppliers ship
// spreadsheets in Russian, English and mixtures of both.
var fieldSynonyms = map[string][]string{
	"name":          {"наименование", "название", "товар", "name", "product"},
	"sku":           {"артикул", "sku", "код"},
	"price":         {"цена", "price", "руб", "стоимость"},
	"originalprice": {"старая цена", "old price", "originalprice", "цена до скидки"},
	"category":      {"категория", "group", "category", "группа", "раздел"},
	"stock":         {"остаток", "кол-во", "количество", "stock", "qty", "quantity"},
	"description":   {"описание", "description"},
	"image":         {"фото", "изображение", "картинка", "image"},
	"supplier":      {"поставщик", "supplier"},
	"featured":      {"featured", "хит", "рекомендуем"},
	"brand":         {"бренд", "производитель", "brand"},
	"model":         {"модель", "model"},
	"warranty":      {"гарантия", "warranty"},
	"availability":  {"наличие", "availability"},
}

// ColumnBinding maps canonical field names to the row keys that hold them.
type ColumnBinding map[string]string

// BindColumns sniffs spreadsheet headers: for each field, the first header in
// header order whose name matches a synonym wins; later candidate columns are
// ignored. Row keys are expected lower-cased, the way the file decoders
// produce them.
func BindColumns(headers []string) ColumnBinding {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	binding := make(ColumnBinding, len(boundFields))
	for _, field := range boundFields {
		for _, h := range lowered {
			if h == "" || h == models.RowNumberKey {
				continue
			}
			if containsAny(h, fieldSynonyms[field]) {
				binding[field] = h
				break
			}
		}
	}
	return binding
}

// CanonicalBinding covers JSON and scraped sources, whose rows already carry
// canonical field names as keys.
func CanonicalBinding() ColumnBinding {
	binding := make(ColumnBinding, len(boundFields))
	for _, field := range boundFields {
		binding[field] = field
	}
	return binding
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// Normalize coerces a loosely-typed decoded row into a strict product record.
// Name and SKU are mandatory identity fields; a row missing either is
// rejected. Malformed numeric cells coerce to zero, never to an error.
func Normalize(row models.ImportRow, binding ColumnBinding) (*models.NormalizedProduct, error) {
	rowNum, _ := strconv.Atoi(row[models.RowNumberKey])

	name := strings.TrimSpace(row[binding["name"]])
	if name == "" {
		return nil, &RejectedRowError{Row: rowNum, Field: "name"}
	}

	sku := strings.TrimSpace(row[binding["sku"]])
	if sku == "" {
		return nil, &RejectedRowError{Row: rowNum, Field: "sku"}
	}

	rec := &models.NormalizedProduct{
		RowNum:        rowNum,
		Name:          name,
		SKU:           sku,
		Price:         ParsePrice(row[binding["price"]]),
		Stock:         parseStock(row[binding["stock"]]),
		CategoryLabel: strings.TrimSpace(row[binding["category"]]),
	}

	if v := strings.TrimSpace(row[binding["originalprice"]]); v != "" {
		price := ParsePrice(v)
		rec.OriginalPrice = &price
	}
	if v := strings.TrimSpace(row[binding["description"]]); v != "" {
		rec.Description = &v
	}
	if v := strings.TrimSpace(row[binding["image"]]); v != "" {
		rec.ImageURL = &v
	}
	if v := strings.TrimSpace(row[binding["supplier"]]); v != "" {
		rec.Supplier = &v
	}
	if v := strings.TrimSpace(row[binding["featured"]]); v != "" {
		featured := parseFlag(v)
		rec.IsFeatured = &featured
	}

	for _, attr := range []string{"brand", "model", "warranty", "availability"} {
		if v := strings.TrimSpace(row[binding[attr]]); v != "" {
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]string)
			}
			rec.Attributes[attr] = v
		}
	}

	return rec, nil
}

// ParsePrice coerces a price-like cell into a canonical decimal string.
// Currency symbols, spaces and thousands separators are stripped before
// parsing; "1 234,56 ₽" becomes "1234.56". Anything unparsable becomes
// "0.00" - a malformed price cell must never fail a row.
func ParsePrice(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.Contains(cleaned, ".") && strings.Contains(cleaned, ","):
		// Both separators present: the last one is the decimal point, the
		// other groups thousands. Covers "1,234.56" and "1.234,56" alike.
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		// "1,234,567" style grouping leaves multiple dots; treat all as grouping.
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	default:
		if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero.StringFixed(2)
	}
	return d.StringFixed(2)
}

func parseFlag(raw string) bool {
	switch strings.ToLower(raw) {
	case "true", "1", "да", "yes", "y":
		return true
	}
	return false
}

func parseStock(raw string) int {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
