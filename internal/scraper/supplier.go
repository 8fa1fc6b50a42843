// Package scraper adapts scraped third-party supplier catalogs into the
// decoded-row shape the import engine consumes.
package scraper

import (
	"strconv"
	"strings"

	"catalog-service/internal/models"
)

// SupplierRecord is one product scraped from a supplier catalog. Brand,
// model, warranty and availability are first-class fields here; older
// scrape dumps packed them into a single delimited Tag, which Rows still
// understands via ParseLegacyTag.
type SupplierRecord struct {
	Supplier      string `json:"supplier"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Category      string `json:"category"`
	Price         string `json:"price"`
	OriginalPrice string `json:"originalPrice,omitempty"`
	Stock         int    `json:"stock"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Model         string `json:"model,omitempty"`
	Warranty      string `json:"warranty,omitempty"`
	Availability  string `json:"availability,omitempty"`

	// Tag is the legacy "supplierId|brand:X|model:Y|warranty:Z|availability:W"
	// encoding still produced by older scrape jobs.
	Tag string `json:"tag,omitempty"`
}

// Rows converts scraped records into canonical import rows, numbering them
// from 1 for error reporting.
func Rows(records []SupplierRecord) []models.ImportRow {
	rows := make([]models.ImportRow, 0, len(records))
	for i, rec := range records {
		rows = append(rows, rec.row(i+1))
	}
	return rows
}

func (r SupplierRecord) row(num int) models.ImportRow {
	supplier := r.Supplier
	attrs := map[string]string{
		"brand":        r.Brand,
		"model":        r.Model,
		"warranty":     r.Warranty,
		"availability": r.Availability,
	}

	if r.Tag != "" {
		legacySupplier, legacyAttrs := ParseLegacyTag(r.Tag)
		if supplier == "" {
			supplier = legacySupplier
		}
		for k, v := range legacyAttrs {
			if attrs[k] == "" {
				attrs[k] = v
			}
		}
	}

	row := models.ImportRow{
		models.RowNumberKey: strconv.Itoa(num),
		"name":              r.Name,
		"sku":               r.SKU,
		"category":          r.Category,
		"price":             r.Price,
		"originalprice":     r.OriginalPrice,
		"stock":             strconv.Itoa(r.Stock),
		"image":             r.ImageURL,
		"supplier":          supplier,
	}
	for k, v := range attrs {
		if v != "" {
			row[k] = v
		}
	}
	return row
}

// ParseLegacyTag unpacks the delimited supplier tag. The first segment is the
// supplier id; the rest are key:value pairs. Malformed segments are dropped
// rather than failing the record.
func ParseLegacyTag(tag string) (string, map[string]string) {
	segments := strings.Split(tag, "|")
	if len(segments) == 0 {
		return "", nil
	}

	supplier := strings.TrimSpace(segments[0])
	attrs := make(map[string]string)
	for _, segment := range segments[1:] {
		key, value, found := strings.Cut(segment, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key != "" && value != "" {
			attrs[key] = value
		}
	}
	return supplier, attrs
}
