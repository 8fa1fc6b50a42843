// Package importer is the catalog synchronization engine: it merges decoded
// product rows from uploaded files and scraped supplier catalogs into the
// canonical category/product store, tolerating per-row failure.
package importer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"catalog-service/internal/metrics"
	"catalog-service/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrEmptyBatch is returned before any per-row processing when a batch
// carries zero decoded rows.
var ErrEmptyBatch = errors.New("import batch contains no rows")

// Importer orchestrates Normalize -> Resolve -> Merge over a whole batch.
type Importer struct {
	categories CategoryStore
	products   ProductStore
	publisher  EventPublisher
	logger     *logrus.Entry
}

func New(categories CategoryStore, products ProductStore, publisher EventPublisher, logger *logrus.Logger) *Importer {
	return &Importer{
		categories: categories,
		products:   products,
		publisher:  publisher,
		logger:     logger.WithField("component", "importer"),
	}
}

// ImportBatch runs one batch to completion. headers carries the source header
// order for spreadsheet formats (nil for JSON and scraped sources, whose rows
// use canonical keys).
//
// Rows are processed strictly sequentially so the per-batch category cache
// and the slug uniqueness probes observe a monotonically growing view of what
// this batch has already created; parallelizing would reintroduce the
// duplicate-category race this engine exists to avoid. A failing row is
// counted and sampled into the error list, and the loop moves on - only an
// empty batch fails the call itself.
func (imp *Importer) ImportBatch(ctx context.Context, headers []string, rows []models.ImportRow, format models.SourceFormat) (*models.ImportResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}
	start := time.Now()

	var binding ColumnBinding
	switch format {
	case models.SourceCSV, models.SourceXLSX:
		binding = BindColumns(headers)
	default:
		binding = CanonicalBinding()
	}

	resolver := NewCategoryResolver(imp.categories, imp.publisher, imp.logger)
	merger := NewUpsertMerger(imp.products)

	result := &models.ImportResult{
		TotalRows: len(rows),
		Errors:    make([]models.ImportRowError, 0),
	}

	for _, row := range rows {
		outcome, err := imp.processRow(ctx, row, binding, resolver, merger)
		if err != nil {
			result.FailedCount++
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			imp.recordError(result, row, err)
			continue
		}
		switch outcome {
		case MergeInserted:
			result.InsertedCount++
		case MergeUpdated:
			result.UpdatedCount++
		}
		metrics.ImportRowsTotal.WithLabelValues(string(outcome)).Inc()
	}

	result.SuccessCount = result.InsertedCount + result.UpdatedCount
	result.Success = result.SuccessCount > 0
	result.ProcessingMs = time.Since(start).Milliseconds()
	metrics.ImportBatchesTotal.WithLabelValues(string(format)).Inc()

	imp.logger.WithFields(logrus.Fields{
		"format":   format,
		"total":    result.TotalRows,
		"inserted": result.InsertedCount,
		"updated":  result.UpdatedCount,
		"failed":   result.FailedCount,
		"ms":       result.ProcessingMs,
	}).Info("import batch completed")

	if imp.publisher != nil {
		imp.publisher.PublishImportCompleted(ctx, format, result)
	}

	return result, nil
}

func (imp *Importer) processRow(ctx context.Context, row models.ImportRow, binding ColumnBinding, resolver *CategoryResolver, merger *UpsertMerger) (MergeOutcome, error) {
	rec, err := Normalize(row, binding)
	if err != nil {
		return "", err
	}

	categoryID, err := resolver.Resolve(ctx, rec.CategoryLabel)
	if err != nil {
		return "", err
	}

	return merger.Merge(ctx, rec, categoryID)
}

// recordError appends a sampled row error. Rows past the cap still count as
// failed; only their messages are dropped to bound the response payload.
func (imp *Importer) recordError(result *models.ImportResult, row models.ImportRow, err error) {
	if len(result.Errors) >= models.MaxSampledErrors {
		return
	}

	rowNum, _ := strconv.Atoi(row[models.RowNumberKey])
	rowErr := models.ImportRowError{
		Row:     rowNum,
		Code:    "PERSISTENCE_ERROR",
		Message: err.Error(),
	}

	var rejected *RejectedRowError
	if errors.As(err, &rejected) {
		rowErr.Code = "REJECTED_ROW"
		rowErr.Column = rejected.Field
	}

	result.Errors = append(result.Errors, rowErr)
}
