package models

// SourceFormat identifies where a batch of decoded rows came from. Spreadsheet
// sources carry free-form headers that need sniffing; JSON and scraped sources
// arrive with canonical keys.
type SourceFormat string

const (
	SourceCSV    SourceFormat = "csv"
	SourceXLSX   SourceFormat = "xlsx"
	SourceJSON   SourceFormat = "json"
	SourceScrape SourceFormat = "scrape"
)

// RowNumberKey is the reserved key carrying the 1-based source row number
// through a decoded row, used for error reporting.
const RowNumberKey = "_row"

// MaxSampledErrors caps the error list attached to an import result. Rows past
// the cap still count as failed, only their messages are dropped.
const MaxSampledErrors = 10

// ImportRow is one decoded source row: header (or canonical field name) to
// raw cell value.
type ImportRow map[string]string

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the outcome of one import batch. It is transient:
// returned to the caller and discarded, no audit history is kept.
type ImportResult struct {
	Success       bool             `json:"success"`
	TotalRows     int              `json:"totalRows"`
	SuccessCount  int              `json:"successCount"`
	InsertedCount int              `json:"insertedCount"`
	UpdatedCount  int              `json:"updatedCount"`
	FailedCount   int              `json:"failedCount"`
	Errors        []ImportRowError `json:"errors,omitempty"`
	ProcessingMs  int64            `json:"processingMs"`
}

// NormalizedProduct is a source row coerced into a strict record, ready for
// category resolution and merging. Rows that cannot produce one are rejected
// at the normalizer boundary and never reach the merger.
type NormalizedProduct struct {
	RowNum        int
	Name          string
	SKU           string
	Description   *string
	Price         string
	OriginalPrice *string
	Stock         int
	CategoryLabel string
	ImageURL      *string
	Supplier      *string
	Attributes    map[string]string

	// IsFeatured is nil when the source carried no featured column. The
	// merger must not touch the stored flag in that case: featuring is
	// back-office curation, and a supplier file that cannot express it
	// must never reset it.
	IsFeatured *bool
}
