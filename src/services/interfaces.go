// backend/src/services/interfaces.go
package services

import (
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
)

// UploadResult summarizes one actuals upload: what the parser produced and
// what was stored.
type UploadResult struct {
	Source        string `json:"source"`
	Filename      string `json:"filename"`
	ParsedCount   int    `json:"parsed_count"`
	InsertedCount int    `json:"inserted_count"`
}

// Common service errors.
var (
	ErrParsingFailed = errors.New("export parsing failed")
	ErrNoBudget      = errors.New("no budget loaded for this session")
)

// Cache timings shared by the report cache instance created in main.
const (
	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// BudgetService owns the budget document lifecycle: upload, parse, edit,
// export. The parsed tree is immutable; edits go through the document and a
// full re-parse so the INHERITED resolution invariant always holds.
type BudgetService interface {
	ProcessBudgetUpload(fileReader io.Reader, sessionID string) (*models.Budget, error)
	GetBudget(sessionID string) (*models.Budget, error)
	GetFlatCategories(sessionID string) ([]models.FlatCategoryRow, error)
	ApplyEdits(sessionID string, edits []models.CategoryEdit) (*models.Budget, error)
	ExportDocument(sessionID string) ([]byte, error)
}

// UploadService ingests actuals exports for a session.
type UploadService interface {
	ProcessUpload(fileReader io.Reader, sessionID, source, filename string, filesize int64) (*UploadResult, error)
	GetActuals(sessionID string) ([]models.ActualRecord, error)
	DeleteActuals(sessionID string) (int64, error)
}

// ReportService computes (and caches) the variance pipeline output.
type ReportService interface {
	GetVarianceReport(sessionID string, dateRange models.DateRange) (*models.VarianceReport, error)
	GetSummary(sessionID string, dateRange models.DateRange) (*models.SummaryStats, error)
	GetOverspending(sessionID string, dateRange models.DateRange, thresholdPct decimal.Decimal) ([]models.OverspendingEntry, error)
	GetSavings(sessionID string, dateRange models.DateRange) ([]models.SavingsOpportunity, error)
	InvalidateSessionCache(sessionID string)
}
