// backend/src/services/budget_service.go
package services

import (
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/budgetvisor/backend/src/database"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/model"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/parsers/budgetspec"
)

const ckParsedBudget = "agg_parsed_budget_session_%s"

type budgetServiceImpl struct {
	reportService   ReportService
	budgetCache     *cache.Cache
	defaultDocument []byte
}

// NewBudgetService creates the budget service. reportService may be set
// later via SetReportService to break the construction cycle between the
// two (reports need budgets, budget edits invalidate reports).
func NewBudgetService(budgetCache *cache.Cache) *budgetServiceImpl {
	return &budgetServiceImpl{budgetCache: budgetCache}
}

// SetReportService wires the report cache invalidation hook.
func (s *budgetServiceImpl) SetReportService(reportService ReportService) {
	s.reportService = reportService
}

// SetDefaultDocument installs a budget document served to sessions that have
// not uploaded one yet. The document must already have been validated.
func (s *budgetServiceImpl) SetDefaultDocument(document []byte) {
	s.defaultDocument = document
}

func (s *budgetServiceImpl) ProcessBudgetUpload(fileReader io.Reader, sessionID string) (*models.Budget, error) {
	startTime := time.Now()
	document, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("error reading budget document: %w", err)
	}

	budget, err := budgetspec.Parse(document)
	if err != nil {
		// No partial tree leaves this function; the previous budget stays
		// active until a document parses cleanly.
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	if err := model.UpsertBudgetDocument(database.DB, sessionID, string(document)); err != nil {
		return nil, err
	}

	s.budgetCache.Set(fmt.Sprintf(ckParsedBudget, sessionID), budget, cache.NoExpiration)
	if s.reportService != nil {
		s.reportService.InvalidateSessionCache(sessionID)
	}

	logger.L.Info("Budget upload processed", "sessionID", sessionID,
		"categories", len(budget.PreOrder())-2, "durationMs", time.Since(startTime).Milliseconds())
	return budget, nil
}

func (s *budgetServiceImpl) GetBudget(sessionID string) (*models.Budget, error) {
	cacheKey := fmt.Sprintf(ckParsedBudget, sessionID)
	if cached, found := s.budgetCache.Get(cacheKey); found {
		return cached.(*models.Budget), nil
	}

	document, err := model.GetBudgetDocument(database.DB, sessionID)
	if err != nil {
		if err == model.ErrNoBudget {
			if s.defaultDocument != nil {
				return budgetspec.Parse(s.defaultDocument)
			}
			return nil, ErrNoBudget
		}
		return nil, err
	}

	budget, err := budgetspec.Parse([]byte(document))
	if err != nil {
		// A stored document that no longer parses means a failed migration or
		// manual tampering; surface it rather than hiding the corruption.
		return nil, fmt.Errorf("stored budget document is invalid: %w", err)
	}

	s.budgetCache.Set(cacheKey, budget, cache.NoExpiration)
	return budget, nil
}

func (s *budgetServiceImpl) GetFlatCategories(sessionID string) ([]models.FlatCategoryRow, error) {
	budget, err := s.GetBudget(sessionID)
	if err != nil {
		return nil, err
	}
	return budget.Flatten(), nil
}

// ApplyEdits applies editor changes to the stored document and re-parses it.
// The whole batch is validated together: one bad edit (negative amount,
// INHERITED on a top-level category, unknown path) rejects everything and
// the stored budget is untouched.
func (s *budgetServiceImpl) ApplyEdits(sessionID string, edits []models.CategoryEdit) (*models.Budget, error) {
	current, err := s.GetBudget(sessionID)
	if err != nil {
		return nil, err
	}

	// Work on a clone of the current tree, then round-trip through the
	// document format so resolution order and validation run exactly as on
	// upload. The cached tree stays untouched until the batch validates.
	budget := current.Clone()
	changed := false
	for _, edit := range edits {
		node := budget.FindByPath(edit.ID)
		if node == nil {
			return nil, fmt.Errorf("%w: unknown category %q", ErrParsingFailed, edit.ID)
		}
		if edit.Inherited {
			if !node.IsInherited {
				node.IsInherited = true
				changed = true
			}
			continue
		}
		if edit.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount for %q must be non-negative", ErrParsingFailed, edit.ID)
		}
		if node.IsInherited || !node.PlannedAmount.Equal(edit.Amount) {
			node.IsInherited = false
			node.PlannedAmount = edit.Amount
			changed = true
		}
	}
	if !changed {
		return budget, nil
	}

	document, err := budgetspec.Export(budget)
	if err != nil {
		return nil, fmt.Errorf("error serializing edited budget: %w", err)
	}
	reparsed, err := budgetspec.Parse(document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	if err := model.UpsertBudgetDocument(database.DB, sessionID, string(document)); err != nil {
		return nil, err
	}
	s.budgetCache.Set(fmt.Sprintf(ckParsedBudget, sessionID), reparsed, cache.NoExpiration)
	if s.reportService != nil {
		s.reportService.InvalidateSessionCache(sessionID)
	}

	logger.L.Info("Budget edits applied", "sessionID", sessionID, "edits", len(edits))
	return reparsed, nil
}

func (s *budgetServiceImpl) ExportDocument(sessionID string) ([]byte, error) {
	budget, err := s.GetBudget(sessionID)
	if err != nil {
		return nil, err
	}
	return budgetspec.Export(budget)
}
