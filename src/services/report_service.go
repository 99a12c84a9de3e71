// backend/src/services/report_service.go
package services

import (
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/database"
	"github.com/username/budgetvisor/backend/src/logger"
	"github.com/username/budgetvisor/backend/src/model"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/processors"
)

const (
	ckVarianceReport = "res_variance_report_session_%s_range_%s"
	ckSummaryStats   = "agg_summary_stats_session_%s_range_%s"
)

type reportServiceImpl struct {
	budgetService BudgetService
	engine        *processors.VarianceEngine
	strategy      processors.MatchStrategy
	reportCache   *cache.Cache
}

// NewReportService creates the report computation service. strategy is the
// fuzzy fallback handed to every matcher; pass nil to restrict matching to
// exact names and saved mappings.
func NewReportService(budgetService BudgetService, strategy processors.MatchStrategy, reportCache *cache.Cache) ReportService {
	return &reportServiceImpl{
		budgetService: budgetService,
		engine:        processors.NewVarianceEngine(),
		strategy:      strategy,
		reportCache:   reportCache,
	}
}

// rangeKey renders a date range into a stable cache key fragment.
func rangeKey(dateRange models.DateRange) string {
	const layout = "2006-01-02"
	start, end := "open", "open"
	if !dateRange.Start.IsZero() {
		start = dateRange.Start.Format(layout)
	}
	if !dateRange.End.IsZero() {
		end = dateRange.End.Format(layout)
	}
	return start + "_" + end
}

// matchSession runs the load → match part of the pipeline for a session.
func (s *reportServiceImpl) matchSession(sessionID string) (*models.Budget, []models.MatchResult, error) {
	budget, err := s.budgetService.GetBudget(sessionID)
	if err != nil {
		return nil, nil, err
	}
	records, err := model.GetActualRecords(database.DB, sessionID)
	if err != nil {
		return nil, nil, err
	}
	mappings, err := model.GetCategoryMappings(database.DB, sessionID)
	if err != nil {
		return nil, nil, err
	}

	matcher := processors.NewCategoryMatcher(budget, mappings, s.strategy)
	return budget, matcher.Match(records), nil
}

func (s *reportServiceImpl) GetVarianceReport(sessionID string, dateRange models.DateRange) (*models.VarianceReport, error) {
	cacheKey := fmt.Sprintf(ckVarianceReport, sessionID, rangeKey(dateRange))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.VarianceReport), nil
	}

	budget, results, err := s.matchSession(sessionID)
	if err != nil {
		return nil, err
	}
	report := s.engine.ComputeVariance(budget, results, dateRange)

	s.reportCache.Set(cacheKey, report, DefaultCacheExpiration)
	logger.L.Debug("Variance report computed", "sessionID", sessionID, "rows", len(report.Rows),
		"unmatched", len(report.Unmatched))
	return report, nil
}

func (s *reportServiceImpl) GetSummary(sessionID string, dateRange models.DateRange) (*models.SummaryStats, error) {
	cacheKey := fmt.Sprintf(ckSummaryStats, sessionID, rangeKey(dateRange))
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(*models.SummaryStats), nil
	}

	budget, results, err := s.matchSession(sessionID)
	if err != nil {
		return nil, err
	}
	stats := s.engine.ComputeSummary(budget, results, dateRange)

	s.reportCache.Set(cacheKey, &stats, DefaultCacheExpiration)
	return &stats, nil
}

func (s *reportServiceImpl) GetOverspending(sessionID string, dateRange models.DateRange, thresholdPct decimal.Decimal) ([]models.OverspendingEntry, error) {
	report, err := s.GetVarianceReport(sessionID, dateRange)
	if err != nil {
		return nil, err
	}
	return s.engine.IdentifyOverspending(report, thresholdPct), nil
}

func (s *reportServiceImpl) GetSavings(sessionID string, dateRange models.DateRange) ([]models.SavingsOpportunity, error) {
	report, err := s.GetVarianceReport(sessionID, dateRange)
	if err != nil {
		return nil, err
	}
	return s.engine.FindSavingsOpportunities(report), nil
}

// InvalidateSessionCache drops every cached report for a session. Called
// after uploads, budget edits and mapping changes.
func (s *reportServiceImpl) InvalidateSessionCache(sessionID string) {
	prefixes := []string{
		fmt.Sprintf("res_variance_report_session_%s_", sessionID),
		fmt.Sprintf("agg_summary_stats_session_%s_", sessionID),
	}
	for key := range s.reportCache.Items() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix) {
				s.reportCache.Delete(key)
			}
		}
	}
}
