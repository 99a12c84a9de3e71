// backend/src/processors/variance_engine.go
package processors

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
)

// hundred scales the variance ratio into a percentage.
var hundred = decimal.NewFromInt(100)

// VarianceEngine aggregates matched actuals over a date range and computes
// planned vs. actual vs. variance at every tree level. It is a pure
// computation: the same inputs always produce the identical report.
type VarianceEngine struct{}

func NewVarianceEngine() *VarianceEngine {
	return &VarianceEngine{}
}

// ComputeVariance filters results to the inclusive date range, sums direct
// matches per node, then rolls actuals up bottom-up so every non-leaf's
// actual equals its own matched records plus all descendants' actuals — no
// double counting, no omission. Rows come back in tree pre-order. Unmatched
// records within the range are listed separately with their aggregate total;
// they never leak into any category.
func (e *VarianceEngine) ComputeVariance(budget *models.Budget, results []models.MatchResult, dateRange models.DateRange) *models.VarianceReport {
	directTotals := make(map[string]decimal.Decimal)
	directCounts := make(map[string]int)
	unclassified := decimal.Zero
	var unmatched []models.ActualRecord

	for _, result := range results {
		if !dateRange.Contains(result.Record.Date) {
			continue
		}
		if !result.Matched() {
			unclassified = unclassified.Add(result.Record.Amount)
			unmatched = append(unmatched, result.Record)
			continue
		}
		directTotals[result.MatchedPath] = directTotals[result.MatchedPath].Add(result.Record.Amount)
		directCounts[result.MatchedPath]++
	}

	// Bottom-up rollup. WalkPost guarantees children are computed first.
	actuals := make(map[string]decimal.Decimal)
	for _, root := range budget.Roots() {
		root.WalkPost(func(n *models.CategoryNode) {
			total := directTotals[n.Path]
			for _, child := range n.Children {
				total = total.Add(actuals[child.Path])
			}
			actuals[n.Path] = total
		})
	}

	var rows []models.VarianceRow
	for _, node := range budget.PreOrder() {
		actual := actuals[node.Path]
		variance := actual.Sub(node.PlannedAmount)
		row := models.VarianceRow{
			Path:        node.Path,
			Name:        node.Name,
			Kind:        node.Kind,
			Depth:       node.Depth,
			IsSynthetic: node.IsSynthetic,
			Planned:     node.PlannedAmount,
			Actual:      actual,
			Variance:    variance,
			MatchCount:  directCounts[node.Path],
		}
		if node.PlannedAmount.IsZero() {
			// Division has no meaning here; the flag is the sentinel, never a
			// division fault.
			row.PctUndefined = true
		} else {
			row.VariancePct = variance.Div(node.PlannedAmount).Mul(hundred).Round(2)
		}
		rows = append(rows, row)
	}

	return &models.VarianceReport{
		Rows:              rows,
		UnclassifiedTotal: unclassified,
		Unmatched:         unmatched,
		Range:             dateRange,
		GeneratedAt:       time.Now().UTC(),
	}
}

// ComputeSummary produces the dashboard headline numbers. Planned amounts are
// monthly, so budgeted totals scale by the number of calendar months the
// range spans; actual totals come from the kind-root rows of a variance
// computation over the same inputs.
func (e *VarianceEngine) ComputeSummary(budget *models.Budget, results []models.MatchResult, dateRange models.DateRange) models.SummaryStats {
	report := e.ComputeVariance(budget, results, dateRange)
	months := decimal.NewFromInt(int64(dateRange.Months()))

	stats := models.SummaryStats{
		TotalBudgetedIncome:   budget.TotalIncome().Mul(months),
		TotalBudgetedExpenses: budget.TotalExpenses().Mul(months),
		Months:                dateRange.Months(),
	}
	stats.BudgetedNet = stats.TotalBudgetedIncome.Sub(stats.TotalBudgetedExpenses)

	for _, row := range report.Rows {
		if !row.IsSynthetic {
			continue
		}
		switch row.Kind {
		case models.KindIncome:
			stats.TotalActualIncome = row.Actual
		case models.KindExpense:
			stats.TotalActualExpenses = row.Actual
		}
	}
	stats.ActualNet = stats.TotalActualIncome.Sub(stats.TotalActualExpenses)
	return stats
}

// IdentifyOverspending returns the non-synthetic categories whose variance
// percentage exceeds the threshold, in tree order. Categories with zero plan
// and any spending always qualify: they are over budget without bound.
func (e *VarianceEngine) IdentifyOverspending(report *models.VarianceReport, thresholdPct decimal.Decimal) []models.OverspendingEntry {
	var entries []models.OverspendingEntry
	for _, row := range report.Rows {
		if row.IsSynthetic || row.Kind != models.KindExpense {
			continue
		}
		over := false
		if row.PctUndefined {
			over = row.Actual.IsPositive()
		} else {
			over = row.VariancePct.GreaterThan(thresholdPct)
		}
		if over {
			entries = append(entries, models.OverspendingEntry{
				Path:        row.Path,
				Category:    row.Name,
				Planned:     row.Planned,
				Actual:      row.Actual,
				VariancePct: row.VariancePct,
			})
		}
	}
	return entries
}

// FindSavingsOpportunities returns expense categories spending under plan,
// with the remaining headroom.
func (e *VarianceEngine) FindSavingsOpportunities(report *models.VarianceReport) []models.SavingsOpportunity {
	var opportunities []models.SavingsOpportunity
	for _, row := range report.Rows {
		if row.IsSynthetic || row.Kind != models.KindExpense {
			continue
		}
		if row.Variance.IsNegative() {
			opportunities = append(opportunities, models.SavingsOpportunity{
				Path:             row.Path,
				Category:         row.Name,
				PotentialSavings: row.Variance.Abs(),
				CurrentSpending:  row.Actual,
			})
		}
	}
	return opportunities
}
