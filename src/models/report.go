// backend/src/models/report.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds a report computation. Zero values mean unbounded on that
// side; bounds are inclusive.
type DateRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// Contains reports whether d falls within the range, inclusive of both
// bounds. An unbounded side always passes.
func (r DateRange) Contains(d time.Time) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

// IsZero reports whether no bounds are set.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Months counts the calendar months the range spans, minimum 1. An unbounded
// range counts as a single month so monthly planned amounts are never scaled
// by accident.
func (r DateRange) Months() int {
	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return 1
	}
	months := (r.End.Year()-r.Start.Year())*12 + int(r.End.Month()) - int(r.Start.Month()) + 1
	if months < 1 {
		return 1
	}
	return months
}

// VarianceRow is one reporting line, one per budget node, in tree pre-order.
// Actual is the node's directly matched amounts within the range plus the
// actuals of all descendants (strict bottom-up aggregation).
type VarianceRow struct {
	Path         string          `json:"path"`
	Name         string          `json:"name"`
	Kind         CategoryKind    `json:"kind"`
	Depth        int             `json:"depth"`
	IsSynthetic  bool            `json:"is_synthetic,omitempty"`
	Planned      decimal.Decimal `json:"planned"`
	Actual       decimal.Decimal `json:"actual"`
	Variance     decimal.Decimal `json:"variance"` // actual - planned
	VariancePct  decimal.Decimal `json:"variance_pct"`
	PctUndefined bool            `json:"pct_undefined"` // planned == 0: pct has no meaning
	MatchCount   int             `json:"match_count"`   // records matched directly to this node
}

// VarianceReport is the immutable snapshot handed to the presentation layer:
// one row per node, the unclassified remainder, and the unmatched records
// for manual review. It is recomputed fully on every call.
type VarianceReport struct {
	Rows              []VarianceRow   `json:"rows"`
	UnclassifiedTotal decimal.Decimal `json:"unclassified_total"`
	Unmatched         []ActualRecord  `json:"unmatched"`
	Range             DateRange       `json:"range"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// SummaryStats are the headline numbers for the dashboard. Budgeted totals
// are monthly amounts scaled by the number of months the range spans.
type SummaryStats struct {
	TotalBudgetedIncome   decimal.Decimal `json:"total_budgeted_income"`
	TotalBudgetedExpenses decimal.Decimal `json:"total_budgeted_expenses"`
	BudgetedNet           decimal.Decimal `json:"budgeted_net"`
	TotalActualIncome     decimal.Decimal `json:"total_actual_income"`
	TotalActualExpenses   decimal.Decimal `json:"total_actual_expenses"`
	ActualNet             decimal.Decimal `json:"actual_net"`
	Months                int             `json:"months"`
}

// OverspendingEntry flags a category whose actual spend exceeds plan by more
// than the caller's threshold percentage.
type OverspendingEntry struct {
	Path        string          `json:"path"`
	Category    string          `json:"category"`
	Planned     decimal.Decimal `json:"planned"`
	Actual      decimal.Decimal `json:"actual"`
	VariancePct decimal.Decimal `json:"variance_pct"`
}

// SavingsOpportunity is a category spending under plan, with the headroom
// still available.
type SavingsOpportunity struct {
	Path             string          `json:"path"`
	Category         string          `json:"category"`
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	CurrentSpending  decimal.Decimal `json:"current_spending"`
}
