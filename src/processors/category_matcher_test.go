// backend/src/processors/category_matcher_test.go
package processors

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
	"github.com/username/budgetvisor/backend/src/parsers/budgetspec"
)

const matcherDocument = `
income:
  - source: Salary
    amount: 5000
expenses:
  - category: Housing
    amount: 1500
    subcategories:
      - category: Rent
        amount: 1200
      - category: Utilities
        amount: 300
  - category: Food
    amount: 600
    subcategories:
      - category: Groceries
        amount: 400
      - category: Utilities
        amount: 50
`

func testBudget(t *testing.T) *models.Budget {
	t.Helper()
	budget, err := parseTestDocument(matcherDocument)
	if err != nil {
		t.Fatalf("failed to build budget: %v", err)
	}
	return budget
}

func parseTestDocument(doc string) (*models.Budget, error) {
	return budgetspec.Parse([]byte(doc))
}

func record(label string) models.ActualRecord {
	return models.ActualRecord{
		RawLabel: label,
		Amount:   decimal.NewFromInt(10),
		Date:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Source:   "simplifi",
	}
}

func TestMatchExact(t *testing.T) {
	matcher := NewCategoryMatcher(testBudget(t), nil, nil)

	tests := []struct {
		label    string
		wantPath string
	}{
		{"Groceries", "Expenses/Food/Groceries"},
		{"groceries", "Expenses/Food/Groceries"},
		{"  GROCERIES  ", "Expenses/Food/Groceries"},
		{"Salary", "Income/Salary"},
	}
	for _, tt := range tests {
		result := matcher.MatchOne(record(tt.label))
		if result.Confidence != models.ConfidenceExact {
			t.Errorf("MatchOne(%q) confidence = %q, want EXACT", tt.label, result.Confidence)
		}
		if result.MatchedPath != tt.wantPath {
			t.Errorf("MatchOne(%q) path = %q, want %q", tt.label, result.MatchedPath, tt.wantPath)
		}
	}
}

func TestMatchFirstPreOrderHitWins(t *testing.T) {
	// Utilities appears under both Housing and Food; the first node in the
	// tree's pre-order traversal takes the match.
	matcher := NewCategoryMatcher(testBudget(t), nil, nil)
	result := matcher.MatchOne(record("Utilities"))
	if result.MatchedPath != "Expenses/Housing/Utilities" {
		t.Errorf("ambiguous label matched %q, want Expenses/Housing/Utilities", result.MatchedPath)
	}
}

func TestMatchUnmatched(t *testing.T) {
	matcher := NewCategoryMatcher(testBudget(t), nil, nil)
	result := matcher.MatchOne(record("Crypto Winnings"))
	if result.Matched() {
		t.Fatalf("unknown label should not match, got %q", result.MatchedPath)
	}
	if result.Confidence != models.ConfidenceNone {
		t.Errorf("confidence = %q, want NONE", result.Confidence)
	}
}

func TestMatchAlias(t *testing.T) {
	mappings := []models.CategoryMapping{
		{ActualLabel: "WholeFoods Market", BudgetCategory: "Groceries"},
	}
	matcher := NewCategoryMatcher(testBudget(t), mappings, nil)

	result := matcher.MatchOne(record("wholefoods   market"))
	if result.Confidence != models.ConfidenceAlias {
		t.Errorf("confidence = %q, want ALIAS", result.Confidence)
	}
	if result.MatchedPath != "Expenses/Food/Groceries" {
		t.Errorf("path = %q, want Expenses/Food/Groceries", result.MatchedPath)
	}
}

func TestMatchAliasToUnknownCategory(t *testing.T) {
	mappings := []models.CategoryMapping{
		{ActualLabel: "Gym", BudgetCategory: "Fitness"},
	}
	matcher := NewCategoryMatcher(testBudget(t), mappings, nil)
	if result := matcher.MatchOne(record("Gym")); result.Matched() {
		t.Errorf("mapping to a category missing from the tree matched %q", result.MatchedPath)
	}
}

func TestMatchExactBeatsAlias(t *testing.T) {
	// A saved mapping never overrides an exact name hit.
	mappings := []models.CategoryMapping{
		{ActualLabel: "Groceries", BudgetCategory: "Rent"},
	}
	matcher := NewCategoryMatcher(testBudget(t), mappings, nil)
	result := matcher.MatchOne(record("Groceries"))
	if result.Confidence != models.ConfidenceExact || result.MatchedPath != "Expenses/Food/Groceries" {
		t.Errorf("got %q at %q, want EXACT at Expenses/Food/Groceries", result.Confidence, result.MatchedPath)
	}
}

func TestSubstringStrategy(t *testing.T) {
	matcher := NewCategoryMatcher(testBudget(t), nil, SubstringStrategy{})

	tests := []struct {
		label    string
		wantPath string
	}{
		{"Groceries Store #42", "Expenses/Food/Groceries"},
		{"monthly rent payment", "Expenses/Housing/Rent"},
	}
	for _, tt := range tests {
		result := matcher.MatchOne(record(tt.label))
		if result.MatchedPath != tt.wantPath {
			t.Errorf("MatchOne(%q) path = %q, want %q", tt.label, result.MatchedPath, tt.wantPath)
		}
		if result.Confidence != models.ConfidenceAlias {
			t.Errorf("MatchOne(%q) confidence = %q, want ALIAS", tt.label, result.Confidence)
		}
	}
}

func TestSubstringStrategyMinLength(t *testing.T) {
	strategy := SubstringStrategy{MinLength: 6}
	matcher := NewCategoryMatcher(testBudget(t), nil, strategy)

	// "rent payment" contains "rent" but the name is below the length floor.
	if result := matcher.MatchOne(record("rent payment")); result.Matched() {
		t.Errorf("short name should be excluded, got %q", result.MatchedPath)
	}
	if result := matcher.MatchOne(record("Groceries Store")); !result.Matched() {
		t.Error("long name should still substring-match")
	}
}

func TestMatchNeverReturnsSyntheticRoot(t *testing.T) {
	matcher := NewCategoryMatcher(testBudget(t), nil, SubstringStrategy{})
	for _, label := range []string{"Income", "Expenses"} {
		result := matcher.MatchOne(record(label))
		if result.Matched() {
			node := testBudget(t).FindByPath(result.MatchedPath)
			if node != nil && node.IsSynthetic {
				t.Errorf("label %q matched synthetic root %q", label, result.MatchedPath)
			}
		}
	}
}

func TestMatchPreservesInputOrder(t *testing.T) {
	matcher := NewCategoryMatcher(testBudget(t), nil, nil)
	records := []models.ActualRecord{record("Rent"), record("Unknown"), record("Groceries")}
	results := matcher.Match(records)
	if len(results) != len(records) {
		t.Fatalf("Match() returned %d results, want %d", len(results), len(records))
	}
	for i := range records {
		if results[i].Record.RawLabel != records[i].RawLabel {
			t.Errorf("result %d is for %q, want %q", i, results[i].Record.RawLabel, records[i].RawLabel)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Groceries", "groceries"},
		{"  Dining   Out ", "dining out"},
		{"MIXED Case\tLabel", "mixed case label"},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
