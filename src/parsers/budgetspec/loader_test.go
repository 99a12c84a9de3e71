// backend/src/parsers/budgetspec/loader_test.go
package budgetspec

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
)

const sampleDocument = `
income:
  - source: Salary
    amount: 5000
  - source: Freelance
    amount: 800
expenses:
  - category: Housing
    amount: 1500
    subcategories:
      - category: Rent
        amount: 1200
      - category: Insurance
        amount: INHERITED
  - category: Food
    amount: 600
    subcategories:
      - category: Groceries
        amount: 400
      - category: Dining Out
        amount: 200
`

func mustParse(t *testing.T, doc string) *models.Budget {
	t.Helper()
	budget, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return budget
}

func amountAt(t *testing.T, b *models.Budget, path string) decimal.Decimal {
	t.Helper()
	node := b.FindByPath(path)
	if node == nil {
		t.Fatalf("node %q not found", path)
	}
	return node.PlannedAmount
}

func TestParseResolvesTree(t *testing.T) {
	budget := mustParse(t, sampleDocument)

	tests := []struct {
		path string
		want string
	}{
		{"Income", "5800"},
		{"Income/Salary", "5000"},
		{"Income/Freelance", "800"},
		{"Expenses", "2100"},
		{"Expenses/Housing", "1500"},
		{"Expenses/Housing/Rent", "1200"},
		{"Expenses/Housing/Insurance", "1500"}, // INHERITED from Housing
		{"Expenses/Food/Dining Out", "200"},
	}
	for _, tt := range tests {
		got := amountAt(t, budget, tt.path)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("amount at %q = %s, want %s", tt.path, got, tt.want)
		}
	}

	insurance := budget.FindByPath("Expenses/Housing/Insurance")
	if !insurance.IsInherited {
		t.Error("Insurance should keep its inherited flag after resolution")
	}
	if budget.FindByPath("Expenses/Housing/Rent").IsInherited {
		t.Error("Rent should not be flagged inherited")
	}
}

func TestParseInheritanceChain(t *testing.T) {
	budget := mustParse(t, `
expenses:
  - category: Transport
    amount: 300
    subcategories:
      - category: Car
        amount: INHERITED
        subcategories:
          - category: Fuel
            amount: INHERITED
`)
	if got := amountAt(t, budget, "Expenses/Transport/Car/Fuel"); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Fuel inherited amount = %s, want 300", got)
	}
}

func TestParseSyntheticRoots(t *testing.T) {
	budget := mustParse(t, sampleDocument)
	for _, root := range budget.Roots() {
		if !root.IsSynthetic {
			t.Errorf("root %q should be synthetic", root.Name)
		}
		if root.Depth != 0 {
			t.Errorf("root %q depth = %d, want 0", root.Name, root.Depth)
		}
	}
	if got := budget.IncomeRoot.Kind; got != models.KindIncome {
		t.Errorf("income root kind = %q", got)
	}
	if got := budget.ExpenseRoot.Kind; got != models.KindExpense {
		t.Errorf("expense root kind = %q", got)
	}
}

func TestParsePreservesDeclarationOrder(t *testing.T) {
	budget := mustParse(t, sampleDocument)
	var names []string
	budget.ExpenseRoot.Walk(func(n *models.CategoryNode) {
		names = append(names, n.Name)
	})
	want := []string{"Expenses", "Housing", "Rent", "Insurance", "Food", "Groceries", "Dining Out"}
	if len(names) != len(want) {
		t.Fatalf("walk order = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", names, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantSub string
	}{
		{
			name:    "empty document",
			doc:     "income: []\nexpenses: []\n",
			wantSub: "no income or expenses",
		},
		{
			name:    "invalid yaml",
			doc:     "expenses: [",
			wantSub: "invalid YAML",
		},
		{
			name:    "missing amount",
			doc:     "expenses:\n  - category: Housing\n",
			wantSub: "missing required amount",
		},
		{
			name:    "missing name",
			doc:     "expenses:\n  - amount: 100\n",
			wantSub: "missing a category/source name",
		},
		{
			name:    "negative amount",
			doc:     "expenses:\n  - category: Housing\n    amount: -10\n",
			wantSub: "non-negative",
		},
		{
			name:    "non-numeric amount",
			doc:     "expenses:\n  - category: Housing\n    amount: lots\n",
			wantSub: "invalid amount",
		},
		{
			name:    "top-level inherited",
			doc:     "expenses:\n  - category: Housing\n    amount: INHERITED\n",
			wantSub: "top-level",
		},
		{
			name:    "duplicate siblings",
			doc:     "expenses:\n  - category: Housing\n    amount: 100\n  - category: housing\n    amount: 200\n",
			wantSub: "duplicate sibling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("Parse() = %+v, want error containing %q", budget, tt.wantSub)
			}
			if budget != nil {
				t.Error("Parse() returned a partial tree alongside an error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Parse() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestParseDuplicateNamesAllowedAcrossParents(t *testing.T) {
	mustParse(t, `
expenses:
  - category: Home
    amount: 100
    subcategories:
      - category: Insurance
        amount: 50
  - category: Car
    amount: 200
    subcategories:
      - category: Insurance
        amount: 80
`)
}

func TestInheritedMarkerCaseInsensitive(t *testing.T) {
	budget := mustParse(t, `
expenses:
  - category: Housing
    amount: 1500
    subcategories:
      - category: Insurance
        amount: inherited
`)
	if got := amountAt(t, budget, "Expenses/Housing/Insurance"); !got.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("inherited amount = %s, want 1500", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	original := mustParse(t, sampleDocument)

	data, err := Export(original)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	reparsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Export()) error = %v", err)
	}

	originalNodes := original.PreOrder()
	reparsedNodes := reparsed.PreOrder()
	if len(originalNodes) != len(reparsedNodes) {
		t.Fatalf("node count after round trip = %d, want %d", len(reparsedNodes), len(originalNodes))
	}
	for i, want := range originalNodes {
		got := reparsedNodes[i]
		if got.Path != want.Path {
			t.Errorf("node %d path = %q, want %q", i, got.Path, want.Path)
		}
		if !got.PlannedAmount.Equal(want.PlannedAmount) {
			t.Errorf("node %q amount = %s, want %s", got.Path, got.PlannedAmount, want.PlannedAmount)
		}
		if got.IsInherited != want.IsInherited {
			t.Errorf("node %q inherited = %v, want %v", got.Path, got.IsInherited, want.IsInherited)
		}
	}
}
