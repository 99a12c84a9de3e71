// backend/src/models/budget_test.go
package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

// buildBudget assembles a small two-kind tree by hand, the shape the document
// parser produces.
func buildBudget() *Budget {
	rent := &CategoryNode{Name: "Rent", Kind: KindExpense, PlannedAmount: decimal.NewFromInt(1200), Path: "Expenses/Housing/Rent", Depth: 2}
	insurance := &CategoryNode{Name: "Insurance", Kind: KindExpense, PlannedAmount: decimal.NewFromInt(1500), IsInherited: true, Path: "Expenses/Housing/Insurance", Depth: 2}
	housing := &CategoryNode{Name: "Housing", Kind: KindExpense, PlannedAmount: decimal.NewFromInt(1500), Path: "Expenses/Housing", Depth: 1, Children: []*CategoryNode{rent, insurance}}
	expenseRoot := &CategoryNode{Name: "Expenses", Kind: KindExpense, PlannedAmount: decimal.NewFromInt(1500), IsSynthetic: true, Path: "Expenses", Depth: 0, Children: []*CategoryNode{housing}}

	salary := &CategoryNode{Name: "Salary", Kind: KindIncome, PlannedAmount: decimal.NewFromInt(5000), Path: "Income/Salary", Depth: 1}
	incomeRoot := &CategoryNode{Name: "Income", Kind: KindIncome, PlannedAmount: decimal.NewFromInt(5000), IsSynthetic: true, Path: "Income", Depth: 0, Children: []*CategoryNode{salary}}

	return &Budget{IncomeRoot: incomeRoot, ExpenseRoot: expenseRoot}
}

func TestPreOrder(t *testing.T) {
	budget := buildBudget()
	var paths []string
	for _, n := range budget.PreOrder() {
		paths = append(paths, n.Path)
	}
	want := []string{"Income", "Income/Salary", "Expenses", "Expenses/Housing", "Expenses/Housing/Rent", "Expenses/Housing/Insurance"}
	if len(paths) != len(want) {
		t.Fatalf("PreOrder() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("PreOrder() = %v, want %v", paths, want)
		}
	}
}

func TestWalkPostVisitsChildrenFirst(t *testing.T) {
	budget := buildBudget()
	seen := make(map[string]bool)
	budget.ExpenseRoot.WalkPost(func(n *CategoryNode) {
		for _, child := range n.Children {
			if !seen[child.Path] {
				t.Errorf("visited %q before its child %q", n.Path, child.Path)
			}
		}
		seen[n.Path] = true
	})
}

func TestFindByPath(t *testing.T) {
	budget := buildBudget()
	if n := budget.FindByPath("Expenses/Housing/Rent"); n == nil || n.Name != "Rent" {
		t.Errorf("FindByPath(Rent) = %+v", n)
	}
	if n := budget.FindByPath("Income/Salary"); n == nil || n.Kind != KindIncome {
		t.Errorf("FindByPath(Salary) = %+v", n)
	}
	if n := budget.FindByPath("Expenses/Nowhere"); n != nil {
		t.Errorf("FindByPath(unknown) = %+v, want nil", n)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	budget := buildBudget()
	clone := budget.Clone()

	node := clone.FindByPath("Expenses/Housing/Rent")
	node.PlannedAmount = decimal.NewFromInt(9999)
	node.IsInherited = true

	original := budget.FindByPath("Expenses/Housing/Rent")
	if !original.PlannedAmount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("mutating the clone changed the original amount: %s", original.PlannedAmount)
	}
	if original.IsInherited {
		t.Error("mutating the clone changed the original inherited flag")
	}

	if len(clone.PreOrder()) != len(budget.PreOrder()) {
		t.Error("clone has a different node count")
	}
}

func TestTotals(t *testing.T) {
	budget := buildBudget()
	if !budget.TotalIncome().Equal(decimal.NewFromInt(5000)) {
		t.Errorf("TotalIncome() = %s", budget.TotalIncome())
	}
	if !budget.TotalExpenses().Equal(decimal.NewFromInt(1500)) {
		t.Errorf("TotalExpenses() = %s", budget.TotalExpenses())
	}
	if !budget.Net().Equal(decimal.NewFromInt(3500)) {
		t.Errorf("Net() = %s", budget.Net())
	}
}

func TestFlatten(t *testing.T) {
	budget := buildBudget()
	rows := budget.Flatten()

	if len(rows) != 4 {
		t.Fatalf("Flatten() = %d rows, want 4 (synthetic roots skipped)", len(rows))
	}
	for _, row := range rows {
		if row.Category == "Income" || row.Category == "Expenses" {
			t.Errorf("synthetic root %q leaked into editor rows", row.Category)
		}
	}

	byID := make(map[string]FlatCategoryRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	housing := byID["Expenses/Housing"]
	if housing.Level != 0 || !housing.IsTopLevel || housing.ParentID != "" {
		t.Errorf("Housing row = %+v, want top-level with no parent", housing)
	}
	rent := byID["Expenses/Housing/Rent"]
	if rent.Level != 1 || rent.IsTopLevel || rent.ParentID != "Expenses/Housing" {
		t.Errorf("Rent row = %+v, want level 1 under Expenses/Housing", rent)
	}
	salary := byID["Income/Salary"]
	if !salary.IsIncome {
		t.Error("Salary row should be flagged as income")
	}
	insurance := byID["Expenses/Housing/Insurance"]
	if !insurance.Inherited {
		t.Error("Insurance row should carry its inherited flag")
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath("Expenses", "Housing", "Rent"); got != "Expenses/Housing/Rent" {
		t.Errorf("JoinPath() = %q", got)
	}
}
