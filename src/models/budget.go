// backend/src/models/budget.go
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CategoryKind tags a budget node as income or expense.
type CategoryKind string

const (
	KindIncome  CategoryKind = "INCOME"
	KindExpense CategoryKind = "EXPENSE"
)

// CategoryNode is one line of the budget hierarchy. The tree is built once by
// the budget parser and is read-only afterwards; a new upload replaces it
// wholesale. Children keep their declaration order from the source document.
type CategoryNode struct {
	Name          string          `json:"name"`
	Kind          CategoryKind    `json:"kind"`
	PlannedAmount decimal.Decimal `json:"planned_amount"`
	IsInherited   bool            `json:"is_inherited"`
	IsSynthetic   bool            `json:"is_synthetic,omitempty"` // true only for the kind roots
	Path          string          `json:"path"`                   // e.g. "Expenses/Housing/Rent"
	Depth         int             `json:"depth"`                  // kind roots are depth 0
	Children      []*CategoryNode `json:"children,omitempty"`
}

// PathSeparator joins node names into stable path identifiers.
const PathSeparator = "/"

// JoinPath builds a node path from its ancestry segment names.
func JoinPath(segments ...string) string {
	return strings.Join(segments, PathSeparator)
}

// Walk visits the node and all descendants in pre-order (node before
// children, siblings in declaration order). The traversal is deterministic,
// which the matcher's first-hit-wins policy depends on.
func (n *CategoryNode) Walk(visit func(*CategoryNode)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// WalkPost visits all descendants before the node itself (post-order),
// the order the variance engine aggregates in.
func (n *CategoryNode) WalkPost(visit func(*CategoryNode)) {
	for _, child := range n.Children {
		child.WalkPost(visit)
	}
	visit(n)
}

// Clone returns a deep copy of the node and its subtree. The parsed tree is
// read-only for the session; editors mutate a clone.
func (n *CategoryNode) Clone() *CategoryNode {
	copied := *n
	copied.Children = make([]*CategoryNode, 0, len(n.Children))
	for _, child := range n.Children {
		copied.Children = append(copied.Children, child.Clone())
	}
	return &copied
}

// Find returns the descendant (or the node itself) with the given path.
func (n *CategoryNode) Find(path string) *CategoryNode {
	var found *CategoryNode
	n.Walk(func(node *CategoryNode) {
		if found == nil && node.Path == path {
			found = node
		}
	})
	return found
}

// Budget is the fully parsed and resolved budget document. Income and expense
// categories live under separate synthetic roots so their totals never mix.
type Budget struct {
	IncomeRoot  *CategoryNode `json:"income_root"`
	ExpenseRoot *CategoryNode `json:"expense_root"`
}

// Roots returns the synthetic kind roots, income first.
func (b *Budget) Roots() []*CategoryNode {
	return []*CategoryNode{b.IncomeRoot, b.ExpenseRoot}
}

// PreOrder returns every node of both trees in a single stable pre-order
// sequence (income tree first, then expenses).
func (b *Budget) PreOrder() []*CategoryNode {
	var nodes []*CategoryNode
	for _, root := range b.Roots() {
		root.Walk(func(n *CategoryNode) {
			nodes = append(nodes, n)
		})
	}
	return nodes
}

// FindByPath locates a node in either tree by its path identifier.
func (b *Budget) FindByPath(path string) *CategoryNode {
	for _, root := range b.Roots() {
		if n := root.Find(path); n != nil {
			return n
		}
	}
	return nil
}

// Clone returns a deep copy of both trees.
func (b *Budget) Clone() *Budget {
	return &Budget{IncomeRoot: b.IncomeRoot.Clone(), ExpenseRoot: b.ExpenseRoot.Clone()}
}

// TotalIncome is the sum of the top-level income amounts (the income root's
// planned amount, set at resolution time).
func (b *Budget) TotalIncome() decimal.Decimal {
	return b.IncomeRoot.PlannedAmount
}

// TotalExpenses is the sum of the top-level expense amounts.
func (b *Budget) TotalExpenses() decimal.Decimal {
	return b.ExpenseRoot.PlannedAmount
}

// Net is budgeted income minus budgeted expenses.
func (b *Budget) Net() decimal.Decimal {
	return b.TotalIncome().Sub(b.TotalExpenses())
}

// FlatCategoryRow is one row of the budget editor table: the tree flattened
// in pre-order with enough context to render indentation and apply edits back.
type FlatCategoryRow struct {
	ID         string          `json:"id"`        // node path
	ParentID   string          `json:"parent_id"` // empty for top-level categories
	Level      int             `json:"level"`     // 0 for top-level categories
	IsIncome   bool            `json:"is_income"`
	IsTopLevel bool            `json:"is_top_level"`
	Category   string          `json:"category"`
	Inherited  bool            `json:"inherited"`
	Amount     decimal.Decimal `json:"amount"`
}

// CategoryEdit is one editor change applied back to the budget: either a new
// explicit amount or a switch to inheriting the parent's amount. ID is the
// node path from FlatCategoryRow.
type CategoryEdit struct {
	ID        string          `json:"id"`
	Inherited bool            `json:"inherited"`
	Amount    decimal.Decimal `json:"amount"`
}

// Flatten produces the editor rows for both trees, skipping the synthetic
// kind roots. Level counts from the top-level categories, matching how the
// editor indents.
func (b *Budget) Flatten() []FlatCategoryRow {
	var rows []FlatCategoryRow
	for _, root := range b.Roots() {
		isIncome := root.Kind == KindIncome
		root.Walk(func(n *CategoryNode) {
			if n.IsSynthetic {
				return
			}
			parentID := ""
			if idx := strings.LastIndex(n.Path, PathSeparator); idx > 0 {
				parent := n.Path[:idx]
				// The kind root path is not a real parent for the editor.
				if parent != root.Path {
					parentID = parent
				}
			}
			rows = append(rows, FlatCategoryRow{
				ID:         n.Path,
				ParentID:   parentID,
				Level:      n.Depth - 1,
				IsIncome:   isIncome,
				IsTopLevel: n.Depth == 1,
				Category:   n.Name,
				Inherited:  n.IsInherited,
				Amount:     n.PlannedAmount,
			})
		})
	}
	return rows
}
