// backend/src/parsers/budgetspec/loader.go
package budgetspec

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
	"gopkg.in/yaml.v3"
)

// InheritedMarker is the literal a budget author writes in place of an amount
// to copy the nearest ancestor's amount.
const InheritedMarker = "INHERITED"

// Root names for the synthetic kind roots.
const (
	IncomeRootName  = "Income"
	ExpenseRootName = "Expenses"
)

// ParseError reports a structurally invalid budget document, pointing at the
// offending node. No partial tree is ever returned alongside one.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("budget parse error: %s", e.Reason)
	}
	return fmt.Sprintf("budget parse error at %q: %s", e.Path, e.Reason)
}

// rawAmount is the amount cell of a budget entry: either an explicit
// non-negative decimal or the INHERITED marker.
type rawAmount struct {
	value     decimal.Decimal
	inherited bool
	set       bool
}

func (a *rawAmount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("amount must be a number or %q", InheritedMarker)
	}
	text := strings.TrimSpace(node.Value)
	if strings.EqualFold(text, InheritedMarker) {
		a.inherited = true
		a.set = true
		return nil
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("invalid amount %q", node.Value)
	}
	a.value = value
	a.set = true
	return nil
}

// rawEntry mirrors one budget document entry. Income entries historically use
// the "source" key where expenses use "category"; both are accepted anywhere.
type rawEntry struct {
	Category      string     `yaml:"category"`
	Source        string     `yaml:"source"`
	Amount        *rawAmount `yaml:"amount"`
	Subcategories []rawEntry `yaml:"subcategories"`
}

func (e rawEntry) name() string {
	if e.Category != "" {
		return e.Category
	}
	return e.Source
}

type rawDocument struct {
	Income   []rawEntry `yaml:"income"`
	Expenses []rawEntry `yaml:"expenses"`
}

// Parse decodes a budget YAML document into a fully resolved Budget. The raw
// tree is built first, preserving declaration order; a single top-down pass
// then resolves INHERITED amounts, so a node is always resolved before its
// children regardless of sibling order. Any structural problem aborts the
// whole load with a ParseError naming the node.
func Parse(data []byte) (*models.Budget, error) {
	var doc rawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if len(doc.Income) == 0 && len(doc.Expenses) == 0 {
		return nil, &ParseError{Reason: "document has no income or expenses sections"}
	}

	incomeRoot, err := buildTree(IncomeRootName, models.KindIncome, doc.Income)
	if err != nil {
		return nil, err
	}
	expenseRoot, err := buildTree(ExpenseRootName, models.KindExpense, doc.Expenses)
	if err != nil {
		return nil, err
	}
	return &models.Budget{IncomeRoot: incomeRoot, ExpenseRoot: expenseRoot}, nil
}

// buildTree constructs and resolves one kind tree under its synthetic root.
// The root's planned amount is the sum of its direct children, computed after
// resolution.
func buildTree(rootName string, kind models.CategoryKind, entries []rawEntry) (*models.CategoryNode, error) {
	root := &models.CategoryNode{
		Name:        rootName,
		Kind:        kind,
		IsSynthetic: true,
		Path:        rootName,
		Depth:       0,
	}

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		child, err := buildNode(entry, root, seen)
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, child)
	}

	// Top-down resolution: a node is resolved before any of its children.
	for _, child := range root.Children {
		if err := resolve(child, nil); err != nil {
			return nil, err
		}
	}

	total := decimal.Zero
	for _, child := range root.Children {
		total = total.Add(child.PlannedAmount)
	}
	root.PlannedAmount = total
	return root, nil
}

// buildNode converts a raw entry (and its subtree) without resolving amounts.
// Sibling name uniqueness is enforced per parent via seen.
func buildNode(entry rawEntry, parent *models.CategoryNode, seen map[string]bool) (*models.CategoryNode, error) {
	name := strings.TrimSpace(entry.name())
	path := models.JoinPath(parent.Path, name)
	if name == "" {
		return nil, &ParseError{Path: parent.Path, Reason: "entry is missing a category/source name"}
	}
	key := strings.ToLower(name)
	if seen[key] {
		return nil, &ParseError{Path: path, Reason: "duplicate sibling category name"}
	}
	seen[key] = true

	if entry.Amount == nil || !entry.Amount.set {
		return nil, &ParseError{Path: path, Reason: "missing required amount"}
	}
	if !entry.Amount.inherited && entry.Amount.value.IsNegative() {
		return nil, &ParseError{Path: path, Reason: "amount must be non-negative"}
	}

	node := &models.CategoryNode{
		Name:        name,
		Kind:        parent.Kind,
		IsInherited: entry.Amount.inherited,
		Path:        path,
		Depth:       parent.Depth + 1,
	}
	if !entry.Amount.inherited {
		node.PlannedAmount = entry.Amount.value
	}

	childSeen := make(map[string]bool, len(entry.Subcategories))
	for _, sub := range entry.Subcategories {
		child, err := buildNode(sub, node, childSeen)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// resolve fills inherited amounts top-down. parent is nil for top-level
// categories, which therefore have no ancestor amount to inherit.
func resolve(node *models.CategoryNode, parent *models.CategoryNode) error {
	if node.IsInherited {
		if parent == nil {
			return &ParseError{Path: node.Path, Reason: "INHERITED requires an ancestor amount, but this is a top-level category"}
		}
		// parent is already resolved; copying its effective amount completes
		// inheritance chains deterministically.
		node.PlannedAmount = parent.PlannedAmount
	}
	for _, child := range node.Children {
		if err := resolve(child, node); err != nil {
			return err
		}
	}
	return nil
}

// Export re-serializes a resolved budget back into the document format,
// preserving INHERITED markers for inherited nodes.
func Export(b *models.Budget) ([]byte, error) {
	doc := exportDocument{
		Income:   exportEntries(b.IncomeRoot.Children, true),
		Expenses: exportEntries(b.ExpenseRoot.Children, false),
	}
	return yaml.Marshal(doc)
}

type exportDocument struct {
	Income   []exportEntry `yaml:"income"`
	Expenses []exportEntry `yaml:"expenses"`
}

type exportEntry struct {
	Category      string        `yaml:"category,omitempty"`
	Source        string        `yaml:"source,omitempty"`
	Amount        any           `yaml:"amount"`
	Subcategories []exportEntry `yaml:"subcategories,omitempty"`
}

func exportEntries(nodes []*models.CategoryNode, income bool) []exportEntry {
	entries := make([]exportEntry, 0, len(nodes))
	for _, n := range nodes {
		entry := exportEntry{}
		if income {
			entry.Source = n.Name
		} else {
			entry.Category = n.Name
		}
		if n.IsInherited {
			entry.Amount = InheritedMarker
		} else {
			// InexactFloat64 keeps the document human-editable; amounts are
			// two-decimal currency values well inside float64 precision.
			entry.Amount = n.PlannedAmount.InexactFloat64()
		}
		entry.Subcategories = exportEntries(n.Children, income)
		entries = append(entries, entry)
	}
	return entries
}
