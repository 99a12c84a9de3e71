// backend/src/processors/category_matcher.go
package processors

import (
	"strings"

	"github.com/username/budgetvisor/backend/src/models"
)

// IndexEntry is one budget node in the matcher's pre-order index, paired with
// its normalized name. The index is built once per tree so match outcomes
// never depend on map iteration order.
type IndexEntry struct {
	Node           *models.CategoryNode
	NormalizedName string
}

// MatchStrategy is the pluggable fuzzy fallback consulted when neither an
// exact match nor a saved mapping resolves a label. Implementations must be
// deterministic for a given (index, label) pair; returning nil means no
// match. The index is in tree pre-order and never contains synthetic roots.
type MatchStrategy interface {
	Match(normalizedLabel string, index []IndexEntry) *models.CategoryNode
}

// SubstringStrategy is the default fuzzy fallback: the first index entry
// whose normalized name contains the label or is contained by it. Very short
// names are excluded to keep one-word labels from latching onto everything.
type SubstringStrategy struct {
	// MinLength is the minimum length of the shorter side of a substring
	// match. Defaults to 3 when zero.
	MinLength int
}

func (s SubstringStrategy) Match(normalizedLabel string, index []IndexEntry) *models.CategoryNode {
	minLen := s.MinLength
	if minLen <= 0 {
		minLen = 3
	}
	if len(normalizedLabel) < minLen {
		return nil
	}
	for _, entry := range index {
		if len(entry.NormalizedName) < minLen {
			continue
		}
		if strings.Contains(normalizedLabel, entry.NormalizedName) || strings.Contains(entry.NormalizedName, normalizedLabel) {
			return entry.Node
		}
	}
	return nil
}

// CategoryMatcher maps free-text actual labels onto budget tree nodes:
// exact normalized match first, then user-saved mappings, then the fuzzy
// strategy. Unmatched is a legitimate terminal outcome, never an error.
type CategoryMatcher struct {
	index    []IndexEntry
	aliases  map[string]string // normalized actual label -> budget category name
	strategy MatchStrategy
}

// NewCategoryMatcher builds a matcher for one resolved budget tree. mappings
// are the user's saved label associations; strategy may be nil to disable
// fuzzy matching entirely.
func NewCategoryMatcher(budget *models.Budget, mappings []models.CategoryMapping, strategy MatchStrategy) *CategoryMatcher {
	var index []IndexEntry
	for _, node := range budget.PreOrder() {
		if node.IsSynthetic {
			continue
		}
		index = append(index, IndexEntry{Node: node, NormalizedName: NormalizeLabel(node.Name)})
	}

	aliases := make(map[string]string, len(mappings))
	for _, m := range mappings {
		aliases[NormalizeLabel(m.ActualLabel)] = m.BudgetCategory
	}

	return &CategoryMatcher{index: index, aliases: aliases, strategy: strategy}
}

// NormalizeLabel lowercases a label and collapses runs of whitespace, the
// normalization applied to both sides of every comparison.
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// Match produces exactly one MatchResult per record, in input order.
func (m *CategoryMatcher) Match(records []models.ActualRecord) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(records))
	for _, record := range records {
		results = append(results, m.MatchOne(record))
	}
	return results
}

// MatchOne resolves a single record. Ties are broken by declaration order:
// the first hit in the pre-order index wins.
func (m *CategoryMatcher) MatchOne(record models.ActualRecord) models.MatchResult {
	label := NormalizeLabel(record.RawLabel)

	for _, entry := range m.index {
		if entry.NormalizedName == label {
			return models.MatchResult{Record: record, MatchedPath: entry.Node.Path, Confidence: models.ConfidenceExact}
		}
	}

	if target, ok := m.aliases[label]; ok {
		if node := m.findByName(target); node != nil {
			return models.MatchResult{Record: record, MatchedPath: node.Path, Confidence: models.ConfidenceAlias}
		}
	}

	if m.strategy != nil {
		if node := m.strategy.Match(label, m.index); node != nil {
			return models.MatchResult{Record: record, MatchedPath: node.Path, Confidence: models.ConfidenceAlias}
		}
	}

	return models.MatchResult{Record: record, Confidence: models.ConfidenceNone}
}

// findByName returns the first pre-order node with the given category name.
func (m *CategoryMatcher) findByName(name string) *models.CategoryNode {
	normalized := NormalizeLabel(name)
	for _, entry := range m.index {
		if entry.NormalizedName == normalized {
			return entry.Node
		}
	}
	return nil
}
