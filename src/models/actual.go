// backend/src/models/actual.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActualRecord is one normalized line from an actuals export: a free-text
// category label, a positive amount magnitude and a calendar date. The loader
// owns normalization (sign conventions, decimal separators); downstream
// components never mutate records.
type ActualRecord struct {
	ID       int64           `json:"id,omitempty"` // database primary key
	RawLabel string          `json:"raw_label"`
	Amount   decimal.Decimal `json:"amount"` // positive magnitude
	Date     time.Time       `json:"date"`
	Source   string          `json:"source"` // e.g. "simplifi"
}

// MatchConfidence describes how an actual record was associated to a budget
// category node.
type MatchConfidence string

const (
	ConfidenceExact MatchConfidence = "EXACT"
	ConfidenceAlias MatchConfidence = "ALIAS"
	ConfidenceNone  MatchConfidence = "NONE"
)

// MatchResult associates one ActualRecord with zero or one budget node.
// Every record yields exactly one result; an empty MatchedPath with
// ConfidenceNone is the legitimate unmatched outcome, not an error.
type MatchResult struct {
	Record      ActualRecord    `json:"record"`
	MatchedPath string          `json:"matched_path,omitempty"`
	Confidence  MatchConfidence `json:"confidence"`
}

// Matched reports whether the record found a budget node.
func (m MatchResult) Matched() bool {
	return m.Confidence != ConfidenceNone && m.MatchedPath != ""
}

// CategoryMapping is a user-saved association between an export's free-text
// label and a budget category name. Mappings are consulted by the matcher
// after exact matching fails and can be exported/imported as JSON.
type CategoryMapping struct {
	ID             int64     `json:"id,omitempty"`
	ActualLabel    string    `json:"actual_label"`
	BudgetCategory string    `json:"budget_category"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}
