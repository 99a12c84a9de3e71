// backend/src/parsers/simplifi/parser.go
package simplifi

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/budgetvisor/backend/src/models"
)

// SimplifiParser reads Simplifi-style P&L CSV exports. Only three columns
// matter: a category label, an amount and a date; they are located by header
// name so minor export-format churn does not break uploads.
type SimplifiParser struct{}

// NewParser creates a new instance of the SimplifiParser.
func NewParser() *SimplifiParser {
	return &SimplifiParser{}
}

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

func normalizeDecimalString(s string) string {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"")
	cleaned = strings.ReplaceAll(cleaned, "€", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// Accounting exports write negatives as (123.45).
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}

	// "1.234,56" and "1,234.56" both appear in the wild. When both separators
	// are present the last one is the decimal point; a lone comma is decimal.
	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastComma >= 0 && lastDot >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case lastComma >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	return cleaned
}

func parseDate(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// findColumn locates a header column whose name contains the wanted keyword,
// case-insensitive. The first hit wins, keeping column resolution stable.
func findColumn(header []string, keyword string) int {
	for i, name := range header {
		if strings.Contains(strings.ToLower(strings.TrimSpace(name)), keyword) {
			return i
		}
	}
	return -1
}

// Parse reads a Simplifi CSV export and converts its rows into ActualRecords.
// Amounts are normalized to positive spent/earned magnitudes: the export's
// sign convention (expenses negative) is a source quirk the rest of the
// pipeline never sees. Rows with an unparseable date or amount are skipped,
// not fatal, matching how partial exports behave in practice.
func (p *SimplifiParser) Parse(file io.Reader) ([]models.ActualRecord, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // allow ragged rows

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("simplifi parser: failed to read CSV header: %w", err)
	}

	categoryIdx := findColumn(header, "category")
	amountIdx := findColumn(header, "amount")
	dateIdx := findColumn(header, "date")
	if categoryIdx < 0 || amountIdx < 0 || dateIdx < 0 {
		return nil, fmt.Errorf("simplifi parser: export is missing a category, amount or date column (header: %s)", strings.Join(header, ","))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("simplifi parser: failed to read CSV records: %w", err)
	}

	maxIdx := categoryIdx
	if amountIdx > maxIdx {
		maxIdx = amountIdx
	}
	if dateIdx > maxIdx {
		maxIdx = dateIdx
	}

	var actuals []models.ActualRecord
	for _, record := range records {
		if len(record) <= maxIdx {
			continue
		}
		label := strings.TrimSpace(record[categoryIdx])
		if label == "" {
			continue
		}

		date, err := parseDate(record[dateIdx])
		if err != nil {
			log.Printf("Simplifi Parser: Skipping row due to invalid date: %s (category: %s)", record[dateIdx], label)
			continue
		}

		amount, err := decimal.NewFromString(normalizeDecimalString(record[amountIdx]))
		if err != nil {
			log.Printf("Simplifi Parser: Skipping row due to invalid amount: %s (category: %s)", record[amountIdx], label)
			continue
		}

		actuals = append(actuals, models.ActualRecord{
			RawLabel: label,
			Amount:   amount.Abs(),
			Date:     date,
			Source:   "simplifi",
		})
	}

	return actuals, nil
}
