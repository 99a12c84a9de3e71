// backend/src/models/report_test.go
package models

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDateRangeContains(t *testing.T) {
	start := mustDate(t, "2025-01-01")
	end := mustDate(t, "2025-01-31")

	tests := []struct {
		name  string
		r     DateRange
		date  string
		want  bool
	}{
		{"inside", DateRange{Start: start, End: end}, "2025-01-15", true},
		{"on start bound", DateRange{Start: start, End: end}, "2025-01-01", true},
		{"on end bound", DateRange{Start: start, End: end}, "2025-01-31", true},
		{"before start", DateRange{Start: start, End: end}, "2024-12-31", false},
		{"after end", DateRange{Start: start, End: end}, "2025-02-01", false},
		{"open start", DateRange{End: end}, "1999-01-01", true},
		{"open end", DateRange{Start: start}, "2099-01-01", true},
		{"fully open", DateRange{}, "2025-06-15", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Contains(mustDate(t, tt.date)); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestDateRangeMonths(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"same month", "2025-01-01", "2025-01-31", 1},
		{"partial same month", "2025-01-10", "2025-01-20", 1},
		{"two calendar months", "2025-01-15", "2025-02-15", 2},
		{"full quarter", "2025-01-01", "2025-03-31", 3},
		{"across years", "2024-11-01", "2025-02-28", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DateRange{Start: mustDate(t, tt.start), End: mustDate(t, tt.end)}
			if got := r.Months(); got != tt.want {
				t.Errorf("Months() = %d, want %d", got, tt.want)
			}
		})
	}

	if got := (DateRange{}).Months(); got != 1 {
		t.Errorf("unbounded range Months() = %d, want 1", got)
	}
	if got := (DateRange{Start: mustDate(t, "2025-01-01")}).Months(); got != 1 {
		t.Errorf("half-open range Months() = %d, want 1", got)
	}
}

func TestMatchResultMatched(t *testing.T) {
	matched := MatchResult{MatchedPath: "Expenses/Food", Confidence: ConfidenceExact}
	if !matched.Matched() {
		t.Error("exact result should report matched")
	}
	unmatched := MatchResult{Confidence: ConfidenceNone}
	if unmatched.Matched() {
		t.Error("none result should not report matched")
	}
}
