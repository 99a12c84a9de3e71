// backend/src/handlers/report_handler_test.go
package handlers

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantErr   bool
		wantStart string
		wantEnd   string
	}{
		{"no bounds", "", false, "", ""},
		{"both bounds", "?start=2025-01-01&end=2025-01-31", false, "2025-01-01", "2025-01-31"},
		{"start only", "?start=2025-01-01", false, "2025-01-01", ""},
		{"end only", "?end=2025-06-30", false, "", "2025-06-30"},
		{"single day", "?start=2025-01-15&end=2025-01-15", false, "2025-01-15", "2025-01-15"},
		{"bad start", "?start=January", true, "", ""},
		{"bad end", "?end=31-01-2025", true, "", ""},
		{"inverted", "?start=2025-02-01&end=2025-01-01", true, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/report/variance"+tt.query, nil)
			got, err := parseDateRange(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDateRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			checkBound(t, "start", got.Start, tt.wantStart)
			checkBound(t, "end", got.End, tt.wantEnd)
		})
	}
}

func checkBound(t *testing.T, name string, got time.Time, want string) {
	t.Helper()
	if want == "" {
		if !got.IsZero() {
			t.Errorf("%s = %s, want unset", name, got)
		}
		return
	}
	parsed, err := time.Parse("2006-01-02", want)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(parsed) {
		t.Errorf("%s = %s, want %s", name, got, parsed)
	}
}
