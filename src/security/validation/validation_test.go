// backend/src/security/validation/validation_test.go
package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Groceries", "Groceries"},
		{"<script>alert(1)</script>Rent", "Rent"},
		{"<b>Food</b>", "Food"},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"+1234", "'+1234"},
		{"-1234", "'-1234"},
		{"@cmd", "'@cmd"},
		{"Groceries", "Groceries"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeForFormulaInjection(tt.in); got != tt.want {
			t.Errorf("SanitizeForFormulaInjection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripUnprintable(t *testing.T) {
	if got := StripUnprintable("Café\x00 Label\x07"); got != "Café Label" {
		t.Errorf("StripUnprintable() = %q", got)
	}
	if got := StripUnprintable("keeps\ttabs\nand\rnewlines"); got != "keeps\ttabs\nand\rnewlines" {
		t.Errorf("StripUnprintable() = %q", got)
	}
}

func TestValidateMappingFields(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		category string
		wantErr  bool
	}{
		{"valid", "WholeFoods Market", "Groceries", false},
		{"empty label", "  ", "Groceries", true},
		{"empty category", "WholeFoods", "", true},
		{"label too long", strings.Repeat("a", MaxLabelLength+1), "Groceries", true},
		{"category too long", "WholeFoods", strings.Repeat("a", MaxCategoryNameLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMappingFields(tt.label, tt.category)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMappingFields() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidationFailed) {
				t.Errorf("error %v should wrap ErrValidationFailed", err)
			}
		})
	}
}
