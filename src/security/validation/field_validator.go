// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

// Field length limits for user-supplied text.
const (
	MaxLabelLength        = 255 // free-text category labels from exports
	MaxCategoryNameLength = 128 // budget category names and mapping targets
)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateMappingFields validates both sides of a user-saved category
// mapping before it touches the database.
func ValidateMappingFields(actualLabel, budgetCategory string) error {
	if err := ValidateStringNotEmpty(actualLabel, "actual_label"); err != nil {
		return err
	}
	if err := ValidateStringMaxLength(actualLabel, MaxLabelLength, "actual_label"); err != nil {
		return err
	}
	if err := ValidateStringNotEmpty(budgetCategory, "budget_category"); err != nil {
		return err
	}
	return ValidateStringMaxLength(budgetCategory, MaxCategoryNameLength, "budget_category")
}
