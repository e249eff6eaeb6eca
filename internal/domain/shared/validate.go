package shared

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// FieldErrors accumulates per-field validation messages.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns a validation DomainError, or nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return NewValidationError("Request validation failed", map[string]string(f))
}

// RequireText checks that value is non-blank and at most maxLen characters.
func (f FieldErrors) RequireText(field, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		f.Add(field, "Missing data for required field.")
		return
	}
	if utf8.RuneCountInString(value) > maxLen {
		f.Add(field, fmt.Sprintf("Longer than maximum length %d.", maxLen))
	}
}

// RequireEmail checks that value is a syntactically valid email address of at most maxLen characters.
func (f FieldErrors) RequireEmail(field, value string, maxLen int) {
	f.RequireText(field, value, maxLen)
	if _, failed := f[field]; failed {
		return
	}
	if err := fieldValidator.Var(value, "email"); err != nil {
		f.Add(field, "Not a valid email address.")
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
