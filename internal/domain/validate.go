package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field is a named raw form value.
type Field struct {
	Name  string
	Value string
}

// RequireFields fails on the first blank field.
func RequireFields(fields ...Field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			return &ErrValidation{Field: f.Name, Message: "Please fill all required fields"}
		}
	}
	return nil
}

// ParsePositiveAmount parses a finite amount strictly greater than zero.
func ParsePositiveAmount(field, raw string) (decimal.Decimal, error) {
	d, err := parseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, &ErrValidation{Field: field, Message: "Amount must be greater than zero"}
	}
	return d, nil
}

// ParseNonNegativeAmount parses a finite amount >= 0. A blank value is zero
// when allowBlank is set.
func ParseNonNegativeAmount(field, raw string, allowBlank bool) (decimal.Decimal, error) {
	if allowBlank && strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := parseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, &ErrValidation{Field: field, Message: "Enter a valid positive balance"}
	}
	return d, nil
}

// ParseID parses a backend-assigned numeric identifier.
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: field, Message: "Enter a valid " + field}
	}
	return id, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &ErrValidation{Field: field, Message: "Amount is required"}
	}
	// decimal rejects NaN and Inf, which keeps every accepted amount finite.
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ErrValidation{Field: field, Message: "Enter a valid amount"}
	}
	return d, nil
}
