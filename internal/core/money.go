// Package core provides money parsing and handling utilities.
//
// This file contains the amount parser used for user input and the display
// formatter. Amounts are kept as exact decimals so that sums never drift.
package core

import (
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a non-negative amount.
//
// Only a dot is accepted as decimal separator. Commas, signs, exponents and
// empty input are rejected, so "1,000" is never read as 1.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("1,000") -> ErrInvalidAmount
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("-1")    -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) || r > unicode.MaxASCII {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SumItems adds the amounts of the given items.
func SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// FormatAmount renders an amount for display with the unit label, thousands
// separators and two decimals, e.g. "Rs. 1,234.50".
func FormatAmount(unit string, d decimal.Decimal) string {
	r := d.Round(2)
	fixed := r.StringFixed(2)
	s := humanize.BigComma(r.BigInt()) + fixed[strings.IndexByte(fixed, '.'):]
	if unit == "" {
		return s
	}
	return unit + " " + s
}
