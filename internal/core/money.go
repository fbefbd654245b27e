// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from spreadsheet
// cells into exact decimals and formatting them back for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a cell value into a non-negative decimal.
//
// It accepts an optional currency symbol ($ or €), thousands separators and
// both dot (12.34) and comma (12,34) decimal separators. When both separators
// appear, the last one is the decimal separator.
// Returns ErrInvalidAmount for malformed or negative values.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34
//	ParseAmount("12,34")     -> 12.34
//	ParseAmount("$1,200.50") -> 1200.5
//	ParseAmount("1.200,50")  -> 1200.5
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.TrimPrefix(s, "+")

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		// 1.200,50
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		// 1,200.50
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && strings.Count(s, ",") == 1 && len(s)-comma-1 <= 2:
		// 45,99
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		// 1,200 and 1,200,000
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatDollars renders a signed amount with two decimals and a $ prefix,
// e.g. -$12.30.
func FormatDollars(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
