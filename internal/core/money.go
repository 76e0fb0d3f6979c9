// Package core provides money parsing and formatting utilities.
//
// Ledger amounts arrive from spreadsheets, fixtures and databases in a few
// textual shapes; this file normalizes them into decimal values.
package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a human-entered amount into a decimal.
//
// It accepts an optional leading sign, currency symbols and thousands
// separators written as spaces, apostrophes or commas. When both a dot and a
// comma appear, the last one is the decimal separator. A lone comma is a
// thousands separator when exactly three digits follow it, and a decimal
// separator otherwise. An empty string is rejected.
//
// Examples:
//
//	ParseAmount("12.34")      -> 12.34
//	ParseAmount("-12,34")     -> -12.34
//	ParseAmount("1,200")      -> 1200
//	ParseAmount("₹1,20,000")  -> 120000
//	ParseAmount("1.234,56")   -> 1234.56
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '\'':
			return -1
		case unicode.Is(unicode.Sc, r):
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = normalizeSeparators(s)
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// normalizeSeparators rewrites s so that "." is the only decimal separator
// and no grouping commas remain.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma < 0:
		return s
	case lastDot >= 0 && lastComma > lastDot:
		// 1.234,56
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3:
		// 1,20,000 or 1,200
		return strings.ReplaceAll(s, ",", "")
	default:
		return strings.Replace(s, ",", ".", 1)
	}
}

// FormatAmount renders an amount for user-facing text: no trailing zeros and
// no exponent, so 740 prints as "740" and 12.50 as "12.5".
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}

// RoundHalfUp rounds to the nearest integer, halves away from zero.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
