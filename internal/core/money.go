// Package core holds the entities exchanged with the remote tracking service
// and the validation rules applied before anything is sent.
//
// This file contains amount parsing and summation. Amounts travel as JSON
// numbers; arithmetic goes through decimal so displayed totals do not drift.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered amount. Both dot (12.34) and comma (12,34)
// decimal separators are accepted. Zero, negative and malformed inputs are
// rejected with ErrInvalidAmount, as are values too large for a float64.
//
// Examples:
//
//	ParseAmount("12.50") -> 12.5, nil
//	ParseAmount("7,25")  -> 7.25, nil
//	ParseAmount("0")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	if !ValidAmount(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// ValidAmount reports whether a is a finite, strictly positive amount.
func ValidAmount(a float64) bool {
	return a > 0 && !math.IsInf(a, 0) && !math.IsNaN(a)
}

// SumAmounts adds amounts exactly in decimal.
func SumAmounts(amounts ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total
}

// ExpensesTotal sums the amounts of the given expenses.
func ExpensesTotal(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}
