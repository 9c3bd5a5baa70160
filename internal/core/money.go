// Package core holds the typed domain records shared by every service:
// subscriptions, ledger transactions, dates and money amounts.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to whole currency units with
// half-up rounding of any fractional part.
//
// It accepts both dot (54000.5) and comma (54000,5) decimal separators.
// The result is always positive. Returns an error for invalid formats,
// negative values, or zero amounts.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Half-up rounding on the first fractional digit
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		units++
	}
	if units <= 0 {
		return 0, ErrInvalidAmount
	}
	return units, nil
}
