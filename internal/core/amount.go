// Package core provides the domain types shared by every layer and the
// lenient parsers used to coerce raw cells.
//
// This file contains the amount parser. Ledger exports come from several
// tools and use different thousands and decimal separators, so the parser
// accepts all of them and never fails: anything unreadable is zero.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw cell to a decimal amount.
//
// Accepted forms:
//
//	ParseAmount("1234.56")   -> 1234.56
//	ParseAmount("1'234.56")  -> 1234.56 (Swiss thousands separator)
//	ParseAmount("1,234.56")  -> 1234.56
//	ParseAmount("1234,56")   -> 1234.56
//	ParseAmount("1,234")     -> 1234 (one to three digits, then groups of three)
//	ParseAmount("1.234.567") -> 1234567
//	ParseAmount("1.234")     -> 1.234 (a single dot is always decimal)
//	ParseAmount("0,500")     -> 0.5
//	ParseAmount("abc")       -> 0
//	ParseAmount("")          -> 0
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.NewReplacer("'", "", "’", "", " ", "", " ", "").Replace(s)

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		// The last separator is the decimal one.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		if strings.Count(s, ",") > 1 || isGrouped(s, ",") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case hasDot:
		if strings.Count(s, ".") > 1 && isGrouped(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err == nil {
		return d
	}
	// Scientific notation and the like.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// isGrouped reports whether s is an integer written with sep between
// thousands groups, like "12,345" or "1.234.567". A leading zero never
// starts a group so "0,500" stays a decimal.
func isGrouped(s, sep string) bool {
	s = strings.TrimLeft(s, "+-")
	parts := strings.Split(s, sep)
	if len(parts) < 2 {
		return false
	}
	head := parts[0]
	if len(head) == 0 || len(head) > 3 || head[0] == '0' || !isDigits(head) {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 || !isDigits(p) {
			return false
		}
	}
	return true
}

// NormalizeAccountID trims an account cell and drops a zero fractional part
// that numeric columns leave behind ("1020.0" -> "1020").
func NormalizeAccountID(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i > 0 {
		frac := s[i+1:]
		if strings.Trim(frac, "0") == "" && isDigits(s[:i]) {
			return s[:i]
		}
	}
	return s
}

// CompareAccountIDs orders account ids numerically when both are integers
// and lexically otherwise. Numeric ids sort before non-numeric ones.
func CompareAccountIDs(a, b string) int {
	an, aok := accountNumber(a)
	bn, bok := accountNumber(b)
	switch {
	case aok && bok:
		if an < bn {
			return -1
		}
		if an > bn {
			return 1
		}
		return strings.Compare(a, b)
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

func accountNumber(s string) (uint64, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
