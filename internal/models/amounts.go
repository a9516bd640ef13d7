package models

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Unknown is the sentinel for string fields that could not be
// extracted. Explicit sentinels, not absent values, keep downstream
// reconciliation and UI code to simple equality checks.
const Unknown = "Unknown"

// AmountUnknown is the sentinel for numeric fields that could not be
// extracted. It is distinct from zero: a statement can legitimately
// report 0.00 in fees.
var AmountUnknown = decimal.NewFromInt(-1)

// IsAmountUnknown reports whether an amount carries the not-found
// sentinel.
func IsAmountUnknown(d decimal.Decimal) bool {
	return d.Equal(AmountUnknown)
}

var amountCleanRe = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount parses a printed amount into a 2-decimal value. Currency
// symbols and thousands separators are stripped; a parenthesized
// amount is negative. Returns AmountUnknown when nothing numeric
// remains.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	cleaned := amountCleanRe.ReplaceAllString(s, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return AmountUnknown
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return AmountUnknown
	}
	if negative {
		d = d.Neg()
	}
	return d.Round(2)
}

// ParseNegativeAmount parses an amount and forces it negative
// regardless of how the source prints it. Used for withdrawals, fees
// and checks, which statements often print unsigned under a labeled
// column.
func ParseNegativeAmount(s string) decimal.Decimal {
	d := ParseAmount(s)
	if IsAmountUnknown(d) {
		return d
	}
	return d.Abs().Neg()
}
