package models

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalDateLayout is the single calendar format every extractor
// re-parses issuer-native dates into.
const CanonicalDateLayout = "01/02/2006"

// Layouts seen across issuer statements and ledger exports.
const (
	LongDateLayout  = "January 2, 2006"
	ShortDateLayout = "01/02/06"
	MonthDayLayout  = "1/2"
)

// ReformatDate parses value with the given layout and reformats it
// into the canonical calendar format. Returns the Unknown sentinel
// when the value does not parse; extraction never fails on a bad date.
func ReformatDate(value, layout string) string {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return Unknown
	}
	return t.Format(CanonicalDateLayout)
}

// DateWithYear completes a month/day token (e.g. "08/23") with an
// explicit year, returning the canonical format. Statement transaction
// rows rarely print the year; it is inferred from the statement
// period.
func DateWithYear(monthDay string, year string) string {
	if year == "" || year == Unknown {
		return Unknown
	}
	t, err := time.Parse("1/2/2006", fmt.Sprintf("%s/%s", strings.TrimSpace(monthDay), year))
	if err != nil {
		return Unknown
	}
	return t.Format(CanonicalDateLayout)
}

// YearOf extracts the 4-digit year from a canonical date, or "" when
// the date is unknown.
func YearOf(canonical string) string {
	if len(canonical) != len("01/02/2006") {
		return ""
	}
	return canonical[6:]
}
