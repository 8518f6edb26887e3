package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at 00:00 UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, NewValidationError(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
	}
	return t, nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween returns the whole number of days from a to b, both taken as civil dates.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}
