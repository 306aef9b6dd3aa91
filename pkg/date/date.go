package date

import (
	"strings"
	"time"
)

// Layout is the wire and storage format for schedule dates.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string in UTC.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, strings.TrimSpace(s), time.UTC)
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string { return t.Format(Layout) }

// AddMonths moves t by n calendar months. Unlike time.AddDate the day is
// clamped to the last day of the target month, so Jan 31 + 1 is Feb 28/29.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := DaysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfMonth truncates t to midnight of the first day of its month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// SameMonth reports whether a and b fall in the same calendar year and month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
