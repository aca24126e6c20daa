package utils

import (
	"time"
)

// ParseDate parses ISO 8601 dates: YYYY-MM-DD or full RFC3339
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// FormatDate formats a time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimestamp formats a time as RFC3339
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatDatePtr formats an optional date, returning nil when unset
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatDate(*t)
	return &s
}

// DayCount returns the number of itinerary days spanned by [start, end],
// inclusive on both ends. Zero when either bound is missing or the range is
// inverted.
func DayCount(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	if end.Before(*start) {
		return 0
	}
	return int(end.Sub(*start).Hours()/24) + 1
}
