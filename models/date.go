package models

import "time"

// DateLayout is the wire format for calendar dates. Dates carry no time
// component; everything is normalized to UTC midnight before it touches
// the store.
const DateLayout = "2006-01-02"

// NormalizeDate strips the time-of-day component and pins the date to UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// FormatDate renders a date in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
