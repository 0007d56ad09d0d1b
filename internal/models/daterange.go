package models

import (
	"fmt"
	"time"
)

// DateFormat is the wire and CLI format for trading dates.
const DateFormat = "2006-01-02"

// Day truncates t to its calendar date at UTC midnight. All trading dates
// flowing through the application are normalized with this function so that
// dates coming from different sources compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of trading dates. Both bounds are
// day-normalized; Start is never after End for ranges built with NewDateRange.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a day-normalized range and enforces Start <= End.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return DateRange{}, fmt.Errorf("range start %s is after end %s",
			start.Format(DateFormat), end.Format(DateFormat))
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether the calendar date of t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days enumerates every calendar date from Start to End inclusive, ascending.
// Weekends and holidays are included; the store simply never has rows for
// non-trading days.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.DayCount())
	for d := Day(r.Start); !d.After(Day(r.End)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DayCount returns the number of calendar dates in the range, inclusive.
func (r DateRange) DayCount() int {
	return int(Day(r.End).Sub(Day(r.Start))/(24*time.Hour)) + 1
}

// String implements fmt.Stringer in the form "2024-01-01..2024-01-10".
func (r DateRange) String() string {
	return r.Start.Format(DateFormat) + ".." + r.End.Format(DateFormat)
}
