package core

import (
	"fmt"
	"time"
)

// Period is the calendar month a projection covers.
type Period struct {
	Year        int
	Month       int // 1-12
	DaysInMonth int
}

// ResolvePeriod returns the month containing now, in now's location.
// Callers pass the clock explicitly so projections stay reproducible.
func ResolvePeriod(now time.Time) Period {
	year, month, _ := now.Date()
	return Period{
		Year:        year,
		Month:       int(month),
		DaysInMonth: daysIn(year, month),
	}
}

// NewPeriod builds a Period for an explicit year and month.
func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month %d", month)
	}
	return Period{Year: year, Month: month, DaysInMonth: daysIn(year, time.Month(month))}, nil
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether day is a valid day of the month.
func (p Period) Contains(day int) bool {
	return day >= 1 && day <= p.DaysInMonth
}

// Date returns the calendar date for a day of the period.
func (p Period) Date(day int) Date {
	return NewDate(p.Year, p.Month, day)
}

// Days lists every date of the period from day 1 to the last day.
func (p Period) Days() []Date {
	out := make([]Date, 0, p.DaysInMonth)
	for d := 1; d <= p.DaysInMonth; d++ {
		out = append(out, p.Date(d))
	}
	return out
}

// String formats the period as MM/YYYY.
func (p Period) String() string {
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}
