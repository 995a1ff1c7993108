package engine

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity time value (the engine never cares about clocks)
// =============================================================================

// Date is a calendar day in UTC. All projection math is day-granular:
// events land on days, balances are end-of-day, windows are [start, end]
// inclusive.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (2006-01-02). The zero Date and false are
// returned for anything else; callers decide whether that is fatal.
func ParseDate(s string) (Date, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t}, true
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// ClampDay resolves a day-of-month anchor within a month, clamping to the
// last valid day when the anchor exceeds it (anchor 31 in April yields the
// 30th, in February the 28th or 29th).
func ClampDay(year int, month time.Month, day int) Date {
	last := LastDayOfMonth(year, month)
	if day < 1 {
		day = 1
	}
	if day > last {
		day = last
	}
	return NewDate(year, month, day)
}

// AddMonthsClamped advances a date by n calendar months, keeping the original
// day-of-month where possible and clamping at month end. This deliberately
// differs from time.AddDate, which rolls Jan 31 + 1 month into March 3.
func (d Date) AddMonthsClamped(n int) Date {
	monthIndex := int(d.Month()) - 1 + n
	year := d.Year() + monthIndex/12
	month := time.Month(monthIndex%12 + 1)
	if monthIndex < 0 {
		// Go's integer division truncates toward zero; fix up negative offsets.
		year = d.Year() + (monthIndex-11)/12
		month = time.Month((monthIndex%12+12)%12 + 1)
	}
	return ClampDay(year, month, d.Day())
}

// DaysBetween returns the whole days from 'from' to 'to' (negative if
// 'to' precedes 'from').
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// EachDay calls fn for every day in [start, end] inclusive.
// A zero-length range (end before start) visits nothing.
func EachDay(start, end Date, fn func(Date)) {
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		fn(d)
	}
}
