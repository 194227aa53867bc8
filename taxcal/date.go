/*
Package taxcal provides the tax calendar primitives for the KPI engine.

PURPOSE:
  This package contains the calendar-level building blocks shared by the
  scoring and monitoring layers: a day-granularity Date type, the deadline
  generators for Indonesian monthly and annual tax obligations, and the
  classifier that turns a (deadline, status) pair into a display state.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar day with no time-of-day component
  - All comparisons happen at day granularity; time-of-day is stripped

DESIGN PRINCIPLES:
  1. Purity: Every function is a stateless computation over its arguments
  2. Day granularity: Deadlines are calendar dates, never timestamps
  3. No timezone logic: Callers supply dates already normalized to the
     business timezone; the engine compares them as plain calendar days

USAGE:
  due := taxcal.PphFilingDeadline(1, 2025)   // 2025-02-20
  if taxcal.Today().After(due) { ... }

SEE ALSO:
  - deadlines.go: Deadline generators per obligation type
  - status.go: Deadline status classification and lateness checks
*/
package taxcal

import (
	"time"
)

// =============================================================================
// DATE - Calendar day, no time-of-day
// =============================================================================

type Date struct {
	t time.Time
}

// NewDate builds a Date from calendar components. Out-of-range components
// normalize the way time.Date does (day 0 yields the last day of the
// previous month), which the deadline generators rely on.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day. Callers that need a stable "now"
// across several computations should sample it once and pass it down.
func Today() Date {
	return DateOf(time.Now())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }

// Time returns the underlying timestamp at midnight UTC.
func (d Date) Time() time.Time { return d.t }

// EndOfDay returns the last instant of the calendar day. Used by lateness
// checks where a submission any time on the deadline day still counts.
func (d Date) EndOfDay() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// =============================================================================
// JSON ENCODING - "YYYY-MM-DD", empty string for the zero Date
// =============================================================================

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// =============================================================================
// CALENDAR UTILITIES
// =============================================================================

// DaysBetween returns the number of calendar days from one date to another.
// Negative when to precedes from.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return NewDate(year, month+1, 0).Day()
}
