package valueobject

import (
	"fmt"
	"time"
)

// DayCountConvention selects how billing-period lengths are counted when
// prorating partial periods.
type DayCountConvention string

const (
	// ActualDaysInMonth divides by the calendar length of the period.
	ActualDaysInMonth DayCountConvention = "ACTUAL_DAYS_IN_MONTH"
	// ThirtyDayMonth always divides by 30 regardless of the calendar month.
	ThirtyDayMonth DayCountConvention = "THIRTY_DAY_MONTH"
)

// IsValid checks if the convention is a known value
func (c DayCountConvention) IsValid() bool {
	return c == ActualDaysInMonth || c == ThirtyDayMonth
}

// String returns the string representation
func (c DayCountConvention) String() string {
	return string(c)
}

// BillingPeriod is an inclusive calendar-date range [Start, End].
// Billing periods are dates without time of day; both bounds are normalized
// to UTC midnight so day arithmetic never depends on wall-clock time.
type BillingPeriod struct {
	start time.Time
	end   time.Time
}

// DateOnly truncates a timestamp to its UTC calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewBillingPeriod creates a billing period. End must not precede start.
func NewBillingPeriod(start, end time.Time) (BillingPeriod, error) {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return BillingPeriod{}, fmt.Errorf("period end %s precedes start %s", e.Format(time.DateOnly), s.Format(time.DateOnly))
	}
	return BillingPeriod{start: s, end: e}, nil
}

// MonthOf returns the full calendar-month period containing the given date
func MonthOf(t time.Time) BillingPeriod {
	d := DateOnly(t)
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return BillingPeriod{start: start, end: end}
}

// Start returns the first day of the period
func (p BillingPeriod) Start() time.Time {
	return p.start
}

// End returns the last day of the period
func (p BillingPeriod) End() time.Time {
	return p.end
}

// Days returns the inclusive number of calendar days in the period
func (p BillingPeriod) Days() int {
	return int(p.end.Sub(p.start).Hours()/24) + 1
}

// DenominatorDays returns the period length used as the proration
// denominator under the given convention.
func (p BillingPeriod) DenominatorDays(convention DayCountConvention) int {
	if convention == ThirtyDayMonth {
		return 30
	}
	return p.Days()
}

// Contains reports whether the given date falls inside the period
func (p BillingPeriod) Contains(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(p.start) && !d.After(p.end)
}

// ContainsPeriod reports whether the other period lies fully inside this one
func (p BillingPeriod) ContainsPeriod(other BillingPeriod) bool {
	return !other.start.Before(p.start) && !other.end.After(p.end)
}

// Overlaps reports whether the two periods share at least one day
func (p BillingPeriod) Overlaps(other BillingPeriod) bool {
	return !other.end.Before(p.start) && !other.start.After(p.end)
}

// Intersect returns the overlap of the two periods.
// The second return value is false when they do not overlap.
func (p BillingPeriod) Intersect(other BillingPeriod) (BillingPeriod, bool) {
	if !p.Overlaps(other) {
		return BillingPeriod{}, false
	}
	start, end := p.start, p.end
	if other.start.After(start) {
		start = other.start
	}
	if other.end.Before(end) {
		end = other.end
	}
	return BillingPeriod{start: start, end: end}, true
}

// Equals returns true when both periods cover the same dates
func (p BillingPeriod) Equals(other BillingPeriod) bool {
	return p.start.Equal(other.start) && p.end.Equal(other.end)
}

// String renders the period as "YYYY-MM-DD..YYYY-MM-DD"
func (p BillingPeriod) String() string {
	return p.start.Format(time.DateOnly) + ".." + p.end.Format(time.DateOnly)
}
