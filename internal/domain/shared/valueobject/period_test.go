package valueobject

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func period(t *testing.T, start, end time.Time) BillingPeriod {
	t.Helper()
	p, err := NewBillingPeriod(start, end)
	require.NoError(t, err)
	return p
}

func TestNewBillingPeriod(t *testing.T) {
	t.Run("normalizes timestamps to dates", func(t *testing.T) {
		p, err := NewBillingPeriod(
			time.Date(2025, 3, 1, 14, 25, 0, 0, time.UTC),
			time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Equal(t, date(2025, 3, 1), p.Start())
		assert.Equal(t, date(2025, 3, 31), p.End())
	})

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewBillingPeriod(date(2025, 3, 31), date(2025, 3, 1))
		assert.Error(t, err)
	})

	t.Run("single-day period is valid", func(t *testing.T) {
		p := period(t, date(2025, 3, 15), date(2025, 3, 15))
		assert.Equal(t, 1, p.Days())
	})
}

func TestMonthOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		days int
	}{
		{date(2025, 1, 15), 31},
		{date(2025, 2, 1), 28},
		{date(2024, 2, 29), 29}, // leap year
		{date(2025, 4, 30), 30},
	}

	for _, tt := range tests {
		t.Run(tt.in.Format(time.DateOnly), func(t *testing.T) {
			p := MonthOf(tt.in)
			assert.Equal(t, 1, p.Start().Day())
			assert.Equal(t, tt.days, p.Days())
		})
	}
}

func TestBillingPeriod_DenominatorDays(t *testing.T) {
	january := MonthOf(date(2025, 1, 10))
	assert.Equal(t, 31, january.DenominatorDays(ActualDaysInMonth))
	assert.Equal(t, 30, january.DenominatorDays(ThirtyDayMonth))

	february := MonthOf(date(2025, 2, 10))
	assert.Equal(t, 28, february.DenominatorDays(ActualDaysInMonth))
	assert.Equal(t, 30, february.DenominatorDays(ThirtyDayMonth))
}

func TestBillingPeriod_Contains(t *testing.T) {
	p := period(t, date(2025, 3, 1), date(2025, 3, 31))

	assert.True(t, p.Contains(date(2025, 3, 1)))
	assert.True(t, p.Contains(date(2025, 3, 31)))
	assert.False(t, p.Contains(date(2025, 2, 28)))
	assert.False(t, p.Contains(date(2025, 4, 1)))
	// Time of day on the last date still counts.
	assert.True(t, p.Contains(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)))
}

func TestBillingPeriod_Intersect(t *testing.T) {
	march := period(t, date(2025, 3, 1), date(2025, 3, 31))

	t.Run("overlapping ranges intersect", func(t *testing.T) {
		window := period(t, date(2025, 3, 10), date(2025, 4, 15))
		got, ok := march.Intersect(window)
		require.True(t, ok)
		assert.Equal(t, date(2025, 3, 10), got.Start())
		assert.Equal(t, date(2025, 3, 31), got.End())
	})

	t.Run("disjoint ranges do not intersect", func(t *testing.T) {
		window := period(t, date(2025, 4, 1), date(2025, 4, 30))
		_, ok := march.Intersect(window)
		assert.False(t, ok)
	})

	t.Run("contained range intersects to itself", func(t *testing.T) {
		window := period(t, date(2025, 3, 10), date(2025, 3, 20))
		got, ok := march.Intersect(window)
		require.True(t, ok)
		assert.True(t, got.Equals(window))
	})
}

func TestBillingPeriod_ContainsPeriodAndOverlaps(t *testing.T) {
	march := period(t, date(2025, 3, 1), date(2025, 3, 31))
	inner := period(t, date(2025, 3, 10), date(2025, 3, 20))
	straddling := period(t, date(2025, 2, 20), date(2025, 3, 5))

	assert.True(t, march.ContainsPeriod(inner))
	assert.False(t, march.ContainsPeriod(straddling))
	assert.True(t, march.Overlaps(straddling))
	assert.False(t, march.Overlaps(period(t, date(2025, 5, 1), date(2025, 5, 31))))
}
