package billing

import (
	"testing"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertDomainErrorCode asserts that err is a DomainError carrying the code
func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func mustPeriod(t *testing.T, start, end string) valueobject.BillingPeriod {
	t.Helper()
	s, err := time.Parse(time.DateOnly, start)
	require.NoError(t, err)
	e, err := time.Parse(time.DateOnly, end)
	require.NoError(t, err)
	p, err := valueobject.NewBillingPeriod(s, e)
	require.NoError(t, err)
	return p
}

func TestProrate_FullPeriod(t *testing.T) {
	period := mustPeriod(t, "2025-03-01", "2025-03-31")
	amount := decimal.NewFromInt(1000)

	got, err := Prorate(amount, valueobject.ActualDaysInMonth, period, period)
	require.NoError(t, err)
	assert.True(t, got.Equal(amount), "full coverage must return the amount unchanged, got %s", got)
}

func TestProrate_PartialPeriod(t *testing.T) {
	tests := []struct {
		name       string
		convention valueobject.DayCountConvention
		period     [2]string
		active     [2]string
		amount     string
		expected   string
	}{
		{
			name:       "mid-month start in 31-day month",
			convention: valueobject.ActualDaysInMonth,
			period:     [2]string{"2025-03-01", "2025-03-31"},
			active:     [2]string{"2025-03-10", "2025-03-31"},
			amount:     "1000",
			expected:   "709.68", // 1000 * 22/31
		},
		{
			name:       "single active day",
			convention: valueobject.ActualDaysInMonth,
			period:     [2]string{"2025-03-01", "2025-03-31"},
			active:     [2]string{"2025-03-31", "2025-03-31"},
			amount:     "1000",
			expected:   "32.26", // 1000 * 1/31
		},
		{
			name:       "thirty-day convention over 31-day month",
			convention: valueobject.ThirtyDayMonth,
			period:     [2]string{"2025-01-01", "2025-01-31"},
			active:     [2]string{"2025-01-01", "2025-01-15"},
			amount:     "3000",
			expected:   "1500", // 3000 * 15/30
		},
		{
			name:       "february under thirty-day convention",
			convention: valueobject.ThirtyDayMonth,
			period:     [2]string{"2025-02-01", "2025-02-28"},
			active:     [2]string{"2025-02-01", "2025-02-14"},
			amount:     "3000",
			expected:   "1400", // 3000 * 14/30
		},
		{
			name:       "half-to-even rounding",
			convention: valueobject.ActualDaysInMonth,
			period:     [2]string{"2025-04-01", "2025-04-30"},
			active:     [2]string{"2025-04-01", "2025-04-07"},
			amount:     "100.05",
			expected:   "23.34", // 100.05 * 7/30 = 23.345 -> banker's rounding
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period := mustPeriod(t, tt.period[0], tt.period[1])
			active := mustPeriod(t, tt.active[0], tt.active[1])
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)

			got, err := Prorate(amount, tt.convention, period, active)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestProrate_ThirtyDayConventionNeverExceedsFull(t *testing.T) {
	// 31 active days against a 30-day denominator must cap at the full amount.
	period := mustPeriod(t, "2025-01-01", "2025-01-31")
	active := mustPeriod(t, "2025-01-01", "2025-01-31")
	amount := decimal.NewFromInt(3000)

	got, err := Prorate(amount, valueobject.ThirtyDayMonth, period, active)
	require.NoError(t, err)
	assert.True(t, got.Equal(amount), "got %s", got)
}

func TestProrate_ActiveRangeOutsidePeriod(t *testing.T) {
	period := mustPeriod(t, "2025-03-01", "2025-03-31")
	active := mustPeriod(t, "2025-02-25", "2025-03-10")

	_, err := Prorate(decimal.NewFromInt(1000), valueobject.ActualDaysInMonth, period, active)
	assertDomainErrorCode(t, err, "ACTIVE_RANGE_OUT_OF_PERIOD")
}

func TestProrate_InvalidConvention(t *testing.T) {
	period := mustPeriod(t, "2025-03-01", "2025-03-31")

	_, err := Prorate(decimal.NewFromInt(1000), valueobject.DayCountConvention("BOGUS"), period, period)
	assertDomainErrorCode(t, err, "INVALID_CONVENTION")
}
