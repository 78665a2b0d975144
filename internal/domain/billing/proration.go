package billing

import (
	"fmt"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Prorate computes the charge amount owed for the active date range within a
// billing period, given the full-period amount.
//
// The denominator follows the day-count convention: ActualDaysInMonth uses the
// period's calendar length, ThirtyDayMonth always divides by 30. The result is
// rounded half-to-even to the currency's minor unit. When the active range
// covers the whole period, the full amount is returned unchanged so the common
// case never picks up rounding drift from the general formula.
//
// The active range must lie inside the period; an out-of-bounds range is a
// caller contract violation and fails immediately rather than being clamped.
func Prorate(fullAmount decimal.Decimal, convention valueobject.DayCountConvention, period, activeRange valueobject.BillingPeriod) (decimal.Decimal, error) {
	if !convention.IsValid() {
		return decimal.Zero, shared.NewDomainError("INVALID_CONVENTION", fmt.Sprintf("Unknown day-count convention %q", convention))
	}
	if !period.ContainsPeriod(activeRange) {
		return decimal.Zero, shared.NewDomainError("ACTIVE_RANGE_OUT_OF_PERIOD",
			fmt.Sprintf("Active range %s is outside billing period %s", activeRange, period))
	}
	if activeRange.Equals(period) {
		return fullAmount, nil
	}

	activeDays := activeRange.Days()
	periodDays := period.DenominatorDays(convention)
	// A 31st active day under the thirty-day convention must not bill more
	// than the full-period amount.
	if activeDays >= periodDays {
		return fullAmount, nil
	}

	prorated := fullAmount.
		Mul(decimal.NewFromInt(int64(activeDays))).
		Div(decimal.NewFromInt(int64(periodDays))).
		RoundBank(valueobject.MinorUnitDigits)
	return prorated, nil
}
