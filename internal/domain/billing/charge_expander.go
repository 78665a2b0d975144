package billing

import (
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineCandidate is an invoice line produced by expanding a lease's recurring
// charges over a billing period. Candidates are not persisted; the invoice
// lifecycle owns turning them into invoice lines.
type LineCandidate struct {
	ChargeID     uuid.UUID                 `json:"charge_id"`
	ChargeTypeID uuid.UUID                 `json:"charge_type_id"`
	Description  string                    `json:"description"`
	Amount       decimal.Decimal           `json:"amount"`
	Prorated     bool                      `json:"prorated"`
	ActiveRange  valueobject.BillingPeriod `json:"active_range"`
}

// ExpandCharges produces the invoice-line candidates for a set of recurring
// charges over a target billing period.
//
// A charge contributes when it is active, its activation window overlaps the
// period, and its frequency is due in the period. The contributed amount is
// the full-period amount when the charge covers the whole period, or the
// prorated amount for the clamped active range otherwise.
func ExpandCharges(charges []*RecurringCharge, period valueobject.BillingPeriod, convention valueobject.DayCountConvention) ([]LineCandidate, error) {
	candidates := make([]LineCandidate, 0, len(charges))

	for _, rc := range charges {
		if !rc.IsActive {
			continue
		}
		if !rc.OverlapsWindow(period) {
			continue
		}
		if !rc.IsDueIn(period) {
			continue
		}

		activeRange, ok := rc.ActiveRangeWithin(period)
		if !ok {
			continue
		}

		amount := rc.Amount
		prorated := false
		if !activeRange.Equals(period) {
			var err error
			amount, err = Prorate(rc.Amount, convention, period, activeRange)
			if err != nil {
				return nil, err
			}
			prorated = true
		}

		candidates = append(candidates, LineCandidate{
			ChargeID:     rc.ID,
			ChargeTypeID: rc.ChargeTypeID,
			Description:  rc.Description,
			Amount:       amount,
			Prorated:     prorated,
			ActiveRange:  activeRange,
		})
	}

	return candidates, nil
}
