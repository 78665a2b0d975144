package billing

import (
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeFrequency represents how often a recurring charge is billed
type ChargeFrequency string

const (
	FrequencyOneTime   ChargeFrequency = "ONE_TIME"
	FrequencyMonthly   ChargeFrequency = "MONTHLY"
	FrequencyQuarterly ChargeFrequency = "QUARTERLY"
	FrequencyYearly    ChargeFrequency = "YEARLY"
)

// IsValid checks if the frequency is a valid ChargeFrequency
func (f ChargeFrequency) IsValid() bool {
	switch f {
	case FrequencyOneTime, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of ChargeFrequency
func (f ChargeFrequency) String() string {
	return string(f)
}

// RecurringCharge is a lease-attached, periodically billed amount such as
// rent or maintenance. Charges are never physically deleted; a charge that
// should stop billing is deactivated so historical invoices stay explainable.
type RecurringCharge struct {
	shared.OrgAggregateRoot
	LeaseID      uuid.UUID       `json:"lease_id"`
	ChargeTypeID uuid.UUID       `json:"charge_type_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"` // Full-period amount
	Frequency    ChargeFrequency `json:"frequency"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	IsActive     bool            `json:"is_active"`
}

// NewRecurringCharge creates a new recurring charge for a lease
func NewRecurringCharge(
	orgID uuid.UUID,
	leaseID uuid.UUID,
	chargeTypeID uuid.UUID,
	description string,
	amount valueobject.Money,
	frequency ChargeFrequency,
	startDate time.Time,
	endDate *time.Time,
) (*RecurringCharge, error) {
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if chargeTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CHARGE_TYPE", "Charge type ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unknown charge frequency %q", frequency))
	}
	start := valueobject.DateOnly(startDate)
	var end *time.Time
	if endDate != nil {
		e := valueobject.DateOnly(*endDate)
		if !e.After(start) {
			return nil, shared.NewDomainError("INVALID_DATE_RANGE", "End date must be after start date")
		}
		end = &e
	}

	rc := &RecurringCharge{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		LeaseID:          leaseID,
		ChargeTypeID:     chargeTypeID,
		Description:      description,
		Amount:           amount.Amount(),
		Frequency:        frequency,
		StartDate:        start,
		EndDate:          end,
		IsActive:         true,
	}

	rc.AddDomainEvent(NewRecurringChargeCreatedEvent(rc))

	return rc, nil
}

// Update changes the amount and the activation window of the charge
func (rc *RecurringCharge) Update(amount valueobject.Money, startDate time.Time, endDate *time.Time) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Charge amount must be positive")
	}
	start := valueobject.DateOnly(startDate)
	var end *time.Time
	if endDate != nil {
		e := valueobject.DateOnly(*endDate)
		if !e.After(start) {
			return shared.NewDomainError("INVALID_DATE_RANGE", "End date must be after start date")
		}
		end = &e
	}

	rc.Amount = amount.Amount()
	rc.StartDate = start
	rc.EndDate = end
	rc.UpdatedAt = time.Now().UTC()
	rc.IncrementVersion()

	rc.AddDomainEvent(NewRecurringChargeUpdatedEvent(rc))

	return nil
}

// Deactivate stops the charge from being billed in future periods
func (rc *RecurringCharge) Deactivate() error {
	if !rc.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Charge is already inactive")
	}
	rc.IsActive = false
	rc.UpdatedAt = time.Now().UTC()
	rc.IncrementVersion()

	rc.AddDomainEvent(NewRecurringChargeDeactivatedEvent(rc))

	return nil
}

// Activate re-enables a previously deactivated charge
func (rc *RecurringCharge) Activate() error {
	if rc.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Charge is already active")
	}
	rc.IsActive = true
	rc.UpdatedAt = time.Now().UTC()
	rc.IncrementVersion()
	return nil
}

// SetDescription updates the display description
func (rc *RecurringCharge) SetDescription(description string) error {
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	rc.Description = description
	rc.UpdatedAt = time.Now().UTC()
	rc.IncrementVersion()
	return nil
}

// GetAmountMoney returns the full-period amount as Money
func (rc *RecurringCharge) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(rc.Amount)
}

// OverlapsWindow reports whether the charge's activation window touches the
// given billing period: the charge has started by the period's end and has
// not ended before the period's start.
func (rc *RecurringCharge) OverlapsWindow(period valueobject.BillingPeriod) bool {
	if rc.StartDate.After(period.End()) {
		return false
	}
	if rc.EndDate != nil && rc.EndDate.Before(period.Start()) {
		return false
	}
	return true
}

// IsDueIn reports whether the charge's frequency makes it billable in the
// given period. One-time charges bill only in the period containing their
// start date; monthly charges bill every period; quarterly and yearly
// charges bill in periods whose start month aligns with the charge's start
// month modulo 3 or 12.
func (rc *RecurringCharge) IsDueIn(period valueobject.BillingPeriod) bool {
	switch rc.Frequency {
	case FrequencyOneTime:
		return period.Contains(rc.StartDate)
	case FrequencyMonthly:
		return true
	case FrequencyQuarterly:
		return monthsBetween(rc.StartDate, period.Start())%3 == 0
	case FrequencyYearly:
		return monthsBetween(rc.StartDate, period.Start())%12 == 0
	}
	return false
}

// ActiveRangeWithin returns the part of the billing period the charge is
// active for, clamped to the period bounds. The second return value is false
// when the charge does not touch the period at all.
func (rc *RecurringCharge) ActiveRangeWithin(period valueobject.BillingPeriod) (valueobject.BillingPeriod, bool) {
	end := period.End()
	if rc.EndDate != nil && rc.EndDate.Before(end) {
		end = *rc.EndDate
	}
	window, err := valueobject.NewBillingPeriod(rc.StartDate, end)
	if err != nil {
		return valueobject.BillingPeriod{}, false
	}
	return period.Intersect(window)
}

// monthsBetween returns the whole-month distance from a to b (b on or after a)
func monthsBetween(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if months < 0 {
		return -months
	}
	return months
}
