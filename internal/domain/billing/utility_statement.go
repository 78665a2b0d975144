package billing

import (
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityStatement records utility consumption or billing for a lease and
// billing period. A statement is either meter-based (previous/current
// readings priced by a tiered rate plan) or amount-based (the provider's
// bill passed through directly).
//
// Statements are versioned: drafts may be revised freely, but once a
// statement is finalized it becomes read-only and at most one final
// statement may exist per (lease, utility type, period). Corrections go
// through a superseding draft with an incremented revision; when that
// draft is finalized the old final is demoted and keeps its data as
// read-only history with SupersededAt set.
type UtilityStatement struct {
	shared.OrgAggregateRoot
	LeaseID          uuid.UUID        `json:"lease_id"`
	UtilityType      UtilityType      `json:"utility_type"`
	PeriodStart      time.Time        `json:"period_start"`
	PeriodEnd        time.Time        `json:"period_end"`
	MeterBased       bool             `json:"meter_based"`
	RatePlanID       *uuid.UUID       `json:"rate_plan_id,omitempty"`
	PreviousReading  *decimal.Decimal `json:"previous_reading,omitempty"`
	CurrentReading   *decimal.Decimal `json:"current_reading,omitempty"`
	DirectBillAmount *decimal.Decimal `json:"direct_bill_amount,omitempty"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	Revision         int              `json:"revision"`
	IsFinal          bool             `json:"is_final"`
	SupersededAt     *time.Time       `json:"superseded_at,omitempty"`
}

// NewMeterStatement creates a draft meter-based statement
func NewMeterStatement(
	orgID uuid.UUID,
	leaseID uuid.UUID,
	utilityType UtilityType,
	period valueobject.BillingPeriod,
	ratePlanID uuid.UUID,
	previousReading decimal.Decimal,
	currentReading decimal.Decimal,
) (*UtilityStatement, error) {
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if !utilityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", fmt.Sprintf("Unknown utility type %q", utilityType))
	}
	if ratePlanID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RATE_PLAN", "Meter-based statement requires a rate plan")
	}
	if previousReading.IsNegative() {
		return nil, shared.NewDomainError("INVALID_READING", "Previous reading cannot be negative")
	}
	if currentReading.LessThan(previousReading) {
		return nil, shared.NewDomainError("INVALID_READING",
			fmt.Sprintf("Current reading %s is below previous reading %s", currentReading, previousReading))
	}

	us := &UtilityStatement{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		LeaseID:          leaseID,
		UtilityType:      utilityType,
		PeriodStart:      period.Start(),
		PeriodEnd:        period.End(),
		MeterBased:       true,
		RatePlanID:       &ratePlanID,
		PreviousReading:  &previousReading,
		CurrentReading:   &currentReading,
		Revision:         1,
		IsFinal:          false,
	}
	return us, nil
}

// NewDirectStatement creates a draft amount-based statement carrying the
// provider's billed amount directly
func NewDirectStatement(
	orgID uuid.UUID,
	leaseID uuid.UUID,
	utilityType UtilityType,
	period valueobject.BillingPeriod,
	directBillAmount decimal.Decimal,
) (*UtilityStatement, error) {
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if !utilityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", fmt.Sprintf("Unknown utility type %q", utilityType))
	}
	if directBillAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Direct bill amount cannot be negative")
	}

	us := &UtilityStatement{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		LeaseID:          leaseID,
		UtilityType:      utilityType,
		PeriodStart:      period.Start(),
		PeriodEnd:        period.End(),
		MeterBased:       false,
		DirectBillAmount: &directBillAmount,
		TotalAmount:      directBillAmount,
		Revision:         1,
		IsFinal:          false,
	}
	return us, nil
}

// Period returns the statement's billing period
func (us *UtilityStatement) Period() valueobject.BillingPeriod {
	p, _ := valueobject.NewBillingPeriod(us.PeriodStart, us.PeriodEnd)
	return p
}

// UnitsConsumed returns the metered consumption (current minus previous)
func (us *UtilityStatement) UnitsConsumed() (decimal.Decimal, error) {
	if !us.MeterBased {
		return decimal.Zero, shared.NewDomainError("NOT_METER_BASED", "Statement is not meter-based")
	}
	if us.PreviousReading == nil || us.CurrentReading == nil {
		return decimal.Zero, shared.NewDomainError("MISSING_READINGS", "Meter readings are not set")
	}
	consumed := us.CurrentReading.Sub(*us.PreviousReading)
	if consumed.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_READING", "Current reading is below previous reading")
	}
	return consumed, nil
}

// Compute prices the statement. Meter-based statements are priced through
// the given rate plan; amount-based statements pass the provider's bill
// through unchanged. The plan must match the statement's RatePlanID.
func (us *UtilityStatement) Compute(plan *RatePlan) error {
	if err := us.ensureEditable(); err != nil {
		return err
	}

	if !us.MeterBased {
		us.TotalAmount = *us.DirectBillAmount
		us.UpdatedAt = time.Now().UTC()
		us.IncrementVersion()
		return nil
	}

	if plan == nil {
		return shared.NewDomainError("INVALID_RATE_PLAN", "Meter-based statement requires a rate plan")
	}
	if us.RatePlanID == nil || plan.ID != *us.RatePlanID {
		return shared.NewDomainError("RATE_PLAN_MISMATCH", "Rate plan does not match the statement")
	}
	if plan.UtilityType != us.UtilityType {
		return shared.NewDomainError("RATE_PLAN_MISMATCH",
			fmt.Sprintf("Rate plan is for %s, statement is for %s", plan.UtilityType, us.UtilityType))
	}

	consumed, err := us.UnitsConsumed()
	if err != nil {
		return err
	}
	amount, err := plan.AmountFor(consumed)
	if err != nil {
		return err
	}

	us.TotalAmount = amount
	us.UpdatedAt = time.Now().UTC()
	us.IncrementVersion()
	return nil
}

// UpdateReadings revises the meter readings on a draft statement
func (us *UtilityStatement) UpdateReadings(previousReading, currentReading decimal.Decimal) error {
	if err := us.ensureEditable(); err != nil {
		return err
	}
	if !us.MeterBased {
		return shared.NewDomainError("NOT_METER_BASED", "Statement is not meter-based")
	}
	if previousReading.IsNegative() {
		return shared.NewDomainError("INVALID_READING", "Previous reading cannot be negative")
	}
	if currentReading.LessThan(previousReading) {
		return shared.NewDomainError("INVALID_READING",
			fmt.Sprintf("Current reading %s is below previous reading %s", currentReading, previousReading))
	}

	us.PreviousReading = &previousReading
	us.CurrentReading = &currentReading
	us.UpdatedAt = time.Now().UTC()
	us.IncrementVersion()
	return nil
}

// UpdateDirectBillAmount revises the provider-billed amount on a draft statement
func (us *UtilityStatement) UpdateDirectBillAmount(amount decimal.Decimal) error {
	if err := us.ensureEditable(); err != nil {
		return err
	}
	if us.MeterBased {
		return shared.NewDomainError("NOT_AMOUNT_BASED", "Statement is meter-based")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Direct bill amount cannot be negative")
	}

	us.DirectBillAmount = &amount
	us.TotalAmount = amount
	us.UpdatedAt = time.Now().UTC()
	us.IncrementVersion()
	return nil
}

// ensureEditable rejects mutation of final or superseded statements. Both
// are read-only; corrections always flow through a fresh revision.
func (us *UtilityStatement) ensureEditable() error {
	if us.SupersededAt != nil {
		return shared.NewDomainError("STATEMENT_SUPERSEDED", "Superseded statements are read-only history")
	}
	if us.IsFinal {
		return shared.NewDomainError("STATEMENT_FINAL", "Final statements are read-only; supersede with a new revision")
	}
	return nil
}

// Finalize marks the statement final. The caller must have verified through
// the repository that no other final statement exists for the same lease,
// utility type and period; this method only guards the statement's own state.
func (us *UtilityStatement) Finalize() error {
	if us.SupersededAt != nil {
		return shared.NewDomainError("STATEMENT_SUPERSEDED", "A superseded statement cannot be finalized again")
	}
	if us.IsFinal {
		return shared.NewDomainError("STATEMENT_FINAL", "Statement is already final")
	}
	us.IsFinal = true
	us.UpdatedAt = time.Now().UTC()
	us.IncrementVersion()

	us.AddDomainEvent(NewUtilityStatementFinalizedEvent(us))

	return nil
}

// Supersede demotes a final statement in favour of a finalized revision. The
// statement keeps its data but stops being the final for its slot and can
// never be edited or re-finalized.
func (us *UtilityStatement) Supersede(at time.Time) error {
	if !us.IsFinal {
		return shared.NewDomainError("INVALID_STATE", "Only a final statement can be superseded")
	}
	at = at.UTC()
	us.IsFinal = false
	us.SupersededAt = &at
	us.UpdatedAt = time.Now().UTC()
	us.IncrementVersion()

	us.AddDomainEvent(NewUtilityStatementSupersededEvent(us))

	return nil
}

// NewRevision creates a superseding draft copy with an incremented revision
// number. The original stays untouched; the new draft must itself be
// finalized to replace it.
func (us *UtilityStatement) NewRevision() *UtilityStatement {
	next := &UtilityStatement{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(us.OrgID),
		LeaseID:          us.LeaseID,
		UtilityType:      us.UtilityType,
		PeriodStart:      us.PeriodStart,
		PeriodEnd:        us.PeriodEnd,
		MeterBased:       us.MeterBased,
		RatePlanID:       us.RatePlanID,
		PreviousReading:  us.PreviousReading,
		CurrentReading:   us.CurrentReading,
		DirectBillAmount: us.DirectBillAmount,
		TotalAmount:      us.TotalAmount,
		Revision:         us.Revision + 1,
		IsFinal:          false,
	}
	return next
}

// GetTotalAmountMoney returns the computed total as Money
func (us *UtilityStatement) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(us.TotalAmount)
}
