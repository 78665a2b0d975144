package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UtilityType represents the kind of metered or billed utility
type UtilityType string

const (
	UtilityElectricity UtilityType = "ELECTRICITY"
	UtilityWater       UtilityType = "WATER"
	UtilityGas         UtilityType = "GAS"
)

// IsValid checks if the utility type is a valid UtilityType
func (u UtilityType) IsValid() bool {
	switch u {
	case UtilityElectricity, UtilityWater, UtilityGas:
		return true
	}
	return false
}

// String returns the string representation of UtilityType
func (u UtilityType) String() string {
	return string(u)
}

// RateTier is one slab of a progressive utility tariff. UpperBound is the
// cumulative consumption (in units) the tier extends to; a nil UpperBound
// marks the final, unbounded tier.
type RateTier struct {
	UpperBound *decimal.Decimal `json:"upper_bound,omitempty"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
}

// RateTiers is an ordered slice of RateTier that implements GORM
// Scanner/Valuer for JSONB storage
type RateTiers []RateTier

// Value implements driver.Valuer interface for GORM to store as JSONB
func (t RateTiers) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (t *RateTiers) Scan(value interface{}) error {
	if value == nil {
		*t = RateTiers{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan RateTiers: unsupported type")
	}

	if len(bytes) == 0 {
		*t = RateTiers{}
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// RatePlan is a tiered tariff for a metered utility. Consumption is charged
// slab by slab: each tier prices the units falling between the previous
// tier's bound and its own.
type RatePlan struct {
	shared.OrgAggregateRoot
	Name        string      `json:"name"`
	UtilityType UtilityType `json:"utility_type"`
	Tiers       RateTiers   `json:"tiers"`
	IsActive    bool        `json:"is_active"`
}

// NewRatePlan creates a new tiered rate plan
func NewRatePlan(orgID uuid.UUID, name string, utilityType UtilityType, tiers []RateTier) (*RatePlan, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Rate plan name cannot be empty")
	}
	if !utilityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_UTILITY_TYPE", fmt.Sprintf("Unknown utility type %q", utilityType))
	}
	if err := validateTiers(tiers); err != nil {
		return nil, err
	}

	return &RatePlan{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		UtilityType:      utilityType,
		Tiers:            tiers,
		IsActive:         true,
	}, nil
}

// validateTiers checks ordering and positivity of the tier schedule
func validateTiers(tiers []RateTier) error {
	if len(tiers) == 0 {
		return shared.NewDomainError("INVALID_TIERS", "Rate plan requires at least one tier")
	}
	prev := decimal.Zero
	for i, tier := range tiers {
		if tier.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_TIERS", fmt.Sprintf("Tier %d has a negative unit price", i+1))
		}
		if tier.UpperBound == nil {
			if i != len(tiers)-1 {
				return shared.NewDomainError("INVALID_TIERS", "Only the last tier may be unbounded")
			}
			continue
		}
		if tier.UpperBound.LessThanOrEqual(prev) {
			return shared.NewDomainError("INVALID_TIERS", fmt.Sprintf("Tier %d upper bound must exceed the previous bound", i+1))
		}
		prev = *tier.UpperBound
	}
	return nil
}

// AmountFor prices the given consumption against the tier schedule.
// Units are allocated tier by tier until exhausted; consumption beyond the
// last bounded tier is priced at the last tier's unit price. The result is
// rounded half-to-even to the currency's minor unit.
func (rp *RatePlan) AmountFor(unitsConsumed decimal.Decimal) (decimal.Decimal, error) {
	if unitsConsumed.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_CONSUMPTION", "Units consumed cannot be negative")
	}

	total := decimal.Zero
	remaining := unitsConsumed
	prevBound := decimal.Zero

	for _, tier := range rp.Tiers {
		if remaining.IsZero() {
			break
		}
		var inTier decimal.Decimal
		if tier.UpperBound == nil {
			inTier = remaining
		} else {
			capacity := tier.UpperBound.Sub(prevBound)
			inTier = decimal.Min(remaining, capacity)
			prevBound = *tier.UpperBound
		}
		total = total.Add(inTier.Mul(tier.UnitPrice))
		remaining = remaining.Sub(inTier)
	}

	// Consumption past the last bounded tier is priced at the final tier rate.
	if remaining.IsPositive() && len(rp.Tiers) > 0 {
		total = total.Add(remaining.Mul(rp.Tiers[len(rp.Tiers)-1].UnitPrice))
	}

	return total.RoundBank(2), nil
}

// UpdateTiers replaces the tier schedule
func (rp *RatePlan) UpdateTiers(tiers []RateTier) error {
	if err := validateTiers(tiers); err != nil {
		return err
	}
	rp.Tiers = tiers
	rp.UpdatedAt = time.Now().UTC()
	rp.IncrementVersion()
	return nil
}

// Deactivate retires the plan from new statements
func (rp *RatePlan) Deactivate() {
	rp.IsActive = false
	rp.UpdatedAt = time.Now().UTC()
	rp.IncrementVersion()
}
