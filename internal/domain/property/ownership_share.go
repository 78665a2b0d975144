package property

import (
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParentKind identifies what a set of ownership shares is attached to
type ParentKind string

const (
	ParentBuilding ParentKind = "BUILDING"
	ParentUnit     ParentKind = "UNIT"
)

// IsValid checks if the parent kind is valid
func (k ParentKind) IsValid() bool {
	return k == ParentBuilding || k == ParentUnit
}

// String returns the string representation of ParentKind
func (k ParentKind) String() string {
	return string(k)
}

// DefaultShareTolerance is the allowed deviation of a share set's sum from
// 100 percent. Shares are entered with two fraction digits, so a set summing
// to 99.99 or 100.01 after rounding is accepted; anything further off is
// rejected.
var DefaultShareTolerance = decimal.NewFromFloat(0.01)

// OwnershipShare attributes a percentage of a building or unit to an owner
type OwnershipShare struct {
	shared.BaseEntity
	OrgID         uuid.UUID           `json:"org_id"`
	ParentKind    ParentKind          `json:"parent_kind"`
	ParentID      uuid.UUID           `json:"parent_id"`
	OwnerID       uuid.UUID           `json:"owner_id"`
	Percent       valueobject.Percent `json:"percent"`
	EffectiveFrom time.Time           `json:"effective_from"`
	AssignedBy    string              `json:"assigned_by"`
}

// ProposedShare is one (owner, percentage) pair in a proposed share set.
// Percentages arrive as raw decimals so the validator can report range
// violations itself instead of failing at construction.
type ProposedShare struct {
	OwnerID uuid.UUID       `json:"owner_id"`
	Percent decimal.Decimal `json:"percent"`
}

// hundred is the target sum for a complete share set
var hundred = decimal.NewFromInt(100)

// ValidateShareSet checks a proposed ownership-share set against the
// 100-percent invariant. All violations found in the same pass are reported
// together: a non-empty list, no duplicate owners, every percentage
// strictly positive and at most 100, and the sum within tolerance of 100.
//
// Owner existence is a separate check requiring the repository; see
// OwnershipService.
func ValidateShareSet(shares []ProposedShare, tolerance decimal.Decimal) error {
	violations := &shared.ValidationErrors{}

	if len(shares) == 0 {
		violations.Add("EMPTY_SHARES", "At least one ownership share is required")
		return violations.AsError()
	}

	seen := make(map[uuid.UUID]bool, len(shares))
	sum := decimal.Zero
	for i, share := range shares {
		if share.OwnerID == uuid.Nil {
			violations.Add("INVALID_OWNER", fmt.Sprintf("Share %d has an empty owner ID", i+1))
		} else if seen[share.OwnerID] {
			violations.Add("DUPLICATE_OWNER", fmt.Sprintf("Owner %s appears more than once", share.OwnerID))
		} else {
			seen[share.OwnerID] = true
		}

		pct := share.Percent.Round(valueobject.PercentDigits)
		if pct.LessThanOrEqual(decimal.Zero) {
			violations.Add("NON_POSITIVE_SHARE", fmt.Sprintf("Share for owner %s must be positive, got %s", share.OwnerID, share.Percent))
			continue
		}
		if pct.GreaterThan(hundred) {
			violations.Add("SHARE_EXCEEDS_100", fmt.Sprintf("Share for owner %s exceeds 100, got %s", share.OwnerID, share.Percent))
			continue
		}
		sum = sum.Add(pct)
	}

	if diff := sum.Sub(hundred).Abs(); diff.GreaterThan(tolerance) {
		violations.Add("SHARES_NOT_100", fmt.Sprintf("Ownership shares sum to %s, expected 100.00 within ±%s", sum.StringFixed(2), tolerance))
	}

	return violations.AsError()
}

// NewShareSet builds the OwnershipShare entities for a validated proposal.
// It must only be called after ValidateShareSet (and the owner-existence
// check) has passed.
func NewShareSet(orgID uuid.UUID, parentKind ParentKind, parentID uuid.UUID, shares []ProposedShare, effectiveFrom time.Time, assignedBy string) ([]OwnershipShare, error) {
	if !parentKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARENT_KIND", fmt.Sprintf("Unknown parent kind %q", parentKind))
	}
	if parentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent ID cannot be empty")
	}

	result := make([]OwnershipShare, 0, len(shares))
	effective := valueobject.DateOnly(effectiveFrom)
	for _, share := range shares {
		pct, err := valueobject.NewPercent(share.Percent)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_SHARE", err.Error())
		}
		result = append(result, OwnershipShare{
			BaseEntity:    shared.NewBaseEntity(),
			OrgID:         orgID,
			ParentKind:    parentKind,
			ParentID:      parentID,
			OwnerID:       share.OwnerID,
			Percent:       pct,
			EffectiveFrom: effective,
			AssignedBy:    assignedBy,
		})
	}
	return result, nil
}

// SumPercent returns the total percentage of a share set
func SumPercent(shares []OwnershipShare) decimal.Decimal {
	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share.Percent.Value())
	}
	return sum
}
