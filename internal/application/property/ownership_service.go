package property

import (
	"context"
	"errors"
	"time"

	"github.com/propely/backend/internal/domain/property"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OwnershipService manages the ownership share sets of buildings and units.
// A share set is always replaced wholesale: the incoming set is validated
// against the 100-percent invariant and against the owner registry, then
// swapped in atomically.
type OwnershipService struct {
	shareRepo property.OwnershipShareRepository
	ownerRepo property.OwnerRepository
	logger    *zap.Logger

	tolerance decimal.Decimal
}

// OwnershipServiceOption is a functional option for configuring OwnershipService
type OwnershipServiceOption func(*OwnershipService)

// WithShareTolerance overrides the allowed deviation of a share set's sum
// from 100 percent
func WithShareTolerance(tolerance decimal.Decimal) OwnershipServiceOption {
	return func(s *OwnershipService) {
		if tolerance.IsPositive() {
			s.tolerance = tolerance
		}
	}
}

// NewOwnershipService creates a new OwnershipService
func NewOwnershipService(
	shareRepo property.OwnershipShareRepository,
	ownerRepo property.OwnerRepository,
	logger *zap.Logger,
	opts ...OwnershipServiceOption,
) *OwnershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OwnershipService{
		shareRepo: shareRepo,
		ownerRepo: ownerRepo,
		logger:    logger,
		tolerance: property.DefaultShareTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShareResponse represents one ownership share in API responses
type ShareResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrgID         uuid.UUID       `json:"org_id"`
	ParentKind    string          `json:"parent_kind"`
	ParentID      uuid.UUID       `json:"parent_id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	Percent       decimal.Decimal `json:"percent"`
	EffectiveFrom time.Time       `json:"effective_from"`
	AssignedBy    string          `json:"assigned_by"`
}

func toShareResponse(share *property.OwnershipShare) *ShareResponse {
	return &ShareResponse{
		ID:            share.ID,
		OrgID:         share.OrgID,
		ParentKind:    share.ParentKind.String(),
		ParentID:      share.ParentID,
		OwnerID:       share.OwnerID,
		Percent:       share.Percent.Value(),
		EffectiveFrom: share.EffectiveFrom,
		AssignedBy:    share.AssignedBy,
	}
}

// ShareInput is one (owner, percentage) pair of a proposed share set
type ShareInput struct {
	OwnerID uuid.UUID       `json:"owner_id" binding:"required"`
	Percent decimal.Decimal `json:"percent" binding:"required"`
}

// ReplaceSharesRequest carries a full replacement share set for a parent
type ReplaceSharesRequest struct {
	ParentKind    string       `json:"parent_kind" binding:"required"`
	ParentID      uuid.UUID    `json:"parent_id" binding:"required"`
	Shares        []ShareInput `json:"shares" binding:"required"`
	EffectiveFrom time.Time    `json:"effective_from" binding:"required"`
}

// ReplaceShares validates and atomically installs a new share set for a
// building or unit. Validation reports all violations of the set in one
// response: the structural checks of the 100-percent invariant plus an
// existence check for every referenced owner.
func (s *OwnershipService) ReplaceShares(ctx context.Context, orgID uuid.UUID, assignedBy string, req ReplaceSharesRequest) ([]ShareResponse, error) {
	kind := property.ParentKind(req.ParentKind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARENT_KIND", "Parent kind must be BUILDING or UNIT")
	}

	proposed := make([]property.ProposedShare, len(req.Shares))
	for i, in := range req.Shares {
		proposed[i] = property.ProposedShare{OwnerID: in.OwnerID, Percent: in.Percent}
	}

	violations := &shared.ValidationErrors{}
	if err := property.ValidateShareSet(proposed, s.tolerance); err != nil {
		var structural *shared.ValidationErrors
		if !errors.As(err, &structural) {
			return nil, err
		}
		violations.Violations = append(violations.Violations, structural.Violations...)
	}

	if err := s.checkOwnersExist(ctx, orgID, proposed, violations); err != nil {
		return nil, err
	}
	if err := violations.AsError(); err != nil {
		return nil, err
	}

	shares, err := property.NewShareSet(orgID, kind, req.ParentID, proposed, req.EffectiveFrom, assignedBy)
	if err != nil {
		return nil, err
	}
	if err := s.shareRepo.ReplaceForParent(ctx, orgID, kind, req.ParentID, shares); err != nil {
		return nil, err
	}

	s.logger.Info("Ownership shares replaced",
		zap.String("parent_kind", kind.String()),
		zap.String("parent_id", req.ParentID.String()),
		zap.Int("owners", len(shares)))

	responses := make([]ShareResponse, len(shares))
	for i := range shares {
		responses[i] = *toShareResponse(&shares[i])
	}
	return responses, nil
}

// ValidateShares runs the full share-set validation without installing
// anything. It backs the dry-run endpoint the share editor calls on every
// keystroke.
func (s *OwnershipService) ValidateShares(ctx context.Context, orgID uuid.UUID, inputs []ShareInput) error {
	proposed := make([]property.ProposedShare, len(inputs))
	for i, in := range inputs {
		proposed[i] = property.ProposedShare{OwnerID: in.OwnerID, Percent: in.Percent}
	}

	violations := &shared.ValidationErrors{}
	if err := property.ValidateShareSet(proposed, s.tolerance); err != nil {
		var structural *shared.ValidationErrors
		if !errors.As(err, &structural) {
			return err
		}
		violations.Violations = append(violations.Violations, structural.Violations...)
	}
	if err := s.checkOwnersExist(ctx, orgID, proposed, violations); err != nil {
		return err
	}
	return violations.AsError()
}

// GetShares returns the current share set of a building or unit
func (s *OwnershipService) GetShares(ctx context.Context, orgID uuid.UUID, parentKind string, parentID uuid.UUID) ([]ShareResponse, error) {
	kind := property.ParentKind(parentKind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARENT_KIND", "Parent kind must be BUILDING or UNIT")
	}

	shares, err := s.shareRepo.FindByParent(ctx, orgID, kind, parentID)
	if err != nil {
		return nil, err
	}
	responses := make([]ShareResponse, len(shares))
	for i := range shares {
		responses[i] = *toShareResponse(&shares[i])
	}
	return responses, nil
}

// GetSharesByOwner returns every share currently attributed to an owner
func (s *OwnershipService) GetSharesByOwner(ctx context.Context, orgID, ownerID uuid.UUID) ([]ShareResponse, error) {
	shares, err := s.shareRepo.FindByOwner(ctx, orgID, ownerID)
	if err != nil {
		return nil, err
	}
	responses := make([]ShareResponse, len(shares))
	for i := range shares {
		responses[i] = *toShareResponse(&shares[i])
	}
	return responses, nil
}

// checkOwnersExist appends an UNKNOWN_OWNER violation for every proposed
// owner that is missing from the registry or soft-deleted
func (s *OwnershipService) checkOwnersExist(ctx context.Context, orgID uuid.UUID, proposed []property.ProposedShare, violations *shared.ValidationErrors) error {
	ids := make([]uuid.UUID, 0, len(proposed))
	seen := make(map[uuid.UUID]bool, len(proposed))
	for _, p := range proposed {
		if p.OwnerID == uuid.Nil || seen[p.OwnerID] {
			continue
		}
		seen[p.OwnerID] = true
		ids = append(ids, p.OwnerID)
	}
	if len(ids) == 0 {
		return nil
	}

	existing, err := s.ownerRepo.FindExistingIDs(ctx, orgID, ids)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			violations.Add("UNKNOWN_OWNER", "Owner "+id.String()+" does not exist")
		}
	}
	return nil
}
