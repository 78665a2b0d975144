package billing

import (
	"context"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RatePlanService manages tiered utility tariffs
type RatePlanService struct {
	ratePlanRepo billing.RatePlanRepository
	logger       *zap.Logger
}

// NewRatePlanService creates a new RatePlanService
func NewRatePlanService(ratePlanRepo billing.RatePlanRepository, logger *zap.Logger) *RatePlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatePlanService{ratePlanRepo: ratePlanRepo, logger: logger}
}

// RatePlanResponse represents a rate plan in API responses
type RatePlanResponse struct {
	ID          uuid.UUID          `json:"id"`
	OrgID       uuid.UUID          `json:"org_id"`
	Name        string             `json:"name"`
	UtilityType string             `json:"utility_type"`
	Tiers       []billing.RateTier `json:"tiers"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

func toRatePlanResponse(rp *billing.RatePlan) *RatePlanResponse {
	return &RatePlanResponse{
		ID:          rp.ID,
		OrgID:       rp.OrgID,
		Name:        rp.Name,
		UtilityType: rp.UtilityType.String(),
		Tiers:       rp.Tiers,
		IsActive:    rp.IsActive,
		CreatedAt:   rp.CreatedAt,
		UpdatedAt:   rp.UpdatedAt,
		Version:     rp.Version,
	}
}

// CreateRatePlanRequest carries the input for a new tariff
type CreateRatePlanRequest struct {
	Name        string             `json:"name" binding:"required"`
	UtilityType string             `json:"utility_type" binding:"required"`
	Tiers       []billing.RateTier `json:"tiers" binding:"required"`
}

// CreateRatePlan creates a new tiered rate plan
func (s *RatePlanService) CreateRatePlan(ctx context.Context, orgID uuid.UUID, req CreateRatePlanRequest) (*RatePlanResponse, error) {
	rp, err := billing.NewRatePlan(orgID, req.Name, billing.UtilityType(req.UtilityType), req.Tiers)
	if err != nil {
		return nil, err
	}
	if err := s.ratePlanRepo.Save(ctx, rp); err != nil {
		return nil, err
	}

	s.logger.Info("Rate plan created",
		zap.String("plan_id", rp.ID.String()),
		zap.String("utility_type", rp.UtilityType.String()),
		zap.Int("tiers", len(rp.Tiers)))

	return toRatePlanResponse(rp), nil
}

// UpdateTiers replaces the tier schedule of a plan. Statements already
// computed keep their totals; only future computations see the new tiers.
func (s *RatePlanService) UpdateTiers(ctx context.Context, orgID, planID uuid.UUID, tiers []billing.RateTier) (*RatePlanResponse, error) {
	rp, err := s.findPlan(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	if err := rp.UpdateTiers(tiers); err != nil {
		return nil, err
	}
	if err := s.ratePlanRepo.SaveWithLock(ctx, rp); err != nil {
		return nil, err
	}
	return toRatePlanResponse(rp), nil
}

// DeactivateRatePlan retires a plan from new statements
func (s *RatePlanService) DeactivateRatePlan(ctx context.Context, orgID, planID uuid.UUID) (*RatePlanResponse, error) {
	rp, err := s.findPlan(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	rp.Deactivate()
	if err := s.ratePlanRepo.SaveWithLock(ctx, rp); err != nil {
		return nil, err
	}
	return toRatePlanResponse(rp), nil
}

// GetRatePlan returns a single plan
func (s *RatePlanService) GetRatePlan(ctx context.Context, orgID, planID uuid.UUID) (*RatePlanResponse, error) {
	rp, err := s.findPlan(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	return toRatePlanResponse(rp), nil
}

// ListActiveByUtility returns the active plans for a utility type
func (s *RatePlanService) ListActiveByUtility(ctx context.Context, orgID uuid.UUID, utilityType string) ([]RatePlanResponse, error) {
	plans, err := s.ratePlanRepo.FindActiveByUtilityType(ctx, orgID, billing.UtilityType(utilityType))
	if err != nil {
		return nil, err
	}
	responses := make([]RatePlanResponse, len(plans))
	for i := range plans {
		responses[i] = *toRatePlanResponse(&plans[i])
	}
	return responses, nil
}

func (s *RatePlanService) findPlan(ctx context.Context, orgID, planID uuid.UUID) (*billing.RatePlan, error) {
	rp, err := s.ratePlanRepo.FindByIDForOrg(ctx, orgID, planID)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Rate plan not found")
	}
	return rp, nil
}
