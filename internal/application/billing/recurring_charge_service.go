package billing

import (
	"context"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecurringChargeService provides application-level operations on lease
// charges
type RecurringChargeService struct {
	chargeRepo     billing.RecurringChargeRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRecurringChargeService creates a new RecurringChargeService
func NewRecurringChargeService(
	chargeRepo billing.RecurringChargeRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *RecurringChargeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurringChargeService{
		chargeRepo:     chargeRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// RecurringChargeResponse represents a recurring charge in API responses
type RecurringChargeResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrgID        uuid.UUID       `json:"org_id"`
	LeaseID      uuid.UUID       `json:"lease_id"`
	ChargeTypeID uuid.UUID       `json:"charge_type_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

func toChargeResponse(rc *billing.RecurringCharge) *RecurringChargeResponse {
	return &RecurringChargeResponse{
		ID:           rc.ID,
		OrgID:        rc.OrgID,
		LeaseID:      rc.LeaseID,
		ChargeTypeID: rc.ChargeTypeID,
		Description:  rc.Description,
		Amount:       rc.Amount,
		Frequency:    rc.Frequency.String(),
		StartDate:    rc.StartDate,
		EndDate:      rc.EndDate,
		IsActive:     rc.IsActive,
		CreatedAt:    rc.CreatedAt,
		UpdatedAt:    rc.UpdatedAt,
		Version:      rc.Version,
	}
}

// CreateChargeRequest carries the input for attaching a charge to a lease
type CreateChargeRequest struct {
	LeaseID      uuid.UUID  `json:"lease_id" binding:"required"`
	ChargeTypeID uuid.UUID  `json:"charge_type_id" binding:"required"`
	Description  string     `json:"description" binding:"required"`
	Amount       string     `json:"amount" binding:"required"`
	Frequency    string     `json:"frequency" binding:"required"`
	StartDate    time.Time  `json:"start_date" binding:"required"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// CreateCharge attaches a new recurring charge to a lease
func (s *RecurringChargeService) CreateCharge(ctx context.Context, orgID uuid.UUID, req CreateChargeRequest) (*RecurringChargeResponse, error) {
	amount, err := valueobject.NewMoneyINRFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	rc, err := billing.NewRecurringCharge(
		orgID,
		req.LeaseID,
		req.ChargeTypeID,
		req.Description,
		amount,
		billing.ChargeFrequency(req.Frequency),
		req.StartDate,
		req.EndDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.chargeRepo.Save(ctx, rc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, rc.GetDomainEvents())
	rc.ClearDomainEvents()

	s.logger.Info("Recurring charge created",
		zap.String("charge_id", rc.ID.String()),
		zap.String("lease_id", rc.LeaseID.String()),
		zap.String("frequency", rc.Frequency.String()))

	return toChargeResponse(rc), nil
}

// UpdateChargeRequest carries the input for revising a charge
type UpdateChargeRequest struct {
	Amount      string     `json:"amount" binding:"required"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
}

// UpdateCharge revises the amount and activation window of a charge
func (s *RecurringChargeService) UpdateCharge(ctx context.Context, orgID, chargeID uuid.UUID, req UpdateChargeRequest) (*RecurringChargeResponse, error) {
	rc, err := s.chargeRepo.FindByIDForOrg(ctx, orgID, chargeID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Recurring charge not found")
	}

	amount, err := valueobject.NewMoneyINRFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	if err := rc.Update(amount, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := rc.SetDescription(req.Description); err != nil {
			return nil, err
		}
	}

	if err := s.chargeRepo.SaveWithLock(ctx, rc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, rc.GetDomainEvents())
	rc.ClearDomainEvents()

	return toChargeResponse(rc), nil
}

// DeactivateCharge stops a charge from billing in future periods
func (s *RecurringChargeService) DeactivateCharge(ctx context.Context, orgID, chargeID uuid.UUID) (*RecurringChargeResponse, error) {
	rc, err := s.chargeRepo.FindByIDForOrg(ctx, orgID, chargeID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Recurring charge not found")
	}

	if err := rc.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.chargeRepo.SaveWithLock(ctx, rc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, rc.GetDomainEvents())
	rc.ClearDomainEvents()

	return toChargeResponse(rc), nil
}

// ActivateCharge re-enables a previously deactivated charge
func (s *RecurringChargeService) ActivateCharge(ctx context.Context, orgID, chargeID uuid.UUID) (*RecurringChargeResponse, error) {
	rc, err := s.chargeRepo.FindByIDForOrg(ctx, orgID, chargeID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Recurring charge not found")
	}

	if err := rc.Activate(); err != nil {
		return nil, err
	}
	if err := s.chargeRepo.SaveWithLock(ctx, rc); err != nil {
		return nil, err
	}

	return toChargeResponse(rc), nil
}

// GetCharge returns a single charge
func (s *RecurringChargeService) GetCharge(ctx context.Context, orgID, chargeID uuid.UUID) (*RecurringChargeResponse, error) {
	rc, err := s.chargeRepo.FindByIDForOrg(ctx, orgID, chargeID)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Recurring charge not found")
	}
	return toChargeResponse(rc), nil
}

// ListChargesByLease returns all charges attached to a lease
func (s *RecurringChargeService) ListChargesByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]RecurringChargeResponse, error) {
	charges, err := s.chargeRepo.FindByLease(ctx, orgID, leaseID)
	if err != nil {
		return nil, err
	}
	responses := make([]RecurringChargeResponse, len(charges))
	for i := range charges {
		responses[i] = *toChargeResponse(&charges[i])
	}
	return responses, nil
}

// publishEvents publishes domain events, logging failures without aborting
// the already-committed operation
func (s *RecurringChargeService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
