package billing

import (
	"context"
	"errors"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatementService manages the utility statement lifecycle: drafts are
// created and revised freely, finalization enforces the at-most-one-final
// rule per (lease, utility type, period), and corrections to a final
// statement go through a superseding revision. Finalizing the revision
// demotes the old final in the same transaction.
type StatementService struct {
	statementRepo  billing.UtilityStatementRepository
	ratePlanRepo   billing.RatePlanRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStatementService creates a new StatementService. txScope may be nil, in
// which case statement writes are not wrapped in a shared transaction.
func NewStatementService(
	statementRepo billing.UtilityStatementRepository,
	ratePlanRepo billing.RatePlanRepository,
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *StatementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if txScope == nil {
		txScope = NewNoOpTransactionScope(statementRepo, nil, nil, nil)
	}
	return &StatementService{
		statementRepo:  statementRepo,
		ratePlanRepo:   ratePlanRepo,
		txScope:        txScope,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// UtilityStatementResponse represents a utility statement in API responses
type UtilityStatementResponse struct {
	ID               uuid.UUID        `json:"id"`
	OrgID            uuid.UUID        `json:"org_id"`
	LeaseID          uuid.UUID        `json:"lease_id"`
	UtilityType      string           `json:"utility_type"`
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
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Version          int              `json:"version"`
}

func toStatementResponse(us *billing.UtilityStatement) *UtilityStatementResponse {
	return &UtilityStatementResponse{
		ID:               us.ID,
		OrgID:            us.OrgID,
		LeaseID:          us.LeaseID,
		UtilityType:      us.UtilityType.String(),
		PeriodStart:      us.PeriodStart,
		PeriodEnd:        us.PeriodEnd,
		MeterBased:       us.MeterBased,
		RatePlanID:       us.RatePlanID,
		PreviousReading:  us.PreviousReading,
		CurrentReading:   us.CurrentReading,
		DirectBillAmount: us.DirectBillAmount,
		TotalAmount:      us.TotalAmount,
		Revision:         us.Revision,
		IsFinal:          us.IsFinal,
		SupersededAt:     us.SupersededAt,
		CreatedAt:        us.CreatedAt,
		UpdatedAt:        us.UpdatedAt,
		Version:          us.Version,
	}
}

// CreateMeterStatementRequest carries the input for a meter-based draft
type CreateMeterStatementRequest struct {
	LeaseID         uuid.UUID       `json:"lease_id" binding:"required"`
	UtilityType     string          `json:"utility_type" binding:"required"`
	PeriodStart     time.Time       `json:"period_start" binding:"required"`
	PeriodEnd       time.Time       `json:"period_end" binding:"required"`
	RatePlanID      uuid.UUID       `json:"rate_plan_id" binding:"required"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
}

// CreateMeterStatement creates and prices a meter-based draft statement
func (s *StatementService) CreateMeterStatement(ctx context.Context, orgID uuid.UUID, req CreateMeterStatementRequest) (*UtilityStatementResponse, error) {
	period, err := valueobject.NewBillingPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	plan, err := s.ratePlanRepo.FindByIDForOrg(ctx, orgID, req.RatePlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Rate plan not found")
	}

	us, err := billing.NewMeterStatement(
		orgID,
		req.LeaseID,
		billing.UtilityType(req.UtilityType),
		period,
		plan.ID,
		req.PreviousReading,
		req.CurrentReading,
	)
	if err != nil {
		return nil, err
	}
	if err := us.Compute(plan); err != nil {
		return nil, err
	}

	if err := s.statementRepo.Save(ctx, us); err != nil {
		return nil, err
	}
	return toStatementResponse(us), nil
}

// CreateDirectStatementRequest carries the input for an amount-based draft
type CreateDirectStatementRequest struct {
	LeaseID          uuid.UUID       `json:"lease_id" binding:"required"`
	UtilityType      string          `json:"utility_type" binding:"required"`
	PeriodStart      time.Time       `json:"period_start" binding:"required"`
	PeriodEnd        time.Time       `json:"period_end" binding:"required"`
	DirectBillAmount decimal.Decimal `json:"direct_bill_amount"`
}

// CreateDirectStatement creates an amount-based draft statement
func (s *StatementService) CreateDirectStatement(ctx context.Context, orgID uuid.UUID, req CreateDirectStatementRequest) (*UtilityStatementResponse, error) {
	period, err := valueobject.NewBillingPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	us, err := billing.NewDirectStatement(
		orgID,
		req.LeaseID,
		billing.UtilityType(req.UtilityType),
		period,
		req.DirectBillAmount,
	)
	if err != nil {
		return nil, err
	}

	if err := s.statementRepo.Save(ctx, us); err != nil {
		return nil, err
	}
	return toStatementResponse(us), nil
}

// UpdateReadingsRequest carries revised meter readings
type UpdateReadingsRequest struct {
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
}

// UpdateReadings revises the readings on a draft statement and reprices it
func (s *StatementService) UpdateReadings(ctx context.Context, orgID, statementID uuid.UUID, req UpdateReadingsRequest) (*UtilityStatementResponse, error) {
	us, err := s.findStatement(ctx, orgID, statementID)
	if err != nil {
		return nil, err
	}

	if err := us.UpdateReadings(req.PreviousReading, req.CurrentReading); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, orgID, us); err != nil {
		return nil, err
	}

	if err := s.statementRepo.SaveWithLock(ctx, us); err != nil {
		return nil, err
	}
	return toStatementResponse(us), nil
}

// UpdateDirectBillAmount revises the provider bill on an amount-based draft
func (s *StatementService) UpdateDirectBillAmount(ctx context.Context, orgID, statementID uuid.UUID, amount decimal.Decimal) (*UtilityStatementResponse, error) {
	us, err := s.findStatement(ctx, orgID, statementID)
	if err != nil {
		return nil, err
	}

	if err := us.UpdateDirectBillAmount(amount); err != nil {
		return nil, err
	}
	if err := s.statementRepo.SaveWithLock(ctx, us); err != nil {
		return nil, err
	}
	return toStatementResponse(us), nil
}

// FinalizeStatement marks a draft final. At most one final statement may
// exist per (lease, utility type, period): finalizing a later revision
// demotes the current final atomically, while any other clash is rejected.
func (s *StatementService) FinalizeStatement(ctx context.Context, orgID, statementID uuid.UUID) (*UtilityStatementResponse, error) {
	us, err := s.findStatement(ctx, orgID, statementID)
	if err != nil {
		return nil, err
	}

	existing, err := s.statementRepo.FindFinal(ctx, orgID, us.LeaseID, us.UtilityType, us.Period())
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var superseded *billing.UtilityStatement
	if existing != nil && existing.ID != us.ID {
		if existing.Revision >= us.Revision {
			return nil, shared.NewDomainError("FINAL_EXISTS",
				"A final statement already exists for this lease, utility and period; supersede it with a revision")
		}
		superseded = existing
	}

	now := time.Now()
	if superseded != nil {
		if err := superseded.Supersede(now); err != nil {
			return nil, err
		}
	}
	if err := us.Finalize(); err != nil {
		return nil, err
	}

	// The demotion and the promotion must land together: a crash between
	// them would leave the slot with no final at all.
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if superseded != nil {
			if err := repos.StatementRepo().SaveWithLock(ctx, superseded); err != nil {
				return err
			}
		}
		return repos.StatementRepo().SaveWithLock(ctx, us)
	})
	if err != nil {
		return nil, err
	}

	if superseded != nil {
		s.publishEvents(ctx, superseded.GetDomainEvents())
		superseded.ClearDomainEvents()
	}
	s.publishEvents(ctx, us.GetDomainEvents())
	us.ClearDomainEvents()

	s.logger.Info("Utility statement finalized",
		zap.String("statement_id", us.ID.String()),
		zap.String("lease_id", us.LeaseID.String()),
		zap.String("utility_type", us.UtilityType.String()),
		zap.Int("revision", us.Revision),
		zap.Bool("superseded_prior_final", superseded != nil),
		zap.String("total", us.TotalAmount.String()))

	return toStatementResponse(us), nil
}

// ReviseStatement creates a superseding draft from a final statement. The new
// draft carries revision n+1 and is editable until its own finalization.
func (s *StatementService) ReviseStatement(ctx context.Context, orgID, statementID uuid.UUID) (*UtilityStatementResponse, error) {
	us, err := s.findStatement(ctx, orgID, statementID)
	if err != nil {
		return nil, err
	}
	if !us.IsFinal {
		return nil, shared.NewDomainError("INVALID_STATE", "Only a final statement can be superseded; edit the draft directly")
	}

	next := us.NewRevision()
	if err := s.statementRepo.Save(ctx, next); err != nil {
		return nil, err
	}
	return toStatementResponse(next), nil
}

// GetStatement returns a single statement
func (s *StatementService) GetStatement(ctx context.Context, orgID, statementID uuid.UUID) (*UtilityStatementResponse, error) {
	us, err := s.findStatement(ctx, orgID, statementID)
	if err != nil {
		return nil, err
	}
	return toStatementResponse(us), nil
}

// ListStatements returns the statements for a lease and period
func (s *StatementService) ListStatements(ctx context.Context, orgID, leaseID uuid.UUID, periodStart, periodEnd time.Time) ([]UtilityStatementResponse, error) {
	period, err := valueobject.NewBillingPeriod(periodStart, periodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	statements, err := s.statementRepo.FindByLeaseAndPeriod(ctx, orgID, leaseID, period)
	if err != nil {
		return nil, err
	}
	responses := make([]UtilityStatementResponse, len(statements))
	for i := range statements {
		responses[i] = *toStatementResponse(&statements[i])
	}
	return responses, nil
}

func (s *StatementService) findStatement(ctx context.Context, orgID, statementID uuid.UUID) (*billing.UtilityStatement, error) {
	us, err := s.statementRepo.FindByIDForOrg(ctx, orgID, statementID)
	if err != nil {
		return nil, err
	}
	if us == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Utility statement not found")
	}
	return us, nil
}

// recompute reprices a meter-based statement through its rate plan
func (s *StatementService) recompute(ctx context.Context, orgID uuid.UUID, us *billing.UtilityStatement) error {
	if !us.MeterBased {
		return us.Compute(nil)
	}
	plan, err := s.ratePlanRepo.FindByIDForOrg(ctx, orgID, *us.RatePlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return shared.NewDomainError("NOT_FOUND", "Rate plan not found")
	}
	return us.Compute(plan)
}

func (s *StatementService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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
