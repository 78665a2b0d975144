package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/propely/backend/internal/application/billing"
	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
)

// OverdueSweeper marks past-due invoices with an outstanding balance overdue
type OverdueSweeper interface {
	RunOverdueSweep(ctx context.Context, orgID uuid.UUID, asOf time.Time) (*billingapp.OverdueSweepResult, error)
}

// InvoiceGenerator builds a draft invoice for a lease and billing period
type InvoiceGenerator interface {
	GenerateForLease(ctx context.Context, orgID uuid.UUID, req billingapp.GenerateInvoiceRequest) (*billingapp.InvoiceResponse, error)
}

// ChargeDeactivator deactivates a recurring charge
type ChargeDeactivator interface {
	DeactivateCharge(ctx context.Context, orgID, chargeID uuid.UUID) (*billingapp.RecurringChargeResponse, error)
}

// ScheduledChargeFinder enumerates the recurring charges scheduled jobs act on
type ScheduledChargeFinder interface {
	FindExpiredActive(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]billing.RecurringCharge, error)
	ListLeasesWithActiveCharges(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]uuid.UUID, error)
}

// BillingJobExecutor implements JobExecutor on top of the billing services
type BillingJobExecutor struct {
	sweeper      OverdueSweeper
	generator    InvoiceGenerator
	deactivator  ChargeDeactivator
	chargeFinder ScheduledChargeFinder
	logger       *zap.Logger
}

// NewBillingJobExecutor creates a new billing job executor
func NewBillingJobExecutor(
	sweeper OverdueSweeper,
	generator InvoiceGenerator,
	deactivator ChargeDeactivator,
	chargeFinder ScheduledChargeFinder,
	logger *zap.Logger,
) *BillingJobExecutor {
	return &BillingJobExecutor{
		sweeper:      sweeper,
		generator:    generator,
		deactivator:  deactivator,
		chargeFinder: chargeFinder,
		logger:       logger,
	}
}

// Execute runs a single billing job
func (e *BillingJobExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeOverdueSweep:
		return e.runOverdueSweep(ctx, job)
	case JobTypeChargeExpiry:
		return e.runChargeExpiry(ctx, job)
	case JobTypeInvoiceGeneration:
		return e.runInvoiceGeneration(ctx, job)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}

func (e *BillingJobExecutor) runOverdueSweep(ctx context.Context, job *Job) error {
	result, err := e.sweeper.RunOverdueSweep(ctx, job.OrgID, job.AsOf)
	if err != nil {
		return fmt.Errorf("overdue sweep for org %s: %w", job.OrgID, err)
	}

	e.logger.Info("Overdue sweep job finished",
		zap.String("org_id", job.OrgID.String()),
		zap.Int("checked", result.Checked),
		zap.Int("marked", result.Marked),
		zap.Int("failed", result.Failed),
	)
	return nil
}

// runChargeExpiry deactivates active charges whose end date has passed.
// Individual failures are logged and the rest of the batch still runs.
func (e *BillingJobExecutor) runChargeExpiry(ctx context.Context, job *Job) error {
	expired, err := e.chargeFinder.FindExpiredActive(ctx, job.OrgID, job.AsOf)
	if err != nil {
		return fmt.Errorf("find expired charges for org %s: %w", job.OrgID, err)
	}

	failed := 0
	for i := range expired {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		charge := &expired[i]
		if _, err := e.deactivator.DeactivateCharge(ctx, job.OrgID, charge.ID); err != nil {
			failed++
			e.logger.Warn("Failed to deactivate expired charge",
				zap.String("org_id", job.OrgID.String()),
				zap.String("charge_id", charge.ID.String()),
				zap.Error(err),
			)
		}
	}

	e.logger.Info("Charge expiry job finished",
		zap.String("org_id", job.OrgID.String()),
		zap.Int("expired", len(expired)),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("charge expiry for org %s: %d of %d charges failed", job.OrgID, failed, len(expired))
	}
	return nil
}

// runInvoiceGeneration builds a draft invoice for every lease with active
// charges in the period. Leases already invoiced for the period are skipped,
// which makes a retry of the whole job safe.
func (e *BillingJobExecutor) runInvoiceGeneration(ctx context.Context, job *Job) error {
	leaseIDs, err := e.chargeFinder.ListLeasesWithActiveCharges(ctx, job.OrgID, job.PeriodStart)
	if err != nil {
		return fmt.Errorf("list billable leases for org %s: %w", job.OrgID, err)
	}

	generated := 0
	skipped := 0
	failed := 0
	for _, leaseID := range leaseIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req := billingapp.GenerateInvoiceRequest{
			LeaseID:          leaseID,
			PeriodStart:      job.PeriodStart,
			PeriodEnd:        job.PeriodEnd,
			IncludeUtilities: true,
		}
		if _, err := e.generator.GenerateForLease(ctx, job.OrgID, req); err != nil {
			if isAlreadyInvoiced(err) {
				skipped++
				continue
			}
			failed++
			e.logger.Warn("Failed to generate invoice for lease",
				zap.String("org_id", job.OrgID.String()),
				zap.String("lease_id", leaseID.String()),
				zap.Error(err),
			)
			continue
		}
		generated++
	}

	e.logger.Info("Invoice generation job finished",
		zap.String("org_id", job.OrgID.String()),
		zap.Time("period_start", job.PeriodStart),
		zap.Int("leases", len(leaseIDs)),
		zap.Int("generated", generated),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("invoice generation for org %s: %d of %d leases failed", job.OrgID, failed, len(leaseIDs))
	}
	return nil
}

// isAlreadyInvoiced reports whether generation failed because a live invoice
// already covers the lease and period
func isAlreadyInvoiced(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "ALREADY_EXISTS"
}
