package billing

import (
	"context"
	"time"

	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringChargeRepository persists RecurringCharge aggregates
type RecurringChargeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RecurringCharge, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*RecurringCharge, error)
	FindByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]RecurringCharge, error)
	FindActiveByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]RecurringCharge, error)
	Save(ctx context.Context, charge *RecurringCharge) error
	SaveWithLock(ctx context.Context, charge *RecurringCharge) error
}

// RatePlanRepository persists RatePlan aggregates
type RatePlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RatePlan, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*RatePlan, error)
	FindActiveByUtilityType(ctx context.Context, orgID uuid.UUID, utilityType UtilityType) ([]RatePlan, error)
	Save(ctx context.Context, plan *RatePlan) error
	SaveWithLock(ctx context.Context, plan *RatePlan) error
}

// UtilityStatementRepository persists UtilityStatement aggregates
type UtilityStatementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UtilityStatement, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*UtilityStatement, error)
	FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) ([]UtilityStatement, error)
	// FindFinal returns the final statement for the lease, utility type and
	// period or shared.ErrNotFound. It backs the at-most-one-final invariant.
	FindFinal(ctx context.Context, orgID, leaseID uuid.UUID, utilityType UtilityType, period valueobject.BillingPeriod) (*UtilityStatement, error)
	FindFinalForPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) ([]UtilityStatement, error)
	Save(ctx context.Context, statement *UtilityStatement) error
	SaveWithLock(ctx context.Context, statement *UtilityStatement) error
}

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	LeaseID  *uuid.UUID
	Status   *InvoiceStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// InvoiceRepository persists Invoice aggregates
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, orgID uuid.UUID, invoiceNumber string) (*Invoice, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) (*Invoice, error)
	// FindDueForOverdueSweep returns issued or partially paid invoices whose
	// due date precedes asOf and whose balance is positive.
	FindDueForOverdueSweep(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]Invoice, error)
	GenerateInvoiceNumber(ctx context.Context, orgID uuid.UUID) (string, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter InvoiceFilter) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository persists Payment aggregates and their audit history
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]Payment, error)
	FindByGatewayTxnID(ctx context.Context, orgID uuid.UUID, gatewayTxnID string) (*Payment, error)
	// SumCompletedByInvoice returns the sum of completed payment amounts for
	// the invoice. The invoice balance identity is always recomputed from
	// this sum.
	SumCompletedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	FindHistory(ctx context.Context, paymentID uuid.UUID) ([]PaymentStatusHistory, error)
	Save(ctx context.Context, payment *Payment) error
	SaveWithLock(ctx context.Context, payment *Payment) error
}

// PaymentConfirmationRepository persists PaymentConfirmationRequest aggregates
type PaymentConfirmationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentConfirmationRequest, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*PaymentConfirmationRequest, error)
	FindByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]PaymentConfirmationRequest, error)
	FindPendingForOrg(ctx context.Context, orgID uuid.UUID) ([]PaymentConfirmationRequest, error)
	Save(ctx context.Context, request *PaymentConfirmationRequest) error
	SaveWithLock(ctx context.Context, request *PaymentConfirmationRequest) error
}
