package billing

import (
	"context"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockRecurringChargeRepository is a mock implementation of RecurringChargeRepository
type MockRecurringChargeRepository struct {
	mock.Mock
}

func (m *MockRecurringChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringCharge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RecurringCharge), args.Error(1)
}

func (m *MockRecurringChargeRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.RecurringCharge, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RecurringCharge), args.Error(1)
}

func (m *MockRecurringChargeRepository) FindByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]billing.RecurringCharge, error) {
	args := m.Called(ctx, orgID, leaseID)
	return args.Get(0).([]billing.RecurringCharge), args.Error(1)
}

func (m *MockRecurringChargeRepository) FindActiveByLease(ctx context.Context, orgID, leaseID uuid.UUID) ([]billing.RecurringCharge, error) {
	args := m.Called(ctx, orgID, leaseID)
	return args.Get(0).([]billing.RecurringCharge), args.Error(1)
}

func (m *MockRecurringChargeRepository) Save(ctx context.Context, charge *billing.RecurringCharge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockRecurringChargeRepository) SaveWithLock(ctx context.Context, charge *billing.RecurringCharge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

// MockRatePlanRepository is a mock implementation of RatePlanRepository
type MockRatePlanRepository struct {
	mock.Mock
}

func (m *MockRatePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RatePlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.RatePlan, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) FindActiveByUtilityType(ctx context.Context, orgID uuid.UUID, utilityType billing.UtilityType) ([]billing.RatePlan, error) {
	args := m.Called(ctx, orgID, utilityType)
	return args.Get(0).([]billing.RatePlan), args.Error(1)
}

func (m *MockRatePlanRepository) Save(ctx context.Context, plan *billing.RatePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockRatePlanRepository) SaveWithLock(ctx context.Context, plan *billing.RatePlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

// MockUtilityStatementRepository is a mock implementation of UtilityStatementRepository
type MockUtilityStatementRepository struct {
	mock.Mock
}

func (m *MockUtilityStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.UtilityStatement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UtilityStatement), args.Error(1)
}

func (m *MockUtilityStatementRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.UtilityStatement, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UtilityStatement), args.Error(1)
}

func (m *MockUtilityStatementRepository) FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) ([]billing.UtilityStatement, error) {
	args := m.Called(ctx, orgID, leaseID, period)
	return args.Get(0).([]billing.UtilityStatement), args.Error(1)
}

func (m *MockUtilityStatementRepository) FindFinal(ctx context.Context, orgID, leaseID uuid.UUID, utilityType billing.UtilityType, period valueobject.BillingPeriod) (*billing.UtilityStatement, error) {
	args := m.Called(ctx, orgID, leaseID, utilityType, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UtilityStatement), args.Error(1)
}

func (m *MockUtilityStatementRepository) FindFinalForPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) ([]billing.UtilityStatement, error) {
	args := m.Called(ctx, orgID, leaseID, period)
	return args.Get(0).([]billing.UtilityStatement), args.Error(1)
}

func (m *MockUtilityStatementRepository) Save(ctx context.Context, statement *billing.UtilityStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

func (m *MockUtilityStatementRepository) SaveWithLock(ctx context.Context, statement *billing.UtilityStatement) error {
	args := m.Called(ctx, statement)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, orgID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, orgID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByLeaseAndPeriod(ctx context.Context, orgID, leaseID uuid.UUID, period valueobject.BillingPeriod) (*billing.Invoice, error) {
	args := m.Called(ctx, orgID, leaseID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueForOverdueSweep(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, orgID, asOf)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, orgID, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByGatewayTxnID(ctx context.Context, orgID uuid.UUID, gatewayTxnID string) (*billing.Payment, error) {
	args := m.Called(ctx, orgID, gatewayTxnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) FindHistory(ctx context.Context, paymentID uuid.UUID) ([]billing.PaymentStatusHistory, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).([]billing.PaymentStatusHistory), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// MockPaymentConfirmationRepository is a mock implementation of PaymentConfirmationRepository
type MockPaymentConfirmationRepository struct {
	mock.Mock
}

func (m *MockPaymentConfirmationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentConfirmationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentConfirmationRequest), args.Error(1)
}

func (m *MockPaymentConfirmationRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.PaymentConfirmationRequest, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentConfirmationRequest), args.Error(1)
}

func (m *MockPaymentConfirmationRepository) FindByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]billing.PaymentConfirmationRequest, error) {
	args := m.Called(ctx, orgID, invoiceID)
	return args.Get(0).([]billing.PaymentConfirmationRequest), args.Error(1)
}

func (m *MockPaymentConfirmationRepository) FindPendingForOrg(ctx context.Context, orgID uuid.UUID) ([]billing.PaymentConfirmationRequest, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]billing.PaymentConfirmationRequest), args.Error(1)
}

func (m *MockPaymentConfirmationRepository) Save(ctx context.Context, request *billing.PaymentConfirmationRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockPaymentConfirmationRepository) SaveWithLock(ctx context.Context, request *billing.PaymentConfirmationRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

// =============================================================================
// Mock Infrastructure
// =============================================================================

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// TrackingTransactionScope wraps a NoOpTransactionScope and counts Execute
// calls, so tests can assert that cross-aggregate writes share one
// transaction boundary.
type TrackingTransactionScope struct {
	inner        *NoOpTransactionScope
	ExecuteCalls int
}

func NewTrackingTransactionScope(
	statementRepo billing.UtilityStatementRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	confirmationRepo billing.PaymentConfirmationRepository,
) *TrackingTransactionScope {
	return &TrackingTransactionScope{
		inner: NewNoOpTransactionScope(statementRepo, invoiceRepo, paymentRepo, confirmationRepo),
	}
}

func (s *TrackingTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.ExecuteCalls++
	return s.inner.Execute(ctx, fn)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockObjectStorageService is a mock implementation of ObjectStorageService
type MockObjectStorageService struct {
	mock.Mock
}

func (m *MockObjectStorageService) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorageService) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorageService) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorageService) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}
