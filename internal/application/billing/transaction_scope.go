package billing

import (
	"context"

	"github.com/propely/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Cross-aggregate writes flow through here: a reviewed payment claim touches
// the confirmation request, the payment it materializes and the invoice's
// paid total, and a statement supersession demotes the old final while
// promoting the revision. None of those pairs may land half-written.
type TransactionalRepositories interface {
	// StatementRepo returns the utility statement repository scoped to the current transaction
	StatementRepo() billing.UtilityStatementRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() billing.PaymentRepository
	// ConfirmationRepo returns the confirmation request repository scoped to the current transaction
	ConfirmationRepo() billing.PaymentConfirmationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	statementRepo    billing.UtilityStatementRepository
	invoiceRepo      billing.InvoiceRepository
	paymentRepo      billing.PaymentRepository
	confirmationRepo billing.PaymentConfirmationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories. Repositories a caller never reaches through the scope may
// be nil.
func NewNoOpTransactionScope(
	statementRepo billing.UtilityStatementRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	confirmationRepo billing.PaymentConfirmationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		statementRepo:    statementRepo,
		invoiceRepo:      invoiceRepo,
		paymentRepo:      paymentRepo,
		confirmationRepo: confirmationRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StatementRepo returns the utility statement repository.
func (s *NoOpTransactionScope) StatementRepo() billing.UtilityStatementRepository {
	return s.statementRepo
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// ConfirmationRepo returns the confirmation request repository.
func (s *NoOpTransactionScope) ConfirmationRepo() billing.PaymentConfirmationRepository {
	return s.confirmationRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
