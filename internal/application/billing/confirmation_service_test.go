package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

func newTestConfirmationService(
	confirmationRepo *MockPaymentConfirmationRepository,
	paymentRepo *MockPaymentRepository,
	invoiceRepo *MockInvoiceRepository,
	storage ObjectStorageService,
) *ConfirmationService {
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil, storage, publisher, nil)
}

func newPendingClaim(t *testing.T, orgID uuid.UUID, inv *billing.Invoice) *billing.PaymentConfirmationRequest {
	t.Helper()
	claim, err := billing.NewPaymentConfirmationRequest(billing.NewConfirmationRequestParams{
		OrgID:              orgID,
		InvoiceID:          inv.ID,
		SubmittedBy:        "tenant-7",
		PayerName:          "Ravi Kumar",
		Mode:               billing.PaymentModeUPI,
		Amount:             valueobject.NewMoneyINR(decimal.NewFromInt(5000)),
		ClaimedPaymentDate: appDate(t, "2025-04-03"),
		ReceiptNumber:      "UPI-9981",
	}, inv.BalanceAmount)
	require.NoError(t, err)
	claim.ClearDomainEvents()
	return claim
}

// =============================================================================
// SubmitRequest Tests
// =============================================================================

func TestConfirmationService_SubmitRequest(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	invoiceRepo.On("FindByIDForOrg", mock.Anything, orgID, inv.ID).Return(inv, nil)
	confirmationRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentConfirmationRequest")).Return(nil)

	resp, err := service.SubmitRequest(context.Background(), orgID, "tenant-7", SubmitConfirmationRequest{
		InvoiceID:          inv.ID,
		PayerName:          "Ravi Kumar",
		Mode:               "UPI",
		Amount:             "2000",
		ClaimedPaymentDate: appDate(t, "2025-04-03"),
		ReceiptNumber:      "UPI-9981",
	})

	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "tenant-7", resp.SubmittedBy)
	assert.True(t, resp.Amount.Equal(decimal.NewFromInt(2000)))
	confirmationRepo.AssertExpectations(t)
}

func TestConfirmationService_SubmitRequest_ExceedsBalance(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	invoiceRepo.On("FindByIDForOrg", mock.Anything, orgID, inv.ID).Return(inv, nil)

	_, err := service.SubmitRequest(context.Background(), orgID, "tenant-7", SubmitConfirmationRequest{
		InvoiceID:          inv.ID,
		PayerName:          "Ravi Kumar",
		Mode:               "UPI",
		Amount:             "5000.01",
		ClaimedPaymentDate: appDate(t, "2025-04-03"),
	})

	assertAppDomainErrorCode(t, err, "EXCEEDS_BALANCE")
	confirmationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestConfirmationService_SubmitRequest_DraftInvoiceRefused(t *testing.T) {
	orgID := uuid.New()
	inv, err := billing.NewInvoice(orgID, "INV-202503-00003", uuid.New(), appPeriod(t, "2025-03-01", "2025-03-31"), decimal.Zero)
	require.NoError(t, err)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	invoiceRepo.On("FindByIDForOrg", mock.Anything, orgID, inv.ID).Return(inv, nil)

	_, err = service.SubmitRequest(context.Background(), orgID, "tenant-7", SubmitConfirmationRequest{
		InvoiceID:          inv.ID,
		PayerName:          "Ravi Kumar",
		Mode:               "UPI",
		Amount:             "2000",
		ClaimedPaymentDate: appDate(t, "2025-04-03"),
	})

	assertAppDomainErrorCode(t, err, "INVALID_STATE")
}

// =============================================================================
// ConfirmRequest Tests
// =============================================================================

func TestConfirmationService_ConfirmRequest_MaterializesPayment(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	invoiceRepo.On("FindByIDForOrg", mock.Anything, orgID, inv.ID).Return(inv, nil)
	paymentRepo.On("SumCompletedByInvoice", mock.Anything, inv.ID).Return(decimal.NewFromInt(5000), nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	resp, err := service.ConfirmRequest(context.Background(), orgID, claim.ID, "owner-1", "matches bank credit")

	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)
	require.NotNil(t, resp.SourceRequestID)
	assert.Equal(t, claim.ID, *resp.SourceRequestID)
	assert.Equal(t, "UPI-9981", resp.TransactionRef)
	assert.Equal(t, billing.ConfirmationStatusConfirmed, claim.Status)
	assert.Equal(t, billing.InvoiceStatusPaid, inv.Status)
	paymentRepo.AssertExpectations(t)
}

func TestConfirmationService_ConfirmRequest_AlreadyReviewed(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)
	require.NoError(t, claim.Confirm("owner-1", "ok", time.Now()))

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)

	_, err := service.ConfirmRequest(context.Background(), orgID, claim.ID, "owner-2", "looks fine")

	assertAppDomainErrorCode(t, err, "INVALID_STATE")
	paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestConfirmationService_ConfirmRequest_LockConflictCreatesNoPayment(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(shared.ErrConcurrencyConflict)

	_, err := service.ConfirmRequest(context.Background(), orgID, claim.ID, "owner-1", "ok")

	assertAppDomainErrorCode(t, err, "CONCURRENCY_CONFLICT")
	paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestConfirmationService_ConfirmRequest_WritesShareOneTransaction(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	scope := NewTrackingTransactionScope(nil, invoiceRepo, paymentRepo, confirmationRepo)
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	service := NewConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, scope, nil, publisher, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	invoiceRepo.On("FindByIDForOrg", mock.Anything, orgID, inv.ID).Return(inv, nil)
	paymentRepo.On("SumCompletedByInvoice", mock.Anything, inv.ID).Return(decimal.NewFromInt(5000), nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	_, err := service.ConfirmRequest(context.Background(), orgID, claim.ID, "owner-1", "matches bank credit")

	require.NoError(t, err)
	// Request, payment and invoice writes happen inside a single
	// transaction scope, so none of them can land without the others.
	assert.Equal(t, 1, scope.ExecuteCalls)
}

func TestConfirmationService_ConfirmRequest_PaymentSaveFailureSurfaces(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	scope := NewTrackingTransactionScope(nil, invoiceRepo, paymentRepo, confirmationRepo)
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	service := NewConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, scope, nil, publisher, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(nil)
	paymentRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := service.ConfirmRequest(context.Background(), orgID, claim.ID, "owner-1", "ok")

	require.Error(t, err)
	// The failing save ran inside the transaction scope, where a real
	// database rolls the confirmed request back with it.
	assert.Equal(t, 1, scope.ExecuteCalls)
	invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

// =============================================================================
// RejectRequest and CancelRequest Tests
// =============================================================================

func TestConfirmationService_RejectRequest(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(nil)

	resp, err := service.RejectRequest(context.Background(), orgID, claim.ID, "owner-1", "no matching bank credit")

	require.NoError(t, err)
	assert.Equal(t, "REJECTED", resp.Status)
	assert.Equal(t, "no matching bank credit", resp.ReviewResponse)
	paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestConfirmationService_RejectRequest_RequiresResponse(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)

	_, err := service.RejectRequest(context.Background(), orgID, claim.ID, "owner-1", "")

	assertAppDomainErrorCode(t, err, "INVALID_RESPONSE")
}

func TestConfirmationService_CancelRequest(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(nil)

	resp, err := service.CancelRequest(context.Background(), orgID, claim.ID)

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
}

// =============================================================================
// Proof File Tests
// =============================================================================

func TestConfirmationService_RequestProofUpload(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	storage := new(MockObjectStorageService)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, storage)

	expiresAt := time.Now().Add(15 * time.Minute)
	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	storage.On("GenerateUploadURL", mock.Anything, mock.AnythingOfType("string"), "image/jpeg", mock.Anything).
		Return("https://storage.example.com/upload", expiresAt, nil)
	confirmationRepo.On("SaveWithLock", mock.Anything, claim).Return(nil)

	resp, err := service.RequestProofUpload(context.Background(), orgID, claim.ID, "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/upload", resp.UploadURL)
	assert.Contains(t, resp.StorageKey, "payment-proofs")
	assert.Equal(t, resp.StorageKey, claim.ProofFileRef)
}

func TestConfirmationService_RequestProofUpload_NoStorageConfigured(t *testing.T) {
	orgID := uuid.New()

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, nil)

	_, err := service.RequestProofUpload(context.Background(), orgID, uuid.New(), "image/jpeg")

	assertAppDomainErrorCode(t, err, "STORAGE_UNAVAILABLE")
}

func TestConfirmationService_GetRequest_IncludesProofDownloadURL(t *testing.T) {
	orgID := uuid.New()
	inv := newIssuedTestInvoice(t, orgID)
	claim := newPendingClaim(t, orgID, inv)
	require.NoError(t, claim.AttachProof("orgs/x/payment-proofs/y"))

	confirmationRepo := new(MockPaymentConfirmationRepository)
	paymentRepo := new(MockPaymentRepository)
	invoiceRepo := new(MockInvoiceRepository)
	storage := new(MockObjectStorageService)
	service := newTestConfirmationService(confirmationRepo, paymentRepo, invoiceRepo, storage)

	confirmationRepo.On("FindByIDForOrg", mock.Anything, orgID, claim.ID).Return(claim, nil)
	storage.On("GenerateDownloadURL", mock.Anything, "orgs/x/payment-proofs/y", mock.Anything).
		Return("https://storage.example.com/download", time.Now().Add(time.Hour), nil)

	resp, err := service.GetRequest(context.Background(), orgID, claim.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/download", resp.ProofDownloadURL)
}
