package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/propely/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ObjectStorageService defines the interface for payment-proof object
// storage operations
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ConfirmationServiceConfig holds proof-file URL expiry settings
type ConfirmationServiceConfig struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultConfirmationServiceConfig returns the default configuration
func DefaultConfirmationServiceConfig() ConfirmationServiceConfig {
	return ConfirmationServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// ConfirmationService handles the tenant-claimed payment flow: a tenant
// submits a claim with optional proof, the owner confirms or rejects it, and
// a confirmed claim materializes exactly one completed payment.
type ConfirmationService struct {
	confirmationRepo billing.PaymentConfirmationRepository
	paymentRepo      billing.PaymentRepository
	invoiceRepo      billing.InvoiceRepository
	txScope          TransactionScope
	storageService   ObjectStorageService
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
	config           ConfirmationServiceConfig
}

// NewConfirmationService creates a new ConfirmationService. storageService
// may be nil when proof uploads are not configured. txScope may be nil, in
// which case request, payment and invoice writes are not wrapped in a
// shared transaction.
func NewConfirmationService(
	confirmationRepo billing.PaymentConfirmationRepository,
	paymentRepo billing.PaymentRepository,
	invoiceRepo billing.InvoiceRepository,
	txScope TransactionScope,
	storageService ObjectStorageService,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ConfirmationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if txScope == nil {
		txScope = NewNoOpTransactionScope(nil, invoiceRepo, paymentRepo, confirmationRepo)
	}
	return &ConfirmationService{
		confirmationRepo: confirmationRepo,
		paymentRepo:      paymentRepo,
		invoiceRepo:      invoiceRepo,
		txScope:          txScope,
		storageService:   storageService,
		eventPublisher:   eventPublisher,
		logger:           logger,
		config:           DefaultConfirmationServiceConfig(),
	}
}

// ConfirmationResponse represents a confirmation request in API responses
type ConfirmationResponse struct {
	ID                 uuid.UUID       `json:"id"`
	OrgID              uuid.UUID       `json:"org_id"`
	InvoiceID          uuid.UUID       `json:"invoice_id"`
	SubmittedBy        string          `json:"submitted_by"`
	PayerName          string          `json:"payer_name"`
	Mode               string          `json:"mode"`
	Amount             decimal.Decimal `json:"amount"`
	ClaimedPaymentDate time.Time       `json:"claimed_payment_date"`
	ReceiptNumber      string          `json:"receipt_number,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	ProofFileRef       string          `json:"proof_file_ref,omitempty"`
	ProofDownloadURL   string          `json:"proof_download_url,omitempty"`
	Status             string          `json:"status"`
	ReviewedBy         *string         `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time      `json:"reviewed_at,omitempty"`
	ReviewResponse     string          `json:"review_response,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

func toConfirmationResponse(req *billing.PaymentConfirmationRequest) *ConfirmationResponse {
	return &ConfirmationResponse{
		ID:                 req.ID,
		OrgID:              req.OrgID,
		InvoiceID:          req.InvoiceID,
		SubmittedBy:        req.SubmittedBy,
		PayerName:          req.PayerName,
		Mode:               req.Mode.String(),
		Amount:             req.Amount,
		ClaimedPaymentDate: req.ClaimedPaymentDate,
		ReceiptNumber:      req.ReceiptNumber,
		Notes:              req.Notes,
		ProofFileRef:       req.ProofFileRef,
		Status:             req.Status.String(),
		ReviewedBy:         req.ReviewedBy,
		ReviewedAt:         req.ReviewedAt,
		ReviewResponse:     req.ReviewResponse,
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
		Version:            req.Version,
	}
}

// SubmitConfirmationRequest carries a tenant's payment claim
type SubmitConfirmationRequest struct {
	InvoiceID          uuid.UUID `json:"invoice_id" binding:"required"`
	PayerName          string    `json:"payer_name" binding:"required"`
	Mode               string    `json:"mode" binding:"required"`
	Amount             string    `json:"amount" binding:"required"`
	ClaimedPaymentDate time.Time `json:"claimed_payment_date" binding:"required"`
	ReceiptNumber      string    `json:"receipt_number"`
	Notes              string    `json:"notes"`
}

// SubmitRequest records a tenant's claim that a payment was made against an
// invoice. The claim enters pending review against the invoice's current
// outstanding balance.
func (s *ConfirmationService) SubmitRequest(ctx context.Context, orgID uuid.UUID, submittedBy string, req SubmitConfirmationRequest) (*ConfirmationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ConfirmationService", "SubmitRequest")
	defer span.End()

	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, orgID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	if !inv.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Payment claims can only be submitted against issued, partially paid or overdue invoices")
	}

	amount, err := valueobject.NewMoneyINRFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	confirmation, err := billing.NewPaymentConfirmationRequest(billing.NewConfirmationRequestParams{
		OrgID:              orgID,
		InvoiceID:          inv.ID,
		SubmittedBy:        submittedBy,
		PayerName:          req.PayerName,
		Mode:               billing.PaymentMode(req.Mode),
		Amount:             amount,
		ClaimedPaymentDate: req.ClaimedPaymentDate,
		ReceiptNumber:      req.ReceiptNumber,
		Notes:              req.Notes,
	}, inv.BalanceAmount)
	if err != nil {
		return nil, err
	}

	if err := s.confirmationRepo.Save(ctx, confirmation); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, confirmation.GetDomainEvents())
	confirmation.ClearDomainEvents()

	s.logger.Info("Payment confirmation request submitted",
		zap.String("request_id", confirmation.ID.String()),
		zap.String("invoice_id", confirmation.InvoiceID.String()),
		zap.String("submitted_by", submittedBy),
		zap.String("amount", confirmation.Amount.String()))

	return toConfirmationResponse(confirmation), nil
}

// ProofUploadResponse carries a presigned upload URL for a proof file
type ProofUploadResponse struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// RequestProofUpload generates a presigned upload URL for a proof file and
// attaches the resulting storage key to the pending request
func (s *ConfirmationService) RequestProofUpload(ctx context.Context, orgID, requestID uuid.UUID, contentType string) (*ProofUploadResponse, error) {
	if s.storageService == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Proof file storage is not configured")
	}

	confirmation, err := s.findRequest(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}

	storageKey := fmt.Sprintf("orgs/%s/payment-proofs/%s", orgID, requestID)
	uploadURL, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, err
	}

	if err := confirmation.AttachProof(storageKey); err != nil {
		return nil, err
	}
	if err := s.confirmationRepo.SaveWithLock(ctx, confirmation); err != nil {
		return nil, err
	}

	return &ProofUploadResponse{
		UploadURL:  uploadURL,
		StorageKey: storageKey,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmRequest approves a pending claim. The approval materializes exactly
// one completed payment against the invoice and reconciles the invoice's
// paid total, all in a single transaction: a Confirmed request without its
// payment would be unrecoverable without manual repair.
func (s *ConfirmationService) ConfirmRequest(ctx context.Context, orgID, requestID uuid.UUID, reviewer, response string) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ConfirmationService", "ConfirmRequest")
	defer span.End()

	confirmation, err := s.findRequest(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := confirmation.Confirm(reviewer, response, now); err != nil {
		return nil, err
	}

	pm, err := billing.NewPaymentFromConfirmation(confirmation, reviewer, now)
	if err != nil {
		return nil, err
	}

	var reconciled *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// The optimistic lock on the request is what makes two concurrent
		// reviewers safe: the loser's save fails and no second payment appears.
		if err := repos.ConfirmationRepo().SaveWithLock(ctx, confirmation); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, pm); err != nil {
			return err
		}
		var err error
		reconciled, err = reconcileInvoice(ctx, repos.InvoiceRepo(), repos.PaymentRepo(), orgID, confirmation.InvoiceID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, confirmation.GetDomainEvents())
	confirmation.ClearDomainEvents()
	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()
	if reconciled != nil {
		s.publishEvents(ctx, reconciled.GetDomainEvents())
		reconciled.ClearDomainEvents()
	}

	s.logger.Info("Payment confirmation approved",
		zap.String("request_id", confirmation.ID.String()),
		zap.String("payment_id", pm.ID.String()),
		zap.String("reviewer", reviewer))

	return toPaymentResponse(pm), nil
}

// RejectRequest declines a pending claim. A response explaining the
// rejection is mandatory and no payment is created.
func (s *ConfirmationService) RejectRequest(ctx context.Context, orgID, requestID uuid.UUID, reviewer, response string) (*ConfirmationResponse, error) {
	confirmation, err := s.findRequest(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}

	if err := confirmation.Reject(reviewer, response, time.Now()); err != nil {
		return nil, err
	}
	if err := s.confirmationRepo.SaveWithLock(ctx, confirmation); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, confirmation.GetDomainEvents())
	confirmation.ClearDomainEvents()

	s.logger.Info("Payment confirmation rejected",
		zap.String("request_id", confirmation.ID.String()),
		zap.String("reviewer", reviewer))

	return toConfirmationResponse(confirmation), nil
}

// CancelRequest withdraws a pending claim on the tenant's behalf
func (s *ConfirmationService) CancelRequest(ctx context.Context, orgID, requestID uuid.UUID) (*ConfirmationResponse, error) {
	confirmation, err := s.findRequest(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}

	if err := confirmation.CancelByTenant(time.Now()); err != nil {
		return nil, err
	}
	if err := s.confirmationRepo.SaveWithLock(ctx, confirmation); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, confirmation.GetDomainEvents())
	confirmation.ClearDomainEvents()

	return toConfirmationResponse(confirmation), nil
}

// GetRequest returns a single confirmation request, with a proof download
// URL when a proof file is attached
func (s *ConfirmationService) GetRequest(ctx context.Context, orgID, requestID uuid.UUID) (*ConfirmationResponse, error) {
	confirmation, err := s.findRequest(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}

	resp := toConfirmationResponse(confirmation)
	if confirmation.ProofFileRef != "" && s.storageService != nil {
		url, _, err := s.storageService.GenerateDownloadURL(ctx, confirmation.ProofFileRef, s.config.DownloadURLExpiry)
		if err != nil {
			s.logger.Warn("Failed to generate proof download URL",
				zap.String("request_id", confirmation.ID.String()),
				zap.Error(err))
		} else {
			resp.ProofDownloadURL = url
		}
	}
	return resp, nil
}

// ListPendingRequests lists all claims awaiting review for an organization
func (s *ConfirmationService) ListPendingRequests(ctx context.Context, orgID uuid.UUID) ([]ConfirmationResponse, error) {
	requests, err := s.confirmationRepo.FindPendingForOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	responses := make([]ConfirmationResponse, len(requests))
	for i := range requests {
		responses[i] = *toConfirmationResponse(&requests[i])
	}
	return responses, nil
}

// ListRequestsByInvoice lists all claims submitted against an invoice
func (s *ConfirmationService) ListRequestsByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]ConfirmationResponse, error) {
	requests, err := s.confirmationRepo.FindByInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]ConfirmationResponse, len(requests))
	for i := range requests {
		responses[i] = *toConfirmationResponse(&requests[i])
	}
	return responses, nil
}

func (s *ConfirmationService) findRequest(ctx context.Context, orgID, requestID uuid.UUID) (*billing.PaymentConfirmationRequest, error) {
	confirmation, err := s.confirmationRepo.FindByIDForOrg(ctx, orgID, requestID)
	if err != nil {
		return nil, err
	}
	if confirmation == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Confirmation request not found")
	}
	return confirmation, nil
}

func (s *ConfirmationService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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
