package billing

import (
	"context"
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/propely/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payments against invoices and drives the payment
// state machine: direct receipts, owner confirmation of tenant-claimed
// payments, gateway callbacks, and refunds. Every completed-total change is
// pushed back onto the invoice.
type PaymentService struct {
	paymentRepo      billing.PaymentRepository
	invoiceRepo      billing.InvoiceRepository
	txScope          TransactionScope
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
	logger           *zap.Logger
}

// NewPaymentService creates a new PaymentService. idempotencyStore may be nil,
// in which case duplicate-submission protection is disabled. txScope may be
// nil, in which case payment and invoice writes are not wrapped in a shared
// transaction.
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	invoiceRepo billing.InvoiceRepository,
	txScope TransactionScope,
	idempotencyStore shared.IdempotencyStore,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if txScope == nil {
		txScope = NewNoOpTransactionScope(nil, invoiceRepo, paymentRepo, nil)
	}
	return &PaymentService{
		paymentRepo:      paymentRepo,
		invoiceRepo:      invoiceRepo,
		txScope:          txScope,
		idempotencyStore: idempotencyStore,
		idempotencyCfg:   shared.DefaultIdempotencyConfig(),
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

// PaymentHistoryResponse represents one audit entry of a payment
type PaymentHistoryResponse struct {
	Sequence   int       `json:"sequence"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	Reason     string    `json:"reason,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrgID           uuid.UUID       `json:"org_id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	Mode            string          `json:"mode"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	TransactionRef  string          `json:"transaction_ref,omitempty"`
	GatewayTxnID    string          `json:"gateway_txn_id,omitempty"`
	PayerName       string          `json:"payer_name"`
	Notes           string          `json:"notes,omitempty"`
	SourceRequestID *uuid.UUID      `json:"source_request_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

func toPaymentResponse(pm *billing.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:              pm.ID,
		OrgID:           pm.OrgID,
		InvoiceID:       pm.InvoiceID,
		Mode:            pm.Mode.String(),
		Status:          pm.Status.String(),
		Amount:          pm.Amount,
		PaymentDate:     pm.PaymentDate,
		TransactionRef:  pm.TransactionRef,
		GatewayTxnID:    pm.GatewayTxnID,
		PayerName:       pm.PayerName,
		Notes:           pm.Notes,
		SourceRequestID: pm.SourceRequestID,
		CreatedAt:       pm.CreatedAt,
		UpdatedAt:       pm.UpdatedAt,
		Version:         pm.Version,
	}
}

// RecordPaymentRequest carries the input for recording a payment
type RecordPaymentRequest struct {
	InvoiceID            uuid.UUID         `json:"invoice_id" binding:"required"`
	Mode                 string            `json:"mode" binding:"required"`
	Amount               string            `json:"amount" binding:"required"`
	PaymentDate          time.Time         `json:"payment_date" binding:"required"`
	TransactionRef       string            `json:"transaction_ref"`
	GatewayTxnID         string            `json:"gateway_txn_id"`
	PayerName            string            `json:"payer_name" binding:"required"`
	Notes                string            `json:"notes"`
	Metadata             map[string]string `json:"metadata"`
	AwaitingConfirmation bool              `json:"awaiting_confirmation"`
	IdempotencyKey       string            `json:"idempotency_key"`
}

// RecordPayment records a payment against a payable invoice. When the payment
// enters in Completed status the invoice's paid total is recomputed
// immediately. An idempotency key, when provided, makes blind retries safe.
func (s *PaymentService) RecordPayment(ctx context.Context, orgID uuid.UUID, actor string, req RecordPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "RecordPayment")
	defer span.End()

	idemKey := ""
	if req.IdempotencyKey != "" && s.idempotencyStore != nil && s.idempotencyCfg.Enabled {
		idemKey = "payment:" + req.IdempotencyKey
		seen, err := s.idempotencyStore.IsProcessed(ctx, idemKey)
		if err != nil {
			// Degraded store must not block payment intake.
			s.logger.Warn("Idempotency check failed, proceeding",
				zap.String("key", req.IdempotencyKey),
				zap.Error(err))
		} else if seen {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST",
				"A payment with this idempotency key was already recorded")
		}
	}

	inv, err := s.payableInvoice(ctx, orgID, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobject.NewMoneyINRFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", err.Error())
	}

	pm, err := billing.NewPayment(billing.NewPaymentParams{
		OrgID:                orgID,
		InvoiceID:            inv.ID,
		Mode:                 billing.PaymentMode(req.Mode),
		Amount:               amount,
		PaymentDate:          req.PaymentDate,
		TransactionRef:       req.TransactionRef,
		GatewayTxnID:         req.GatewayTxnID,
		PayerName:            req.PayerName,
		Notes:                req.Notes,
		Metadata:             req.Metadata,
		AwaitingConfirmation: req.AwaitingConfirmation,
		RecordedBy:           actor,
	}, inv.BalanceAmount, time.Now())
	if err != nil {
		return nil, err
	}

	var reconciled *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PaymentRepo().Save(ctx, pm); err != nil {
			return err
		}
		if pm.Status.AffectsBalance() {
			var err error
			reconciled, err = reconcileInvoice(ctx, repos.InvoiceRepo(), repos.PaymentRepo(), orgID, inv.ID)
			return err
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// The key is consumed only once the payment has landed, so a failed
	// attempt leaves the client's retry usable.
	if idemKey != "" {
		if _, err := s.idempotencyStore.MarkProcessed(ctx, idemKey, s.idempotencyCfg.TTL); err != nil {
			s.logger.Warn("Failed to mark idempotency key",
				zap.String("key", req.IdempotencyKey),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()
	s.publishInvoiceEvents(ctx, reconciled)

	s.logger.Info("Payment recorded",
		zap.String("payment_id", pm.ID.String()),
		zap.String("invoice_id", pm.InvoiceID.String()),
		zap.String("mode", pm.Mode.String()),
		zap.String("status", pm.Status.String()),
		zap.String("amount", pm.Amount.String()))

	return toPaymentResponse(pm), nil
}

// ConfirmPayment approves a payment sitting in PendingConfirmation
func (s *PaymentService) ConfirmPayment(ctx context.Context, orgID, paymentID uuid.UUID, actor, note string) (*PaymentResponse, error) {
	pm, err := s.findPayment(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := pm.Confirm(actor, note, time.Now()); err != nil {
		return nil, err
	}

	var reconciled *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PaymentRepo().SaveWithLock(ctx, pm); err != nil {
			return err
		}
		var err error
		reconciled, err = reconcileInvoice(ctx, repos.InvoiceRepo(), repos.PaymentRepo(), orgID, pm.InvoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()
	s.publishInvoiceEvents(ctx, reconciled)

	return toPaymentResponse(pm), nil
}

// RejectPayment declines a payment sitting in PendingConfirmation. A reason
// is mandatory.
func (s *PaymentService) RejectPayment(ctx context.Context, orgID, paymentID uuid.UUID, actor, reason string) (*PaymentResponse, error) {
	pm, err := s.findPayment(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := pm.Reject(actor, reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, pm); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()

	return toPaymentResponse(pm), nil
}

// CompleteGatewayPayment settles a gateway payment identified by the
// gateway's transaction id. The callback handler feeds it the settlement
// reference supplied by the gateway.
func (s *PaymentService) CompleteGatewayPayment(ctx context.Context, orgID uuid.UUID, gatewayTxnID, settlementRef string) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "CompleteGatewayPayment")
	defer span.End()

	pm, err := s.paymentRepo.FindByGatewayTxnID(ctx, orgID, gatewayTxnID)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found for gateway transaction")
	}

	// Callback replays are common; a settled payment is simply re-reported.
	if pm.IsCompleted() {
		return toPaymentResponse(pm), nil
	}

	if pm.Status == billing.PaymentStatusPending {
		if err := pm.StartProcessing("gateway", time.Now()); err != nil {
			return nil, err
		}
	}
	if err := pm.CompleteFromGateway(settlementRef, time.Now()); err != nil {
		return nil, err
	}

	var reconciled *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PaymentRepo().SaveWithLock(ctx, pm); err != nil {
			return err
		}
		var err error
		reconciled, err = reconcileInvoice(ctx, repos.InvoiceRepo(), repos.PaymentRepo(), orgID, pm.InvoiceID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()
	s.publishInvoiceEvents(ctx, reconciled)

	s.logger.Info("Gateway payment completed",
		zap.String("payment_id", pm.ID.String()),
		zap.String("gateway_txn_id", gatewayTxnID))

	return toPaymentResponse(pm), nil
}

// FailGatewayPayment marks a gateway payment as failed with the gateway's
// failure reason
func (s *PaymentService) FailGatewayPayment(ctx context.Context, orgID uuid.UUID, gatewayTxnID, reason string) (*PaymentResponse, error) {
	pm, err := s.paymentRepo.FindByGatewayTxnID(ctx, orgID, gatewayTxnID)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found for gateway transaction")
	}

	if err := pm.Fail(reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, pm); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()

	return toPaymentResponse(pm), nil
}

// CancelPayment cancels a payment that has not yet completed
func (s *PaymentService) CancelPayment(ctx context.Context, orgID, paymentID uuid.UUID, actor, reason string) (*PaymentResponse, error) {
	pm, err := s.findPayment(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := pm.Cancel(actor, reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, pm); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()

	return toPaymentResponse(pm), nil
}

// RefundPayment refunds a completed payment and pushes the reduced paid
// total back onto the invoice, which may revert from Paid.
func (s *PaymentService) RefundPayment(ctx context.Context, orgID, paymentID uuid.UUID, actor, reason string) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "PaymentService", "RefundPayment")
	defer span.End()

	pm, err := s.findPayment(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}

	if err := pm.Refund(actor, reason, time.Now()); err != nil {
		return nil, err
	}

	var reconciled *billing.Invoice
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.PaymentRepo().SaveWithLock(ctx, pm); err != nil {
			return err
		}
		var err error
		reconciled, err = reconcileInvoice(ctx, repos.InvoiceRepo(), repos.PaymentRepo(), orgID, pm.InvoiceID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, pm.GetDomainEvents())
	pm.ClearDomainEvents()
	s.publishInvoiceEvents(ctx, reconciled)

	s.logger.Info("Payment refunded",
		zap.String("payment_id", pm.ID.String()),
		zap.String("reason", reason))

	return toPaymentResponse(pm), nil
}

// GetPayment returns a single payment
func (s *PaymentService) GetPayment(ctx context.Context, orgID, paymentID uuid.UUID) (*PaymentResponse, error) {
	pm, err := s.findPayment(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(pm), nil
}

// ListPaymentsByInvoice lists all payments recorded against an invoice
func (s *PaymentService) ListPaymentsByInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, nil
}

// GetPaymentHistory returns the append-only status history of a payment in
// sequence order
func (s *PaymentService) GetPaymentHistory(ctx context.Context, orgID, paymentID uuid.UUID) ([]PaymentHistoryResponse, error) {
	if _, err := s.findPayment(ctx, orgID, paymentID); err != nil {
		return nil, err
	}
	entries, err := s.paymentRepo.FindHistory(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentHistoryResponse, len(entries))
	for i, e := range entries {
		responses[i] = PaymentHistoryResponse{
			Sequence:   e.Sequence,
			FromStatus: e.FromStatus.String(),
			ToStatus:   e.ToStatus.String(),
			ChangedBy:  e.ChangedBy,
			Reason:     e.Reason,
			ChangedAt:  e.ChangedAt,
		}
	}
	return responses, nil
}

// reconcileInvoice recomputes an invoice's paid total from the full sum of
// its completed payments and saves the result. Summing from scratch rather
// than incrementing makes the reconciliation safe to repeat. It runs against
// transaction-scoped repositories so the invoice lands with the payment
// write; the caller publishes the returned invoice's events after commit.
func reconcileInvoice(ctx context.Context, invoiceRepo billing.InvoiceRepository, paymentRepo billing.PaymentRepository, orgID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := invoiceRepo.FindByIDForOrg(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	completedTotal, err := paymentRepo.SumCompletedByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.ApplyCompletedPaymentTotal(completedTotal, time.Now()); err != nil {
		return nil, err
	}
	if err := invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *PaymentService) publishInvoiceEvents(ctx context.Context, inv *billing.Invoice) {
	if inv == nil {
		return
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()
}

func (s *PaymentService) payableInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	if !inv.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE",
			"Payments can only be recorded against issued, partially paid or overdue invoices")
	}
	return inv, nil
}

func (s *PaymentService) findPayment(ctx context.Context, orgID, paymentID uuid.UUID) (*billing.Payment, error) {
	pm, err := s.paymentRepo.FindByIDForOrg(ctx, orgID, paymentID)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	return pm, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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
