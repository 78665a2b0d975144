package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode represents how a payment was made
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "CASH"
	PaymentModeOnline       PaymentMode = "ONLINE"
	PaymentModeBankTransfer PaymentMode = "BANK_TRANSFER"
	PaymentModeCheque       PaymentMode = "CHEQUE"
	PaymentModeUPI          PaymentMode = "UPI"
	PaymentModeOther        PaymentMode = "OTHER"
)

// IsValid checks if the mode is a valid PaymentMode
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeOnline, PaymentModeBankTransfer,
		PaymentModeCheque, PaymentModeUPI, PaymentModeOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMode
func (m PaymentMode) String() string {
	return string(m)
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "PENDING"
	PaymentStatusPendingConfirmation PaymentStatus = "PENDING_CONFIRMATION"
	PaymentStatusProcessing          PaymentStatus = "PROCESSING"
	PaymentStatusCompleted           PaymentStatus = "COMPLETED"
	PaymentStatusFailed              PaymentStatus = "FAILED"
	PaymentStatusCancelled           PaymentStatus = "CANCELLED"
	PaymentStatusRefunded            PaymentStatus = "REFUNDED"
	PaymentStatusRejected            PaymentStatus = "REJECTED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPendingConfirmation, PaymentStatusProcessing,
		PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled,
		PaymentStatusRefunded, PaymentStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment accepts no further transitions
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded, PaymentStatusRejected:
		return true
	}
	return false
}

// CanReview returns true if an owner may confirm or reject in this status
func (s PaymentStatus) CanReview() bool {
	return s == PaymentStatusPending || s == PaymentStatusPendingConfirmation
}

// AffectsBalance returns true if payments in this status count toward the
// invoice's paid amount. Only completed payments do; pending money must
// never move an invoice toward Paid before funds are confirmed.
func (s PaymentStatus) AffectsBalance() bool {
	return s == PaymentStatusCompleted
}

// PaymentStatusHistory is one append-only audit record of a payment status
// transition. History rows are written in the same transaction as the
// transition they record, so status and history can never diverge.
type PaymentStatusHistory struct {
	ID         uuid.UUID     `json:"id"`
	PaymentID  uuid.UUID     `json:"payment_id"`
	Sequence   int           `json:"sequence"`
	FromStatus PaymentStatus `json:"from_status"` // Empty for the creation entry
	ToStatus   PaymentStatus `json:"to_status"`
	ChangedBy  string        `json:"changed_by"`
	Reason     string        `json:"reason,omitempty"`
	ChangedAt  time.Time     `json:"changed_at"`
}

// PaymentMetadata is free-form key/value metadata stored as JSONB
type PaymentMetadata map[string]string

// Value implements driver.Valuer interface for GORM to store as JSONB
func (m PaymentMetadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (m *PaymentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMetadata{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentMetadata: unsupported type")
	}

	if len(bytes) == 0 {
		*m = PaymentMetadata{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Payment records money received against an invoice. Its status machine
// covers direct receipts (cash, referenced transfers), gateway-pending
// online payments, and tenant-claimed payments awaiting owner confirmation.
// Every transition appends a PaymentStatusHistory entry.
type Payment struct {
	shared.OrgAggregateRoot
	InvoiceID       uuid.UUID              `json:"invoice_id"`
	Mode            PaymentMode            `json:"mode"`
	Status          PaymentStatus          `json:"status"`
	Amount          decimal.Decimal        `json:"amount"`
	PaymentDate     time.Time              `json:"payment_date"`
	TransactionRef  string                 `json:"transaction_ref,omitempty"`
	GatewayTxnID    string                 `json:"gateway_txn_id,omitempty"`
	PayerName       string                 `json:"payer_name"`
	Notes           string                 `json:"notes,omitempty"`
	Metadata        PaymentMetadata        `json:"metadata,omitempty"`
	SourceRequestID *uuid.UUID             `json:"source_request_id,omitempty"`
	History         []PaymentStatusHistory `json:"history" gorm:"-"`
}

// NewPaymentParams carries the input for recording a payment
type NewPaymentParams struct {
	OrgID          uuid.UUID
	InvoiceID      uuid.UUID
	Mode           PaymentMode
	Amount         valueobject.Money
	PaymentDate    time.Time
	TransactionRef string
	GatewayTxnID   string
	PayerName      string
	Notes          string
	Metadata       PaymentMetadata
	// AwaitingConfirmation forces the payment to enter as
	// PendingConfirmation: a tenant-claimed payment the owner has yet to
	// verify.
	AwaitingConfirmation bool
	// RecordedBy is the acting user's identity for the audit trail
	RecordedBy string
}

// NewPayment records a payment against an invoice. remainingBalance is the
// invoice's outstanding balance at the time of recording; the amount must be
// positive and must not exceed it.
//
// Entry status rules: cash enters Completed; non-cash with a transaction
// reference enters Completed; online payments carrying only a gateway
// transaction id enter Pending awaiting the gateway callback; tenant-claimed
// payments enter PendingConfirmation.
func NewPayment(p NewPaymentParams, remainingBalance decimal.Decimal, now time.Time) (*Payment, error) {
	if p.InvoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !p.Mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("Unknown payment mode %q", p.Mode))
	}
	amount := p.Amount.Amount()
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(remainingBalance) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, remainingBalance))
	}
	if p.PayerName == "" {
		return nil, shared.NewDomainError("INVALID_PAYER", "Payer name cannot be empty")
	}

	var entryStatus PaymentStatus
	switch {
	case p.AwaitingConfirmation:
		entryStatus = PaymentStatusPendingConfirmation
	case p.Mode == PaymentModeCash:
		entryStatus = PaymentStatusCompleted
	case p.TransactionRef != "":
		entryStatus = PaymentStatusCompleted
	case p.Mode == PaymentModeOnline && p.GatewayTxnID != "":
		entryStatus = PaymentStatusPending
	default:
		return nil, shared.NewDomainError("MISSING_REFERENCE",
			fmt.Sprintf("%s payments require a transaction reference", p.Mode))
	}

	pm := &Payment{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(p.OrgID),
		InvoiceID:        p.InvoiceID,
		Mode:             p.Mode,
		Status:           entryStatus,
		Amount:           amount,
		PaymentDate:      valueobject.DateOnly(p.PaymentDate),
		TransactionRef:   p.TransactionRef,
		GatewayTxnID:     p.GatewayTxnID,
		PayerName:        p.PayerName,
		Notes:            p.Notes,
		Metadata:         p.Metadata,
	}
	pm.appendHistory("", entryStatus, p.RecordedBy, "", now)

	pm.AddDomainEvent(NewPaymentRecordedEvent(pm))
	if entryStatus == PaymentStatusCompleted {
		pm.AddDomainEvent(NewPaymentCompletedEvent(pm))
	}

	return pm, nil
}

// NewPaymentFromConfirmation materializes the payment produced by confirming
// a tenant-submitted payment confirmation request. It enters Completed.
func NewPaymentFromConfirmation(req *PaymentConfirmationRequest, reviewedBy string, now time.Time) (*Payment, error) {
	if req.Status != ConfirmationStatusConfirmed {
		return nil, shared.NewDomainError("INVALID_STATE", "Only a confirmed request can materialize a payment")
	}

	pm := &Payment{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(req.OrgID),
		InvoiceID:        req.InvoiceID,
		Mode:             req.Mode,
		Status:           PaymentStatusCompleted,
		Amount:           req.Amount,
		PaymentDate:      req.ClaimedPaymentDate,
		TransactionRef:   req.ReceiptNumber,
		PayerName:        req.PayerName,
		Notes:            req.Notes,
	}
	requestID := req.ID
	pm.SourceRequestID = &requestID
	pm.appendHistory("", PaymentStatusCompleted, reviewedBy, "Confirmed from payment confirmation request", now)

	pm.AddDomainEvent(NewPaymentRecordedEvent(pm))
	pm.AddDomainEvent(NewPaymentCompletedEvent(pm))

	return pm, nil
}

// appendHistory records a transition in the audit trail
func (pm *Payment) appendHistory(from, to PaymentStatus, actor, reason string, at time.Time) {
	pm.History = append(pm.History, PaymentStatusHistory{
		ID:         uuid.New(),
		PaymentID:  pm.ID,
		Sequence:   len(pm.History) + 1,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  actor,
		Reason:     reason,
		ChangedAt:  at.UTC(),
	})
}

// transition moves the payment to a new status and records it
func (pm *Payment) transition(to PaymentStatus, actor, reason string, at time.Time) {
	from := pm.Status
	pm.Status = to
	pm.appendHistory(from, to, actor, reason, at)
	pm.UpdatedAt = at.UTC()
	pm.IncrementVersion()
}

// Confirm is the owner-driven transition accepting a pending payment.
// Allowed from Pending or PendingConfirmation; the note is optional.
func (pm *Payment) Confirm(actor, note string, at time.Time) error {
	if !pm.Status.CanReview() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm payment in %s status", pm.Status))
	}
	if actor == "" {
		return shared.NewDomainError("INVALID_ACTOR", "Confirming actor is required")
	}
	pm.transition(PaymentStatusCompleted, actor, note, at)
	pm.AddDomainEvent(NewPaymentCompletedEvent(pm))
	return nil
}

// Reject is the owner-driven transition declining a pending payment.
// A reason is required.
func (pm *Payment) Reject(actor, reason string, at time.Time) error {
	if !pm.Status.CanReview() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject payment in %s status", pm.Status))
	}
	if actor == "" {
		return shared.NewDomainError("INVALID_ACTOR", "Rejecting actor is required")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	pm.transition(PaymentStatusRejected, actor, reason, at)
	pm.AddDomainEvent(NewPaymentRejectedEvent(pm, reason))
	return nil
}

// StartProcessing marks a gateway payment as in flight
func (pm *Payment) StartProcessing(actor string, at time.Time) error {
	if pm.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing payment in %s status", pm.Status))
	}
	pm.transition(PaymentStatusProcessing, actor, "", at)
	return nil
}

// CompleteFromGateway settles a gateway payment once the gateway reports
// success. The gateway's settlement reference becomes the transaction ref.
func (pm *Payment) CompleteFromGateway(settlementRef string, at time.Time) error {
	if pm.Status != PaymentStatusPending && pm.Status != PaymentStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete payment in %s status", pm.Status))
	}
	if settlementRef != "" {
		pm.TransactionRef = settlementRef
	}
	pm.transition(PaymentStatusCompleted, "gateway", "", at)
	pm.AddDomainEvent(NewPaymentCompletedEvent(pm))
	return nil
}

// Fail marks a gateway payment as failed
func (pm *Payment) Fail(reason string, at time.Time) error {
	if pm.Status != PaymentStatusPending && pm.Status != PaymentStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail payment in %s status", pm.Status))
	}
	pm.transition(PaymentStatusFailed, "gateway", reason, at)
	pm.AddDomainEvent(NewPaymentFailedEvent(pm, reason))
	return nil
}

// Cancel withdraws a payment before it settles
func (pm *Payment) Cancel(actor, reason string, at time.Time) error {
	if !pm.Status.CanReview() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payment in %s status", pm.Status))
	}
	pm.transition(PaymentStatusCancelled, actor, reason, at)
	return nil
}

// Refund reverses a completed payment
func (pm *Payment) Refund(actor, reason string, at time.Time) error {
	if pm.Status != PaymentStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refund payment in %s status", pm.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Refund reason is required")
	}
	pm.transition(PaymentStatusRefunded, actor, reason, at)
	pm.AddDomainEvent(NewPaymentRefundedEvent(pm, reason))
	return nil
}

// GetAmountMoney returns the payment amount as Money
func (pm *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(pm.Amount)
}

// IsCompleted returns true if the payment has settled
func (pm *Payment) IsCompleted() bool {
	return pm.Status == PaymentStatusCompleted
}

// LatestHistory returns the most recent audit entry, or nil when none exists
func (pm *Payment) LatestHistory() *PaymentStatusHistory {
	if len(pm.History) == 0 {
		return nil
	}
	return &pm.History[len(pm.History)-1]
}
