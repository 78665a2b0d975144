package billing

import (
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecordedEvent is raised when a payment is first recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Mode        PaymentMode     `json:"mode"`
	Status      PaymentStatus   `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(pm *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", pm.ID, pm.OrgID),
		PaymentID:       pm.ID,
		InvoiceID:       pm.InvoiceID,
		Mode:            pm.Mode,
		Status:          pm.Status,
		Amount:          pm.Amount,
		PaymentDate:     pm.PaymentDate,
	}
}

// PaymentCompletedEvent is raised when a payment settles
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentCompletedEvent) EventType() string {
	return "PaymentCompleted"
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(pm *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCompleted", "Payment", pm.ID, pm.OrgID),
		PaymentID:       pm.ID,
		InvoiceID:       pm.InvoiceID,
		Amount:          pm.Amount,
	}
}

// PaymentRejectedEvent is raised when an owner declines a pending payment
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentRejectedEvent) EventType() string {
	return "PaymentRejected"
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent
func NewPaymentRejectedEvent(pm *Payment, reason string) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRejected", "Payment", pm.ID, pm.OrgID),
		PaymentID:       pm.ID,
		InvoiceID:       pm.InvoiceID,
		Amount:          pm.Amount,
		Reason:          reason,
	}
}

// PaymentFailedEvent is raised when a gateway payment fails
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID `json:"payment_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentFailedEvent) EventType() string {
	return "PaymentFailed"
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(pm *Payment, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentFailed", "Payment", pm.ID, pm.OrgID),
		PaymentID:       pm.ID,
		InvoiceID:       pm.InvoiceID,
		Reason:          reason,
	}
}

// PaymentRefundedEvent is raised when a completed payment is reversed
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentRefundedEvent) EventType() string {
	return "PaymentRefunded"
}

// NewPaymentRefundedEvent creates a new PaymentRefundedEvent
func NewPaymentRefundedEvent(pm *Payment, reason string) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRefunded", "Payment", pm.ID, pm.OrgID),
		PaymentID:       pm.ID,
		InvoiceID:       pm.InvoiceID,
		Amount:          pm.Amount,
		Reason:          reason,
	}
}

// ConfirmationRequestSubmittedEvent is raised when a tenant submits a claim
type ConfirmationRequestSubmittedEvent struct {
	shared.BaseDomainEvent
	RequestID uuid.UUID       `json:"request_id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *ConfirmationRequestSubmittedEvent) EventType() string {
	return "ConfirmationRequestSubmitted"
}

// NewConfirmationRequestSubmittedEvent creates a new ConfirmationRequestSubmittedEvent
func NewConfirmationRequestSubmittedEvent(req *PaymentConfirmationRequest) *ConfirmationRequestSubmittedEvent {
	return &ConfirmationRequestSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConfirmationRequestSubmitted", "PaymentConfirmationRequest", req.ID, req.OrgID),
		RequestID:       req.ID,
		InvoiceID:       req.InvoiceID,
		Amount:          req.Amount,
	}
}

// ConfirmationRequestReviewedEvent is raised when an owner reviews a claim
type ConfirmationRequestReviewedEvent struct {
	shared.BaseDomainEvent
	RequestID uuid.UUID          `json:"request_id"`
	InvoiceID uuid.UUID          `json:"invoice_id"`
	Status    ConfirmationStatus `json:"status"`
	Reviewer  string             `json:"reviewer"`
}

// EventType returns the event type name
func (e *ConfirmationRequestReviewedEvent) EventType() string {
	return "ConfirmationRequestReviewed"
}

// NewConfirmationRequestReviewedEvent creates a new ConfirmationRequestReviewedEvent
func NewConfirmationRequestReviewedEvent(req *PaymentConfirmationRequest) *ConfirmationRequestReviewedEvent {
	reviewer := ""
	if req.ReviewedBy != nil {
		reviewer = *req.ReviewedBy
	}
	return &ConfirmationRequestReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ConfirmationRequestReviewed", "PaymentConfirmationRequest", req.ID, req.OrgID),
		RequestID:       req.ID,
		InvoiceID:       req.InvoiceID,
		Status:          req.Status,
		Reviewer:        reviewer,
	}
}
