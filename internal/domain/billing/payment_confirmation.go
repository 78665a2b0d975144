package billing

import (
	"fmt"
	"time"

	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfirmationStatus represents the status of a payment confirmation request
type ConfirmationStatus string

const (
	ConfirmationStatusPending   ConfirmationStatus = "PENDING"
	ConfirmationStatusConfirmed ConfirmationStatus = "CONFIRMED"
	ConfirmationStatusRejected  ConfirmationStatus = "REJECTED"
	ConfirmationStatusCancelled ConfirmationStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ConfirmationStatus
func (s ConfirmationStatus) IsValid() bool {
	switch s {
	case ConfirmationStatusPending, ConfirmationStatusConfirmed,
		ConfirmationStatusRejected, ConfirmationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ConfirmationStatus
func (s ConfirmationStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the request has been reviewed or withdrawn
func (s ConfirmationStatus) IsTerminal() bool {
	return s != ConfirmationStatusPending
}

// PaymentConfirmationRequest is a tenant-submitted claim that a payment was
// made, awaiting owner review. Confirmation materializes exactly one
// completed Payment; rejection materializes none. Once reviewed the request
// is terminal and a second review attempt is a state conflict.
type PaymentConfirmationRequest struct {
	shared.OrgAggregateRoot
	InvoiceID          uuid.UUID          `json:"invoice_id"`
	SubmittedBy        string             `json:"submitted_by"` // Tenant identity, opaque
	PayerName          string             `json:"payer_name"`
	Mode               PaymentMode        `json:"mode"`
	Amount             decimal.Decimal    `json:"amount"`
	ClaimedPaymentDate time.Time          `json:"claimed_payment_date"`
	ReceiptNumber      string             `json:"receipt_number,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	ProofFileRef       string             `json:"proof_file_ref,omitempty"`
	Status             ConfirmationStatus `json:"status"`
	ReviewedBy         *string            `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time         `json:"reviewed_at,omitempty"`
	ReviewResponse     string             `json:"review_response,omitempty"`
}

// NewConfirmationRequestParams carries the input for a tenant's claim
type NewConfirmationRequestParams struct {
	OrgID              uuid.UUID
	InvoiceID          uuid.UUID
	SubmittedBy        string
	PayerName          string
	Mode               PaymentMode
	Amount             valueobject.Money
	ClaimedPaymentDate time.Time
	ReceiptNumber      string
	Notes              string
	ProofFileRef       string
}

// NewPaymentConfirmationRequest creates a pending confirmation request.
// remainingBalance is the invoice's outstanding balance; the claimed amount
// must be positive and must not exceed it.
func NewPaymentConfirmationRequest(p NewConfirmationRequestParams, remainingBalance decimal.Decimal) (*PaymentConfirmationRequest, error) {
	if p.InvoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if p.SubmittedBy == "" {
		return nil, shared.NewDomainError("INVALID_SUBMITTER", "Submitter identity is required")
	}
	if p.PayerName == "" {
		return nil, shared.NewDomainError("INVALID_PAYER", "Payer name cannot be empty")
	}
	if !p.Mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODE", fmt.Sprintf("Unknown payment mode %q", p.Mode))
	}
	amount := p.Amount.Amount()
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Claimed amount must be positive")
	}
	if amount.GreaterThan(remainingBalance) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Claimed amount %s exceeds remaining balance %s", amount, remainingBalance))
	}

	req := &PaymentConfirmationRequest{
		OrgAggregateRoot:   shared.NewOrgAggregateRoot(p.OrgID),
		InvoiceID:          p.InvoiceID,
		SubmittedBy:        p.SubmittedBy,
		PayerName:          p.PayerName,
		Mode:               p.Mode,
		Amount:             amount,
		ClaimedPaymentDate: valueobject.DateOnly(p.ClaimedPaymentDate),
		ReceiptNumber:      p.ReceiptNumber,
		Notes:              p.Notes,
		ProofFileRef:       p.ProofFileRef,
		Status:             ConfirmationStatusPending,
	}

	req.AddDomainEvent(NewConfirmationRequestSubmittedEvent(req))

	return req, nil
}

// Confirm approves the claim. Only pending requests may be confirmed; the
// caller is responsible for materializing the resulting Payment in the same
// transaction.
func (req *PaymentConfirmationRequest) Confirm(reviewer, response string, at time.Time) error {
	if req.Status != ConfirmationStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm request in %s status", req.Status))
	}
	if reviewer == "" {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer identity is required")
	}

	reviewedAt := at.UTC()
	req.Status = ConfirmationStatusConfirmed
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &reviewedAt
	req.ReviewResponse = response
	req.UpdatedAt = reviewedAt
	req.IncrementVersion()

	req.AddDomainEvent(NewConfirmationRequestReviewedEvent(req))

	return nil
}

// Reject declines the claim without creating a payment.
// A response explaining the rejection is required.
func (req *PaymentConfirmationRequest) Reject(reviewer, response string, at time.Time) error {
	if req.Status != ConfirmationStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject request in %s status", req.Status))
	}
	if reviewer == "" {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer identity is required")
	}
	if response == "" {
		return shared.NewDomainError("INVALID_RESPONSE", "Rejection response is required")
	}

	reviewedAt := at.UTC()
	req.Status = ConfirmationStatusRejected
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &reviewedAt
	req.ReviewResponse = response
	req.UpdatedAt = reviewedAt
	req.IncrementVersion()

	req.AddDomainEvent(NewConfirmationRequestReviewedEvent(req))

	return nil
}

// CancelByTenant withdraws the claim before review
func (req *PaymentConfirmationRequest) CancelByTenant(at time.Time) error {
	if req.Status != ConfirmationStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel request in %s status", req.Status))
	}

	req.Status = ConfirmationStatusCancelled
	req.UpdatedAt = at.UTC()
	req.IncrementVersion()

	return nil
}

// AttachProof stores the opaque reference to an uploaded proof file
func (req *PaymentConfirmationRequest) AttachProof(fileRef string) error {
	if req.Status != ConfirmationStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Proof can only be attached to a pending request")
	}
	if fileRef == "" {
		return shared.NewDomainError("INVALID_FILE_REF", "Proof file reference cannot be empty")
	}
	req.ProofFileRef = fileRef
	req.UpdatedAt = time.Now().UTC()
	req.IncrementVersion()
	return nil
}

// GetAmountMoney returns the claimed amount as Money
func (req *PaymentConfirmationRequest) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(req.Amount)
}
