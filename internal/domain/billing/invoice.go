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

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusVoided        InvoiceStatus = "VOIDED"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusVoided, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice accepts no further transitions
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusVoided || s == InvoiceStatusCancelled
}

// CanApplyPayment returns true if payments may be recorded in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusIssued || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

// CanModifyLines returns true if lines may be added or removed
func (s InvoiceStatus) CanModifyLines() bool {
	return s == InvoiceStatusDraft
}

// InvoiceLine is one billed item on an invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type InvoiceLine struct {
	ID                uuid.UUID       `json:"id"`
	ChargeTypeID      uuid.UUID       `json:"charge_type_id"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Taxable           bool            `json:"taxable"`
	SourceChargeID    *uuid.UUID      `json:"source_charge_id,omitempty"`
	SourceStatementID *uuid.UUID      `json:"source_statement_id,omitempty"`
}

// Amount returns quantity times unit price
func (l InvoiceLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// InvoiceLines is a slice of InvoiceLine that implements GORM Scanner/Valuer
// for JSONB storage
type InvoiceLines []InvoiceLine

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l InvoiceLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *InvoiceLines) Scan(value interface{}) error {
	if value == nil {
		*l = InvoiceLines{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceLines: unsupported type")
	}

	if len(bytes) == 0 {
		*l = InvoiceLines{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Invoice is the billing document for a lease and billing period. Its status
// is driven by the balance identity: balance always equals total minus the
// sum of completed payments, and the status must agree with the balance
// (Paid iff balance is zero, PartiallyPaid iff strictly between zero and
// total). Paid amounts are recomputed from the completed-payment sum on
// every change, never incremented in place, so a retried confirmation can
// not double-count.
type Invoice struct {
	shared.OrgAggregateRoot
	InvoiceNumber  string          `json:"invoice_number"`
	LeaseID        uuid.UUID       `json:"lease_id"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	IssueDate      *time.Time      `json:"issue_date,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Status         InvoiceStatus   `json:"status"`
	Lines          InvoiceLines    `json:"lines"`
	TaxRate        decimal.Decimal `json:"tax_rate"` // Fraction, e.g. 0.18
	SubtotalAmount decimal.Decimal `json:"subtotal_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	BalanceAmount  decimal.Decimal `json:"balance_amount"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	VoidedAt       *time.Time      `json:"voided_at,omitempty"`
	VoidReason     string          `json:"void_reason,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
}

// NewInvoice creates a new draft invoice for a lease and billing period
func NewInvoice(
	orgID uuid.UUID,
	invoiceNumber string,
	leaseID uuid.UUID,
	period valueobject.BillingPeriod,
	taxRate decimal.Decimal,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if leaseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LEASE", "Lease ID cannot be empty")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	inv := &Invoice{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		InvoiceNumber:    invoiceNumber,
		LeaseID:          leaseID,
		PeriodStart:      period.Start(),
		PeriodEnd:        period.End(),
		Status:           InvoiceStatusDraft,
		Lines:            InvoiceLines{},
		TaxRate:          taxRate,
		SubtotalAmount:   decimal.Zero,
		TaxAmount:        decimal.Zero,
		TotalAmount:      decimal.Zero,
		PaidAmount:       decimal.Zero,
		BalanceAmount:    decimal.Zero,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// Period returns the invoice's billing period
func (inv *Invoice) Period() valueobject.BillingPeriod {
	p, _ := valueobject.NewBillingPeriod(inv.PeriodStart, inv.PeriodEnd)
	return p
}

// AddLine appends a line to a draft invoice
func (inv *Invoice) AddLine(chargeTypeID uuid.UUID, description string, quantity, unitPrice decimal.Decimal, taxable bool) (*InvoiceLine, error) {
	if !inv.Status.CanModifyLines() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify lines on %s invoice", inv.Status))
	}
	if chargeTypeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CHARGE_TYPE", "Charge type ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_PRICE", "Line unit price cannot be negative")
	}

	line := InvoiceLine{
		ID:           uuid.New(),
		ChargeTypeID: chargeTypeID,
		Description:  description,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Taxable:      taxable,
	}
	inv.Lines = append(inv.Lines, line)
	inv.recalcTotals()
	inv.UpdatedAt = time.Now().UTC()
	inv.IncrementVersion()

	return &inv.Lines[len(inv.Lines)-1], nil
}

// AddLineFromCandidate appends a line produced by the charge expander
func (inv *Invoice) AddLineFromCandidate(c LineCandidate, taxable bool) (*InvoiceLine, error) {
	line, err := inv.AddLine(c.ChargeTypeID, c.Description, decimal.NewFromInt(1), c.Amount, taxable)
	if err != nil {
		return nil, err
	}
	chargeID := c.ChargeID
	line.SourceChargeID = &chargeID
	return line, nil
}

// AddLineFromStatement appends a line for a finalized utility statement
func (inv *Invoice) AddLineFromStatement(us *UtilityStatement, chargeTypeID uuid.UUID, taxable bool) (*InvoiceLine, error) {
	if !us.IsFinal {
		return nil, shared.NewDomainError("STATEMENT_NOT_FINAL", "Only final utility statements may be invoiced")
	}
	desc := fmt.Sprintf("%s charges %s", us.UtilityType, us.Period())
	line, err := inv.AddLine(chargeTypeID, desc, decimal.NewFromInt(1), us.TotalAmount, taxable)
	if err != nil {
		return nil, err
	}
	statementID := us.ID
	line.SourceStatementID = &statementID
	return line, nil
}

// RemoveLine removes a line from a draft invoice
func (inv *Invoice) RemoveLine(lineID uuid.UUID) error {
	if !inv.Status.CanModifyLines() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify lines on %s invoice", inv.Status))
	}
	for i, line := range inv.Lines {
		if line.ID == lineID {
			inv.Lines = append(inv.Lines[:i], inv.Lines[i+1:]...)
			inv.recalcTotals()
			inv.UpdatedAt = time.Now().UTC()
			inv.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// recalcTotals recomputes subtotal, tax, total, and balance from the lines
func (inv *Invoice) recalcTotals() {
	subtotal := decimal.Zero
	taxable := decimal.Zero
	for _, line := range inv.Lines {
		amount := line.Amount()
		subtotal = subtotal.Add(amount)
		if line.Taxable {
			taxable = taxable.Add(amount)
		}
	}
	inv.SubtotalAmount = subtotal.RoundBank(valueobject.MinorUnitDigits)
	inv.TaxAmount = taxable.Mul(inv.TaxRate).RoundBank(valueobject.MinorUnitDigits)
	inv.TotalAmount = inv.SubtotalAmount.Add(inv.TaxAmount)
	inv.BalanceAmount = inv.TotalAmount.Sub(inv.PaidAmount)
}

// Issue transitions a draft invoice to Issued, fixing its issue and due dates
func (inv *Invoice) Issue(issueDate, dueDate time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue invoice in %s status", inv.Status))
	}
	if len(inv.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot issue an invoice without line items")
	}
	if inv.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_TOTAL", "Cannot issue an invoice with a non-positive total")
	}
	issue := valueobject.DateOnly(issueDate)
	due := valueobject.DateOnly(dueDate)
	if due.Before(issue) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede issue date")
	}

	inv.Status = InvoiceStatusIssued
	inv.IssueDate = &issue
	inv.DueDate = &due
	inv.UpdatedAt = time.Now().UTC()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return nil
}

// ApplyCompletedPaymentTotal recomputes paid and balance amounts from the
// full sum of completed payments against this invoice, and moves the status
// accordingly. Passing the whole sum (instead of a delta) makes the
// operation re-entrant: replaying it after a retry yields the same state.
func (inv *Invoice) ApplyCompletedPaymentTotal(completedSum decimal.Decimal, at time.Time) error {
	if inv.Status.IsTerminal() || inv.Status == InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payments to invoice in %s status", inv.Status))
	}
	if completedSum.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Completed payment sum cannot be negative")
	}
	if completedSum.GreaterThan(inv.TotalAmount) {
		return shared.NewDomainError("EXCEEDS_TOTAL",
			fmt.Sprintf("Completed payment sum %s exceeds invoice total %s", completedSum, inv.TotalAmount))
	}

	previousStatus := inv.Status
	inv.PaidAmount = completedSum
	inv.BalanceAmount = inv.TotalAmount.Sub(completedSum)

	switch {
	case inv.BalanceAmount.IsZero():
		inv.Status = InvoiceStatusPaid
		paidAt := at.UTC()
		inv.PaidAt = &paidAt
	case completedSum.IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
		inv.PaidAt = nil
	default:
		// All completed payments refunded; an issued invoice goes back to
		// awaiting payment.
		if previousStatus == InvoiceStatusPaid || previousStatus == InvoiceStatusPartiallyPaid {
			inv.Status = InvoiceStatusIssued
		}
		inv.PaidAt = nil
	}

	inv.UpdatedAt = time.Now().UTC()
	inv.IncrementVersion()

	if inv.Status != previousStatus {
		switch inv.Status {
		case InvoiceStatusPaid:
			inv.AddDomainEvent(NewInvoicePaidEvent(inv))
		case InvoiceStatusPartiallyPaid:
			inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv))
		}
	}

	return nil
}

// MarkOverdue transitions the invoice to Overdue once its due date has
// passed with a balance outstanding. It is driven by the periodic sweep,
// not by payment events.
func (inv *Invoice) MarkOverdue(asOf time.Time) error {
	if inv.Status != InvoiceStatusIssued && inv.Status != InvoiceStatusPartiallyPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice overdue in %s status", inv.Status))
	}
	if inv.DueDate == nil || !valueobject.DateOnly(asOf).After(*inv.DueDate) {
		return shared.NewDomainError("NOT_DUE", "Invoice due date has not passed")
	}
	if !inv.BalanceAmount.IsPositive() {
		return shared.NewDomainError("NO_BALANCE", "Invoice has no outstanding balance")
	}

	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = time.Now().UTC()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))

	return nil
}

// Void voids the invoice. Allowed only from Draft or Issued; once any
// payment has been applied the invoice can no longer be voided.
func (inv *Invoice) Void(reason string, at time.Time) error {
	if inv.Status != InvoiceStatusDraft && inv.Status != InvoiceStatusIssued {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	voidedAt := at.UTC()
	inv.Status = InvoiceStatusVoided
	inv.VoidedAt = &voidedAt
	inv.VoidReason = reason
	inv.UpdatedAt = voidedAt
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv))

	return nil
}

// Cancel cancels the invoice. Allowed only from Draft or Issued.
func (inv *Invoice) Cancel(reason string, at time.Time) error {
	if inv.Status != InvoiceStatusDraft && inv.Status != InvoiceStatusIssued {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	cancelledAt := at.UTC()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &cancelledAt
	inv.CancelReason = reason
	inv.UpdatedAt = cancelledAt
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// IsOverdue reports whether the invoice is past due with a balance, as of
// the given instant
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	if inv.Status != InvoiceStatusIssued && inv.Status != InvoiceStatusPartiallyPaid {
		return inv.Status == InvoiceStatusOverdue
	}
	if inv.DueDate == nil {
		return false
	}
	return valueobject.DateOnly(asOf).After(*inv.DueDate) && inv.BalanceAmount.IsPositive()
}

// GetTotalAmountMoney returns the total as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.TotalAmount)
}

// GetBalanceAmountMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.BalanceAmount)
}

// LineCount returns the number of lines on the invoice
func (inv *Invoice) LineCount() int {
	return len(inv.Lines)
}
