package models

import (
	"time"

	"github.com/propely/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringChargeModel is the persistence model for the RecurringCharge aggregate root.
type RecurringChargeModel struct {
	OrgAggregateModel
	LeaseID      uuid.UUID               `gorm:"type:uuid;not null;index:idx_charge_org_lease,priority:2"`
	ChargeTypeID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Description  string                  `gorm:"type:varchar(200);not null"`
	Amount       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Frequency    billing.ChargeFrequency `gorm:"type:varchar(20);not null"`
	StartDate    time.Time               `gorm:"not null;index"`
	EndDate      *time.Time              `gorm:"index"`
	IsActive     bool                    `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (RecurringChargeModel) TableName() string {
	return "recurring_charges"
}

// ToDomain converts the persistence model to a domain RecurringCharge entity.
func (m *RecurringChargeModel) ToDomain() *billing.RecurringCharge {
	return &billing.RecurringCharge{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		LeaseID:          m.LeaseID,
		ChargeTypeID:     m.ChargeTypeID,
		Description:      m.Description,
		Amount:           m.Amount,
		Frequency:        m.Frequency,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		IsActive:         m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain RecurringCharge entity.
func (m *RecurringChargeModel) FromDomain(rc *billing.RecurringCharge) {
	m.FromDomainOrgAggregateRoot(rc.OrgAggregateRoot)
	m.LeaseID = rc.LeaseID
	m.ChargeTypeID = rc.ChargeTypeID
	m.Description = rc.Description
	m.Amount = rc.Amount
	m.Frequency = rc.Frequency
	m.StartDate = rc.StartDate
	m.EndDate = rc.EndDate
	m.IsActive = rc.IsActive
}

// RatePlanModel is the persistence model for the RatePlan aggregate root.
// Tiers are stored as an ordered JSONB array.
type RatePlanModel struct {
	OrgAggregateModel
	Name        string              `gorm:"type:varchar(100);not null"`
	UtilityType billing.UtilityType `gorm:"type:varchar(20);not null;index:idx_rate_plan_org_utility,priority:2"`
	Tiers       billing.RateTiers   `gorm:"type:jsonb;not null;default:'[]'"`
	IsActive    bool                `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (RatePlanModel) TableName() string {
	return "rate_plans"
}

// ToDomain converts the persistence model to a domain RatePlan entity.
func (m *RatePlanModel) ToDomain() *billing.RatePlan {
	return &billing.RatePlan{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		Name:             m.Name,
		UtilityType:      m.UtilityType,
		Tiers:            m.Tiers,
		IsActive:         m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain RatePlan entity.
func (m *RatePlanModel) FromDomain(rp *billing.RatePlan) {
	m.FromDomainOrgAggregateRoot(rp.OrgAggregateRoot)
	m.Name = rp.Name
	m.UtilityType = rp.UtilityType
	m.Tiers = rp.Tiers
	m.IsActive = rp.IsActive
}

// UtilityStatementModel is the persistence model for the UtilityStatement aggregate root.
type UtilityStatementModel struct {
	OrgAggregateModel
	LeaseID          uuid.UUID           `gorm:"type:uuid;not null;index:idx_statement_org_lease,priority:2"`
	UtilityType      billing.UtilityType `gorm:"type:varchar(20);not null;index"`
	PeriodStart      time.Time           `gorm:"not null;index"`
	PeriodEnd        time.Time           `gorm:"not null"`
	MeterBased       bool                `gorm:"not null"`
	RatePlanID       *uuid.UUID          `gorm:"type:uuid;index"`
	PreviousReading  *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	CurrentReading   *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	DirectBillAmount *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	TotalAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Revision         int                 `gorm:"not null;default:1"`
	IsFinal          bool                `gorm:"not null;default:false;index"`
	SupersededAt     *time.Time
}

// TableName returns the table name for GORM
func (UtilityStatementModel) TableName() string {
	return "utility_statements"
}

// ToDomain converts the persistence model to a domain UtilityStatement entity.
func (m *UtilityStatementModel) ToDomain() *billing.UtilityStatement {
	return &billing.UtilityStatement{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		LeaseID:          m.LeaseID,
		UtilityType:      m.UtilityType,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		MeterBased:       m.MeterBased,
		RatePlanID:       m.RatePlanID,
		PreviousReading:  m.PreviousReading,
		CurrentReading:   m.CurrentReading,
		DirectBillAmount: m.DirectBillAmount,
		TotalAmount:      m.TotalAmount,
		Revision:         m.Revision,
		IsFinal:          m.IsFinal,
		SupersededAt:     m.SupersededAt,
	}
}

// FromDomain populates the persistence model from a domain UtilityStatement entity.
func (m *UtilityStatementModel) FromDomain(us *billing.UtilityStatement) {
	m.FromDomainOrgAggregateRoot(us.OrgAggregateRoot)
	m.LeaseID = us.LeaseID
	m.UtilityType = us.UtilityType
	m.PeriodStart = us.PeriodStart
	m.PeriodEnd = us.PeriodEnd
	m.MeterBased = us.MeterBased
	m.RatePlanID = us.RatePlanID
	m.PreviousReading = us.PreviousReading
	m.CurrentReading = us.CurrentReading
	m.DirectBillAmount = us.DirectBillAmount
	m.TotalAmount = us.TotalAmount
	m.Revision = us.Revision
	m.IsFinal = us.IsFinal
	m.SupersededAt = us.SupersededAt
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Lines are stored as an ordered JSONB array.
type InvoiceModel struct {
	OrgAggregateModel
	InvoiceNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_org_number,priority:2"`
	LeaseID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_invoice_org_lease,priority:2"`
	PeriodStart    time.Time             `gorm:"not null;index"`
	PeriodEnd      time.Time             `gorm:"not null"`
	IssueDate      *time.Time            `gorm:"index"`
	DueDate        *time.Time            `gorm:"index"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Lines          billing.InvoiceLines  `gorm:"type:jsonb;not null;default:'[]'"`
	TaxRate        decimal.Decimal       `gorm:"type:decimal(8,6);not null"`
	SubtotalAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceAmount  decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	PaidAt         *time.Time
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:varchar(500)"`
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		InvoiceNumber:    m.InvoiceNumber,
		LeaseID:          m.LeaseID,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		IssueDate:        m.IssueDate,
		DueDate:          m.DueDate,
		Status:           m.Status,
		Lines:            m.Lines,
		TaxRate:          m.TaxRate,
		SubtotalAmount:   m.SubtotalAmount,
		TaxAmount:        m.TaxAmount,
		TotalAmount:      m.TotalAmount,
		PaidAmount:       m.PaidAmount,
		BalanceAmount:    m.BalanceAmount,
		PaidAt:           m.PaidAt,
		VoidedAt:         m.VoidedAt,
		VoidReason:       m.VoidReason,
		CancelledAt:      m.CancelledAt,
		CancelReason:     m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainOrgAggregateRoot(inv.OrgAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.LeaseID = inv.LeaseID
	m.PeriodStart = inv.PeriodStart
	m.PeriodEnd = inv.PeriodEnd
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.Lines = inv.Lines
	m.TaxRate = inv.TaxRate
	m.SubtotalAmount = inv.SubtotalAmount
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.BalanceAmount = inv.BalanceAmount
	m.PaidAt = inv.PaidAt
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Status history lives in its own table; see PaymentStatusHistoryModel.
type PaymentModel struct {
	OrgAggregateModel
	InvoiceID       uuid.UUID               `gorm:"type:uuid;not null;index:idx_payment_org_invoice,priority:2"`
	Mode            billing.PaymentMode     `gorm:"type:varchar(20);not null"`
	Status          billing.PaymentStatus   `gorm:"type:varchar(25);not null;index"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PaymentDate     time.Time               `gorm:"not null;index"`
	TransactionRef  string                  `gorm:"type:varchar(100)"`
	GatewayTxnID    string                  `gorm:"type:varchar(100);index"`
	PayerName       string                  `gorm:"type:varchar(200);not null"`
	Notes           string                  `gorm:"type:text"`
	Metadata        billing.PaymentMetadata `gorm:"type:jsonb;default:'{}'"`
	SourceRequestID *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
// History is not loaded here; repositories attach it separately.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		InvoiceID:        m.InvoiceID,
		Mode:             m.Mode,
		Status:           m.Status,
		Amount:           m.Amount,
		PaymentDate:      m.PaymentDate,
		TransactionRef:   m.TransactionRef,
		GatewayTxnID:     m.GatewayTxnID,
		PayerName:        m.PayerName,
		Notes:            m.Notes,
		Metadata:         m.Metadata,
		SourceRequestID:  m.SourceRequestID,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(pm *billing.Payment) {
	m.FromDomainOrgAggregateRoot(pm.OrgAggregateRoot)
	m.InvoiceID = pm.InvoiceID
	m.Mode = pm.Mode
	m.Status = pm.Status
	m.Amount = pm.Amount
	m.PaymentDate = pm.PaymentDate
	m.TransactionRef = pm.TransactionRef
	m.GatewayTxnID = pm.GatewayTxnID
	m.PayerName = pm.PayerName
	m.Notes = pm.Notes
	m.Metadata = pm.Metadata
	m.SourceRequestID = pm.SourceRequestID
}

// PaymentStatusHistoryModel is the append-only audit table for payment
// status transitions. Rows are inserted, never updated or deleted.
type PaymentStatusHistoryModel struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key"`
	PaymentID  uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_payment_history_seq,priority:1"`
	Sequence   int                   `gorm:"not null;uniqueIndex:idx_payment_history_seq,priority:2"`
	FromStatus billing.PaymentStatus `gorm:"type:varchar(25)"`
	ToStatus   billing.PaymentStatus `gorm:"type:varchar(25);not null"`
	ChangedBy  string                `gorm:"type:varchar(100);not null"`
	Reason     string                `gorm:"type:varchar(500)"`
	ChangedAt  time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentStatusHistoryModel) TableName() string {
	return "payment_status_history"
}

// ToDomain converts the persistence model to a domain PaymentStatusHistory entry.
func (m *PaymentStatusHistoryModel) ToDomain() billing.PaymentStatusHistory {
	return billing.PaymentStatusHistory{
		ID:         m.ID,
		PaymentID:  m.PaymentID,
		Sequence:   m.Sequence,
		FromStatus: m.FromStatus,
		ToStatus:   m.ToStatus,
		ChangedBy:  m.ChangedBy,
		Reason:     m.Reason,
		ChangedAt:  m.ChangedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentStatusHistory entry.
func (m *PaymentStatusHistoryModel) FromDomain(h billing.PaymentStatusHistory) {
	m.ID = h.ID
	m.PaymentID = h.PaymentID
	m.Sequence = h.Sequence
	m.FromStatus = h.FromStatus
	m.ToStatus = h.ToStatus
	m.ChangedBy = h.ChangedBy
	m.Reason = h.Reason
	m.ChangedAt = h.ChangedAt
}

// PaymentConfirmationModel is the persistence model for the
// PaymentConfirmationRequest aggregate root.
type PaymentConfirmationModel struct {
	OrgAggregateModel
	InvoiceID          uuid.UUID                  `gorm:"type:uuid;not null;index:idx_confirmation_org_invoice,priority:2"`
	SubmittedBy        string                     `gorm:"type:varchar(100);not null"`
	PayerName          string                     `gorm:"type:varchar(200);not null"`
	Mode               billing.PaymentMode        `gorm:"type:varchar(20);not null"`
	Amount             decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	ClaimedPaymentDate time.Time                  `gorm:"not null"`
	ReceiptNumber      string                     `gorm:"type:varchar(100)"`
	Notes              string                     `gorm:"type:text"`
	ProofFileRef       string                     `gorm:"type:varchar(500)"`
	Status             billing.ConfirmationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ReviewedBy         *string                    `gorm:"type:varchar(100)"`
	ReviewedAt         *time.Time
	ReviewResponse     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentConfirmationModel) TableName() string {
	return "payment_confirmation_requests"
}

// ToDomain converts the persistence model to a domain PaymentConfirmationRequest entity.
func (m *PaymentConfirmationModel) ToDomain() *billing.PaymentConfirmationRequest {
	return &billing.PaymentConfirmationRequest{
		OrgAggregateRoot:   m.ToDomainOrgAggregateRoot(),
		InvoiceID:          m.InvoiceID,
		SubmittedBy:        m.SubmittedBy,
		PayerName:          m.PayerName,
		Mode:               m.Mode,
		Amount:             m.Amount,
		ClaimedPaymentDate: m.ClaimedPaymentDate,
		ReceiptNumber:      m.ReceiptNumber,
		Notes:              m.Notes,
		ProofFileRef:       m.ProofFileRef,
		Status:             m.Status,
		ReviewedBy:         m.ReviewedBy,
		ReviewedAt:         m.ReviewedAt,
		ReviewResponse:     m.ReviewResponse,
	}
}

// FromDomain populates the persistence model from a domain PaymentConfirmationRequest entity.
func (m *PaymentConfirmationModel) FromDomain(req *billing.PaymentConfirmationRequest) {
	m.FromDomainOrgAggregateRoot(req.OrgAggregateRoot)
	m.InvoiceID = req.InvoiceID
	m.SubmittedBy = req.SubmittedBy
	m.PayerName = req.PayerName
	m.Mode = req.Mode
	m.Amount = req.Amount
	m.ClaimedPaymentDate = req.ClaimedPaymentDate
	m.ReceiptNumber = req.ReceiptNumber
	m.Notes = req.Notes
	m.ProofFileRef = req.ProofFileRef
	m.Status = req.Status
	m.ReviewedBy = req.ReviewedBy
	m.ReviewedAt = req.ReviewedAt
	m.ReviewResponse = req.ReviewResponse
}
