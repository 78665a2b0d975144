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

// InvoiceService drives the invoice lifecycle: generation from recurring
// charges and finalized utility statements, issuing, voiding and cancelling,
// and the periodic overdue sweep.
type InvoiceService struct {
	invoiceRepo    billing.InvoiceRepository
	chargeRepo     billing.RecurringChargeRepository
	statementRepo  billing.UtilityStatementRepository
	paymentRepo    billing.PaymentRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	convention         valueobject.DayCountConvention
	taxRate            decimal.Decimal
	utilityChargeTypes map[billing.UtilityType]uuid.UUID
}

// InvoiceServiceOption is a functional option for configuring InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithDayCountConvention sets the proration convention used during generation
func WithDayCountConvention(c valueobject.DayCountConvention) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.convention = c
	}
}

// WithTaxRate sets the fractional tax rate applied to taxable lines
func WithTaxRate(rate decimal.Decimal) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.taxRate = rate
	}
}

// WithUtilityChargeTypes maps utility types to the charge-type IDs used when
// invoicing finalized statements
func WithUtilityChargeTypes(m map[billing.UtilityType]uuid.UUID) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.utilityChargeTypes = m
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	chargeRepo billing.RecurringChargeRepository,
	statementRepo billing.UtilityStatementRepository,
	paymentRepo billing.PaymentRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InvoiceService{
		invoiceRepo:        invoiceRepo,
		chargeRepo:         chargeRepo,
		statementRepo:      statementRepo,
		paymentRepo:        paymentRepo,
		eventPublisher:     eventPublisher,
		logger:             logger,
		convention:         valueobject.ActualDaysInMonth,
		taxRate:            decimal.Zero,
		utilityChargeTypes: map[billing.UtilityType]uuid.UUID{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InvoiceLineResponse represents one invoice line in API responses
type InvoiceLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	ChargeTypeID      uuid.UUID       `json:"charge_type_id"`
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	Taxable           bool            `json:"taxable"`
	SourceChargeID    *uuid.UUID      `json:"source_charge_id,omitempty"`
	SourceStatementID *uuid.UUID      `json:"source_statement_id,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	OrgID          uuid.UUID             `json:"org_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	LeaseID        uuid.UUID             `json:"lease_id"`
	PeriodStart    time.Time             `json:"period_start"`
	PeriodEnd      time.Time             `json:"period_end"`
	IssueDate      *time.Time            `json:"issue_date,omitempty"`
	DueDate        *time.Time            `json:"due_date,omitempty"`
	Status         string                `json:"status"`
	Lines          []InvoiceLineResponse `json:"lines"`
	SubtotalAmount decimal.Decimal       `json:"subtotal_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	BalanceAmount  decimal.Decimal       `json:"balance_amount"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	VoidReason     string                `json:"void_reason,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

func toInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ID:                l.ID,
			ChargeTypeID:      l.ChargeTypeID,
			Description:       l.Description,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			Amount:            l.Amount(),
			Taxable:           l.Taxable,
			SourceChargeID:    l.SourceChargeID,
			SourceStatementID: l.SourceStatementID,
		}
	}
	return &InvoiceResponse{
		ID:             inv.ID,
		OrgID:          inv.OrgID,
		InvoiceNumber:  inv.InvoiceNumber,
		LeaseID:        inv.LeaseID,
		PeriodStart:    inv.PeriodStart,
		PeriodEnd:      inv.PeriodEnd,
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		Status:         inv.Status.String(),
		Lines:          lines,
		SubtotalAmount: inv.SubtotalAmount,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		BalanceAmount:  inv.BalanceAmount,
		PaidAt:         inv.PaidAt,
		VoidReason:     inv.VoidReason,
		CancelReason:   inv.CancelReason,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}

// GenerateInvoiceRequest carries the input for generating a lease invoice
type GenerateInvoiceRequest struct {
	LeaseID     uuid.UUID `json:"lease_id" binding:"required"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
	// IncludeUtilities controls whether finalized utility statements for the
	// period are pulled onto the invoice.
	IncludeUtilities bool `json:"include_utilities"`
}

// GenerateForLease builds a draft invoice for a lease and billing period:
// active recurring charges are expanded (prorating partial coverage) and,
// when requested, finalized utility statements for the period are added as
// lines. A lease gets at most one non-voided invoice per period.
func (s *InvoiceService) GenerateForLease(ctx context.Context, orgID uuid.UUID, req GenerateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "GenerateForLease")
	defer span.End()

	period, err := valueobject.NewBillingPeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	existing, err := s.invoiceRepo.FindByLeaseAndPeriod(ctx, orgID, req.LeaseID, period)
	if err != nil {
		return nil, err
	}
	if existing != nil && !existing.Status.IsTerminal() {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"An invoice already exists for this lease and period")
	}

	charges, err := s.chargeRepo.FindActiveByLease(ctx, orgID, req.LeaseID)
	if err != nil {
		return nil, err
	}
	chargePtrs := make([]*billing.RecurringCharge, len(charges))
	for i := range charges {
		chargePtrs[i] = &charges[i]
	}

	candidates, err := billing.ExpandCharges(chargePtrs, period, s.convention)
	if err != nil {
		return nil, err
	}

	number, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, orgID)
	if err != nil {
		return nil, err
	}

	inv, err := billing.NewInvoice(orgID, number, req.LeaseID, period, s.taxRate)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		if _, err := inv.AddLineFromCandidate(c, true); err != nil {
			return nil, err
		}
	}

	if req.IncludeUtilities {
		statements, err := s.statementRepo.FindFinalForPeriod(ctx, orgID, req.LeaseID, period)
		if err != nil {
			return nil, err
		}
		for i := range statements {
			us := &statements[i]
			chargeTypeID, ok := s.utilityChargeTypes[us.UtilityType]
			if !ok {
				s.logger.Warn("No charge type mapped for utility, skipping statement",
					zap.String("utility_type", us.UtilityType.String()),
					zap.String("statement_id", us.ID.String()))
				continue
			}
			if us.TotalAmount.IsZero() {
				continue
			}
			if _, err := inv.AddLineFromStatement(us, chargeTypeID, false); err != nil {
				return nil, err
			}
		}
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	s.logger.Info("Invoice generated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("lease_id", inv.LeaseID.String()),
		zap.Int("lines", inv.LineCount()),
		zap.String("total", inv.TotalAmount.String()))

	return toInvoiceResponse(inv), nil
}

// IssueInvoiceRequest carries the issue and due dates
type IssueInvoiceRequest struct {
	IssueDate time.Time `json:"issue_date" binding:"required"`
	DueDate   time.Time `json:"due_date" binding:"required"`
}

// IssueInvoice moves a draft invoice to Issued
func (s *InvoiceService) IssueInvoice(ctx context.Context, orgID, invoiceID uuid.UUID, req IssueInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Issue(req.IssueDate, req.DueDate); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	return toInvoiceResponse(inv), nil
}

// AddLineRequest carries a manually added invoice line
type AddLineRequest struct {
	ChargeTypeID uuid.UUID       `json:"charge_type_id" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Taxable      bool            `json:"taxable"`
}

// AddLine appends a manual line to a draft invoice
func (s *InvoiceService) AddLine(ctx context.Context, orgID, invoiceID uuid.UUID, req AddLineRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}

	if _, err := inv.AddLine(req.ChargeTypeID, req.Description, req.Quantity, req.UnitPrice, req.Taxable); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// RemoveLine removes a line from a draft invoice
func (s *InvoiceService) RemoveLine(ctx context.Context, orgID, invoiceID, lineID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// VoidInvoice voids a draft or issued invoice
func (s *InvoiceService) VoidInvoice(ctx context.Context, orgID, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Void(reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	s.logger.Info("Invoice voided",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reason", reason))

	return toInvoiceResponse(inv), nil
}

// CancelInvoice cancels a draft or issued invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, orgID, invoiceID uuid.UUID, reason string) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Cancel(reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()

	return toInvoiceResponse(inv), nil
}

// GetInvoice returns a single invoice
func (s *InvoiceService) GetInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search   string     `form:"search"`
	LeaseID  *uuid.UUID `form:"lease_id"`
	Status   string     `form:"status"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, orgID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := billing.InvoiceFilter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		LeaseID:  filter.LeaseID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAllForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForOrg(ctx, orgID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// OverdueSweepResult summarizes one overdue sweep run
type OverdueSweepResult struct {
	Checked int `json:"checked"`
	Marked  int `json:"marked"`
	Failed  int `json:"failed"`
}

// RunOverdueSweep marks every issued or partially paid invoice whose due date
// has passed with a balance outstanding as Overdue. It is driven by the
// scheduler, not by payment activity, so an invoice goes overdue even when
// nothing else touches it.
func (s *InvoiceService) RunOverdueSweep(ctx context.Context, orgID uuid.UUID, asOf time.Time) (*OverdueSweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "RunOverdueSweep")
	defer span.End()

	due, err := s.invoiceRepo.FindDueForOverdueSweep(ctx, orgID, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &OverdueSweepResult{Checked: len(due)}
	for i := range due {
		inv := &due[i]
		if err := inv.MarkOverdue(asOf); err != nil {
			// Raced with a payment or another sweep; skip, not fatal.
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			result.Failed++
			s.logger.Warn("Failed to mark invoice overdue",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		result.Marked++
		s.publishEvents(ctx, inv.GetDomainEvents())
		inv.ClearDomainEvents()
	}

	s.logger.Info("Overdue sweep completed",
		zap.Int("checked", result.Checked),
		zap.Int("marked", result.Marked),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (s *InvoiceService) findInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByIDForOrg(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return inv, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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
