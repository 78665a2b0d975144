package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/propely/backend/internal/application/billing"
)

// InvoiceHandler handles invoice lifecycle API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// VoidInvoiceRequest represents a request to void an invoice
//
//	@Description	Request body for voiding an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Issued against the wrong lease"`
}

// CancelInvoiceRequest represents a request to cancel a draft invoice
//
//	@Description	Request body for cancelling a draft invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Lease terminated before issue"`
}

// OverdueSweepRequest represents a manual overdue sweep trigger
//
//	@Description	Request body for a manual overdue sweep
type OverdueSweepRequest struct {
	AsOf *time.Time `json:"as_of,omitempty" example:"2026-04-01T00:00:00Z"`
}

// Generate godoc
//
//	@ID				generateInvoice
//	@Summary		Generate an invoice for a lease
//	@Description	Build a draft invoice from active recurring charges and, optionally, finalized utility statements for the period
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string								true	"Org ID"	format(uuid)
//	@Param			request		body		billingapp.GenerateInvoiceRequest	true	"Invoice generation request"
//	@Success		201			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		409			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/generate [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req billingapp.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.GenerateForLease(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// Issue godoc
//
//	@ID				issueInvoice
//	@Summary		Issue a draft invoice
//	@Description	Move a draft invoice to Issued with an issue date and due date
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string							true	"Org ID"	format(uuid)
//	@Param			id			path		string							true	"Invoice ID"	format(uuid)
//	@Param			request		body		billingapp.IssueInvoiceRequest	true	"Issue request"
//	@Success		200			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/issue [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req billingapp.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), orgID, invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// AddLine godoc
//
//	@ID				addInvoiceLine
//	@Summary		Add a line to a draft invoice
//	@Description	Append a manually entered line to a draft invoice and recompute totals
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string						true	"Org ID"	format(uuid)
//	@Param			id			path		string						true	"Invoice ID"	format(uuid)
//	@Param			request		body		billingapp.AddLineRequest	true	"Line to add"
//	@Success		200			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/lines [post]
func (h *InvoiceHandler) AddLine(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req billingapp.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.AddLine(c.Request.Context(), orgID, invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RemoveLine godoc
//
//	@ID				removeInvoiceLine
//	@Summary		Remove a line from a draft invoice
//	@Description	Remove a line from a draft invoice and recompute totals
//	@Tags			invoices
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Invoice ID"	format(uuid)
//	@Param			lineId		path		string	true	"Line ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/lines/{lineId} [delete]
func (h *InvoiceHandler) RemoveLine(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	invoice, err := h.invoiceService.RemoveLine(c.Request.Context(), orgID, invoiceID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Void godoc
//
//	@ID				voidInvoice
//	@Summary		Void an issued invoice
//	@Description	Void an issued, partially paid or overdue invoice with a reason
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string				true	"Org ID"	format(uuid)
//	@Param			id			path		string				true	"Invoice ID"	format(uuid)
//	@Param			request		body		VoidInvoiceRequest	true	"Void request"
//	@Success		200			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), orgID, invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Cancel godoc
//
//	@ID				cancelInvoice
//	@Summary		Cancel a draft invoice
//	@Description	Cancel a draft invoice before it is issued
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			id			path		string					true	"Invoice ID"	format(uuid)
//	@Param			request		body		CancelInvoiceRequest	true	"Cancel request"
//	@Success		200			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), orgID, invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// GetByID godoc
//
//	@ID				getInvoiceById
//	@Summary		Get invoice by ID
//	@Description	Retrieve an invoice with its lines by ID
//	@Tags			invoices
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), orgID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
//
//	@ID				listInvoices
//	@Summary		List invoices
//	@Description	List invoices with filtering and pagination
//	@Tags			invoices
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			lease_id	query		string	false	"Filter by lease"	format(uuid)
//	@Param			status		query		string	false	"Filter by status"
//	@Param			search		query		string	false	"Search by invoice number"
//	@Param			from_date	query		string	false	"Period start lower bound"	format(date-time)
//	@Param			to_date		query		string	false	"Period start upper bound"	format(date-time)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]billingapp.InvoiceResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var filter billingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// RunOverdueSweep godoc
//
//	@ID				runInvoiceOverdueSweep
//	@Summary		Run the overdue sweep
//	@Description	Mark every issued or partially paid invoice past its due date with a balance outstanding as Overdue
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string				true	"Org ID"	format(uuid)
//	@Param			request		body		OverdueSweepRequest	false	"Sweep options"
//	@Success		200			{object}	APIResponse[billingapp.OverdueSweepResult]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/invoices/overdue-sweep [post]
func (h *InvoiceHandler) RunOverdueSweep(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req OverdueSweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	result, err := h.invoiceService.RunOverdueSweep(c.Request.Context(), orgID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
