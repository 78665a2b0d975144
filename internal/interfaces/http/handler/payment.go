package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/propely/backend/internal/application/billing"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// ConfirmPaymentRequest represents a manual payment confirmation
//
//	@Description	Request body for confirming a payment awaiting confirmation
type ConfirmPaymentRequest struct {
	Note string `json:"note" binding:"max=500" example:"Bank transfer verified against statement"`
}

// PaymentReasonRequest carries the reason for a reject, cancel or refund
//
//	@Description	Request body with a mandatory reason
type PaymentReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Duplicate entry"`
}

// Record godoc
//
//	@ID				recordPayment
//	@Summary		Record a payment
//	@Description	Record a payment against a payable invoice; an idempotency key makes blind retries safe
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string								true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string								true	"Acting user"
//	@Param			request		body		billingapp.RecordPaymentRequest	true	"Payment record request"
//	@Success		201			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		409			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	actor := getActor(c)
	if actor == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), orgID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, payment)
}

// Confirm godoc
//
//	@ID				confirmPayment
//	@Summary		Confirm a payment
//	@Description	Move a payment awaiting confirmation to Completed and reconcile the invoice
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string					true	"Acting user"
//	@Param			id			path		string					true	"Payment ID"	format(uuid)
//	@Param			request		body		ConfirmPaymentRequest	false	"Confirmation note"
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/{id}/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	actor := getActor(c)
	if actor == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), orgID, paymentID, actor, req.Note)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Reject godoc
//
//	@ID				rejectPayment
//	@Summary		Reject a payment
//	@Description	Reject a payment awaiting confirmation with a reason
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string					true	"Acting user"
//	@Param			id			path		string					true	"Payment ID"	format(uuid)
//	@Param			request		body		PaymentReasonRequest	true	"Rejection reason"
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/{id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	actor := getActor(c)
	if actor == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req PaymentReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.RejectPayment(c.Request.Context(), orgID, paymentID, actor, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Cancel godoc
//
//	@ID				cancelPayment
//	@Summary		Cancel a payment
//	@Description	Cancel a pending or awaiting-confirmation payment with a reason
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string					true	"Acting user"
//	@Param			id			path		string					true	"Payment ID"	format(uuid)
//	@Param			request		body		PaymentReasonRequest	true	"Cancellation reason"
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	actor := getActor(c)
	if actor == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req PaymentReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), orgID, paymentID, actor, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Refund godoc
//
//	@ID				refundPayment
//	@Summary		Refund a payment
//	@Description	Refund a completed payment and roll its amount back off the invoice
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string					true	"Acting user"
//	@Param			id			path		string					true	"Payment ID"	format(uuid)
//	@Param			request		body		PaymentReasonRequest	true	"Refund reason"
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	actor := getActor(c)
	if actor == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	var req PaymentReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.RefundPayment(c.Request.Context(), orgID, paymentID, actor, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// GetByID godoc
//
//	@ID				getPaymentById
//	@Summary		Get payment by ID
//	@Description	Retrieve a payment by its ID
//	@Tags			payments
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Payment ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), orgID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// ListByInvoice godoc
//
//	@ID				listPaymentsByInvoice
//	@Summary		List payments for an invoice
//	@Description	Retrieve every payment recorded against an invoice
//	@Tags			payments
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]billingapp.PaymentResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/payments [get]
func (h *PaymentHandler) ListByInvoice(c *gin.Context) {
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

	payments, err := h.paymentService.ListPaymentsByInvoice(c.Request.Context(), orgID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// History godoc
//
//	@ID				getPaymentHistory
//	@Summary		Get a payment's status history
//	@Description	Retrieve the append-only audit trail of a payment's status transitions
//	@Tags			payments
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Payment ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]billingapp.PaymentHistoryResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/{id}/history [get]
func (h *PaymentHandler) History(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	history, err := h.paymentService.GetPaymentHistory(c.Request.Context(), orgID, paymentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, history)
}
