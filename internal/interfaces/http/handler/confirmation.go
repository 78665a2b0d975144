package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/propely/backend/internal/application/billing"
)

// ConfirmationHandler handles the tenant-claimed payment flow: a tenant
// submits a claim with optional proof, the owner confirms or rejects it.
type ConfirmationHandler struct {
	BaseHandler
	confirmationService *billingapp.ConfirmationService
}

// NewConfirmationHandler creates a new ConfirmationHandler
func NewConfirmationHandler(confirmationService *billingapp.ConfirmationService) *ConfirmationHandler {
	return &ConfirmationHandler{
		confirmationService: confirmationService,
	}
}

// ProofUploadRequest represents a request for a proof upload URL
//
//	@Description	Request body for a presigned proof upload URL
type ProofUploadRequest struct {
	ContentType string `json:"content_type" binding:"required" example:"image/jpeg"`
}

// ReviewRequest carries the reviewer's response text
//
//	@Description	Request body for confirming or rejecting a claim
type ReviewRequest struct {
	Response string `json:"response" binding:"max=500" example:"Verified against the bank statement"`
}

// Submit godoc
//
//	@ID				submitConfirmationRequest
//	@Summary		Submit a payment claim
//	@Description	Record a tenant's claim that a payment was made against an invoice; the claim enters pending review
//	@Tags			payment-confirmations
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string									true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string									true	"Submitting user"
//	@Param			request		body		billingapp.SubmitConfirmationRequest	true	"Payment claim"
//	@Success		201			{object}	APIResponse[billingapp.ConfirmationResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations [post]
func (h *ConfirmationHandler) Submit(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	submittedBy := getActor(c)
	if submittedBy == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	var req billingapp.SubmitConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	confirmation, err := h.confirmationService.SubmitRequest(c.Request.Context(), orgID, submittedBy, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, confirmation)
}

// RequestProofUpload godoc
//
//	@ID				requestConfirmationProofUpload
//	@Summary		Request a proof upload URL
//	@Description	Generate a presigned upload URL for a proof file and attach its storage key to the pending claim
//	@Tags			payment-confirmations
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string				true	"Org ID"	format(uuid)
//	@Param			id			path		string				true	"Confirmation Request ID"	format(uuid)
//	@Param			request		body		ProofUploadRequest	true	"Proof content type"
//	@Success		200			{object}	APIResponse[billingapp.ProofUploadResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations/{id}/proof-upload [post]
func (h *ConfirmationHandler) RequestProofUpload(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid confirmation request ID format")
		return
	}

	var req ProofUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	upload, err := h.confirmationService.RequestProofUpload(c.Request.Context(), orgID, requestID, req.ContentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, upload)
}

// Confirm godoc
//
//	@ID				confirmConfirmationRequest
//	@Summary		Approve a payment claim
//	@Description	Approve a pending claim; the approval materializes exactly one completed payment against the invoice
//	@Tags			payment-confirmations
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string			true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string			true	"Reviewing user"
//	@Param			id			path		string			true	"Confirmation Request ID"	format(uuid)
//	@Param			request		body		ReviewRequest	false	"Review response"
//	@Success		200			{object}	APIResponse[billingapp.PaymentResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations/{id}/confirm [post]
func (h *ConfirmationHandler) Confirm(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	reviewer := getActor(c)
	if reviewer == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid confirmation request ID format")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.confirmationService.ConfirmRequest(c.Request.Context(), orgID, requestID, reviewer, req.Response)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Reject godoc
//
//	@ID				rejectConfirmationRequest
//	@Summary		Reject a payment claim
//	@Description	Reject a pending claim with a review response
//	@Tags			payment-confirmations
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string			true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string			true	"Reviewing user"
//	@Param			id			path		string			true	"Confirmation Request ID"	format(uuid)
//	@Param			request		body		ReviewRequest	false	"Review response"
//	@Success		200			{object}	APIResponse[billingapp.ConfirmationResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations/{id}/reject [post]
func (h *ConfirmationHandler) Reject(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	reviewer := getActor(c)
	if reviewer == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid confirmation request ID format")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	confirmation, err := h.confirmationService.RejectRequest(c.Request.Context(), orgID, requestID, reviewer, req.Response)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, confirmation)
}

// Cancel godoc
//
//	@ID				cancelConfirmationRequest
//	@Summary		Cancel a payment claim
//	@Description	Withdraw a pending claim before it is reviewed
//	@Tags			payment-confirmations
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Confirmation Request ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.ConfirmationResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations/{id}/cancel [post]
func (h *ConfirmationHandler) Cancel(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid confirmation request ID format")
		return
	}

	confirmation, err := h.confirmationService.CancelRequest(c.Request.Context(), orgID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, confirmation)
}

// GetByID godoc
//
//	@ID				getConfirmationRequestById
//	@Summary		Get a payment claim by ID
//	@Description	Retrieve a confirmation request, including a proof download URL when a proof file is attached
//	@Tags			payment-confirmations
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Confirmation Request ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.ConfirmationResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations/{id} [get]
func (h *ConfirmationHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid confirmation request ID format")
		return
	}

	confirmation, err := h.confirmationService.GetRequest(c.Request.Context(), orgID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, confirmation)
}

// ListPending godoc
//
//	@ID				listPendingConfirmationRequests
//	@Summary		List pending payment claims
//	@Description	Retrieve every claim awaiting review for the org
//	@Tags			payment-confirmations
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]billingapp.ConfirmationResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payment-confirmations/pending [get]
func (h *ConfirmationHandler) ListPending(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	confirmations, err := h.confirmationService.ListPendingRequests(c.Request.Context(), orgID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, confirmations)
}

// ListByInvoice godoc
//
//	@ID				listConfirmationRequestsByInvoice
//	@Summary		List payment claims for an invoice
//	@Description	Retrieve every confirmation request submitted against an invoice
//	@Tags			payment-confirmations
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		200	{object}	APIResponse[[]billingapp.ConfirmationResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Router			/billing/invoices/{id}/payment-confirmations [get]
func (h *ConfirmationHandler) ListByInvoice(c *gin.Context) {
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

	confirmations, err := h.confirmationService.ListRequestsByInvoice(c.Request.Context(), orgID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, confirmations)
}
