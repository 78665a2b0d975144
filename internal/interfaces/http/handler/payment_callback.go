package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	billingapp "github.com/propely/backend/internal/application/billing"
	"github.com/propely/backend/internal/interfaces/http/dto"
)

// PaymentCallbackHandler handles payment gateway callback endpoints.
// These endpoints are called by the payment gateway after an online payment
// settles or fails; the gateway identifies the payment by its transaction ID.
type PaymentCallbackHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(paymentService *billingapp.PaymentService) *PaymentCallbackHandler {
	return &PaymentCallbackHandler{
		paymentService: paymentService,
	}
}

// GatewaySuccessCallback represents a successful settlement notification
//
//	@Description	Gateway settlement notification
type GatewaySuccessCallback struct {
	GatewayTxnID  string `json:"gateway_txn_id" binding:"required" example:"pg_9f83hd72"`
	SettlementRef string `json:"settlement_ref" binding:"required" example:"UTR2026043012345"`
}

// GatewayFailureCallback represents a failed settlement notification
//
//	@Description	Gateway failure notification
type GatewayFailureCallback struct {
	GatewayTxnID string `json:"gateway_txn_id" binding:"required" example:"pg_9f83hd72"`
	Reason       string `json:"reason" binding:"required" example:"Card declined by issuer"`
}

// PaymentCallbackResponse represents the response sent back to the gateway
//
//	@Description	Payment callback acknowledgement
type PaymentCallbackResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Payment completed"`
}

// HandleSuccess godoc
//
//	@ID				handleGatewaySuccessCallback
//	@Summary		Handle gateway settlement callback
//	@Description	Complete the pending payment matching the gateway transaction ID and reconcile its invoice
//	@Tags			payment-callbacks
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			request		body		GatewaySuccessCallback	true	"Settlement notification"
//	@Success		200			{object}	PaymentCallbackResponse
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/callback/success [post]
func (h *PaymentCallbackHandler) HandleSuccess(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var cb GatewaySuccessCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if _, err := h.paymentService.CompleteGatewayPayment(c.Request.Context(), orgID, cb.GatewayTxnID, cb.SettlementRef); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(PaymentCallbackResponse{
		Success: true,
		Message: "Payment completed",
	}))
}

// HandleFailure godoc
//
//	@ID				handleGatewayFailureCallback
//	@Summary		Handle gateway failure callback
//	@Description	Fail the pending payment matching the gateway transaction ID
//	@Tags			payment-callbacks
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			request		body		GatewayFailureCallback	true	"Failure notification"
//	@Success		200			{object}	PaymentCallbackResponse
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/payments/callback/failure [post]
func (h *PaymentCallbackHandler) HandleFailure(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var cb GatewayFailureCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if _, err := h.paymentService.FailGatewayPayment(c.Request.Context(), orgID, cb.GatewayTxnID, cb.Reason); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(PaymentCallbackResponse{
		Success: true,
		Message: "Payment marked failed",
	}))
}
