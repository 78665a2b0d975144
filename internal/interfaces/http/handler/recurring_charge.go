package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/propely/backend/internal/application/billing"
)

// RecurringChargeHandler handles recurring charge API endpoints
type RecurringChargeHandler struct {
	BaseHandler
	chargeService *billingapp.RecurringChargeService
}

// NewRecurringChargeHandler creates a new RecurringChargeHandler
func NewRecurringChargeHandler(chargeService *billingapp.RecurringChargeService) *RecurringChargeHandler {
	return &RecurringChargeHandler{
		chargeService: chargeService,
	}
}

// Create godoc
//
//	@ID				createRecurringCharge
//	@Summary		Attach a recurring charge to a lease
//	@Description	Create a new recurring charge with an amount, frequency and activation window
//	@Tags			recurring-charges
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string							true	"Org ID"	format(uuid)
//	@Param			request		body		billingapp.CreateChargeRequest	true	"Charge creation request"
//	@Success		201			{object}	APIResponse[billingapp.RecurringChargeResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/recurring-charges [post]
func (h *RecurringChargeHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req billingapp.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	charge, err := h.chargeService.CreateCharge(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, charge)
}

// Update godoc
//
//	@ID				updateRecurringCharge
//	@Summary		Update a recurring charge
//	@Description	Revise a charge's amount, description and activation window
//	@Tags			recurring-charges
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string							true	"Org ID"	format(uuid)
//	@Param			id			path		string							true	"Charge ID"	format(uuid)
//	@Param			request		body		billingapp.UpdateChargeRequest	true	"Charge update request"
//	@Success		200			{object}	APIResponse[billingapp.RecurringChargeResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/recurring-charges/{id} [put]
func (h *RecurringChargeHandler) Update(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	var req billingapp.UpdateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	charge, err := h.chargeService.UpdateCharge(c.Request.Context(), orgID, chargeID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// Deactivate godoc
//
//	@ID				deactivateRecurringCharge
//	@Summary		Deactivate a recurring charge
//	@Description	Stop a charge from appearing on future invoices
//	@Tags			recurring-charges
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Charge ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.RecurringChargeResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/recurring-charges/{id}/deactivate [post]
func (h *RecurringChargeHandler) Deactivate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	charge, err := h.chargeService.DeactivateCharge(c.Request.Context(), orgID, chargeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// Activate godoc
//
//	@ID				activateRecurringCharge
//	@Summary		Activate a recurring charge
//	@Description	Reactivate a previously deactivated charge
//	@Tags			recurring-charges
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Charge ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.RecurringChargeResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/recurring-charges/{id}/activate [post]
func (h *RecurringChargeHandler) Activate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	charge, err := h.chargeService.ActivateCharge(c.Request.Context(), orgID, chargeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// GetByID godoc
//
//	@ID				getRecurringChargeById
//	@Summary		Get recurring charge by ID
//	@Description	Retrieve a recurring charge by its ID
//	@Tags			recurring-charges
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Charge ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.RecurringChargeResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/recurring-charges/{id} [get]
func (h *RecurringChargeHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	charge, err := h.chargeService.GetCharge(c.Request.Context(), orgID, chargeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// ListByLease godoc
//
//	@ID				listRecurringChargesByLease
//	@Summary		List recurring charges for a lease
//	@Description	Retrieve every recurring charge attached to a lease
//	@Tags			recurring-charges
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			leaseId		path		string	true	"Lease ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]billingapp.RecurringChargeResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/leases/{leaseId}/recurring-charges [get]
func (h *RecurringChargeHandler) ListByLease(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	leaseID, err := uuid.Parse(c.Param("leaseId"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	charges, err := h.chargeService.ListChargesByLease(c.Request.Context(), orgID, leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charges)
}
