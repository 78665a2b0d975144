package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	billingapp "github.com/propely/backend/internal/application/billing"
)

// UtilityStatementHandler handles utility statement API endpoints
type UtilityStatementHandler struct {
	BaseHandler
	statementService *billingapp.StatementService
}

// NewUtilityStatementHandler creates a new UtilityStatementHandler
func NewUtilityStatementHandler(statementService *billingapp.StatementService) *UtilityStatementHandler {
	return &UtilityStatementHandler{
		statementService: statementService,
	}
}

// UpdateDirectAmountRequest represents a revised direct bill amount
//
//	@Description	Request body for revising a direct bill amount
type UpdateDirectAmountRequest struct {
	DirectBillAmount decimal.Decimal `json:"direct_bill_amount" binding:"required"`
}

// StatementListQuery represents statement list query parameters
type StatementListQuery struct {
	LeaseID     uuid.UUID `form:"lease_id" binding:"required"`
	PeriodStart time.Time `form:"period_start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	PeriodEnd   time.Time `form:"period_end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// CreateMeter godoc
//
//	@ID				createMeterStatement
//	@Summary		Create a meter-based statement
//	@Description	Create a draft statement priced from meter readings against a tiered rate plan
//	@Tags			utility-statements
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string										true	"Org ID"	format(uuid)
//	@Param			request		body		billingapp.CreateMeterStatementRequest	true	"Meter statement request"
//	@Success		201			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/meter [post]
func (h *UtilityStatementHandler) CreateMeter(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req billingapp.CreateMeterStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.statementService.CreateMeterStatement(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, statement)
}

// CreateDirect godoc
//
//	@ID				createDirectStatement
//	@Summary		Create an amount-based statement
//	@Description	Create a draft statement carrying a provider-billed amount directly
//	@Tags			utility-statements
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string										true	"Org ID"	format(uuid)
//	@Param			request		body		billingapp.CreateDirectStatementRequest	true	"Direct statement request"
//	@Success		201			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/direct [post]
func (h *UtilityStatementHandler) CreateDirect(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req billingapp.CreateDirectStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.statementService.CreateDirectStatement(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, statement)
}

// UpdateReadings godoc
//
//	@ID				updateStatementReadings
//	@Summary		Revise meter readings
//	@Description	Update the readings on a draft meter statement and reprice it
//	@Tags			utility-statements
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string								true	"Org ID"	format(uuid)
//	@Param			id			path		string								true	"Statement ID"	format(uuid)
//	@Param			request		body		billingapp.UpdateReadingsRequest	true	"Revised readings"
//	@Success		200			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/{id}/readings [put]
func (h *UtilityStatementHandler) UpdateReadings(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	var req billingapp.UpdateReadingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.statementService.UpdateReadings(c.Request.Context(), orgID, statementID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// UpdateDirectAmount godoc
//
//	@ID				updateStatementDirectAmount
//	@Summary		Revise a direct bill amount
//	@Description	Update the provider-billed amount on a draft direct statement
//	@Tags			utility-statements
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string						true	"Org ID"	format(uuid)
//	@Param			id			path		string						true	"Statement ID"	format(uuid)
//	@Param			request		body		UpdateDirectAmountRequest	true	"Revised amount"
//	@Success		200			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/{id}/amount [put]
func (h *UtilityStatementHandler) UpdateDirectAmount(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	var req UpdateDirectAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statement, err := h.statementService.UpdateDirectBillAmount(c.Request.Context(), orgID, statementID, req.DirectBillAmount)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// Finalize godoc
//
//	@ID				finalizeStatement
//	@Summary		Finalize a statement
//	@Description	Lock a draft statement; only finalized statements are invoiceable
//	@Tags			utility-statements
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Statement ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		409			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/{id}/finalize [post]
func (h *UtilityStatementHandler) Finalize(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.statementService.FinalizeStatement(c.Request.Context(), orgID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// Revise godoc
//
//	@ID				reviseStatement
//	@Summary		Reopen a finalized statement
//	@Description	Move a finalized statement back to draft as long as it has not been invoiced
//	@Tags			utility-statements
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Statement ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/{id}/revise [post]
func (h *UtilityStatementHandler) Revise(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.statementService.ReviseStatement(c.Request.Context(), orgID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// GetByID godoc
//
//	@ID				getStatementById
//	@Summary		Get statement by ID
//	@Description	Retrieve a utility statement by its ID
//	@Tags			utility-statements
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Statement ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.UtilityStatementResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements/{id} [get]
func (h *UtilityStatementHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	statementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid statement ID format")
		return
	}

	statement, err := h.statementService.GetStatement(c.Request.Context(), orgID, statementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statement)
}

// List godoc
//
//	@ID				listStatements
//	@Summary		List statements for a lease and period
//	@Description	Retrieve utility statements for a lease whose periods overlap the given range
//	@Tags			utility-statements
//	@Produce		json
//	@Param			X-Org-ID		header		string	true	"Org ID"	format(uuid)
//	@Param			lease_id		query		string	true	"Lease ID"	format(uuid)
//	@Param			period_start	query		string	true	"Range start"	format(date-time)
//	@Param			period_end		query		string	true	"Range end"		format(date-time)
//	@Success		200				{object}	APIResponse[[]billingapp.UtilityStatementResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Router			/billing/utility-statements [get]
func (h *UtilityStatementHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var query StatementListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	statements, err := h.statementService.ListStatements(c.Request.Context(), orgID, query.LeaseID, query.PeriodStart, query.PeriodEnd)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, statements)
}
