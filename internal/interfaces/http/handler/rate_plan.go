package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/propely/backend/internal/application/billing"
	"github.com/propely/backend/internal/domain/billing"
)

// RatePlanHandler handles tiered utility tariff API endpoints
type RatePlanHandler struct {
	BaseHandler
	ratePlanService *billingapp.RatePlanService
}

// NewRatePlanHandler creates a new RatePlanHandler
func NewRatePlanHandler(ratePlanService *billingapp.RatePlanService) *RatePlanHandler {
	return &RatePlanHandler{
		ratePlanService: ratePlanService,
	}
}

// UpdateTiersRequest represents a request to replace a plan's tier schedule
//
//	@Description	Request body for replacing a rate plan's tiers
type UpdateTiersRequest struct {
	Tiers []billing.RateTier `json:"tiers" binding:"required"`
}

// Create godoc
//
//	@ID				createRatePlan
//	@Summary		Create a rate plan
//	@Description	Create a tiered tariff for a utility type
//	@Tags			rate-plans
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string								true	"Org ID"	format(uuid)
//	@Param			request		body		billingapp.CreateRatePlanRequest	true	"Rate plan creation request"
//	@Success		201			{object}	APIResponse[billingapp.RatePlanResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/rate-plans [post]
func (h *RatePlanHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req billingapp.CreateRatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.ratePlanService.CreateRatePlan(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, plan)
}

// UpdateTiers godoc
//
//	@ID				updateRatePlanTiers
//	@Summary		Replace a rate plan's tiers
//	@Description	Replace the tier schedule; statements already computed keep their totals
//	@Tags			rate-plans
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string				true	"Org ID"	format(uuid)
//	@Param			id			path		string				true	"Rate Plan ID"	format(uuid)
//	@Param			request		body		UpdateTiersRequest	true	"New tier schedule"
//	@Success		200			{object}	APIResponse[billingapp.RatePlanResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/rate-plans/{id}/tiers [put]
func (h *RatePlanHandler) UpdateTiers(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate plan ID format")
		return
	}

	var req UpdateTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	plan, err := h.ratePlanService.UpdateTiers(c.Request.Context(), orgID, planID, req.Tiers)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// Deactivate godoc
//
//	@ID				deactivateRatePlan
//	@Summary		Deactivate a rate plan
//	@Description	Retire a plan from new statements
//	@Tags			rate-plans
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Rate Plan ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.RatePlanResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/rate-plans/{id}/deactivate [post]
func (h *RatePlanHandler) Deactivate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate plan ID format")
		return
	}

	plan, err := h.ratePlanService.DeactivateRatePlan(c.Request.Context(), orgID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// GetByID godoc
//
//	@ID				getRatePlanById
//	@Summary		Get rate plan by ID
//	@Description	Retrieve a rate plan with its tier schedule
//	@Tags			rate-plans
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Rate Plan ID"	format(uuid)
//	@Success		200			{object}	APIResponse[billingapp.RatePlanResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/billing/rate-plans/{id} [get]
func (h *RatePlanHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate plan ID format")
		return
	}

	plan, err := h.ratePlanService.GetRatePlan(c.Request.Context(), orgID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// ListActive godoc
//
//	@ID				listActiveRatePlans
//	@Summary		List active rate plans
//	@Description	List active rate plans for a utility type
//	@Tags			rate-plans
//	@Produce		json
//	@Param			X-Org-ID		header		string	true	"Org ID"	format(uuid)
//	@Param			utility_type	query		string	true	"Utility type (ELECTRICITY, WATER, GAS)"
//	@Success		200				{object}	APIResponse[[]billingapp.RatePlanResponse]
//	@Failure		400				{object}	dto.ErrorResponse
//	@Failure		500				{object}	dto.ErrorResponse
//	@Router			/billing/rate-plans [get]
func (h *RatePlanHandler) ListActive(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	utilityType := c.Query("utility_type")
	if utilityType == "" {
		h.BadRequest(c, "utility_type query parameter is required")
		return
	}

	plans, err := h.ratePlanService.ListActiveByUtility(c.Request.Context(), orgID, utilityType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plans)
}
