package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	propertyapp "github.com/propely/backend/internal/application/property"
	"github.com/propely/backend/internal/domain/shared"
	"github.com/propely/backend/internal/interfaces/http/dto"
)

// OwnershipShareHandler handles ownership share API endpoints
type OwnershipShareHandler struct {
	BaseHandler
	ownershipService *propertyapp.OwnershipService
}

// NewOwnershipShareHandler creates a new OwnershipShareHandler
func NewOwnershipShareHandler(ownershipService *propertyapp.OwnershipService) *OwnershipShareHandler {
	return &OwnershipShareHandler{
		ownershipService: ownershipService,
	}
}

// ValidateSharesRequest represents a dry-run share set validation
//
//	@Description	Request body for validating a proposed share set
type ValidateSharesRequest struct {
	Shares []propertyapp.ShareInput `json:"shares" binding:"required"`
}

// ShareValidationResult represents the outcome of a dry-run validation
//
//	@Description	Dry-run validation result with the complete violation list
type ShareValidationResult struct {
	Valid      bool                  `json:"valid"`
	Violations []*shared.DomainError `json:"violations,omitempty"`
}

// Replace godoc
//
//	@ID				replaceOwnershipShares
//	@Summary		Replace the share set of a building or unit
//	@Description	Validate and atomically install a full replacement share set; all violations are reported in one response
//	@Tags			ownership-shares
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string								true	"Org ID"	format(uuid)
//	@Param			X-Actor		header		string								true	"Assigning user"
//	@Param			request		body		propertyapp.ReplaceSharesRequest	true	"Replacement share set"
//	@Success		200			{object}	APIResponse[[]propertyapp.ShareResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		422			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/ownership-shares [put]
func (h *OwnershipShareHandler) Replace(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	assignedBy := getActor(c)
	if assignedBy == "" {
		h.BadRequest(c, "X-Actor header is required")
		return
	}

	var req propertyapp.ReplaceSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shares, err := h.ownershipService.ReplaceShares(c.Request.Context(), orgID, assignedBy, req)
	if err != nil {
		var violations *shared.ValidationErrors
		if errors.As(err, &violations) {
			h.ValidationViolations(c, violations)
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shares)
}

// Validate godoc
//
//	@ID				validateOwnershipShares
//	@Summary		Validate a proposed share set
//	@Description	Run the full share-set validation without installing anything; backs the share editor's dry-run check
//	@Tags			ownership-shares
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string					true	"Org ID"	format(uuid)
//	@Param			request		body		ValidateSharesRequest	true	"Proposed share set"
//	@Success		200			{object}	APIResponse[ShareValidationResult]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/ownership-shares/validate [post]
func (h *OwnershipShareHandler) Validate(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req ValidateSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	err = h.ownershipService.ValidateShares(c.Request.Context(), orgID, req.Shares)
	if err != nil {
		var violations *shared.ValidationErrors
		if errors.As(err, &violations) {
			// Dry run: violations are the payload, not an error
			h.Success(c, ShareValidationResult{Valid: false, Violations: violations.Violations})
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ShareValidationResult{Valid: true})
}

// GetByParent godoc
//
//	@ID				getOwnershipSharesByParent
//	@Summary		Get the share set of a building or unit
//	@Description	Retrieve the current share set of a parent
//	@Tags			ownership-shares
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			kind		path		string	true	"Parent kind (BUILDING or UNIT)"
//	@Param			parentId	path		string	true	"Parent ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]propertyapp.ShareResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/ownership-shares/{kind}/{parentId} [get]
func (h *OwnershipShareHandler) GetByParent(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	parentID, err := uuid.Parse(c.Param("parentId"))
	if err != nil {
		h.BadRequest(c, "Invalid parent ID format")
		return
	}

	shares, err := h.ownershipService.GetShares(c.Request.Context(), orgID, c.Param("kind"), parentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shares)
}

// GetByOwner godoc
//
//	@ID				getOwnershipSharesByOwner
//	@Summary		Get an owner's shares
//	@Description	Retrieve every share held by an owner across buildings and units
//	@Tags			ownership-shares
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Owner ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]propertyapp.ShareResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/owners/{id}/shares [get]
func (h *OwnershipShareHandler) GetByOwner(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid owner ID format")
		return
	}

	shares, err := h.ownershipService.GetSharesByOwner(c.Request.Context(), orgID, ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shares)
}

// ValidationViolations sends a 422 response carrying the complete violation list
func (h *OwnershipShareHandler) ValidationViolations(c *gin.Context, violations *shared.ValidationErrors) {
	details := make([]dto.ValidationDetail, len(violations.Violations))
	for i, v := range violations.Violations {
		details[i] = dto.ValidationDetail{Field: v.Code, Message: v.Message}
	}
	c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
		"Share set validation failed",
		getRequestID(c),
		details,
	))
}
