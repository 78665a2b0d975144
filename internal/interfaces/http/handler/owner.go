package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	propertyapp "github.com/propely/backend/internal/application/property"
	"github.com/propely/backend/internal/domain/shared"
)

// OwnerHandler handles property owner API endpoints
type OwnerHandler struct {
	BaseHandler
	ownerService *propertyapp.OwnerService
}

// NewOwnerHandler creates a new OwnerHandler
func NewOwnerHandler(ownerService *propertyapp.OwnerService) *OwnerHandler {
	return &OwnerHandler{
		ownerService: ownerService,
	}
}

// Create godoc
//
//	@ID				createOwner
//	@Summary		Register an owner
//	@Description	Register a new property owner
//	@Tags			owners
//	@Accept			json
//	@Produce		json
//	@Param			X-Org-ID	header		string								true	"Org ID"	format(uuid)
//	@Param			request		body		propertyapp.CreateOwnerRequest	true	"Owner registration request"
//	@Success		201			{object}	APIResponse[propertyapp.OwnerResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		409			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/owners [post]
func (h *OwnerHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	var req propertyapp.CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	owner, err := h.ownerService.CreateOwner(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, owner)
}

// GetByID godoc
//
//	@ID				getOwnerById
//	@Summary		Get owner by ID
//	@Description	Retrieve an owner by ID
//	@Tags			owners
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			id			path		string	true	"Owner ID"	format(uuid)
//	@Success		200			{object}	APIResponse[propertyapp.OwnerResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		404			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/owners/{id} [get]
func (h *OwnerHandler) GetByID(c *gin.Context) {
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

	owner, err := h.ownerService.GetOwner(c.Request.Context(), orgID, ownerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, owner)
}

// List godoc
//
//	@ID				listOwners
//	@Summary		List owners
//	@Description	List owners with optional search and pagination
//	@Tags			owners
//	@Produce		json
//	@Param			X-Org-ID	header		string	true	"Org ID"	format(uuid)
//	@Param			search		query		string	false	"Search by name or email"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]propertyapp.OwnerResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Failure		500			{object}	dto.ErrorResponse
//	@Router			/property/owners [get]
func (h *OwnerHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.BadRequest(c, "Invalid org ID")
		return
	}

	filter := shared.DefaultFilter()
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size")); err == nil && pageSize > 0 && pageSize <= 100 {
		filter.PageSize = pageSize
	}

	owners, err := h.ownerService.ListOwners(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, owners)
}

// Delete godoc
//
//	@ID				deleteOwner
//	@Summary		Delete an owner
//	@Description	Soft-delete an owner; owners holding active shares cannot be deleted
//	@Tags			owners
//	@Produce		json
//	@Param			X-Org-ID	header	string	true	"Org ID"	format(uuid)
//	@Param			id			path	string	true	"Owner ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Failure		500	{object}	dto.ErrorResponse
//	@Router			/property/owners/{id} [delete]
func (h *OwnerHandler) Delete(c *gin.Context) {
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

	if err := h.ownerService.DeleteOwner(c.Request.Context(), orgID, ownerID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
