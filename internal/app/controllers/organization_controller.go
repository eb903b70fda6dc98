package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
	"github.com/yigit/peers/internal/pkg/helpers"
)

// OrganizationController handles organization related operations
type OrganizationController struct {
	orgService   services.OrganizationService
	eventService services.EventService
}

// NewOrganizationController creates a new OrganizationController
func NewOrganizationController(orgService services.OrganizationService, eventService services.EventService) *OrganizationController {
	return &OrganizationController{
		orgService:   orgService,
		eventService: eventService,
	}
}

// ListOrganizations returns a page of organizations
// @Summary List organizations
// @Description Lists organizations by name
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param size query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationListResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /organizations [get]
func (c *OrganizationController) ListOrganizations(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	orgs, err := c.orgService.ListOrganizations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	items, info := helpers.Paginate(orgs, page, size)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.OrganizationListResponse{
		Organizations: items,
		PageInfo:      info,
	}, ""))
}

// GetOrganization returns one organization
// @Summary Get organization
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id} [get]
func (c *OrganizationController) GetOrganization(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	org, err := c.orgService.GetOrganization(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(org, ""))
}

// CreateOrganization creates an organization administered by the caller
// @Summary Create organization
// @Description Creates an organization with the caller as its first admin. Verified students only.
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OrganizationRequest true "Organization"
// @Success 201 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 403 {object} dto.ErrorResponse "Not a verified student"
// @Failure 409 {object} dto.ErrorResponse "Name already taken"
// @Router /organizations [post]
func (c *OrganizationController) CreateOrganization(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.OrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	org, err := c.orgService.CreateOrganization(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(org, "Organization created"))
}

// UpdateOrganization replaces an organization's editable fields
// @Summary Update organization
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param request body dto.OrganizationRequest true "Organization"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id} [put]
func (c *OrganizationController) UpdateOrganization(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.OrganizationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	org, err := c.orgService.UpdateOrganization(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(org, "Organization updated"))
}

// DeleteOrganization deletes an organization and its events
// @Summary Delete organization
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Organization not found"
// @Router /organizations/{id} [delete]
func (c *OrganizationController) DeleteOrganization(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.orgService.DeleteOrganization(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Organization deleted"))
}

// AddAdmin promotes a user to admin
// @Summary Add organization admin
// @Description Promotes a user to admin. Promoting an existing admin changes nothing.
// @Tags organizations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param request body dto.AddAdminRequest true "User to promote"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Organization or user not found"
// @Router /organizations/{id}/admins [post]
func (c *OrganizationController) AddAdmin(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	org, err := c.orgService.AddAdmin(ctx.Request.Context(), userID, id, req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(org, "Admin added"))
}

// RemoveAdmin demotes an admin
// @Summary Remove organization admin
// @Description Demotes an admin. Admins may remove themselves but the last admin cannot be removed.
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Param userId path int true "Admin user ID"
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationResponse}
// @Failure 403 {object} dto.ErrorResponse "Not an admin"
// @Failure 404 {object} dto.ErrorResponse "Not an admin of this organization"
// @Failure 409 {object} dto.ErrorResponse "Last admin"
// @Router /organizations/{id}/admins/{userId} [delete]
func (c *OrganizationController) RemoveAdmin(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	adminID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	org, err := c.orgService.RemoveAdmin(ctx.Request.Context(), userID, id, adminID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(org, "Admin removed"))
}

// ListEvents returns every event an organization hosted
// @Summary List events hosted by an organization
// @Description Lists all events of the organization, past ones included
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Organization ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Router /organizations/{id}/events [get]
func (c *OrganizationController) ListEvents(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	events, err := c.eventService.ListHostedBy(ctx.Request.Context(), userID, models.OrganizationHost(id))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events, ""))
}
