package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
)

// UserController handles profile related operations
type UserController struct {
	userService  services.UserService
	eventService services.EventService
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, eventService services.EventService) *UserController {
	return &UserController{
		userService:  userService,
		eventService: eventService,
	}
}

// GetMe returns the caller's full profile
// @Summary Get own profile
// @Description Returns the profile of the authenticated user, email included
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/me [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	user, err := c.userService.GetMe(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, ""))
}

// UpdateMe replaces the caller's editable profile fields
// @Summary Update own profile
// @Description Replaces the editable profile fields. Omitted optional fields are cleared.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 409 {object} dto.ErrorResponse "Username already taken"
// @Router /users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Profile updated"))
}

// UpdateInterests replaces the caller's interests
// @Summary Set interests
// @Description Replaces the caller's interest tags. An empty list clears them.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateInterestsRequest true "Tag ids"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse "Unknown tag ids"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /users/me/interests [put]
func (c *UserController) UpdateInterests(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateInterestsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.userService.SetInterests(ctx.Request.Context(), userID, req.TagIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Interests updated"))
}

// GetMyEvents returns the upcoming events the caller attends
// @Summary List attended events
// @Description Lists the upcoming events the caller attends, soonest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /users/me/events [get]
func (c *UserController) GetMyEvents(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.ListAttending(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events, ""))
}

// GetUser returns another user's public profile
// @Summary Get user profile
// @Description Returns the public profile of a user. The email is never included.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.PublicUserResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.userService.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}

// GetUserEvents returns every event a user hosted
// @Summary List events hosted by a user
// @Description Lists all events hosted by the user, past ones included
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Router /users/{id}/events [get]
func (c *UserController) GetUserEvents(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	events, err := c.eventService.ListHostedBy(ctx.Request.Context(), userID, models.UserHost(id))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events, ""))
}
