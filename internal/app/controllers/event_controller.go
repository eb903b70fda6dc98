package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
)

// EventController handles event related operations
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// ListEvents returns the upcoming events
// @Summary List upcoming events
// @Description Lists every event that has not ended yet, soonest first, each with its live status
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.ListUpcoming(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events, ""))
}

// GetEvent returns one event
// @Summary Get event
// @Description Returns an event with its status window (countdown, time remaining, formatted duration)
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid event ID"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.GetEvent(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, ""))
}

// CreateEvent creates an event
// @Summary Create event
// @Description Creates an event hosted by the caller, or by an organization the caller administers. Verified students only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 403 {object} dto.ErrorResponse "Not a verified student or not an admin of the organization"
// @Router /events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(event, "Event created"))
}

// UpdateEvent replaces an event's editable fields
// @Summary Update event
// @Description Replaces the editable fields of an event. Only its host may do this.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Event"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 403 {object} dto.ErrorResponse "Not the host"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	event, err := c.eventService.UpdateEvent(ctx.Request.Context(), userID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, "Event updated"))
}

// DeleteEvent deletes an event
// @Summary Delete event
// @Description Deletes an event and its image. Only its host may do this.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the host"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.DeleteEvent(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Event deleted"))
}

// SetAttendance sets whether the caller attends an event
// @Summary Attend or leave an event
// @Description Sets the caller's attendance. Repeating a request changes nothing.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.AttendanceRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{id}/attendance [put]
func (c *EventController) SetAttendance(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	attending, err := c.eventService.ToggleAttendance(ctx.Request.Context(), id, userID, *req.Attending)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AttendanceResponse{EventID: id, Attending: attending}, ""))
}

// UploadImage replaces an event's image
// @Summary Upload event image
// @Description Stores a JPEG, PNG, GIF or WebP image for the event and replaces the previous one. Only its host may do this.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.EventResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing, oversized or unsupported image"
// @Failure 403 {object} dto.ErrorResponse "Not the host"
// @Router /events/{id}/image [post]
func (c *EventController) UploadImage(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	header, err := ctx.FormFile("image")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "No image provided").
			WithField("image").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	file, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	event, err := c.eventService.UploadImage(ctx.Request.Context(), userID, id, file, header.Filename)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(event, "Image uploaded"))
}
