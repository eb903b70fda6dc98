package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
	"github.com/yigit/peers/internal/pkg/websocket"
)

// CallController handles the calls of online events
type CallController struct {
	callService services.CallService
	hub         *websocket.Hub
	upgrader    *gorilla.Upgrader
	logger      zerolog.Logger
}

// NewCallController creates a new CallController
func NewCallController(callService services.CallService, hub *websocket.Hub, upgrader *gorilla.Upgrader, logger zerolog.Logger) *CallController {
	return &CallController{
		callService: callService,
		hub:         hub,
		upgrader:    upgrader,
		logger:      logger.With().Str("controller", "call").Logger(),
	}
}

// JoinCall opens (or reuses) the provider room of a live online event
// @Summary Join call
// @Description Returns the call room of a live online event. Only attendees and the host may join.
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.CallRoomResponse}
// @Failure 400 {object} dto.ErrorResponse "Event is not online or not live"
// @Failure 403 {object} dto.ErrorResponse "Not an attendee"
// @Failure 502 {object} dto.ErrorResponse "Call provider failure"
// @Router /events/{id}/call [post]
func (c *CallController) JoinCall(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	room, err := c.callService.JoinCall(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(room, ""))
}

// Participants lists who is connected to an event's call
// @Summary Call participants
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=dto.CallParticipantsResponse}
// @Failure 400 {object} dto.ErrorResponse "Event is not online or not live"
// @Failure 403 {object} dto.ErrorResponse "Not an attendee"
// @Router /events/{id}/call/participants [get]
func (c *CallController) Participants(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.callService.AuthorizeCall(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CallParticipantsResponse{
		EventID:      id,
		Participants: c.hub.Participants(id),
	}, ""))
}

// Connect upgrades to the presence socket of an event's call. The time
// between connecting and disconnecting is credited as points.
// @Summary Call presence socket
// @Description Websocket that tracks the caller's presence in the call and streams join and leave notices. Pass the token as the token query parameter.
// @Tags calls
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param token query string false "JWT, for clients that cannot set headers"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse "Event is not online or not live"
// @Failure 403 {object} dto.ErrorResponse "Not an attendee"
// @Router /events/{id}/call/ws [get]
func (c *CallController) Connect(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.callService.AuthorizeCall(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already answered the client
		c.logger.Warn().Err(err).Int64("eventID", id).Int64("userID", userID).Msg("Websocket upgrade failed")
		return
	}

	if !c.hub.Attach(conn, id, userID) {
		c.logger.Warn().Int64("eventID", id).Int64("userID", userID).Msg("Call hub stopped, connection dropped")
	}
}
