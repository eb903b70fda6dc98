// Package controllers holds the gin handlers of the HTTP API. Handlers bind
// and validate the request, call one service and wrap the result in a
// dto.APIResponse.
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/middleware"
	"github.com/yigit/peers/internal/pkg/helpers"
)

// requireUserID returns the authenticated user id, answering 401 when the
// route was mounted without JWTAuth
func requireUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
			WithDetails("User ID not found in request context")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return userID, true
}

// pathID parses a positive id path parameter, answering 400 otherwise
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := helpers.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}
