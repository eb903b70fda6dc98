package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
)

// VerificationController handles student verification
type VerificationController struct {
	verificationService services.VerificationService
}

// NewVerificationController creates a new VerificationController
func NewVerificationController(verificationService services.VerificationService) *VerificationController {
	return &VerificationController{verificationService: verificationService}
}

// RequestCode emails a verification code to a university address
// @Summary Request a verification code
// @Description Sends a 6-digit code to the given university email. Requesting again replaces the pending code.
// @Tags verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RequestCodeRequest true "University email"
// @Success 202 {object} dto.APIResponse{data=dto.VerificationResponse}
// @Failure 400 {object} dto.ErrorResponse "Email does not belong to the university"
// @Failure 409 {object} dto.ErrorResponse "Already verified"
// @Failure 502 {object} dto.ErrorResponse "Email could not be sent"
// @Router /verification/code [post]
func (c *VerificationController) RequestCode(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.RequestCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.verificationService.RequestCode(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.NewSuccessResponse(resp, "Verification code sent"))
}

// Verify checks a received code and marks the caller a verified student
// @Summary Verify a code
// @Description Consumes the pending code and marks the caller a verified student of its university
// @Tags verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.VerifyCodeRequest true "Code"
// @Success 200 {object} dto.APIResponse{data=models.User}
// @Failure 400 {object} dto.ErrorResponse "Wrong, expired or locked out code"
// @Failure 404 {object} dto.ErrorResponse "No pending verification"
// @Failure 409 {object} dto.ErrorResponse "Code was resent or consumed meanwhile"
// @Router /verification/verify [post]
func (c *VerificationController) Verify(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	var req dto.VerifyCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, err := c.verificationService.Verify(ctx.Request.Context(), userID, req.Code)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Student status verified"))
}
