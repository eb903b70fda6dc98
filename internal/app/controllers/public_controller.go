package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// PublicController serves the unauthenticated endpoints
type PublicController struct {
	catalogService services.CatalogService
	db             Pinger
}

// NewPublicController creates a new PublicController
func NewPublicController(catalogService services.CatalogService, db Pinger) *PublicController {
	return &PublicController{catalogService: catalogService, db: db}
}

// Health reports whether the API can reach its database
// @Summary Health check
// @Description Reports whether the API and its database are reachable
// @Tags public
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse}
// @Router /health [get]
func (c *PublicController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		resp := dto.NewSuccessResponse(dto.HealthResponse{Status: "degraded", Database: "unreachable"}, "")
		resp.Success = false
		ctx.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{Status: "ok", Database: "ok"}, ""))
}

// ListTags returns every tag
// @Summary List tags
// @Description Lists the tags events and interests are chosen from, grouped by category
// @Tags public
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Tag}
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /tags [get]
func (c *PublicController) ListTags(ctx *gin.Context) {
	tags, err := c.catalogService.ListTags(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(tags, ""))
}

// ListUniversities returns every university students can verify with
// @Summary List universities
// @Description Lists the universities and the email domains that prove enrollment
// @Tags public
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.University}
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /universities [get]
func (c *PublicController) ListUniversities(ctx *gin.Context) {
	universities, err := c.catalogService.ListUniversities(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(universities, ""))
}
