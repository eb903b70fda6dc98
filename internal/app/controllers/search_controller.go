package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/search"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
)

// SearchController handles free-text search
type SearchController struct {
	searchService services.SearchService
}

// NewSearchController creates a new SearchController
func NewSearchController(searchService services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// Search matches a query against events, organizations and users
// @Summary Search
// @Description An entity matches when any whitespace-separated word of q is a case-insensitive substring of one of its text fields. An empty query matches everything.
// @Tags search
// @Produce json
// @Security BearerAuth
// @Param q query string false "Query"
// @Param kind query string false "What to search" Enums(all, events, organizations, users) default(all)
// @Success 200 {object} dto.APIResponse{data=dto.SearchResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown kind"
// @Router /search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	kind, err := search.ParseKind(ctx.Query("kind"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.searchService.Search(ctx.Request.Context(), userID, ctx.Query("q"), kind)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
