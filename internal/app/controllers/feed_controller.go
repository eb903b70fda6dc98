package controllers

import (
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/services"
	"github.com/yigit/peers/internal/middleware"
	"github.com/yigit/peers/internal/pkg/helpers"
)

// MaxHostLimit caps the limit query parameter of GET /feed/hosts
const MaxHostLimit = 50

// FeedController serves the personalized recommendations
type FeedController struct {
	feedService services.FeedService
	hostLimit   int
	shuffle     func(n int, swap func(i, j int))
}

// NewFeedController creates a new FeedController. hostLimit is the number
// of hosts returned when the request names no limit.
func NewFeedController(feedService services.FeedService, hostLimit int) *FeedController {
	return &FeedController{
		feedService: feedService,
		hostLimit:   hostLimit,
		shuffle:     rand.Shuffle,
	}
}

// RecommendedEvents returns the caller's event feed
// @Summary Recommended events
// @Description Upcoming events hosted by someone the caller attended before or tagged with one of the caller's interests. Callers with neither get every upcoming event. Own events are never included.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.EventResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /feed/events [get]
func (c *FeedController) RecommendedEvents(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	events, err := c.feedService.RecommendedEvents(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(events, ""))
}

// RecommendedHosts returns a random sample of hosts worth following
// @Summary Recommended hosts
// @Description Organizations and users that hosted events the caller attended, share the caller's university or host events matching the caller's interests. The sample is shuffled on every request.
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of hosts" minimum(1) maximum(50)
// @Success 200 {object} dto.APIResponse{data=[]feed.HostCandidate}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /feed/hosts [get]
func (c *FeedController) RecommendedHosts(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}
	limit := helpers.ParseLimit(ctx, c.hostLimit, MaxHostLimit)

	hosts, err := c.feedService.RecommendedHosts(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.sample(hosts, limit), ""))
}

func (c *FeedController) sample(hosts []feed.HostCandidate, limit int) []feed.HostCandidate {
	c.shuffle(len(hosts), func(i, j int) { hosts[i], hosts[j] = hosts[j], hosts[i] })
	if len(hosts) > limit {
		hosts = hosts[:limit]
	}
	return hosts
}
