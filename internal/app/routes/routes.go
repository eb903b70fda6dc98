package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/peers/internal/app/controllers"
	"github.com/yigit/peers/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Public       *controllers.PublicController
	User         *controllers.UserController
	Verification *controllers.VerificationController
	Event        *controllers.EventController
	Organization *controllers.OrganizationController
	Feed         *controllers.FeedController
	Search       *controllers.SearchController
	Call         *controllers.CallController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.GET("/health", c.Public.Health)
	v1.GET("/tags", c.Public.ListTags)
	v1.GET("/universities", c.Public.ListUniversities)

	// --- Authenticated Routes Group ---
	// JWTAuth also creates the user on first sight
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Verified students only
	verified := authenticated.Group("")
	verified.Use(authMiddleware.VerifiedStudentRequired())

	users := authenticated.Group("/users")
	{
		users.GET("/me", c.User.GetMe)
		users.PUT("/me", c.User.UpdateMe)
		users.PUT("/me/interests", c.User.UpdateInterests)
		users.GET("/me/events", c.User.GetMyEvents)
		users.GET("/:id", c.User.GetUser)
		users.GET("/:id/events", c.User.GetUserEvents)
	}

	verification := authenticated.Group("/verification")
	{
		verification.POST("/code", c.Verification.RequestCode)
		verification.POST("/verify", c.Verification.Verify)
	}

	events := authenticated.Group("/events")
	{
		events.GET("", c.Event.ListEvents)
		events.GET("/:id", c.Event.GetEvent)
		events.PUT("/:id", c.Event.UpdateEvent)
		events.DELETE("/:id", c.Event.DeleteEvent)
		events.PUT("/:id/attendance", c.Event.SetAttendance)
		events.POST("/:id/image", c.Event.UploadImage)

		// Calls of live online events
		events.POST("/:id/call", c.Call.JoinCall)
		events.GET("/:id/call/participants", c.Call.Participants)
		events.GET("/:id/call/ws", c.Call.Connect)
	}
	verified.POST("/events", c.Event.CreateEvent)

	organizations := authenticated.Group("/organizations")
	{
		organizations.GET("", c.Organization.ListOrganizations)
		organizations.GET("/:id", c.Organization.GetOrganization)
		organizations.PUT("/:id", c.Organization.UpdateOrganization)
		organizations.DELETE("/:id", c.Organization.DeleteOrganization)
		organizations.GET("/:id/events", c.Organization.ListEvents)

		// Admin management, last admin is protected
		organizations.POST("/:id/admins", c.Organization.AddAdmin)
		organizations.DELETE("/:id/admins/:userId", c.Organization.RemoveAdmin)
	}
	verified.POST("/organizations", c.Organization.CreateOrganization)

	feed := authenticated.Group("/feed")
	{
		feed.GET("/events", c.Feed.RecommendedEvents)
		feed.GET("/hosts", c.Feed.RecommendedHosts)
	}

	authenticated.GET("/search", c.Search.Search)
}
