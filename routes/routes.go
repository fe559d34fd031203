package routes

import (
	"net/http"
	"time"

	"carhire/handlers"
	"carhire/middleware"
	"carhire/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers the search fan-out endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.JWTAuthAgentMiddleware())
		api.POST("/submit", hb.SubmitAvailabilityHandler)
		api.GET("/poll", hb.PollAvailabilityHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthAgentMiddleware())
		api.POST("", hb.CreateBookingHandler)
		api.GET("/:bookingRef", hb.CheckBookingHandler)
		api.PATCH("/:bookingRef", hb.ModifyBookingHandler)
		api.POST("/:bookingRef/cancel", hb.CancelBookingHandler)
	}
}

// RegisterAgreementRoutes registers the agent's agreement listing.
func RegisterAgreementRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/agreements")
	{
		api.Use(middleware.JWTAuthAgentMiddleware())
		api.GET("", hb.ListAgreementsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for source health operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAgentMiddleware())
		adminGroup.GET("/sources/health", hb.ListSourceHealthHandler)
		adminGroup.GET("/sources/:sourceID/health", hb.GetSourceHealthHandler)
		adminGroup.POST("/sources/:sourceID/health/reset", hb.ResetSourceHealthHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/api/system/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key", "X-Actor"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAgreementRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
