package routes

import (
	"net/http"
	"time"

	"venuebook/handlers"
	"venuebook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCalendarRoutes registers the viewer-facing read path.
func RegisterCalendarRoutes(r *gin.Engine, hb *handlers.Bundle) {
	api := r.Group("/api/calendar")
	{
		api.POST("/resolve", hb.Calendar.ResolveDates)
	}
	r.GET("/ws/calendar", hb.Hub.HandleWS)
}

// RegisterBookingRoutes registers the customer checkout endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.Bundle) {
	api := r.Group("/api/bookings")
	{
		api.POST("", hb.Booking.CreateBooking)
		api.GET("/:id", hb.Booking.GetBooking)
	}
}

// RegisterPaymentRoutes registers the payment webhook endpoint. The
// webhook authenticates itself through its signature, so it sits outside
// the admin group.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.Bundle) {
	r.POST("/api/payments/webhook", hb.Payment.HandleWebhook)
}

// RegisterAdminRoutes registers the mutation surface behind the admin
// token.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.Bundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.AdminAuthMiddleware())
	{
		api.GET("/rules", hb.Admin.ListRules)
		api.POST("/rules", hb.Admin.CreateRule)
		api.PUT("/rules/:id", hb.Admin.UpdateRule)
		api.DELETE("/rules/:id", hb.Admin.DeleteRule)

		api.GET("/overrides", hb.Admin.ListOverrides)
		api.PUT("/overrides", hb.Admin.UpsertOverride)
		api.DELETE("/overrides/:date", hb.Admin.DeleteOverride)

		api.GET("/bookings", hb.Admin.ListBookings)
		api.PUT("/bookings/:id/confirm", hb.Admin.ConfirmBooking)
		api.DELETE("/bookings/:id", hb.Admin.CancelBooking)
	}
}

// RegisterHealthRoute registers a basic health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes registers all routes.
func RegisterRoutes(r *gin.Engine, hb *handlers.Bundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCalendarRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
