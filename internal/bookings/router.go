package bookings

import (
	"busly/internal/shared/config"
	"busly/internal/shared/middleware"
	"busly/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookings.POST("", controller.CreateBooking)
		bookings.GET("/:id", controller.GetBooking)
		bookings.POST("/:id/cancel", controller.CancelBooking)
	}

	userRoutes := rg.Group("/users")
	userRoutes.Use(middleware.JWTAuthWithConfig(cfg))
	{
		userRoutes.GET("/bookings", controller.GetUserBookings)
	}

	adminRoutes := rg.Group("/admin/bookings")
	adminRoutes.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRole(string(users.RoleAdmin)))
	{
		adminRoutes.GET("", controller.GetAllBookings)
	}
}
