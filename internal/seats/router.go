package seats

import (
	"busly/internal/shared/config"
	"busly/internal/shared/middleware"
	"busly/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public seat map - anyone browsing a schedule can see occupancy
	router.GET("/schedules/:id/seats", controller.GetOccupancy)

	// Operator routes - boarding desk actions
	adminSeats := router.Group("/admin/seats")
	adminSeats.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRole(string(users.RoleAdmin)))
	{
		adminSeats.POST("/:id/check-in", controller.CheckIn)
		adminSeats.POST("/:id/check-out", controller.CheckOut)
		adminSeats.PATCH("/:id/note", controller.UpdateNote)
	}
}
