package schedules

import (
	"busly/internal/shared/config"
	"busly/internal/shared/middleware"
	"busly/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupScheduleRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public routes - anyone can browse departures
	publicSchedules := router.Group("/schedules")
	{
		publicSchedules.GET("", controller.ListSchedules)
		publicSchedules.GET("/upcoming", controller.GetUpcoming)
		publicSchedules.GET("/:id", controller.GetSchedule)
	}

	// Admin routes - schedule management
	adminSchedules := router.Group("/admin/schedules")
	adminSchedules.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRole(string(users.RoleAdmin)))
	{
		adminSchedules.POST("", controller.CreateSchedule)
		adminSchedules.PUT("/:id", controller.UpdateSchedule)
	}
}
