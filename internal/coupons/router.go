package coupons

import (
	"busly/internal/shared/config"
	"busly/internal/shared/middleware"
	"busly/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupCouponRoutes(router *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Authenticated users can price a coupon before booking
	quote := router.Group("/coupons")
	quote.Use(middleware.JWTAuthWithConfig(cfg))
	{
		quote.POST("/quote", controller.QuoteCoupon)
	}

	// Admin coupon management
	adminCoupons := router.Group("/admin/coupons")
	adminCoupons.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireRole(string(users.RoleAdmin)))
	{
		adminCoupons.POST("", controller.CreateCoupon)
		adminCoupons.GET("", controller.ListCoupons)
		adminCoupons.GET("/:id", controller.GetCoupon)
		adminCoupons.PUT("/:id", controller.UpdateCoupon)
		adminCoupons.DELETE("/:id", controller.DeleteCoupon)
	}
}
