package payments

import (
	"busly/internal/shared/config"
	"busly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	paymentRoutes := rg.Group("/payments")
	{
		// Provider-facing endpoints are unauthenticated; trust comes from
		// the signature, not a session.
		paymentRoutes.POST("/callback/:provider", controller.Callback)
		paymentRoutes.GET("/return/:provider", controller.Return)

		protected := paymentRoutes.Group("")
		protected.Use(middleware.JWTAuthWithConfig(cfg))
		{
			protected.GET("/:id", controller.GetPayment)
		}
	}

	bookingPayments := rg.Group("/bookings")
	bookingPayments.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookingPayments.GET("/:id/payments", controller.GetBookingPayments)
	}
}
