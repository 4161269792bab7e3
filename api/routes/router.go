// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"busly/internal/auth"
	"busly/internal/bookings"
	"busly/internal/coupons"
	"busly/internal/notifications"
	"busly/internal/payments"
	"busly/internal/schedules"
	"busly/internal/seats"
	"busly/internal/shared/config"
	"busly/internal/shared/database"
	"busly/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.NotificationProducer

	// Kept for wiring the expiry sweeper from main.
	bookingRepo    bookings.Repository
	paymentService payments.Service
}

// NewRouter creates a new router instance. The producer carries booking
// notifications to the broker; pass a NoopProducer when Kafka is disabled.
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.NotificationProducer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()
	cacheService := cache.NewService(r.db.GetRedisClient())

	// Repositories
	authRepo := auth.NewRepository(pg)
	seatRepo := seats.NewRepository(pg)
	scheduleRepo := schedules.NewRepository(pg)
	couponRepo := coupons.NewRepository(pg)
	bookingRepo := bookings.NewRepository(pg, seatRepo, couponRepo)
	paymentRepo := payments.NewRepository(pg)

	// Services
	authService := auth.NewService(authRepo, r.config)
	seatService := seats.NewService(seatRepo, cacheService, r.config.Redis.OccupancyTTL)
	scheduleService := schedules.NewService(scheduleRepo, seatService)
	couponService := coupons.NewService(couponRepo)

	notifier := notifications.NewBookingNotifier(r.producer, authRepo, scheduleService)
	bookingService := bookings.NewService(bookingRepo, scheduleService, seatService, couponRepo, notifier)

	registry := payments.NewRegistry(
		payments.NewVNPayAdapter(r.config.Payment.VNPay),
		payments.NewMomoAdapter(r.config.Payment.Momo, nil),
		payments.NewZaloPayAdapter(r.config.Payment.ZaloPay, nil),
	)
	paymentService := payments.NewService(paymentRepo, registry, bookingService, r.config.Payment)

	// Payments depend on bookings for confirmation; bookings reach payments
	// through setter injection to keep the import direction one-way.
	bookingService.SetPaymentInitiator(paymentService)

	r.bookingRepo = bookingRepo
	r.paymentService = paymentService

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		authRouter := auth.NewRouter(auth.NewController(authService), r.config)
		authRouter.SetupRoutes(api)

		schedules.SetupScheduleRoutes(api, schedules.NewController(scheduleService), r.config)
		seats.SetupSeatRoutes(api, seats.NewController(seatService), r.config)
		coupons.SetupCouponRoutes(api, coupons.NewController(couponService), r.config)
		bookings.SetupBookingRoutes(api, bookings.NewController(bookingService), r.config)
		payments.SetupPaymentRoutes(api, payments.NewController(paymentService), r.config)
	}
}

// BookingRepository exposes the bookings repository for the expiry sweeper.
// Valid after SetupRoutes.
func (r *Router) BookingRepository() bookings.Repository {
	return r.bookingRepo
}

// PaymentService exposes the payments service for the expiry sweeper.
// Valid after SetupRoutes.
func (r *Router) PaymentService() payments.Service {
	return r.paymentService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "busly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "busly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
