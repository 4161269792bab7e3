package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Middleware enforces the per-class budget based on the request path.
// Provider callbacks get the payment class so provider retries are not
// starved by the default budget.
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitType := classify(c.Request.Method, c.Request.URL.Path)

		result, err := limiter.IsAllowed(c.Request.Context(), c.ClientIP(), limitType)
		if err != nil {
			// Redis failure must not block traffic
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}

func classify(method, path string) RateLimitType {
	switch {
	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth
	case strings.Contains(path, "/payments/"):
		return RateLimitTypePayment
	case strings.Contains(path, "/bookings") && method != http.MethodGet:
		return RateLimitTypeBooking
	case strings.Contains(path, "/coupons") && method != http.MethodGet:
		return RateLimitTypeAdmin
	case strings.Contains(path, "/schedules") || path == "/health" || path == "/ping" || path == "/status":
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}
