package middleware

import (
	"net/http"

	"ride-booking-api/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RateLimit throttles a route per client IP under the given bucket name. A
// limiter error lets the request through.
func RateLimit(limiter ratelimit.Limiter, bucket string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), bucket+":"+c.ClientIP())
		if err != nil {
			logrus.WithError(err).WithField("bucket", bucket).Warn("rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			abort(c, http.StatusTooManyRequests, CodeRateLimited, "Too many attempts, try again later")
			return
		}
		c.Next()
	}
}
