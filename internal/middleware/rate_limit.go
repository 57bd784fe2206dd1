package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/ratelimit"
)

// Rate limit response headers
const (
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
	RateLimitResetHeader     = "X-RateLimit-Reset"
)

// RateLimit counts requests per organization and route and rejects those
// over the limiter's budget with 429 Too Many Requests.
// It must run after Organization.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := GetOrganizationID(c) + " " + c.Request.Method + " " + route

		d := limiter.Allow(key)
		c.Header(RateLimitLimitHeader, strconv.Itoa(d.Limit))
		c.Header(RateLimitRemainingHeader, strconv.Itoa(d.Remaining))
		c.Header(RateLimitResetHeader, strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			if log := GetLogger(c); log != nil {
				log.Warn("Rate limit exceeded", map[string]interface{}{
					"route":       route,
					"limit":       d.Limit,
					"retry_after": retryAfter,
				})
			}
			abortWithError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, retry after "+strconv.Itoa(retryAfter)+"s")
			return
		}

		c.Next()
	}
}
