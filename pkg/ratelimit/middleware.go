package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for IP-based rate limiting
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting for health checks
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		clientIP := c.ClientIP()

		allowed, info := rateLimiter.AllowIP(clientIP)
		if !allowed {
			handleRateLimitExceeded(c, info)
			return
		}

		addRateLimitHeaders(c, info)

		c.Next()
	}
}

// handleRateLimitExceeded handles rate limit exceeded responses
func handleRateLimitExceeded(c *gin.Context, info *RateLimitInfo) {
	addRateLimitHeaders(c, info)

	var retryAfter int
	if info.Blocked {
		retryAfter = int(time.Until(info.BlockedUntil).Seconds())
	} else {
		retryAfter = int(time.Until(info.ResetTime).Seconds())
	}

	if retryAfter < 0 {
		retryAfter = 60
	}

	c.Header("Retry-After", strconv.Itoa(retryAfter))

	response := gin.H{
		"error": "Rate limit exceeded",
		"code":  "RATE_LIMIT_EXCEEDED",
		"details": gin.H{
			"retry_after": retryAfter,
			"blocked":     info.Blocked,
		},
	}

	if info.Blocked {
		response["message"] = "Too many violations. Temporarily blocked."
		response["details"].(gin.H)["blocked_until"] = info.BlockedUntil
	} else {
		response["message"] = "Rate limit exceeded. Please slow down."
	}

	c.JSON(http.StatusTooManyRequests, response)
	c.Abort()
}

// addRateLimitHeaders adds rate limiting headers to the response
func addRateLimitHeaders(c *gin.Context, info *RateLimitInfo) {
	c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

	if info.Blocked {
		c.Header("X-RateLimit-Blocked", "true")
		c.Header("X-RateLimit-Blocked-Until", strconv.FormatInt(info.BlockedUntil.Unix(), 10))
	}
}
