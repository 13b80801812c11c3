package ratelimit

import (
	"fmt"
	"net/http"
	"strings"

	"examly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware creates a gin middleware for rate limiting
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getRateLimitType(c.Request.URL.Path, c.Request.Method)

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Fail open: a broken limiter must not take the API down
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitType classifies a request into a budget bucket
func getRateLimitType(path, method string) RateLimitType {
	switch {
	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth
	case strings.Contains(path, "/admin"):
		return RateLimitTypeAdmin
	case strings.Contains(path, "/reservations") && method != http.MethodGet:
		// Writes against reservations hit the capacity accounting path
		return RateLimitTypeBooking
	case strings.Contains(path, "/slots") && method == http.MethodGet:
		return RateLimitTypePublic
	case path == "/health" || path == "/ping":
		return RateLimitTypePublic
	default:
		return RateLimitTypeDefault
	}
}

// getClientIP extracts the real client IP from the request
func getClientIP(c *gin.Context) string {
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return c.ClientIP()
}
