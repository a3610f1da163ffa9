package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-sis-api/internal/service"
	"github.com/noah-isme/campus-sis-api/pkg/response"
)

// RateLimit applies the fixed-window limiter to a route group. The counter
// key combines the route scope with the caller's identity, falling back to
// the client IP before authentication.
func RateLimit(limiter *service.RateLimitService, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if claims := CurrentClaims(c); claims != nil {
			subject = claims.UserID
		}
		key := fmt.Sprintf("%s:%s", scope, subject)
		if err := limiter.Allow(c.Request.Context(), key); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
