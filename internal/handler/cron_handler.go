package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-sis-api/internal/service"
	appErrors "github.com/noah-isme/campus-sis-api/pkg/errors"
	"github.com/noah-isme/campus-sis-api/pkg/response"
)

// CronHandler exposes scheduled-maintenance endpoints gated by a shared
// bearer secret rather than a user session.
type CronHandler struct {
	limiter *service.RateLimitService
	secret  string
}

// NewCronHandler constructs CronHandler.
func NewCronHandler(limiter *service.RateLimitService, secret string) *CronHandler {
	return &CronHandler{limiter: limiter, secret: secret}
}

// Authorize verifies the cron bearer secret.
func (h *CronHandler) Authorize(c *gin.Context) {
	if h.secret == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cron endpoints disabled"))
		c.Abort()
		return
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") ||
		subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.secret)) != 1 {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return
	}
	c.Next()
}

// CleanupRateLimits godoc
// @Summary Prune expired rate-limit counters
// @Tags Cron
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cron/rate-limits/cleanup [post]
func (h *CronHandler) CleanupRateLimits(c *gin.Context) {
	removed, err := h.limiter.Cleanup(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
