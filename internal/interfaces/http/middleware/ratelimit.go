package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateCounter counts hits in fixed windows. cache.RateCounter satisfies it.
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// RateLimitConfig configures one rate limit scope
type RateLimitConfig struct {
	// Name separates counters of different scopes sharing a client key
	Name    string
	Limit   int
	Window  time.Duration
	Counter RateCounter
	// KeyFunc identifies the client; defaults to the client IP
	KeyFunc func(*gin.Context) string
	Logger  *zap.Logger
}

// RateLimit limits each client to cfg.Limit requests per cfg.Window.
// Counter failures let the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit <= 0 || cfg.Window <= 0 || cfg.Counter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	limit := strconv.Itoa(cfg.Limit)

	return func(c *gin.Context) {
		key := cfg.Name + ":" + keyFunc(c)
		count, resetAt, err := cfg.Counter.Hit(c.Request.Context(), key, cfg.Window)
		if err != nil {
			logger.Or(c.Request.Context(), cfg.Logger).Warn("Rate limit counter unavailable",
				zap.String("scope", cfg.Name),
				zap.Error(err),
			)
			c.Next()
			return
		}

		remaining := max(int64(cfg.Limit)-count, 0)
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Limit) {
			retry := int64(math.Ceil(time.Until(resetAt).Seconds()))
			c.Header("Retry-After", strconv.FormatInt(max(retry, 1), 10))
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
