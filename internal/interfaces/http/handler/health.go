package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health statuses
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// Pinger checks a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping implements Pinger
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler reports dependency health. The database is required;
// Redis is optional because every Redis-backed store has an in-memory
// fallback.
type HealthHandler struct {
	db      Pinger
	redis   Pinger
	timeout time.Duration
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. redis may be nil when Redis is
// not configured.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, timeout: 2 * time.Second, now: time.Now}
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time" example:"2026-03-09T12:00:00Z"`
	Database string `json:"database" example:"ok"`
	Redis    string `json:"redis" example:"ok"`
}

// Health godoc
//
//	@ID				health
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	reqLog := logger.GetGinLogger(c)

	resp := HealthResponse{
		Status:   HealthHealthy,
		Time:     h.now().UTC().Format(time.RFC3339),
		Database: "ok",
		Redis:    "disabled",
	}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		reqLog.Warn("Health check failed", zap.String("dependency", "database"), zap.Error(err))
		resp.Database = "error"
		resp.Status = HealthUnhealthy
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			reqLog.Warn("Health check failed", zap.String("dependency", "redis"), zap.Error(err))
			resp.Redis = "error"
			if resp.Status == HealthHealthy {
				resp.Status = HealthDegraded
			}
		}
	}

	c.JSON(status, resp)
}
