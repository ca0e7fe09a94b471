package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pinger is satisfied by stores that can report connection liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the liveness of the service and its backing stores.
type HealthHandler struct {
	db    *gorm.DB
	cache Pinger
	log   *zap.Logger
}

// NewHealthHandler creates a HealthHandler. cache may be nil when Redis is
// disabled; the check is then omitted.
func NewHealthHandler(db *gorm.DB, cache Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, log: log}
}

// Check handles GET /health. A failing database turns the response into a
// 503; a failing cache is only reported, since every caller of the cache
// falls back to the database.
func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}

	if h.db != nil {
		if err := h.pingDB(c.Request.Context()); err != nil {
			h.log.Error("health check: database unreachable", zap.Error(err))
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			h.log.Warn("health check: cache unreachable", zap.Error(err))
			checks["cache"] = "down"
		} else {
			checks["cache"] = "up"
		}
	}

	body := gin.H{
		"status":  "healthy",
		"service": "user-rest-service",
		"checks":  checks,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}

	c.JSON(status, body)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
