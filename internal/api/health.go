package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"magic-encyclopedia/backend/pkg/cache"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db          *gorm.DB
	speechCache cache.SpeechCache
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db *gorm.DB, speechCache cache.SpeechCache) *HealthHandler {
	return &HealthHandler{db: db, speechCache: speechCache}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health checks the database and, when configured, the speech cache
func (h *HealthHandler) Health(c *gin.Context) {
	checks := map[string]string{}
	status := "ok"

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		checks["database"] = "down"
		status = "degraded"
	} else {
		checks["database"] = "ok"
	}

	if redisCache, ok := h.speechCache.(*cache.RedisCache); ok {
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			checks["cache"] = "down"
			status = "degraded"
		} else {
			checks["cache"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{Status: status, Timestamp: time.Now(), Checks: checks})
}
