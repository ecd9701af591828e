package handlers

import (
	"net/http"

	"mediroute/internal/services"
	"mediroute/pkg/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db       *database.MongoDB
	cacheSvc services.CacheService
}

func NewHealthHandler(db *database.MongoDB, cacheSvc services.CacheService) *HealthHandler {
	return &HealthHandler{
		db:       db,
		cacheSvc: cacheSvc,
	}
}

// Health reports readiness of the service and its backing stores
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"mongodb": "ok", "redis": "ok"}

	if err := h.db.Ping(c.Request.Context()); err != nil {
		checks["mongodb"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.cacheSvc.Ping(c.Request.Context()); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}
