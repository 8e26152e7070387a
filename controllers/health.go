package controllers

import (
	"net/http"

	"goshortlink/cache/cacher"
	"goshortlink/repository"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	DB    repository.Repository
	Cache cacher.Engine
}

// Status reports liveness of both backends. A dead cache only degrades
// latency, so it does not fail the check; a dead database does.
func (h HealthController) Status(c *gin.Context) {
	status := "ok"
	httpStatus := http.StatusOK

	dbState := "up"
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		dbState = "down"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	cacheState := "up"
	cacheStats := gin.H{"hit_ratio": 0.0, "total_keys": 0}
	if err := h.Cache.Ping(); err != nil {
		cacheState = "down"
	} else if stats, err := h.Cache.Stats(); err == nil {
		cacheStats = gin.H{"hit_ratio": stats.HitRatio, "total_keys": stats.TotalKeys}
	}

	c.JSON(httpStatus, gin.H{
		"status": status,
		"services": gin.H{
			"database": dbState,
			"cache":    cacheState,
		},
		"cache": cacheStats,
	})
}
