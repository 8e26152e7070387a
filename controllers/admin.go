package controllers

import (
	"net/http"

	"goshortlink/maintenance"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Jobs         *maintenance.Jobs
	Log          *zap.Logger
	PreloadLimit int
}

func (a AdminController) Cleanup(c *gin.Context) {
	deleted, err := a.Jobs.CleanupExpired(c.Request.Context())
	if err != nil {
		a.Log.Error("cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_count": deleted})
}

type preloadReqData struct {
	Limit int `json:"limit"`
}

func (a AdminController) PreloadCache(c *gin.Context) {
	var req preloadReqData
	// an empty body means "use the configured limit"
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = a.PreloadLimit
	}

	loaded, err := a.Jobs.PreloadCache(c.Request.Context(), req.Limit)
	if err != nil {
		a.Log.Error("preload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loaded_count": loaded})
}
