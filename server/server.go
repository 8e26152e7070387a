package server

import (
	"context"
	"net/http"
	"time"

	"goshortlink/cache/cacher"
	"goshortlink/controllers"
	"goshortlink/maintenance"
	"goshortlink/repository"
	"goshortlink/shortener"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
)

func NewRouter(
	db repository.Repository,
	cache cacher.Engine,
	svc *shortener.Service,
	jobs *maintenance.Jobs,
	logger *zap.Logger,
	preloadLimit int,
) *gin.Engine {
	router := gin.Default()
	router.HandleMethodNotAllowed = true

	health := controllers.HealthController{DB: db, Cache: cache}
	router.GET("/health", health.Status)

	url := controllers.UrlController{
		Shortener: svc,
		Log:       logger,
	}
	router.POST("/shorten", withTimeout(url.Shorten, defaultTimeout))
	router.GET("/stats/:code", withTimeout(url.Stats, defaultTimeout))
	router.GET("/:code", withTimeout(url.Redirect, defaultTimeout))

	admin := controllers.AdminController{
		Jobs:         jobs,
		Log:          logger,
		PreloadLimit: preloadLimit,
	}
	router.POST("/admin/cleanup", withTimeout(admin.Cleanup, defaultTimeout))
	router.POST("/admin/preload-cache", withTimeout(admin.PreloadCache, defaultTimeout))

	return router
}

func withTimeout(handler gin.HandlerFunc, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		ch := make(chan struct{}, 1)
		go func() {
			defer func() {
				_ = gin.Recovery()
			}()
			handler(c)
			ch <- struct{}{}
		}()

		select {
		case <-ch:
			c.Next()
		case <-time.After(timeout):
			c.AbortWithStatus(http.StatusRequestTimeout)
			c.String(http.StatusRequestTimeout, http.StatusText(http.StatusRequestTimeout))
			return
		}
	}
}
