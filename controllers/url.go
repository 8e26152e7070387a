package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"goshortlink/codec"
	"goshortlink/shortener"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const expiresAtLayout = time.RFC3339

type shortenReqData struct {
	Url       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
	expiresAt *time.Time
}

// parseExpiry parses the optional expires_at and stores the result.
// Whether the timestamp is actually in the future is the pipeline's call.
func (r *shortenReqData) parseExpiry() error {
	if r.ExpiresAt == "" {
		return nil
	}
	t, err := time.Parse(expiresAtLayout, r.ExpiresAt)
	if err != nil {
		return fmt.Errorf("invalid expires_at: %w", err)
	}
	r.expiresAt = &t
	return nil
}

type UrlController struct {
	Shortener *shortener.Service
	Log       *zap.Logger
}

func (u UrlController) Shorten(c *gin.Context) {
	var req shortenReqData
	if err := c.ShouldBindJSON(&req); err != nil {
		u.Log.Warn("invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := req.parseExpiry(); err != nil {
		u.Log.Warn("invalid expiry", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := u.Shortener.Shorten(c.Request.Context(), req.Url, req.expiresAt)
	if err != nil {
		var vErr *shortener.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		u.Log.Error("shorten failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"short_url":    result.ShortURL,
		"short_code":   result.ShortCode,
		"original_url": result.OriginalURL,
		"is_new":       result.IsNew,
	})
}

func (u UrlController) Redirect(c *gin.Context) {
	code := c.Param("code")
	if err := codec.Validate(code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	originalURL, err := u.Shortener.Resolve(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		u.Log.Error("resolve failed", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

func (u UrlController) Stats(c *gin.Context) {
	code := c.Param("code")
	if err := codec.Validate(code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		return
	}

	record, err := u.Shortener.Stats(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		u.Log.Error("stats failed", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var expiresAt interface{}
	if record.ExpiresAt != nil {
		expiresAt = record.ExpiresAt.Format(expiresAtLayout)
	}
	c.JSON(http.StatusOK, gin.H{
		"short_code":   record.ShortCode,
		"original_url": record.OriginalURL,
		"click_count":  record.ClickCount,
		"created_at":   record.CreatedAt.Format(expiresAtLayout),
		"expires_at":   expiresAt,
	})
}
