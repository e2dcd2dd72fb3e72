package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/models"
	"github.com/driverec/reconcile-api/internal/services"
)

// CacheHandler handles cache management requests
type CacheHandler struct {
	cacheService services.CacheServiceInterface
	logger       *logrus.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(cacheService services.CacheServiceInterface, logger *logrus.Logger) *CacheHandler {
	return &CacheHandler{
		cacheService: cacheService,
		logger:       logger,
	}
}

// GetStats handles cache statistics request
func (h *CacheHandler) GetStats(c *gin.Context) {
	requestID := c.GetString("request_id")

	stats, err := h.cacheService.GetStats(c.Request.Context())
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get cache statistics")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to retrieve cache statistics",
			Code:      "CACHE_STATS_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":     stats,
		"health":    h.cacheService.Health(),
		"timestamp": time.Now(),
	})
}

// Clear handles cache clear request
func (h *CacheHandler) Clear(c *gin.Context) {
	requestID := c.GetString("request_id")

	h.logger.WithField("request_id", requestID).Info("Clearing search cache")

	if err := h.cacheService.Clear(c.Request.Context()); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to clear cache")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to clear cache",
			Code:      "CACHE_CLEAR_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cache cleared successfully",
		"success":   true,
		"timestamp": time.Now(),
	})
}

// Delete evicts the cached search result for one filename.
func (h *CacheHandler) Delete(c *gin.Context) {
	requestID := c.GetString("request_id")

	filename := strings.TrimSpace(c.Param("filename"))
	if filename == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid filename",
			Message:   "Filename must not be empty",
			Code:      "INVALID_FILENAME",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	// Same key shape the reconcile engine uses
	cacheKey := "search:" + strings.ToLower(filename)

	if err := h.cacheService.Delete(c.Request.Context(), cacheKey); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"filename":   filename,
			"error":      err.Error(),
		}).Error("Failed to delete cache entry")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to delete from cache",
			Code:      "CACHE_DELETE_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cache entry deleted",
		"filename":  filename,
		"success":   true,
		"timestamp": time.Now(),
	})
}
