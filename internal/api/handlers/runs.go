package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/models"
	"github.com/driverec/reconcile-api/internal/report"
	"github.com/driverec/reconcile-api/internal/services"
	"github.com/driverec/reconcile-api/internal/store"
)

const defaultRunListLimit = 50

// RunsHandler serves run history and run-scoped downloads.
type RunsHandler struct {
	services *services.Container
	logger   *logrus.Logger
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(services *services.Container, logger *logrus.Logger) *RunsHandler {
	return &RunsHandler{
		services: services,
		logger:   logger,
	}
}

// List returns recent runs, newest first.
func (h *RunsHandler) List(c *gin.Context) {
	limit := defaultRunListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "Invalid request",
				Message:   "limit must be a positive integer",
				Code:      "INVALID_LIMIT",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return
		}
		limit = parsed
	}

	runs, err := h.services.RunStore.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to list runs",
			Code:      "RUN_LIST_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":      runs,
		"count":     len(runs),
		"timestamp": time.Now(),
	})
}

// Get returns one run with its full result list.
func (h *RunsHandler) Get(c *gin.Context) {
	run, results, ok := h.loadRun(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":     run,
		"results": results,
	})
}

// GetDownloads returns the downloadable files of a run without
// transferring anything.
func (h *RunsHandler) GetDownloads(c *gin.Context) {
	run, results, ok := h.loadRun(c)
	if !ok {
		return
	}

	items := report.DownloadList(results)
	c.JSON(http.StatusOK, gin.H{
		"run_id":    run.ID,
		"downloads": items,
		"count":     len(items),
	})
}

// Download executes the sequential transfer loop for a run's found files.
func (h *RunsHandler) Download(c *gin.Context) {
	run, results, ok := h.loadRun(c)
	if !ok {
		return
	}

	items := report.DownloadList(results)
	outcomes := h.services.ReconcileService.DownloadAll(c.Request.Context(), items)

	succeeded := 0
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		}
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"run_id":     run.ID,
		"total":      len(outcomes),
		"succeeded":  succeeded,
	}).Info("Download loop completed")

	c.JSON(http.StatusOK, models.DownloadResponse{
		RunID:     run.ID,
		Total:     len(outcomes),
		Succeeded: succeeded,
		Failed:    len(outcomes) - succeeded,
		Outcomes:  outcomes,
		Timestamp: time.Now(),
	})
}

func (h *RunsHandler) loadRun(c *gin.Context) (models.RunSummary, []models.ResultRecord, bool) {
	id := strings.TrimSpace(c.Param("id"))

	run, results, err := h.services.RunStore.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "Not found",
				Message:   "No run with the given ID",
				Code:      "RUN_NOT_FOUND",
				Timestamp: time.Now(),
				Path:      c.Request.URL.Path,
			})
			return models.RunSummary{}, nil, false
		}

		h.logger.WithFields(logrus.Fields{
			"run_id": id,
			"error":  err.Error(),
		}).Error("Failed to load run")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to load run",
			Code:      "RUN_LOAD_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return models.RunSummary{}, nil, false
	}

	return run, results, true
}
