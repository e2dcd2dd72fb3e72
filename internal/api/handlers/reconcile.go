package handlers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/input"
	"github.com/driverec/reconcile-api/internal/models"
	"github.com/driverec/reconcile-api/internal/report"
	"github.com/driverec/reconcile-api/internal/services"
)

// ReconcileHandler runs reconciliation batches over HTTP.
type ReconcileHandler struct {
	services *services.Container
	logger   *logrus.Logger
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(services *services.Container, logger *logrus.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		services: services,
		logger:   logger,
	}
}

// Reconcile handles a JSON batch request.
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	var req models.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid request",
			Message:   err.Error(),
			Code:      "INVALID_REQUEST",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	h.runBatch(c, req.Records)
}

// ReconcileFile handles a multipart CSV upload. The file must carry the
// filename and company columns.
func (h *ReconcileHandler) ReconcileFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid request",
			Message:   "Multipart field 'file' is required",
			Code:      "MISSING_FILE",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid request",
			Message:   "Failed to open uploaded file",
			Code:      "INVALID_FILE",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	defer f.Close()

	records, err := input.ParseCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid input file",
			Message:   err.Error(),
			Code:      "INVALID_CSV",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:     "Invalid input file",
			Message:   "No records found in uploaded file",
			Code:      "EMPTY_CSV",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	h.runBatch(c, records)
}

// runBatch executes the engine, persists the run and writes the CSV
// reports. Report writing is best effort; the persisted run is the
// durable artifact and reports can be rebuilt from it.
func (h *ReconcileHandler) runBatch(c *gin.Context, records []models.InputRecord) {
	requestID := c.GetString("request_id")
	runID := uuid.New().String()
	start := time.Now()

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"run_id":     runID,
		"records":    len(records),
	}).Info("Starting reconciliation run")

	results := h.services.ReconcileService.Reconcile(c.Request.Context(), records, nil)
	summary := report.Summarize(results)

	run := models.RunSummary{
		ID:        runID,
		CreatedAt: start,
		Total:     summary.Total,
		Found:     summary.Found,
		NotFound:  summary.NotFound,
		Errors:    summary.Errors,
	}
	if err := h.services.RunStore.SaveRun(c.Request.Context(), run, results); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"run_id":     runID,
			"error":      err.Error(),
		}).Error("Failed to persist run")

		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal server error",
			Message:   "Failed to persist run",
			Code:      "RUN_PERSIST_ERROR",
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
		return
	}

	reportDir := filepath.Join(h.services.GetConfig().Reconcile.ReportFolder, runID)
	if _, err := report.WriteCSVReports(reportDir, report.GroupByCompany(results)); err != nil {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"run_id":     runID,
			"error":      err.Error(),
		}).Warn("Failed to write CSV reports")
	}

	duration := time.Since(start)
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"run_id":     runID,
		"total":      summary.Total,
		"found":      summary.Found,
		"not_found":  summary.NotFound,
		"errors":     summary.Errors,
		"duration":   duration.String(),
	}).Info("Reconciliation run completed")

	c.JSON(http.StatusOK, models.ReconcileResponse{
		RunID:      runID,
		Total:      summary.Total,
		Found:      summary.Found,
		NotFound:   summary.NotFound,
		Errors:     summary.Errors,
		DurationMs: duration.Milliseconds(),
		Timestamp:  time.Now(),
		Results:    results,
	})
}
