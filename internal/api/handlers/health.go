package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/models"
	"github.com/driverec/reconcile-api/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	services  *services.Container
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services *services.Container, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		services:  services,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth reports the health of the API and its dependencies.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	servicesHealth := h.services.Health()

	status := "healthy"
	for _, serviceHealth := range servicesHealth {
		healthMap, ok := serviceHealth.(map[string]interface{})
		if !ok {
			continue
		}
		switch healthMap["status"] {
		case "unhealthy":
			status = "unhealthy"
		case "degraded":
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	response := models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(h.startTime).String(),
		Services:  make(map[string]models.ServiceInfo),
	}

	for serviceName, serviceHealth := range servicesHealth {
		healthMap, ok := serviceHealth.(map[string]interface{})
		if !ok {
			continue
		}

		serviceInfo := models.ServiceInfo{LastCheck: time.Now()}
		if serviceStatus, ok := healthMap["status"].(string); ok {
			serviceInfo.Status = serviceStatus
		}
		if errorMsg, ok := healthMap["error"].(string); ok {
			serviceInfo.Error = errorMsg
		}
		response.Services[serviceName] = serviceInfo
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, response)
}

// GetReadiness reports whether the API can serve requests. The run store
// is the only hard dependency; the shared cache may be absent.
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	servicesHealth := h.services.Health()

	ready := true
	issues := make([]string, 0)

	if storeHealth, exists := servicesHealth["store"]; exists {
		if healthMap, ok := storeHealth.(map[string]interface{}); ok {
			if healthMap["status"] == "unhealthy" {
				ready = false
				issues = append(issues, "run store is unhealthy")
			}
		}
	}

	response := gin.H{
		"ready":     ready,
		"timestamp": time.Now(),
	}
	if len(issues) > 0 {
		response["issues"] = issues
	}

	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, response)
}

// GetLiveness reports that the process is alive.
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"alive":      true,
		"timestamp":  time.Now(),
		"uptime":     time.Since(h.startTime).String(),
		"goroutines": runtime.NumGoroutine(),
		"memory_mb":  m.Alloc / 1024 / 1024,
	})
}
