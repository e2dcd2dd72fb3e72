package models

import "time"

// ReconcileRequest is the JSON body accepted by the reconcile endpoint.
type ReconcileRequest struct {
	Records []InputRecord `json:"records" binding:"required,min=1"`
}

// ReconcileResponse is returned after a batch run completes.
type ReconcileResponse struct {
	RunID      string         `json:"run_id"`
	Total      int            `json:"total"`
	Found      int            `json:"found"`
	NotFound   int            `json:"not_found"`
	Errors     int            `json:"errors"`
	DurationMs int64          `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
	Results    []ResultRecord `json:"results"`
}

// RunSummary is the persisted header of one reconciliation run.
type RunSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Total     int       `json:"total"`
	Found     int       `json:"found"`
	NotFound  int       `json:"not_found"`
	Errors    int       `json:"errors"`
}

// DownloadResponse reports the outcome of a run's transfer loop.
type DownloadResponse struct {
	RunID     string            `json:"run_id"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Outcomes  []DownloadOutcome `json:"outcomes"`
	Timestamp time.Time         `json:"timestamp"`
}

// ErrorResponse is the standard error body for all endpoints.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// HealthResponse describes overall service health.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Services  map[string]ServiceInfo `json:"services"`
}

// ServiceInfo describes the health of one dependency.
type ServiceInfo struct {
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}
