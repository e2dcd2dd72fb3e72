package services

import (
	"context"

	"github.com/driverec/reconcile-api/internal/models"
)

// ProgressFunc receives an observability signal after each processed
// record. It never influences control flow or results.
type ProgressFunc func(done, total int)

// DriveServiceInterface defines the interface for the remote file index client
type DriveServiceInterface interface {
	// Search returns candidates whose name contains filename, excluding
	// trashed items. A failed call is distinguishable from zero results.
	Search(ctx context.Context, filename string) ([]models.Candidate, error)

	// Download transfers one file into baseFolder/company/fileName and
	// returns the local path.
	Download(ctx context.Context, fileID, fileName, company, baseFolder string) (string, error)

	// Health returns service health status
	Health() map[string]interface{}
}

// CacheServiceInterface defines the interface for cache service
type CacheServiceInterface interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value string) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear clears all cache entries
	Clear(ctx context.Context) error

	// GetStats returns cache statistics
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Health returns cache service health status
	Health() map[string]interface{}
}

// ReconcileServiceInterface defines the interface for the batch reconciliation engine
type ReconcileServiceInterface interface {
	// Reconcile resolves every input record in order and returns one
	// result per record, in the same order.
	Reconcile(ctx context.Context, records []models.InputRecord, progress ProgressFunc) []models.ResultRecord

	// DownloadAll runs the sequential transfer loop over items with
	// per-file fault isolation.
	DownloadAll(ctx context.Context, items []models.DownloadItem) []models.DownloadOutcome

	// Health returns service health status
	Health() map[string]interface{}
}
