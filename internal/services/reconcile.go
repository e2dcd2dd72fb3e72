package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/config"
	"github.com/driverec/reconcile-api/internal/match"
	"github.com/driverec/reconcile-api/internal/models"
)

// ReconcileService resolves input records against the remote index.
//
// The batch loop is deliberately sequential: result order and the progress
// signal must both follow input order, so one record is fully resolved
// before the next search is issued. A failed search is captured as the
// record's status and never aborts the batch.
type ReconcileService struct {
	drive          DriveServiceInterface
	cache          CacheServiceInterface
	suffixes       match.SuffixSet
	downloadFolder string
	logger         *logrus.Logger
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(cfg config.ReconcileConfig, drive DriveServiceInterface, cache CacheServiceInterface, logger *logrus.Logger) ReconcileServiceInterface {
	return &ReconcileService{
		drive:          drive,
		cache:          cache,
		suffixes:       match.NewSuffixSet(cfg.ExclusionSuffixes),
		downloadFolder: cfg.DownloadFolder,
		logger:         logger,
	}
}

// Reconcile resolves every record in input order, one remote search per
// record, and returns exactly one result per record in the same order.
func (s *ReconcileService) Reconcile(ctx context.Context, records []models.InputRecord, progress ProgressFunc) []models.ResultRecord {
	total := len(records)
	results := make([]models.ResultRecord, 0, total)

	for i, rec := range records {
		filename := strings.TrimSpace(rec.Filename)
		company := strings.TrimSpace(rec.Company)

		out := models.ResultRecord{
			Company:       company,
			InputFilename: filename,
			Status:        models.StatusNotFound,
		}

		candidates, err := s.search(ctx, filename)
		switch {
		case err != nil:
			out.Status = models.StatusError
			out.Error = err.Error()
			s.logger.WithFields(logrus.Fields{
				"filename": filename,
				"company":  company,
				"error":    err.Error(),
			}).Warn("Search failed for record")
		case len(candidates) > 0:
			if best, ok := match.BestMatch(filename, candidates, s.suffixes); ok {
				out.Status = models.StatusFound
				out.FileName = best.Name
				out.FileID = best.ID
				out.WebViewLink = best.WebViewLink
			}
		}

		results = append(results, out)
		if progress != nil {
			progress(i+1, total)
		}
	}

	return results
}

// search consults the cache before the remote index. Only successful
// lookups are cached; cache failures are ignored so they can never turn a
// good search into an error.
func (s *ReconcileService) search(ctx context.Context, filename string) ([]models.Candidate, error) {
	key := fmt.Sprintf("search:%s", strings.ToLower(filename))

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var candidates []models.Candidate
		if err := json.Unmarshal([]byte(cached), &candidates); err == nil {
			return candidates, nil
		}
		s.logger.WithField("key", key).Warn("Failed to unmarshal cached search result")
	}

	candidates, err := s.drive.Search(ctx, filename)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(candidates); err == nil {
		if err := s.cache.Set(ctx, key, string(payload)); err != nil {
			s.logger.WithField("key", key).Warn("Failed to cache search result")
		}
	}
	return candidates, nil
}

// DownloadAll transfers items one at a time into the configured download
// folder. A failed transfer is recorded in its outcome and the loop moves
// on to the next file.
func (s *ReconcileService) DownloadAll(ctx context.Context, items []models.DownloadItem) []models.DownloadOutcome {
	outcomes := make([]models.DownloadOutcome, 0, len(items))

	for _, item := range items {
		start := time.Now()
		outcome := models.DownloadOutcome{
			Company:  item.Company,
			FileID:   item.FileID,
			FileName: item.FileName,
		}

		path, err := s.drive.Download(ctx, item.FileID, item.FileName, item.Company, s.downloadFolder)
		if err != nil {
			outcome.Error = err.Error()
			s.logger.WithFields(logrus.Fields{
				"file_name": item.FileName,
				"company":   item.Company,
				"error":     err.Error(),
			}).Warn("Failed to download file")
		} else {
			outcome.Success = true
			outcome.LocalPath = path
			s.logger.WithFields(logrus.Fields{
				"file_name": item.FileName,
				"path":      path,
				"duration":  time.Since(start),
			}).Info("File downloaded")
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// Health returns service health status
func (s *ReconcileService) Health() map[string]interface{} {
	return map[string]interface{}{
		"status":             "healthy",
		"exclusion_suffixes": len(s.suffixes),
		"download_folder":    s.downloadFolder,
	}
}
