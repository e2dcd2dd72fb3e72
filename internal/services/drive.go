package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/driverec/reconcile-api/internal/config"
	"github.com/driverec/reconcile-api/internal/models"
)

// DriveService is the REST client for the remote file index. Calls are
// rate limited client-side so a large batch cannot exhaust the provider
// quota.
type DriveService struct {
	config     config.DriveConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger

	mu           sync.RWMutex
	requestCount int64
	errorCount   int64
}

type fileListResponse struct {
	Files []models.Candidate `json:"files"`
}

// queryEscaper escapes the characters with meaning inside a quoted query
// term.
var queryEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// NewDriveService creates a new remote index client
func NewDriveService(cfg config.DriveConfig, logger *logrus.Logger) DriveServiceInterface {
	return &DriveService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
}

// Search queries the index with a "name contains" match, excluding trashed
// items, capped at the configured page size.
func (s *DriveService) Search(ctx context.Context, filename string) ([]models.Candidate, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	query := fmt.Sprintf(`name contains "%s" and trashed = false`, queryEscaper.Replace(filename))
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(s.config.PageSize))
	params.Set("fields", "files(id, name, mimeType, size, webViewLink)")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.config.BaseURL+"/files?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.countRequest(false)
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.countRequest(false)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var list fileListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		s.countRequest(false)
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	s.countRequest(true)
	s.logger.WithFields(logrus.Fields{
		"filename":   filename,
		"candidates": len(list.Files),
	}).Debug("Search completed")

	return list.Files, nil
}

// Download streams one file into baseFolder/company/fileName, creating the
// company directory on demand.
func (s *DriveService) Download(ctx context.Context, fileID, fileName, company, baseFolder string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter interrupted: %w", err)
	}

	companyDir := filepath.Join(baseFolder, company)
	if err := os.MkdirAll(companyDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", companyDir, err)
	}
	localPath := filepath.Join(companyDir, fileName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.config.BaseURL+"/files/"+url.PathEscape(fileID)+"?alt=media", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.countRequest(false)
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.countRequest(false)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("download returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(localPath)
		s.countRequest(false)
		return "", fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to close %s: %w", localPath, err)
	}

	s.countRequest(true)
	s.logger.WithFields(logrus.Fields{
		"file_id": fileID,
		"path":    localPath,
	}).Debug("Download completed")

	return localPath, nil
}

func (s *DriveService) authorize(req *http.Request) {
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}
}

func (s *DriveService) countRequest(success bool) {
	s.mu.Lock()
	s.requestCount++
	if !success {
		s.errorCount++
	}
	s.mu.Unlock()
}

// Health returns service health status
func (s *DriveService) Health() map[string]interface{} {
	s.mu.RLock()
	requests, errors := s.requestCount, s.errorCount
	s.mu.RUnlock()

	return map[string]interface{}{
		"status":        "healthy",
		"base_url":      s.config.BaseURL,
		"request_count": requests,
		"error_count":   errors,
	}
}
