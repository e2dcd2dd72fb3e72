package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/config"
	"github.com/driverec/reconcile-api/internal/models"
	"github.com/driverec/reconcile-api/internal/services"
)

// fakeDriveBackend serves the two endpoints the drive client uses.
func fakeDriveBackend(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/files/") {
			w.Write([]byte("file contents"))
			return
		}
		q := r.URL.Query().Get("q")
		if strings.Contains(q, "report.pdf") {
			w.Write([]byte(`{"files":[{"id":"f1","name":"Report (1).pdf","webViewLink":"https://drive.example/f1"}]}`))
			return
		}
		w.Write([]byte(`{"files":[]}`))
	}))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := fakeDriveBackend(t)
	t.Cleanup(backend.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Redis: config.RedisConfig{
			Host:        "127.0.0.1",
			Port:        1,
			DialTimeout: 50 * time.Millisecond,
		},
		Drive: config.DriveConfig{
			BaseURL:           backend.URL,
			PageSize:          20,
			Timeout:           5 * time.Second,
			RequestsPerSecond: 100,
			Burst:             10,
		},
		Reconcile: config.ReconcileConfig{
			ExclusionSuffixes: []string{"_backup", "_copy", "_old"},
			DownloadFolder:    filepath.Join(dir, "downloads"),
			ReportFolder:      filepath.Join(dir, "reports"),
			StorePath:         filepath.Join(dir, "runs.db"),
			CacheTTL:          time.Minute,
		},
		Security: config.SecurityConfig{
			RateLimit: config.RateLimitConfig{
				RequestsPerMinute: 6000,
				BurstSize:         100,
				CleanupInterval:   time.Minute,
			},
			CORS: config.CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "DELETE"},
				AllowedHeaders: []string{"Content-Type"},
			},
		},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	container, err := services.NewContainer(cfg, logger)
	if err != nil {
		t.Fatalf("failed to build container: %v", err)
	}
	t.Cleanup(func() { container.Close() })

	return NewServer(cfg, logger, container)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	return w
}

func TestReconcileEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/reconcile", models.ReconcileRequest{
		Records: []models.InputRecord{
			{Filename: "report.pdf", Company: "Acme"},
			{Filename: "missing.pdf", Company: "Acme"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.ReconcileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || resp.Found != 1 || resp.NotFound != 1 || resp.Errors != 0 {
		t.Errorf("unexpected summary: %+v", resp)
	}
	if resp.RunID == "" {
		t.Fatal("response must carry a run ID")
	}
	if len(resp.Results) != 2 || resp.Results[0].FileName != "Report (1).pdf" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}

	// The run must be retrievable afterwards.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/runs/"+resp.RunID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get run status = %d, body = %s", w.Code, w.Body.String())
	}

	var stored struct {
		Run     models.RunSummary     `json:"run"`
		Results []models.ResultRecord `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode stored run: %v", err)
	}
	if stored.Run.Found != 1 || len(stored.Results) != 2 {
		t.Errorf("stored run does not match response: %+v", stored)
	}
}

func TestReconcileEndpointRejectsEmptyBatch(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/reconcile", map[string]interface{}{
		"records": []interface{}{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestReconcileFileEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "input.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("filename,company\nreport.pdf,Acme\nmissing.pdf,Globex\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.ReconcileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || resp.Found != 1 {
		t.Errorf("unexpected summary: %+v", resp)
	}
}

func TestReconcileFileEndpointRejectsBadCSV(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "input.csv")
	part.Write([]byte("name,owner\nreport.pdf,Acme\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/runs/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRunDownloads(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/reconcile", models.ReconcileRequest{
		Records: []models.InputRecord{{Filename: "report.pdf", Company: "Acme"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reconcile status = %d", w.Code)
	}
	var resp models.ReconcileResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/runs/"+resp.RunID+"/downloads", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list downloads status = %d", w.Code)
	}
	var list struct {
		Downloads []models.DownloadItem `json:"downloads"`
		Count     int                   `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode download list: %v", err)
	}
	if list.Count != 1 || list.Downloads[0].FileID != "f1" {
		t.Errorf("unexpected download list: %+v", list)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/runs/"+resp.RunID+"/downloads", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d, body = %s", w.Code, w.Body.String())
	}
	var dl models.DownloadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &dl); err != nil {
		t.Fatalf("decode download response: %v", err)
	}
	if dl.Total != 1 || dl.Succeeded != 1 || dl.Failed != 0 {
		t.Errorf("unexpected download response: %+v", dl)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if _, ok := resp.Services["store"]; !ok {
		t.Error("health must report the run store")
	}
}
