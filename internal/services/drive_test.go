package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/driverec/reconcile-api/internal/config"
)

func newDriveTestService(baseURL string) DriveServiceInterface {
	return NewDriveService(config.DriveConfig{
		BaseURL:           baseURL,
		APIToken:          "test-token",
		PageSize:          20,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 100,
		Burst:             10,
	}, testLogger())
}

func TestDriveSearch(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files":[{"id":"f1","name":"Report (1).pdf","mimeType":"application/pdf","size":"2048","webViewLink":"https://drive.example/f1"}]}`))
	}))
	defer srv.Close()

	svc := newDriveTestService(srv.URL)
	candidates, err := svc.Search(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := `name contains "report.pdf" and trashed = false`
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("authorization header = %q", gotAuth)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.ID != "f1" || c.Name != "Report (1).pdf" || c.Size != 2048 {
		t.Errorf("unexpected candidate: %+v", c)
	}
}

func TestDriveSearchEscapesQuotes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"files":[]}`))
	}))
	defer srv.Close()

	svc := newDriveTestService(srv.URL)
	if _, err := svc.Search(context.Background(), `say "hi".pdf`); err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := `name contains "say \"hi\".pdf" and trashed = false`
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestDriveSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	svc := newDriveTestService(srv.URL)
	if _, err := svc.Search(context.Background(), "report.pdf"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestDriveDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/f1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "media" {
			t.Errorf("expected alt=media, got %q", r.URL.Query().Get("alt"))
		}
		w.Write([]byte("file contents"))
	}))
	defer srv.Close()

	base := t.TempDir()
	svc := newDriveTestService(srv.URL)
	localPath, err := svc.Download(context.Background(), "f1", "report.pdf", "Acme", base)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	wantPath := filepath.Join(base, "Acme", "report.pdf")
	if localPath != wantPath {
		t.Errorf("local path = %q, want %q", localPath, wantPath)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != "file contents" {
		t.Errorf("downloaded contents = %q", data)
	}
}

func TestDriveDownloadNon200RemovesPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	base := t.TempDir()
	svc := newDriveTestService(srv.URL)
	if _, err := svc.Download(context.Background(), "gone", "x.pdf", "Acme", base); err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if _, err := os.Stat(filepath.Join(base, "Acme", "x.pdf")); !os.IsNotExist(err) {
		t.Error("no file should remain after a failed download")
	}
}
