package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/driverec/reconcile-api/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := models.RunSummary{
		ID:        "run-1",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Total:     3, Found: 1, NotFound: 1, Errors: 1,
	}
	results := []models.ResultRecord{
		{Company: "Acme", InputFilename: "report.pdf", Status: models.StatusFound, FileName: "Report (1).pdf", FileID: "f1", WebViewLink: "https://drive.example/f1"},
		{Company: "Acme", InputFilename: "missing.pdf", Status: models.StatusNotFound},
		{Company: "Globex", InputFilename: "note.txt", Status: models.StatusError, Error: "search failed"},
	}

	if err := s.SaveRun(ctx, run, results); err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}

	gotRun, gotResults, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun error: %v", err)
	}
	if gotRun.ID != run.ID || gotRun.Total != 3 || gotRun.Found != 1 || gotRun.Errors != 1 {
		t.Errorf("unexpected run header: %+v", gotRun)
	}
	if !gotRun.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("created_at round trip: got %v, want %v", gotRun.CreatedAt, run.CreatedAt)
	}
	if len(gotResults) != 3 {
		t.Fatalf("expected 3 results, got %d", len(gotResults))
	}
	for i := range results {
		if gotResults[i] != results[i] {
			t.Errorf("result %d round trip mismatch:\n got %+v\nwant %+v", i, gotResults[i], results[i])
		}
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.GetRun(context.Background(), "nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := models.RunSummary{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour), Total: 1, NotFound: 1}
		if err := s.SaveRun(ctx, run, []models.ResultRecord{{Company: "Acme", InputFilename: "x", Status: models.StatusNotFound}}); err != nil {
			t.Fatalf("SaveRun error: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("expected newest first, got %v then %v", runs[0].ID, runs[1].ID)
	}
}
