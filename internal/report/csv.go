package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driverec/reconcile-api/internal/models"
)

// sheetNameLimit is the 31-character identifier limit of the legacy
// spreadsheet container the reports were originally exported to.
const sheetNameLimit = 31

// Columns is the fixed column order of every per-company report.
var Columns = []string{"company", "input_filename", "status", "file_name", "file_id", "webViewLink"}

var unsafePathChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// SheetName derives a filesystem- and spreadsheet-safe identifier from a
// company name, truncated to the legacy 31-character limit.
func SheetName(company string) string {
	name := unsafePathChars.Replace(strings.TrimSpace(company))
	if name == "" {
		name = "report"
	}
	runes := []rune(name)
	if len(runes) > sheetNameLimit {
		name = string(runes[:sheetNameLimit])
	}
	return name
}

// WriteCSVReports writes one CSV file per company into dir, creating it if
// needed, and returns the written paths in company order. Sanitized company
// names that collide get a numeric suffix so no group overwrites another.
func WriteCSVReports(dir string, g Grouped) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	paths := make([]string, 0, len(g.Companies))
	used := make(map[string]int)
	for _, company := range g.Companies {
		name := SheetName(company)
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			used[name] = 1
		}

		path := filepath.Join(dir, name+".csv")
		if err := writeCompanyCSV(path, g.Rows[company]); err != nil {
			return nil, fmt.Errorf("failed to write report for %q: %w", company, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCompanyCSV(path string, rows []models.ResultRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Write(Columns)
	for _, r := range rows {
		w.Write([]string{r.Company, r.InputFilename, r.StatusLabel(), r.FileName, r.FileID, r.WebViewLink})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
