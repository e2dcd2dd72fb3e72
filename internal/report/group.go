// Package report turns a batch's result records into per-company output:
// grouping, summary counts, the transfer list, and CSV report files.
package report

import "github.com/driverec/reconcile-api/internal/models"

// Grouped partitions result records by company. Companies keep their
// first-appearance order and records keep their relative input order
// inside each group. Grouping is by exact company string; differently
// cased company names form separate groups.
type Grouped struct {
	Companies []string
	Rows      map[string][]models.ResultRecord
}

// GroupByCompany partitions results for per-company presentation.
func GroupByCompany(results []models.ResultRecord) Grouped {
	g := Grouped{Rows: make(map[string][]models.ResultRecord)}
	for _, r := range results {
		if _, seen := g.Rows[r.Company]; !seen {
			g.Companies = append(g.Companies, r.Company)
		}
		g.Rows[r.Company] = append(g.Rows[r.Company], r)
	}
	return g
}

// DownloadList derives the ordered transfer list from a batch: records
// that were found with a non-empty file ID, projected to the fields the
// downloader needs.
func DownloadList(results []models.ResultRecord) []models.DownloadItem {
	var items []models.DownloadItem
	for _, r := range results {
		if r.Status != models.StatusFound || r.FileID == "" {
			continue
		}
		items = append(items, models.DownloadItem{
			Company:  r.Company,
			FileID:   r.FileID,
			FileName: r.FileName,
		})
	}
	return items
}

// Summary holds the per-status counts of a batch.
type Summary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	Errors   int `json:"errors"`
}

// Summarize counts results by status.
func Summarize(results []models.ResultRecord) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case models.StatusFound:
			s.Found++
		case models.StatusError:
			s.Errors++
		default:
			s.NotFound++
		}
	}
	return s
}
