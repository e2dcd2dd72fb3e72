// Package input reads the user-supplied reconciliation list from tabular
// data. The required columns are matched case-insensitively; a missing
// column is fatal to the whole run before any record is processed.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/driverec/reconcile-api/internal/models"
)

const (
	columnFilename = "filename"
	columnCompany  = "company"
)

// ParseCSV reads (filename, company) records from r, preserving row order.
// The first row must be a header containing the filename and company
// columns in any casing and any position. Rows with neither value set are
// skipped; all values are read as strings.
func ParseCSV(r io.Reader) ([]models.InputRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	filenameIdx, companyIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))) {
		case columnFilename:
			if filenameIdx == -1 {
				filenameIdx = i
			}
		case columnCompany:
			if companyIdx == -1 {
				companyIdx = i
			}
		}
	}
	if filenameIdx == -1 || companyIdx == -1 {
		return nil, fmt.Errorf("input must contain columns %q and %q", columnFilename, columnCompany)
	}

	var records []models.InputRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		record := models.InputRecord{
			Filename: fieldAt(row, filenameIdx),
			Company:  fieldAt(row, companyIdx),
		}
		if record.Filename == "" && record.Company == "" {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func fieldAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
