package models

// InputRecord is one row of the user-supplied reconciliation list.
// Rows keep the order they had in the source table; that order defines
// processing order and output order.
type InputRecord struct {
	Filename string `json:"filename"`
	Company  string `json:"company"`
}

// Candidate is a single remote search hit for a filename query.
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size,string,omitempty"`
	WebViewLink string `json:"webViewLink"`
}

// Status classifies the outcome of reconciling one input record.
type Status string

const (
	StatusFound    Status = "Found"
	StatusNotFound Status = "Not Found"
	StatusError    Status = "Error"
)

// ResultRecord is the reconciliation outcome for one input record.
// Exactly one is produced per InputRecord and it is never mutated after
// the batch loop emits it.
type ResultRecord struct {
	Company       string `json:"company"`
	InputFilename string `json:"input_filename"`
	Status        Status `json:"status"`
	Error         string `json:"error,omitempty"`
	FileName      string `json:"file_name"`
	FileID        string `json:"file_id"`
	WebViewLink   string `json:"webViewLink"`
}

// StatusLabel renders the status for report output, folding the error
// message into the status column the way the exported report expects.
func (r ResultRecord) StatusLabel() string {
	if r.Status == StatusError && r.Error != "" {
		return "Error: " + r.Error
	}
	return string(r.Status)
}

// DownloadItem is one entry of the transfer list derived from a batch:
// a Found record projected to the fields the downloader needs.
type DownloadItem struct {
	Company  string `json:"company"`
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

// DownloadOutcome reports the result of transferring one file. A failed
// transfer is recorded here and never aborts the rest of the loop.
type DownloadOutcome struct {
	Company   string `json:"company"`
	FileID    string `json:"file_id"`
	FileName  string `json:"file_name"`
	LocalPath string `json:"local_path,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
