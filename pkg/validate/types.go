package validate

import "github.com/nicktill/promcheck/pkg/exposition"

// Status is the overall verdict for a directory run
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
)

// LineError records one line that failed validation.
// LineNumber is 1-based; 0 marks a synthetic file-level error.
type LineError struct {
	LineNumber int                  `json:"line_number"`
	Reason     exposition.ErrorKind `json:"reason"`
	Detail     string               `json:"detail,omitempty"`
	RawContent string               `json:"raw_content"`
}

// FileSummary aggregates the validation of a single file
type FileSummary struct {
	FilePath     string      `json:"file_path"`
	TotalLines   int         `json:"total_lines"`
	ValidLines   int         `json:"valid_lines"`
	InvalidLines int         `json:"invalid_lines"`
	Errors       []LineError `json:"errors"`
	IsValid      bool        `json:"is_valid"`
}

// DirectoryResults aggregates every candidate file of a directory
type DirectoryResults struct {
	DirectoryPath    string        `json:"directory_path"`
	FileCount        int           `json:"file_count"`
	ValidFileCount   int           `json:"valid_file_count"`
	InvalidFileCount int           `json:"invalid_file_count"`
	FileSummaries    []FileSummary `json:"file_summaries"`
	OverallStatus    Status        `json:"overall_status"`

	// Reason and Detail are set only when the directory itself could not be used
	Reason exposition.ErrorKind `json:"reason,omitempty"`
	Detail string               `json:"detail,omitempty"`
}

// Valid reports whether every file passed
func (r DirectoryResults) Valid() bool {
	return r.OverallStatus == StatusValid
}
