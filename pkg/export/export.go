package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nicktill/promcheck/pkg/storage"
)

// Supported formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// csvHeader is the column layout of a CSV export, one row per line error
var csvHeader = []string{"file", "line", "reason", "detail", "raw"}

// Exporter writes stored reports in download formats
type Exporter struct {
	storage storage.Storage
}

// NewExporter creates a new exporter
func NewExporter(store storage.Storage) *Exporter {
	return &Exporter{storage: store}
}

// ExportResult contains stats about the export
type ExportResult struct {
	ReportID      string    `json:"report_id"`
	FilesExported int       `json:"files_exported"`
	ErrorsWritten int       `json:"errors_written"`
	Format        string    `json:"format"`
	ExportedAt    time.Time `json:"exported_at"`
}

// Metadata describes a JSON export
type Metadata struct {
	ExportedAt time.Time `json:"exported_at"`
	ReportID   string    `json:"report_id"`
	CreatedAt  time.Time `json:"created_at"`
	Directory  string    `json:"directory"`
	FileCount  int       `json:"file_count"`
	ErrorCount int       `json:"error_count"`
	Format     string    `json:"format"`
	Version    string    `json:"version"`
}

// Document is the JSON export envelope
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Report   storage.Report `json:"report"`
}

// ExportJSON writes the report with export metadata as pretty JSON
func (e *Exporter) ExportJSON(ctx context.Context, w io.Writer, id string) (*ExportResult, error) {
	report, err := e.storage.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	doc := Document{
		Metadata: Metadata{
			ExportedAt: time.Now(),
			ReportID:   report.ID,
			CreatedAt:  report.CreatedAt,
			Directory:  report.Results.DirectoryPath,
			FileCount:  report.Results.FileCount,
			ErrorCount: countErrors(report),
			Format:     FormatJSON,
			Version:    "1.0",
		},
		Report: *report,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	return &ExportResult{
		ReportID:      report.ID,
		FilesExported: len(report.Results.FileSummaries),
		ErrorsWritten: doc.Metadata.ErrorCount,
		Format:        FormatJSON,
		ExportedAt:    doc.Metadata.ExportedAt,
	}, nil
}

// ExportCSV writes one row per line error of the report.
// A report without errors produces only the header.
func (e *Exporter) ExportCSV(ctx context.Context, w io.Writer, id string) (*ExportResult, error) {
	report, err := e.storage.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	var rows int
	for _, summary := range report.Results.FileSummaries {
		for _, lineErr := range summary.Errors {
			row := []string{
				summary.FilePath,
				strconv.Itoa(lineErr.LineNumber),
				string(lineErr.Reason),
				lineErr.Detail,
				lineErr.RawContent,
			}
			if err := writer.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write CSV row: %w", err)
			}
			rows++
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return &ExportResult{
		ReportID:      report.ID,
		FilesExported: len(report.Results.FileSummaries),
		ErrorsWritten: rows,
		Format:        FormatCSV,
		ExportedAt:    time.Now(),
	}, nil
}

func countErrors(report *storage.Report) int {
	var n int
	for _, s := range report.Results.FileSummaries {
		n += len(s.Errors)
	}
	return n
}
