// Package export provides report downloads.
//
// # Overview
//
// Every directory validation run the server performs is stored as a report.
// The export package turns a stored report into a file an operator can attach
// to a ticket or feed into another tool.
//
// # Supported Formats
//
// JSON Format:
//   - The full report: per-file summaries and every line error
//   - Export metadata (export time, report ID, directory, error count)
//   - Human-readable with pretty-printing
//
// CSV Format:
//   - One row per line error: file, line, reason, detail, raw
//   - Synthetic file-level errors use line 0
//   - A fully valid report exports only the header row
//
// # HTTP API
//
// Export endpoint: GET /v1/reports/{id}/export
// Query parameters:
//   - format: "json" or "csv" (default: json)
//
// Example:
//
//	curl "http://localhost:8080/v1/reports/3f1c.../export?format=csv" -o errors.csv
//
// # Programmatic Usage
//
//	exporter := export.NewExporter(store)
//	result, err := exporter.ExportCSV(ctx, os.Stdout, reportID)
package export
