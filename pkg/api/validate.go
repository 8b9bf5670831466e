package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nicktill/promcheck/pkg/config"
	"github.com/nicktill/promcheck/pkg/exposition"
	"github.com/nicktill/promcheck/pkg/httpx"
	"github.com/nicktill/promcheck/pkg/validate"
)

// LinesRequest is the body of POST /v1/validate/lines
type LinesRequest struct {
	Lines []string `json:"lines"`
}

// LineResult is the outcome for one submitted line.
// Blank lines are reported as skipped, matching file validation.
type LineResult struct {
	LineNumber int                  `json:"line_number"`
	Valid      bool                 `json:"valid"`
	Skipped    bool                 `json:"skipped,omitempty"`
	Metric     string               `json:"metric,omitempty"`
	Labels     map[string]string    `json:"labels,omitempty"`
	Value      string               `json:"value,omitempty"`
	Timestamp  *int64               `json:"timestamp,omitempty"`
	SeriesKey  string               `json:"series_key,omitempty"`
	Reason     exposition.ErrorKind `json:"reason,omitempty"`
	Detail     string               `json:"detail,omitempty"`
	Raw        string               `json:"raw"`
}

// LinesResponse summarizes a lines request
type LinesResponse struct {
	Total   int          `json:"total"`
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`
	Results []LineResult `json:"results"`
}

// DirectoryResponse is returned by GET /v1/validate/directory
type DirectoryResponse struct {
	ReportID string                    `json:"report_id"`
	Results  validate.DirectoryResults `json:"results"`
}

// HandleValidateLines handles POST /v1/validate/lines
func (h *Handler) HandleValidateLines(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	var req LinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondErrorString(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if len(req.Lines) > config.MaxLinesPerRequest {
		httpx.RespondError(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: %d (max %d)", ErrTooManyLines, len(req.Lines), config.MaxLinesPerRequest))
		return
	}

	resp := LinesResponse{
		Total:   len(req.Lines),
		Results: make([]LineResult, 0, len(req.Lines)),
	}
	for i, raw := range req.Lines {
		res := LineResult{LineNumber: i + 1, Raw: raw}

		outcome := exposition.Parse(raw)
		switch {
		case exposition.KindOf(outcome.Err) == exposition.EmptyLine:
			res.Skipped = true
		case outcome.Valid():
			rec := outcome.Record
			res.Valid = true
			res.Metric = rec.MetricName
			res.Labels = rec.Labels.Map()
			res.Value = exposition.FormatValue(rec.Value)
			res.Timestamp = rec.Timestamp
			res.SeriesKey = rec.IdentityKey()
			resp.Valid++
		default:
			res.Reason = exposition.KindOf(outcome.Err)
			res.Detail = parseDetail(outcome.Err)
			resp.Invalid++
		}
		resp.Results = append(resp.Results, res)
	}

	h.metrics.observeLines(resp.Valid, resp.Invalid)
	httpx.RespondJSON(w, http.StatusOK, resp)
}

// HandleValidateFile handles GET /v1/validate/file?path=
func (h *Handler) HandleValidateFile(w http.ResponseWriter, r *http.Request) {
	path, err := resolvePath(h.dataDir, r.URL.Query().Get("path"), false)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}

	summary := h.validator.ValidateFile(path)
	h.metrics.observeFile(summary.IsValid)
	h.metrics.observeLines(summary.ValidLines, summary.InvalidLines)

	httpx.RespondJSON(w, http.StatusOK, summary)
}

// HandleValidateDirectory handles GET /v1/validate/directory?path=
// An empty path validates the data directory itself.
func (h *Handler) HandleValidateDirectory(w http.ResponseWriter, r *http.Request) {
	dir, err := resolvePath(h.dataDir, r.URL.Query().Get("path"), true)
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.ValidateAndRecord(r.Context(), dir)
	if errors.Is(err, ErrStorageFull) {
		httpx.RespondError(w, http.StatusInsufficientStorage, err)
		return
	}
	if err != nil {
		h.logger.Error("failed to record report", "directory", dir, "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	httpx.RespondJSON(w, http.StatusOK, DirectoryResponse{
		ReportID: report.ID,
		Results:  report.Results,
	})
}

// parseDetail returns the detail part of a parse error, if any
func parseDetail(err error) string {
	var pe *exposition.ParseError
	if errors.As(err, &pe) {
		return pe.Detail
	}
	return ""
}
