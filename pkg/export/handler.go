package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nicktill/promcheck/pkg/httpx"
	"github.com/nicktill/promcheck/pkg/storage"
)

// Handler serves report downloads
type Handler struct {
	exporter *Exporter
	logger   *slog.Logger
}

// NewHandler creates a new export handler
func NewHandler(store storage.Storage, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		exporter: NewExporter(store),
		logger:   logger,
	}
}

// HandleExport handles GET /v1/reports/{id}/export
// Query params:
//   - format: "json" or "csv" (default: json)
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		httpx.RespondErrorString(w, http.StatusBadRequest, "report id is required")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		httpx.RespondErrorString(w, http.StatusBadRequest, "invalid format, must be 'json' or 'csv'")
		return
	}

	// Resolve the report before any download headers are written
	if _, err := h.exporter.storage.Get(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.RespondError(w, http.StatusNotFound, err)
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	if format == FormatJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/csv")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=promcheck-report-%s.%s", id, format))

	var (
		result *ExportResult
		err    error
	)
	if format == FormatJSON {
		result, err = h.exporter.ExportJSON(r.Context(), w, id)
	} else {
		result, err = h.exporter.ExportCSV(r.Context(), w, id)
	}
	if err != nil {
		h.logger.Error("export failed", "report_id", id, "format", format, "error", err)
		return
	}

	h.logger.Info("report exported", "report_id", id, "format", format, "errors", result.ErrorsWritten)
}
