package api

import (
	"net/http"

	"github.com/nicktill/promcheck/pkg/canon"
)

// HandleMetrics handles GET /metrics: every valid series found in the data
// directory, deduplicated with last-write-wins, in exposition format.
// Unreadable files are skipped and logged.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	lines, err := canon.Collect(h.fsys, h.fsys, h.dataDir)
	if err != nil {
		h.logger.Warn("some exposition files could not be read", "directory", h.dataDir, "error", err)
	}

	w.Header().Set("Content-Type", canon.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := canon.WriteTo(w, lines); err != nil {
		h.logger.Warn("failed to write exposition", "error", err)
	}
}
