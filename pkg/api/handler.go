// Package api serves validation over HTTP: ad-hoc lines, files and
// directories under the data directory, stored reports, a live report feed
// and the canonicalized exposition of the data directory on /metrics.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nicktill/promcheck/pkg/source"
	"github.com/nicktill/promcheck/pkg/storage"
	"github.com/nicktill/promcheck/pkg/validate"
)

// CapacityChecker reports whether the report store may grow
type CapacityChecker interface {
	Exceeded() (bool, error)
}

// Handler serves the validation and report endpoints
type Handler struct {
	store     storage.Storage
	validator *validate.Validator
	fsys      *source.FS
	dataDir   string

	hub      *ReportHub
	capacity CapacityChecker
	metrics  *Metrics
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewHandler creates a handler validating files under dataDir
func NewHandler(store storage.Storage, validator *validate.Validator, fsys *source.FS, dataDir string) *Handler {
	return &Handler{
		store:     store,
		validator: validator,
		fsys:      fsys,
		dataDir:   dataDir,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// SetHub enables broadcasting of new reports
func (h *Handler) SetHub(hub *ReportHub) {
	h.hub = hub
}

// SetCapacityChecker refuses new reports once the store is over its limit
func (h *Handler) SetCapacityChecker(c CapacityChecker) {
	h.capacity = c
}

// SetMetrics enables self-instrumentation
func (h *Handler) SetMetrics(m *Metrics) {
	h.metrics = m
}

// SetLogger replaces the default logger
func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// DataDir returns the root directory served by this handler
func (h *Handler) DataDir() string {
	return h.dataDir
}

// ReportEvent is the message pushed to WebSocket subscribers
type ReportEvent struct {
	Type   string        `json:"type"`
	Report ReportSummary `json:"report"`
}

// ValidateAndRecord validates dir, persists the result as a report and
// broadcasts it. The report is returned even when the store is full or
// saving fails, together with the error.
func (h *Handler) ValidateAndRecord(ctx context.Context, dir string) (storage.Report, error) {
	start := h.now()
	results := h.validator.ValidateDirectory(dir)

	for _, s := range results.FileSummaries {
		h.metrics.observeFile(s.IsValid)
		h.metrics.observeLines(s.ValidLines, s.InvalidLines)
	}

	report := storage.Report{
		ID:        h.newID(),
		CreatedAt: start,
		Results:   results,
	}

	if h.capacity != nil {
		exceeded, err := h.capacity.Exceeded()
		if err != nil {
			h.logger.Warn("failed to check storage usage", "error", err)
		} else if exceeded {
			return report, ErrStorageFull
		}
	}

	if err := h.store.Save(ctx, report); err != nil {
		return report, fmt.Errorf("failed to save report: %w", err)
	}
	h.metrics.observeReport()

	h.logger.Info("directory validated",
		"directory", results.DirectoryPath,
		"status", results.OverallStatus,
		"files", results.FileCount,
		"invalid_files", results.InvalidFileCount,
		"report_id", report.ID,
		"took", time.Since(start).Round(time.Millisecond),
	)

	if h.hub != nil {
		if err := h.hub.Broadcast(ReportEvent{Type: "report", Report: summarize(report)}); err != nil {
			h.logger.Warn("failed to broadcast report", "error", err)
		}
	}
	return report, nil
}
