package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nicktill/promcheck/pkg/config"
	"github.com/nicktill/promcheck/pkg/httpx"
	"github.com/nicktill/promcheck/pkg/storage"
	"github.com/nicktill/promcheck/pkg/validate"
)

// ReportSummary is the list view of a stored report
type ReportSummary struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	Directory        string          `json:"directory"`
	Status           validate.Status `json:"status"`
	FileCount        int             `json:"file_count"`
	InvalidFileCount int             `json:"invalid_file_count"`
	InvalidLines     int             `json:"invalid_lines"`
}

// ReportsResponse is returned by GET /v1/reports
type ReportsResponse struct {
	Reports []ReportSummary `json:"reports"`
	Count   int             `json:"count"`
}

func summarize(r storage.Report) ReportSummary {
	s := ReportSummary{
		ID:               r.ID,
		CreatedAt:        r.CreatedAt,
		Directory:        r.Results.DirectoryPath,
		Status:           r.Results.OverallStatus,
		FileCount:        r.Results.FileCount,
		InvalidFileCount: r.Results.InvalidFileCount,
	}
	for _, f := range r.Results.FileSummaries {
		s.InvalidLines += f.InvalidLines
	}
	return s
}

// HandleListReports handles GET /v1/reports?directory=&limit=
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := config.ReportsDefaultLimit
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpx.RespondErrorString(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, config.ReportsMaxLimit)
	}

	req := storage.ListRequest{Limit: limit}
	if v := query.Get("directory"); v != "" {
		dir, err := resolvePath(h.dataDir, v, true)
		if err != nil {
			httpx.RespondError(w, http.StatusBadRequest, err)
			return
		}
		req.Directory = dir
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.StoreTimeout)
	defer cancel()

	reports, err := h.store.List(ctx, req)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}

	resp := ReportsResponse{Reports: make([]ReportSummary, 0, len(reports))}
	for _, rep := range reports {
		resp.Reports = append(resp.Reports, summarize(rep))
	}
	resp.Count = len(resp.Reports)
	httpx.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetReport handles GET /v1/reports/{id}
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.StoreTimeout)
	defer cancel()

	report, err := h.store.Get(ctx, mux.Vars(r)["id"])
	if errors.Is(err, storage.ErrNotFound) {
		httpx.RespondError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, report)
}

// HandleStats handles GET /v1/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), config.StoreTimeout)
	defer cancel()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, stats)
}
