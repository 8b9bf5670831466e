package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nicktill/promcheck/pkg/api"
	"github.com/nicktill/promcheck/pkg/httpx"
	"github.com/nicktill/promcheck/pkg/server/monitor"
)

// Version is reported by the health endpoint.
var Version = "dev"

var startTime = time.Now()

// StorageUsage represents current report store usage.
type StorageUsage struct {
	UsedBytes int64 `json:"used_bytes"`
	MaxBytes  int64 `json:"max_bytes"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string               `json:"status"`
	Version string               `json:"version"`
	Uptime  string               `json:"uptime"`
	Tasks   []monitor.TaskStatus `json:"tasks"`
}

// handleHealth reports degraded when any background task is unhealthy.
func handleHealth(tasks ...*monitor.TaskMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:  "healthy",
			Version: Version,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Tasks:   make([]monitor.TaskStatus, 0, len(tasks)),
		}
		statusCode := http.StatusOK

		for _, t := range tasks {
			status := t.Status()
			if !status.Healthy {
				response.Status = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
			response.Tasks = append(response.Tasks, status)
		}

		httpx.RespondJSON(w, statusCode, response)
	}
}

// handleStorageUsage returns current report store usage.
func handleStorageUsage(dm *monitor.DiskMonitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usedBytes, err := dm.GetUsage()
		if err != nil {
			httpx.RespondError(w, http.StatusInternalServerError, err)
			return
		}

		httpx.RespondJSON(w, http.StatusOK, StorageUsage{
			UsedBytes: usedBytes,
			MaxBytes:  dm.GetLimit(),
		})
	}
}

// SetupRoutes configures all HTTP routes for the server.
// API routes are registered on the root router, not a /v1 subrouter, so a
// method mismatch on a known path still reaches MethodNotAllowedHandler.
func SetupRoutes(
	router *mux.Router,
	handlers Handlers,
	diskMonitor *monitor.DiskMonitor,
	tasks []*monitor.TaskMonitor,
	cfg Config,
) {
	cors := corsHeaders(cfg.Port)
	router.Use(corsMiddleware(cors))
	router.Use(handlers.Metrics.Middleware)
	router.MethodNotAllowedHandler = preflightHandler(cors)

	limit := api.RateLimit(cfg.RateLimit)
	v1 := func(path string, h http.Handler, method string) {
		router.Handle("/v1"+path, limit(h)).Methods(method)
	}

	// Validation
	v1("/validate/lines", http.HandlerFunc(handlers.API.HandleValidateLines), http.MethodPost)
	v1("/validate/file", http.HandlerFunc(handlers.API.HandleValidateFile), http.MethodGet)
	v1("/validate/directory", http.HandlerFunc(handlers.API.HandleValidateDirectory), http.MethodGet)

	// Reports
	v1("/reports", http.HandlerFunc(handlers.API.HandleListReports), http.MethodGet)
	v1("/reports/{id}", http.HandlerFunc(handlers.API.HandleGetReport), http.MethodGet)
	v1("/reports/{id}/export", http.HandlerFunc(handlers.Export.HandleExport), http.MethodGet)

	// Service state
	v1("/stats", http.HandlerFunc(handlers.API.HandleStats), http.MethodGet)
	v1("/health", handleHealth(tasks...), http.MethodGet)
	v1("/telemetry", handlers.Metrics.Handler(), http.MethodGet)
	if diskMonitor != nil {
		v1("/storage", handleStorageUsage(diskMonitor), http.MethodGet)
	}

	// Live report feed
	v1("/ws", http.HandlerFunc(handlers.Hub.HandleWebSocket), http.MethodGet)

	// Canonicalized exposition of the data directory
	router.HandleFunc("/metrics", handlers.API.HandleMetrics).Methods(http.MethodGet)
}

// corsHeaders returns a function that sets CORS headers for localhost origins only.
func corsHeaders(port string) func(w http.ResponseWriter, r *http.Request) {
	allowedOrigins := map[string]bool{
		"http://localhost:" + port: true,
		"http://127.0.0.1:" + port: true,
		"http://localhost:3000":    true,
		"http://127.0.0.1:3000":    true,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
	}
}

// corsMiddleware applies CORS headers to every matched route.
func corsMiddleware(setHeaders func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setHeaders(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

// preflightHandler answers OPTIONS on known paths with CORS headers.
// mux skips middleware on method mismatches, so preflights land here.
func preflightHandler(setHeaders func(http.ResponseWriter, *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			setHeaders(w, r)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.RespondErrorString(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	})
}
