package storage

import (
	"context"
	"errors"
	"time"

	"github.com/nicktill/promcheck/pkg/validate"
)

// ErrNotFound is returned when a report ID does not exist
var ErrNotFound = errors.New("report not found")

// Storage defines the interface for validation report backends.
// Implementations: memory (testing), badger (production)
type Storage interface {
	// Save stores a report
	Save(ctx context.Context, report Report) error

	// Get retrieves a single report by ID
	Get(ctx context.Context, id string) (*Report, error)

	// List retrieves reports, newest first
	List(ctx context.Context, req ListRequest) ([]Report, error)

	// Delete removes reports created before the given time
	Delete(ctx context.Context, before time.Time) error

	// Close cleanly shuts down the storage
	Close() error

	// Stats returns storage statistics
	Stats(ctx context.Context) (*Stats, error)
}

// Report is one persisted directory validation run
type Report struct {
	ID        string                    `json:"id"`
	CreatedAt time.Time                 `json:"created_at"`
	Results   validate.DirectoryResults `json:"results"`
}

// ListRequest specifies which reports to retrieve
type ListRequest struct {
	// Filter by validated directory (optional)
	Directory string

	// Time range (zero values are open-ended)
	Start time.Time
	End   time.Time

	// Limit number of results (0 = no limit)
	Limit int
}

// Matches reports whether r passes the request filters
func (req ListRequest) Matches(r Report) bool {
	if req.Directory != "" && r.Results.DirectoryPath != req.Directory {
		return false
	}
	if !req.Start.IsZero() && r.CreatedAt.Before(req.Start) {
		return false
	}
	if !req.End.IsZero() && r.CreatedAt.After(req.End) {
		return false
	}
	return true
}

// Stats provides storage health and usage info
type Stats struct {
	// Total reports stored
	TotalReports uint64 `json:"total_reports"`

	// Distinct validated directories
	TotalDirectories uint64 `json:"total_directories"`

	// Reports whose run was invalid
	InvalidReports uint64 `json:"invalid_reports"`

	// Storage size in bytes
	SizeBytes uint64 `json:"size_bytes"`

	OldestReport time.Time `json:"oldest_report"`
	NewestReport time.Time `json:"newest_report"`
}
