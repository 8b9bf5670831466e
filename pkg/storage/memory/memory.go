package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nicktill/promcheck/pkg/storage"
)

// Storage stores reports in memory. Data is lost on restart.
// Useful for testing and the CLI.
type Storage struct {
	reports []storage.Report
	mu      sync.RWMutex
}

// New creates an in-memory storage backend
func New() *Storage {
	return &Storage{
		reports: make([]storage.Report, 0, 64),
	}
}

// Save stores a report in memory
func (s *Storage) Save(ctx context.Context, report storage.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)
	return nil
}

// Get returns the report with the given ID
func (s *Storage) Get(ctx context.Context, id string) (*storage.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			r := s.reports[i]
			return &r, nil
		}
	}
	return nil, storage.ErrNotFound
}

// List retrieves reports matching the request, newest first
func (s *Storage) List(ctx context.Context, req storage.ListRequest) ([]storage.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []storage.Report
	for _, r := range s.reports {
		if req.Matches(r) {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	// Limit check
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// Delete removes reports created before the given time
func (s *Storage) Delete(ctx context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]storage.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if !r.CreatedAt.Before(before) {
			filtered = append(filtered, r)
		}
	}

	s.reports = filtered
	return nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Stats returns storage statistics
func (s *Storage) Stats(ctx context.Context) (*storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &storage.Stats{
		TotalReports: uint64(len(s.reports)),
	}

	if len(s.reports) == 0 {
		return stats, nil
	}

	// Count directories and find min/max creation times in single pass
	dirs := make(map[string]bool)
	oldest := s.reports[0].CreatedAt
	newest := s.reports[0].CreatedAt

	for _, r := range s.reports {
		dirs[r.Results.DirectoryPath] = true
		if !r.Results.Valid() {
			stats.InvalidReports++
		}
		if r.CreatedAt.Before(oldest) {
			oldest = r.CreatedAt
		}
		if r.CreatedAt.After(newest) {
			newest = r.CreatedAt
		}
	}

	stats.TotalDirectories = uint64(len(dirs))
	stats.OldestReport = oldest
	stats.NewestReport = newest

	// Rough size estimate (each file summary ~200 bytes)
	for _, r := range s.reports {
		stats.SizeBytes += uint64(200 * (1 + len(r.Results.FileSummaries)))
	}

	return stats, nil
}
