package monitor

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// DiskMonitor tracks the on-disk size of a directory against a limit.
// Usage is cached so request paths can check it cheaply.
type DiskMonitor struct {
	dir           string
	maxBytes      int64
	cachedUsage   int64
	lastCheck     time.Time
	cacheDuration time.Duration
	mu            sync.Mutex
}

// NewDiskMonitor creates a monitor for dir. A non-positive maxBytes disables the limit.
func NewDiskMonitor(dir string, maxBytes int64) *DiskMonitor {
	return &DiskMonitor{
		dir:           dir,
		maxBytes:      maxBytes,
		cacheDuration: 10 * time.Second,
	}
}

// GetUsage returns current usage in bytes, refreshed at most every 10 seconds
func (dm *DiskMonitor) GetUsage() (int64, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if !dm.lastCheck.IsZero() && time.Since(dm.lastCheck) < dm.cacheDuration {
		return dm.cachedUsage, nil
	}

	usage, err := dirSize(dm.dir)
	if err != nil {
		return 0, err
	}

	dm.cachedUsage = usage
	dm.lastCheck = time.Now()
	return usage, nil
}

// GetLimit returns the configured limit in bytes
func (dm *DiskMonitor) GetLimit() int64 {
	return dm.maxBytes
}

// Exceeded reports whether usage has reached the limit
func (dm *DiskMonitor) Exceeded() (bool, error) {
	if dm.maxBytes <= 0 {
		return false, nil
	}
	usage, err := dm.GetUsage()
	if err != nil {
		return false, err
	}
	return usage >= dm.maxBytes, nil
}

// dirSize sums the allocated size of every file below path
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += allocatedSize(p, info)
		return nil
	})
	return size, err
}
