package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/nicktill/promcheck/pkg/storage"
)

// Key prefixes
const (
	prefixReport byte = 0x01 // [prefix][dir hash][created nanos][id] -> report JSON
	prefixIndex  byte = 0x02 // [prefix][id] -> report key
)

// reportKeyHeader is prefix + dir hash + timestamp
const reportKeyHeader = 1 + 8 + 8

// Storage implements storage.Storage using BadgerDB (LSM tree)
type Storage struct {
	db *badger.DB
}

// Config holds BadgerDB configuration
type Config struct {
	// Path to store database files
	Path string

	// InMemory mode (for testing)
	InMemory bool

	// MaxMemoryMB limits BadgerDB memory usage in MB (0 = laptop-friendly defaults)
	MaxMemoryMB int64
}

// New creates a BadgerDB storage backend
func New(cfg Config) (*Storage, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	// Reports are small and infrequent; keep the footprint well under the defaults
	memTableSize := int64(16 * 1024 * 1024)
	if cfg.MaxMemoryMB > 0 {
		memTableSize = cfg.MaxMemoryMB * 1024 * 1024 / 3 // ~33% for memtable
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(memTableSize).
		WithNumMemtables(2).
		WithBlockCacheSize(memTableSize / 2).
		WithIndexCacheSize(memTableSize / 4).
		WithMaxLevels(4).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024). // small memtables cap the batch size below badger's 1MB default
		WithNumCompactors(2).
		WithValueLogFileSize(64 << 20).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Storage{db: db}, nil
}

// Save stores a report and its ID index entry in one transaction
func (s *Storage) Save(ctx context.Context, report storage.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report.ID == "" {
		return errors.New("report ID cannot be empty")
	}

	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	key := makeKey(report.Results.DirectoryPath, report.CreatedAt, report.ID)

	return s.run(ctx, "save", func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Set(key, value); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			return txn.Set(indexKey(report.ID), key)
		})
	})
}

// Get retrieves a report by ID through the index
func (s *Storage) Get(ctx context.Context, id string) (*storage.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var report storage.Report
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(id))
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return &report, nil
}

// List retrieves reports matching the request, newest first.
// A directory filter narrows the scan to that directory's key prefix.
func (s *Storage) List(ctx context.Context, req storage.ListRequest) ([]storage.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte{prefixReport}
	if req.Directory != "" {
		prefix = dirPrefix(req.Directory)
	}

	var results []storage.Report
	err := s.run(ctx, "list", func() error {
		return s.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchSize = 100

			it := txn.NewIterator(opts)
			defer it.Close()

			var iterCount int
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				iterCount++

				// Check for cancellation every 1000 iterations
				if iterCount%1000 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}

				var r storage.Report
				if err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &r)
				}); err != nil {
					return fmt.Errorf("failed to decode report: %w", err)
				}

				if req.Matches(r) {
					results = append(results, r)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	return results, nil
}

// Delete removes reports created before the cutoff, along with their index entries.
// Deletes go through a WriteBatch, which splits a large backlog across
// transactions instead of failing with ErrTxnTooBig.
func (s *Storage) Delete(ctx context.Context, before time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.run(ctx, "delete", func() error {
		var keysToDelete [][]byte
		err := s.db.View(func(txn *badger.Txn) error {
			prefix := []byte{prefixReport}
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false // timestamp and ID live in the key

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				created, id := parseKey(it.Item().Key())
				if !created.Before(before) {
					continue
				}
				keysToDelete = append(keysToDelete, it.Item().KeyCopy(nil), indexKey(id))
			}
			return nil
		})
		if err != nil {
			return err
		}
		if len(keysToDelete) == 0 {
			return nil
		}

		wb := s.db.NewWriteBatch()
		for _, key := range keysToDelete {
			if err := wb.Delete(key); err != nil {
				wb.Cancel()
				return fmt.Errorf("failed to delete report key: %w", err)
			}
		}
		return wb.Flush()
	})
}

// Close shuts down BadgerDB cleanly
func (s *Storage) Close() error {
	return s.db.Close()
}

// RunGC runs BadgerDB's value log garbage collection.
// discardRatio: rewrite a file if this fraction of it can be discarded (0.5 = 50%).
// badger.ErrNoRewrite means nothing needed collecting.
func (s *Storage) RunGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// Stats returns storage statistics
func (s *Storage) Stats(ctx context.Context) (*storage.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &storage.Stats{}
	err := s.run(ctx, "stats", func() error {
		return s.db.View(func(txn *badger.Txn) error {
			prefix := []byte{prefixReport}
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			defer it.Close()

			dirs := make(map[uint64]bool)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				key := item.Key()
				stats.TotalReports++
				dirs[binary.BigEndian.Uint64(key[1:9])] = true

				created, _ := parseKey(key)
				if stats.OldestReport.IsZero() || created.Before(stats.OldestReport) {
					stats.OldestReport = created
				}
				if stats.NewestReport.IsZero() || created.After(stats.NewestReport) {
					stats.NewestReport = created
				}

				var r storage.Report
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &r)
				}); err != nil {
					return fmt.Errorf("failed to decode report: %w", err)
				}
				if !r.Results.Valid() {
					stats.InvalidReports++
				}
			}
			stats.TotalDirectories = uint64(len(dirs))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	lsmSize, vlogSize := s.db.Size()
	stats.SizeBytes = uint64(lsmSize + vlogSize)
	return stats, nil
}

// run executes fn in a goroutine so the caller can stop waiting when ctx is
// cancelled. The badger operation itself runs to completion.
func (s *Storage) run(ctx context.Context, op string, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s operation cancelled: %w", op, ctx.Err())
	}
}

// makeKey creates a sortable key: prefix + directory hash + timestamp + id.
// Reports of one directory are contiguous and ordered by creation time.
func makeKey(dir string, created time.Time, id string) []byte {
	key := make([]byte, reportKeyHeader, reportKeyHeader+len(id))
	key[0] = prefixReport
	binary.BigEndian.PutUint64(key[1:9], xxhash.Sum64String(dir))
	binary.BigEndian.PutUint64(key[9:17], uint64(created.UnixNano()))
	return append(key, id...)
}

// parseKey extracts creation time and report ID from a report key
func parseKey(key []byte) (time.Time, string) {
	if len(key) < reportKeyHeader {
		return time.Time{}, ""
	}
	nanos := binary.BigEndian.Uint64(key[9:17])
	return time.Unix(0, int64(nanos)), string(key[reportKeyHeader:])
}

func dirPrefix(dir string) []byte {
	prefix := make([]byte, 9)
	prefix[0] = prefixReport
	binary.BigEndian.PutUint64(prefix[1:9], xxhash.Sum64String(dir))
	return prefix
}

func indexKey(id string) []byte {
	return append([]byte{prefixIndex}, id...)
}
