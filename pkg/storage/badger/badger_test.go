package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nicktill/promcheck/pkg/storage"
	"github.com/nicktill/promcheck/pkg/validate"
)

func report(id, dir string, created time.Time, status validate.Status) storage.Report {
	return storage.Report{
		ID:        id,
		CreatedAt: created,
		Results: validate.DirectoryResults{
			DirectoryPath:    dir,
			FileCount:        1,
			InvalidFileCount: 0,
			OverallStatus:    status,
			FileSummaries: []validate.FileSummary{{
				FilePath:   dir + "/metrics.txt",
				TotalLines: 2,
				ValidLines: 2,
				Errors:     []validate.LineError{},
				IsValid:    true,
			}},
		},
	}
}

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	// Use in-memory mode for tests
	store, err := New(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerStorage_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := store.Save(ctx, report("r1", "/data/a", now, validate.StatusValid)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "r1" || got.Results.DirectoryPath != "/data/a" {
		t.Errorf("Unexpected report: %+v", got)
	}
	if len(got.Results.FileSummaries) != 1 {
		t.Errorf("Expected 1 file summary, got %d", len(got.Results.FileSummaries))
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt mismatch: %v != %v", got.CreatedAt, now)
	}

	_, err = store.Get(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBadgerStorage_SaveRejectsEmptyID(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(context.Background(), report("", "/data/a", time.Now(), validate.StatusValid)); err == nil {
		t.Error("Expected error for empty ID")
	}
}

func TestBadgerStorage_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = store.Save(ctx, report("old", "/data/a", now.Add(-2*time.Hour), validate.StatusValid))
	_ = store.Save(ctx, report("new", "/data/b", now, validate.StatusValid))
	_ = store.Save(ctx, report("mid", "/data/a", now.Add(-1*time.Hour), validate.StatusValid))

	results, err := store.List(ctx, storage.ListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(results))
	}
	if results[0].ID != "new" || results[1].ID != "mid" || results[2].ID != "old" {
		t.Errorf("Unexpected order: %s, %s, %s", results[0].ID, results[1].ID, results[2].ID)
	}
}

func TestBadgerStorage_ListByDirectory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, dir := range []string{"/data/a", "/data/b", "/data/a", "/data/c"} {
		id := string(rune('a' + i))
		_ = store.Save(ctx, report(id, dir, now.Add(time.Duration(i)*time.Minute), validate.StatusValid))
	}

	results, err := store.List(ctx, storage.ListRequest{Directory: "/data/a"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 reports for /data/a, got %d", len(results))
	}
	for _, r := range results {
		if r.Results.DirectoryPath != "/data/a" {
			t.Errorf("Unexpected directory %s", r.Results.DirectoryPath)
		}
	}

	results, _ = store.List(ctx, storage.ListRequest{Limit: 2})
	if len(results) != 2 {
		t.Errorf("Expected limit of 2, got %d", len(results))
	}
}

func TestBadgerStorage_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = store.Save(ctx, report("old", "/data/a", now.Add(-48*time.Hour), validate.StatusValid))
	_ = store.Save(ctx, report("new", "/data/a", now, validate.StatusValid))

	if err := store.Delete(ctx, now.Add(-24*time.Hour)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	results, _ := store.List(ctx, storage.ListRequest{})
	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("Expected only the new report to remain, got %d", len(results))
	}

	// Index entry is gone too
	if _, err := store.Get(ctx, "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted report, got %v", err)
	}
}

func TestBadgerStorage_DeleteLargeBacklog(t *testing.T) {
	// A small memtable keeps the per-transaction limit well below the backlog
	store, err := New(Config{InMemory: true, MaxMemoryMB: 8})
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	const n = 3000
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("old-%04d", i)
		if err := store.Save(ctx, report(id, "/data/a", old.Add(time.Duration(i)*time.Millisecond), validate.StatusValid)); err != nil {
			t.Fatalf("Save %s failed: %v", id, err)
		}
	}
	if err := store.Save(ctx, report("new", "/data/a", time.Now(), validate.StatusValid)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	results, err := store.List(ctx, storage.ListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("Expected only the new report to remain, got %d", len(results))
	}
	if _, err := store.Get(ctx, "old-1234"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for deleted report, got %v", err)
	}
}

func TestBadgerStorage_SmallMemoryOnDisk(t *testing.T) {
	ctx := context.Background()

	for _, mb := range []int64{8, 16, 48} {
		t.Run(fmt.Sprintf("%dMB", mb), func(t *testing.T) {
			store, err := New(Config{Path: t.TempDir(), MaxMemoryMB: mb})
			if err != nil {
				t.Fatalf("Failed to open storage with MaxMemoryMB=%d: %v", mb, err)
			}
			defer store.Close()

			if err := store.Save(ctx, report("r1", "/data/a", time.Now(), validate.StatusValid)); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if _, err := store.Get(ctx, "r1"); err != nil {
				t.Fatalf("Get failed: %v", err)
			}
		})
	}
}

func TestBadgerStorage_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()
	now := time.Now()

	// Write to first instance
	{
		store, err := New(Config{Path: tmpDir})
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}
		if err := store.Save(ctx, report("persisted", "/data/a", now, validate.StatusInvalid)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		store.Close()
	}

	// Reopen and read back
	{
		store, err := New(Config{Path: tmpDir})
		if err != nil {
			t.Fatalf("Failed to reopen storage: %v", err)
		}
		defer store.Close()

		got, err := store.Get(ctx, "persisted")
		if err != nil {
			t.Fatalf("Get after reopen failed: %v", err)
		}
		if got.Results.OverallStatus != validate.StatusInvalid {
			t.Errorf("Expected invalid status, got %s", got.Results.OverallStatus)
		}
	}
}

func TestBadgerStorage_Stats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = store.Save(ctx, report("r1", "/data/a", now.Add(-time.Hour), validate.StatusValid))
	_ = store.Save(ctx, report("r2", "/data/a", now, validate.StatusInvalid))
	_ = store.Save(ctx, report("r3", "/data/b", now, validate.StatusValid))

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalReports != 3 {
		t.Errorf("Expected 3 reports, got %d", stats.TotalReports)
	}
	if stats.TotalDirectories != 2 {
		t.Errorf("Expected 2 directories, got %d", stats.TotalDirectories)
	}
	if stats.InvalidReports != 1 {
		t.Errorf("Expected 1 invalid report, got %d", stats.InvalidReports)
	}
	if stats.OldestReport.UnixNano() != now.Add(-time.Hour).UnixNano() {
		t.Errorf("Unexpected oldest report: %v", stats.OldestReport)
	}
}

func TestBadgerStorage_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Save(ctx, report("r1", "/data/a", time.Now(), validate.StatusValid)); err == nil {
		t.Error("Expected Save to fail on cancelled context")
	}
	if _, err := store.List(ctx, storage.ListRequest{}); err == nil {
		t.Error("Expected List to fail on cancelled context")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	created := time.Unix(1700000000, 123456789)
	key := makeKey("/data/a", created, "abc-123")

	gotTime, gotID := parseKey(key)
	if !gotTime.Equal(created) {
		t.Errorf("Time mismatch: %v != %v", gotTime, created)
	}
	if gotID != "abc-123" {
		t.Errorf("ID mismatch: %s", gotID)
	}

	prefix := dirPrefix("/data/a")
	if string(key[:len(prefix)]) != string(prefix) {
		t.Error("Key does not start with directory prefix")
	}
}
