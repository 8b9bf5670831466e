/*
Package storage persists directory validation reports.

# Storage Interface

Every directory validation run served by the API is saved as a Report so it
can be listed, fetched again and exported later. Backends implement:

	type Storage interface {
	    Save(ctx context.Context, report Report) error
	    Get(ctx context.Context, id string) (*Report, error)
	    List(ctx context.Context, req ListRequest) ([]Report, error)
	    Delete(ctx context.Context, before time.Time) error
	    Stats(ctx context.Context) (*Stats, error)
	    Close() error
	}

Two backends exist:
  - memory: in-process slice, for tests and one-shot runs
  - badger: BadgerDB (LSM tree + Snappy compression) for the server

# Usage Example

	store, err := badger.New(badger.Config{Path: "./data/promcheck"})
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	results := validator.ValidateDirectory("./data/metrics")
	err = store.Save(ctx, storage.Report{
	    ID:        uuid.NewString(),
	    CreatedAt: time.Now(),
	    Results:   results,
	})

	// Last 10 runs for one directory
	reports, err := store.List(ctx, storage.ListRequest{
	    Directory: "./data/metrics",
	    Limit:     10,
	})

# Retention

Reports accumulate on every run. The server deletes reports older than the
configured retention on a schedule:

	store.Delete(ctx, time.Now().Add(-7*24*time.Hour))
*/
package storage
