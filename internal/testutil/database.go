// Package testutil provides shared test helpers for ucsname: migrated
// in-memory databases and term dataset fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/ucsname/internal/model"
	"github.com/Veraticus/ucsname/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when the
// test ends.
//
// Example:
//
//	store := testutil.SetupTestDB(t)
//	registry.Save(ctx, store)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions seeds a test database.
type TestDBOptions struct {
	Settings       map[string]string
	History        []*model.HistoryEntry
	SkipMigrations bool
}

// SetupTestDBWithOptions creates an in-memory database and seeds it with the
// given settings and history.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if opts.SkipMigrations {
		return store
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(opts.Settings) > 0 {
		if err := store.SaveSettings(ctx, opts.Settings); err != nil {
			t.Fatalf("failed to seed settings: %v", err)
		}
	}
	for _, entry := range opts.History {
		if err := store.RecordClassification(ctx, entry); err != nil {
			t.Fatalf("failed to seed history entry %q: %v", entry.Filename, err)
		}
	}
	return store
}
