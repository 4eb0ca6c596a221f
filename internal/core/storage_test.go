package core

import (
	"context"
	"path/filepath"
	"testing"

	"ecocore/internal/infra/persistence/memory"
	"ecocore/internal/infra/persistence/sqlite"
)

func TestOpenSnapshotStoreSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv("ECOCORE_STORAGE_DRIVER", "memory")
	store, driver, err := OpenSnapshotStore(ctx)
	if err != nil {
		t.Fatalf("OpenSnapshotStore() error = %v", err)
	}
	if driver != StorageDriverMemory {
		t.Fatalf("driver = %q, want memory", driver)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("store = %T, want *memory.Store", store)
	}

	t.Setenv("ECOCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("ECOCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "snapshots.db"))
	store, driver, err = OpenSnapshotStore(ctx)
	if err != nil {
		t.Fatalf("OpenSnapshotStore() error = %v", err)
	}
	if driver != StorageDriverSQLite {
		t.Fatalf("driver = %q, want sqlite", driver)
	}
	sq, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("store = %T, want *sqlite.Store", store)
	}
	_ = sq.Close()

	t.Setenv("ECOCORE_STORAGE_DRIVER", "bogus")
	if _, _, err := OpenSnapshotStore(ctx); err == nil {
		t.Fatal("OpenSnapshotStore() accepted an unknown driver")
	}
}

func TestOpenSnapshotStoreDriverNormalization(t *testing.T) {
	ctx := context.Background()
	t.Setenv("ECOCORE_STORAGE_DRIVER", "  MEMORY ")
	_, driver, err := OpenSnapshotStore(ctx)
	if err != nil {
		t.Fatalf("OpenSnapshotStore() error = %v", err)
	}
	if driver != StorageDriverMemory {
		t.Fatalf("driver = %q, want memory after normalization", driver)
	}
}
