package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ecocore/internal/infra/persistence/memory"
	"ecocore/internal/infra/persistence/postgres"
	"ecocore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a snapshot persistence backend.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverPostgres StorageDriver = "postgres"
)

// OpenSnapshotStore selects a snapshot store from the environment.
//
//	ECOCORE_STORAGE_DRIVER  memory | sqlite | postgres (default sqlite)
//	ECOCORE_SQLITE_PATH     sqlite database file
//	ECOCORE_POSTGRES_DSN    postgres connection string
func OpenSnapshotStore(ctx context.Context) (SnapshotStore, StorageDriver, error) {
	driver := StorageDriver(strings.ToLower(strings.TrimSpace(os.Getenv("ECOCORE_STORAGE_DRIVER"))))
	if driver == "" {
		driver = StorageDriverSQLite
	}
	switch driver {
	case StorageDriverMemory:
		return memory.NewStore(), driver, nil
	case StorageDriverSQLite:
		store, err := sqlite.NewStore(os.Getenv("ECOCORE_SQLITE_PATH"))
		if err != nil {
			return nil, driver, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, driver, nil
	case StorageDriverPostgres:
		store, err := postgres.NewStore(ctx, os.Getenv("ECOCORE_POSTGRES_DSN"))
		if err != nil {
			return nil, driver, fmt.Errorf("open postgres store: %w", err)
		}
		return store, driver, nil
	default:
		return nil, driver, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
