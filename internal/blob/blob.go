// Package blob re-exports the blob abstractions and selects a backend.
// Other packages depend on blob.Store; only this package imports the
// infra-backed implementations.
package blob

import (
	"context"
	"fmt"
	"os"

	"ecocore/internal/blob/core"
	"ecocore/internal/infra/blob/fs"
	"ecocore/internal/infra/blob/memory"
	"ecocore/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// ErrUnsupported indicates an operation isn't supported by a driver.
var ErrUnsupported = core.ErrUnsupported

// NewMemory returns an in-memory store.
func NewMemory() Store { return memory.New() }

// NewFilesystem returns a filesystem store rooted at root.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// Open selects a blob.Store implementation using environment variables.
//
//	ECOCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	ECOCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in the s3 package)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ECOCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return fs.New(os.Getenv("ECOCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return s3.OpenFromEnv(ctx)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
