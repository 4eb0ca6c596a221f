package blob

import (
	"context"
	"strings"
	"testing"
)

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	ctx := context.Background()

	t.Setenv("ECOCORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("Driver() = %q, want memory", store.Driver())
	}

	t.Setenv("ECOCORE_BLOB_DRIVER", "fs")
	t.Setenv("ECOCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("Driver() = %q, want fs", store.Driver())
	}

	t.Setenv("ECOCORE_BLOB_DRIVER", "bogus")
	if _, err := Open(ctx); err == nil {
		t.Fatal("Open() accepted an unknown driver")
	}
}

func TestOpenRoundTripThroughFilesystem(t *testing.T) {
	ctx := context.Background()
	t.Setenv("ECOCORE_BLOB_DRIVER", "fs")
	t.Setenv("ECOCORE_BLOB_FS_ROOT", t.TempDir())

	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Put(ctx, "reports/summary.txt", strings.NewReader("body"), PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	info, err := store.Head(ctx, "reports/summary.txt")
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if info.Size != 4 {
		t.Fatalf("Size = %d, want 4", info.Size)
	}
}
