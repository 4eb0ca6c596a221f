package fs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ecocore/internal/blob/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	info, err := s.Put(ctx, "generations/000001-run.txt", strings.NewReader("report body"), core.PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"generation": "1"},
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Size != int64(len("report body")) || info.ETag == "" {
		t.Fatalf("Put() info = %+v", info)
	}

	got, rc, err := s.Get(ctx, "generations/000001-run.txt")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(body) != "report body" {
		t.Fatalf("body = %q", body)
	}
	if got.ContentType != "text/plain" || got.Metadata["generation"] != "1" {
		t.Fatalf("Get() info = %+v", got)
	}
	if got.ETag != info.ETag {
		t.Fatalf("ETag changed between Put and Get: %q vs %q", info.ETag, got.ETag)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Put(ctx, "k.txt", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, "k.txt", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatal("Put() overwrote an existing key")
	}
}

func TestKeySanitization(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, key := range []string{"", "  ", "../escape", "a/../../b", "/absolute"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("Put(%q) accepted an invalid key", key)
		}
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.Put(ctx, "dir/k.txt", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	existed, err := s.Delete(ctx, "dir/k.txt")
	if err != nil || !existed {
		t.Fatalf("Delete() = %v, %v", existed, err)
	}
	existed, err = s.Delete(ctx, "dir/k.txt")
	if err != nil || existed {
		t.Fatalf("second Delete() = %v, %v, want false, nil", existed, err)
	}
}

func TestListSkipsSidecarsAndSorts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, key := range []string{"reports/b.txt", "reports/a.txt", "other/x.txt"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{ContentType: "text/plain"}); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}
	infos, err := s.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "reports/a.txt" || infos[1].Key != "reports/b.txt" {
		t.Fatalf("List() = %+v, want the two sorted report keys", infos)
	}
	for _, info := range infos {
		if strings.HasSuffix(info.Key, ".meta") {
			t.Fatalf("List() leaked a sidecar: %+v", info)
		}
	}
}

func TestPresignUnsupported(t *testing.T) {
	s := newTestStore(t)
	_, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{})
	if !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("PresignURL() error = %v, want ErrUnsupported", err)
	}
}
