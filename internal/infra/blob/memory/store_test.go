package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ecocore/internal/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	info, err := s.Put(ctx, "reports/gen-1.txt", strings.NewReader("summary"), core.PutOptions{
		ContentType: "text/plain",
		Metadata:    map[string]string{"generation": "1"},
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Key != "reports/gen-1.txt" || info.Size != int64(len("summary")) {
		t.Fatalf("Put() info = %+v", info)
	}

	got, rc, err := s.Get(ctx, "reports/gen-1.txt")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(body) != "summary" {
		t.Fatalf("body = %q, want summary", body)
	}
	if got.ContentType != "text/plain" || got.Metadata["generation"] != "1" {
		t.Fatalf("Get() info = %+v", got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatal("Put() overwrote an existing key")
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	existed, err := s.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("Delete() = %v, %v", existed, err)
	}
	existed, err = s.Delete(ctx, "k")
	if err != nil || existed {
		t.Fatalf("second Delete() = %v, %v, want false, nil", existed, err)
	}
	if _, err := s.Head(ctx, "k"); err == nil {
		t.Fatal("Head() found a deleted blob")
	}
}

func TestListByPrefixSorted(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, key := range []string{"reports/b", "reports/a", "other/x"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}
	infos, err := s.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "reports/a" || infos[1].Key != "reports/b" {
		t.Fatalf("List() = %+v, want sorted reports/ keys", infos)
	}
}

func TestPresignUnsupported(t *testing.T) {
	s := New()
	_, err := s.PresignURL(context.Background(), "k", core.SignedURLOptions{})
	if !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("PresignURL() error = %v, want ErrUnsupported", err)
	}
}
