package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"ecocore/internal/blob/core"
)

// mockRoundTripper fakes the S3 subset the adapter uses so tests run
// without network access.
type mockRoundTripper struct{ state map[string]stored }

type stored struct {
	body        []byte
	contentType string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range m.state {
			if prefix == "" || strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("<?xml version=\"1.0\"?><ListBucketResult><IsTruncated>false</IsTruncated>")
		for _, k := range keys {
			st := m.state[k]
			b.WriteString("<Contents><Key>")
			b.WriteString(k)
			b.WriteString("</Key><Size>")
			b.WriteString(fmt.Sprintf("%d", len(st.body)))
			b.WriteString("</Size><LastModified>2026-01-01T00:00:00Z</LastModified></Contents>")
		}
		b.WriteString("</ListBucketResult>")
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(b.String())), Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	switch req.Method {
	case http.MethodHead:
		if st, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(st.body))},
				"Content-Type":   {st.contentType},
				"Etag":           {"\"etag123\""},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	case http.MethodGet:
		if st, ok := m.state[key]; ok {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(st.body)), Header: http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(st.body))},
				"Content-Type":   {st.contentType},
				"Etag":           {"\"etag123\""},
				"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
			}}, nil
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		// The SDK streams PUT bodies aws-chunked; store the decoded payload.
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		m.state[key] = stored{body: body, contentType: req.Header.Get("Content-Type")}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"Etag": {"\"etag123\""}}}, nil
	case http.MethodDelete:
		delete(m.state, key)
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(bytes.NewReader(nil))}, nil
	}
	return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil))}, nil
}

// decodeChunked unwraps a single-chunk aws-chunked body. Returns false when
// the input is not in that framing so plain bodies pass through untouched.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	n, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || n <= 0 {
		return nil, false
	}
	if int64(len(parts[1])) != n {
		return nil, false
	}
	if parts[2] != "0" {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newMockStore(t *testing.T) *Store {
	t.Helper()
	rt := &mockRoundTripper{state: make(map[string]stored)}
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	client := awsS3.NewFromConfig(cfg, func(o *awsS3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
	return &Store{client: client, presign: awsS3.NewPresignClient(client), bucket: "mock-bucket"}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newMockStore(t)

	info, err := s.Put(ctx, "generations/000001.txt", strings.NewReader("report"), core.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if info.Key != "generations/000001.txt" || info.Size != int64(len("report")) {
		t.Fatalf("Put() info = %+v", info)
	}

	got, rc, err := s.Get(ctx, "generations/000001.txt")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, _ := io.ReadAll(rc)
	if string(body) != "report" {
		t.Fatalf("body = %q", body)
	}
	if got.ContentType != "text/plain" || got.ETag != "etag123" {
		t.Fatalf("Get() info = %+v", got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	s := newMockStore(t)
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{}); err == nil {
		t.Fatal("Put() overwrote an existing key")
	}
}

func TestListByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newMockStore(t)
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
		t.Fatalf("List() = %+v", infos)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newMockStore(t)
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Head(ctx, "k"); err == nil {
		t.Fatal("Head() found a deleted blob")
	}
}

func TestPresignURL(t *testing.T) {
	ctx := context.Background()
	s := newMockStore(t)
	url, err := s.PresignURL(ctx, "k", core.SignedURLOptions{Expiry: time.Minute})
	if err != nil {
		t.Fatalf("PresignURL() error = %v", err)
	}
	if !strings.Contains(url, "mock-bucket") || !strings.Contains(url, "k") {
		t.Fatalf("PresignURL() = %q", url)
	}
	if _, err := s.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatal("PresignURL() accepted a PUT method")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("ECOCORE_BLOB_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatal("OpenFromEnv() succeeded without a bucket")
	}
}

func TestDecodeChunked(t *testing.T) {
	if _, ok := decodeChunked([]byte("not-chunked")); ok {
		t.Fatal("decoded a plain body")
	}
	if _, ok := decodeChunked([]byte("5\r\nabc\r\n0\r\n")); ok {
		t.Fatal("decoded a chunk with a mismatched size")
	}
	dec, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\n"))
	if !ok || string(dec) != "hello" {
		t.Fatalf("decodeChunked() = %q, %v", dec, ok)
	}
}
