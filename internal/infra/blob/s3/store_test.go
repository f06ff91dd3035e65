package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"testing"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"

	"restaurantcore/internal/blob/core"
)

func TestStoreMockedFlow(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	info, err := store.Put(ctx, "docs/cafe_data.json", bytes.NewReader([]byte(`{"a":1}`)), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "docs/cafe_data.json" || info.ContentType != "application/json" || info.Size != 7 {
		t.Fatalf("unexpected info %#v", info)
	}
	if _, err := store.Put(ctx, "docs/cafe_data.json", bytes.NewReader([]byte("ignored")), core.PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put error")
	}
	_, rc, err := store.Get(ctx, "docs/cafe_data.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != `{"a":1}` {
		t.Fatalf("get mismatch: %q", data)
	}
	if _, err := store.Put(ctx, "other.json", bytes.NewReader([]byte("{}")), core.PutOptions{}); err != nil {
		t.Fatalf("put other: %v", err)
	}
	list, err := store.List(ctx, "docs/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if url, err := store.PresignURL(ctx, "docs/cafe_data.json", core.SignedURLOptions{Expiry: 30 * time.Second}); err != nil || url == "" {
		t.Fatalf("presign: %v %s", err, url)
	}
	if ok, err := store.Delete(ctx, "docs/cafe_data.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "docs/cafe_data.json"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestStoreMissingKeyIsNotExist(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if _, err := store.Head(ctx, "nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("head: %v", err)
	}
	if _, _, err := store.Get(ctx, "nope"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("get: %v", err)
	}
	if _, err := store.PresignURL(ctx, "k", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected presign unsupported, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
	s, err := New(context.Background(), Config{Bucket: "bkt", Endpoint: "https://documents.test", PathStyle: true, AccessKeyID: "test", SecretAccessKey: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != core.DriverS3 {
		t.Fatalf("expected DriverS3")
	}
}

func TestFromHeadNilFields(t *testing.T) {
	store := NewMockForTests()
	info := store.fromHead("k", 10, nil, aws.String("\"etagval\""), map[string]string{"x": "y"}, nil)
	if info.ETag != "etagval" || info.ContentType != "" || info.Key != "k" || info.Size != 10 || info.LastModified.IsZero() {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestNotFoundPassesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	if got := notFound("k", boom); got != boom {
		t.Fatalf("unexpected mapping %v", got)
	}
}

func TestOverwritePutReplacesObject(t *testing.T) {
	store := NewMockForTests()
	ctx := context.Background()
	if _, err := store.Put(ctx, "cafe_data.json", bytes.NewReader([]byte(`{"v":1}`)), core.PutOptions{ContentType: "application/json"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := store.Put(ctx, "cafe_data.json", bytes.NewReader([]byte(`{"v":22}`)), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"origin": "restaurant"},
		Overwrite:   true,
	})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if info.Size != 8 || info.Metadata["origin"] != "restaurant" {
		t.Fatalf("unexpected info %+v", info)
	}
	_, rc, err := store.Get(ctx, "cafe_data.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	if data, _ := io.ReadAll(rc); string(data) != `{"v":22}` {
		t.Fatalf("overwrite not visible: %q", data)
	}
}

func TestUnchunk(t *testing.T) {
	if _, err := unchunk([]byte("not-chunked")); err == nil {
		t.Fatalf("plain body decoded")
	}
	if _, err := unchunk([]byte("5\r\nabc\r\n0\r\n")); err == nil {
		t.Fatalf("short chunk should fail")
	}
	got, err := unchunk([]byte("5;chunk-signature=x\r\nhello\r\n2\r\n\r\n\r\n0\r\nx-amz-checksum-crc32:AAAA\r\n\r\n"))
	if err != nil || string(got) != "hello\r\n" {
		t.Fatalf("unchunk = %q %v", got, err)
	}
}

func TestFakeBucketUnsupportedMethod(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]fakeObject{}}
	req, _ := http.NewRequest(http.MethodPatch, "https://documents.test/restaurant-documents/key", nil)
	resp, _ := bucket.RoundTrip(req)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.StatusCode)
	}
}
