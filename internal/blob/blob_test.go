package blob

import (
	"context"
	"strings"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		cfg  Config
		want Driver
	}{
		{Config{FSRoot: t.TempDir()}, DriverFilesystem},
		{Config{Driver: DriverFilesystem, FSRoot: t.TempDir()}, DriverFilesystem},
		{Config{Driver: DriverMemory}, DriverMemory},
		{Config{Driver: DriverS3, S3: S3Config{Bucket: "bkt", AccessKeyID: "AKIA", SecretAccessKey: "SECRET"}}, DriverS3},
	}
	for _, tc := range cases {
		store, err := Open(ctx, tc.cfg)
		if err != nil {
			t.Fatalf("open %+v: %v", tc.cfg, err)
		}
		if store.Driver() != tc.want {
			t.Fatalf("driver = %s, want %s", store.Driver(), tc.want)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected error without bucket")
	}
}

func TestDriversAgreeOnMissingKeys(t *testing.T) {
	ctx := context.Background()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	for _, store := range []Store{fsStore, NewMemory(), NewMockS3ForTests()} {
		if _, _, err := store.Get(ctx, "absent.json"); !IsNotFound(err) {
			t.Errorf("%s get: %v", store.Driver(), err)
		}
		if _, err := store.Put(ctx, "present.json", strings.NewReader("{}"), PutOptions{}); err != nil {
			t.Fatalf("%s put: %v", store.Driver(), err)
		}
		if _, err := store.Head(ctx, "present.json"); err != nil {
			t.Errorf("%s head: %v", store.Driver(), err)
		}
	}
}
