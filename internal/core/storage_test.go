package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurantcore/internal/infra/persistence/document"
	"restaurantcore/internal/infra/persistence/memory"
	"restaurantcore/internal/infra/persistence/sqlite"
)

func TestOpenBackendMemory(t *testing.T) {
	b, err := OpenBackend(context.Background(), StorageOptions{Driver: StorageMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := b.(*memory.Backend); !ok {
		t.Fatalf("unexpected backend %T", b)
	}
}

func TestOpenBackendFileDefault(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := OpenBackend(ctx, StorageOptions{RestaurantName: "Delicious Bites", DataDir: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc, ok := b.(*document.Backend)
	if !ok || doc.Key() != "delicious_bites_data.json" {
		t.Fatalf("unexpected backend %T", b)
	}

	s, err := Open(ctx, "Delicious Bites", b)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := s.AddMenuItem(ctx, "Tea", "Green", money("2.50"), "Beverage"); err != nil {
		t.Fatalf("add: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "delicious_bites_data.json"))
	if err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"menu_items\": {") {
		t.Fatalf("document not indented:\n%s", data)
	}
}

func TestOpenBackendSQLiteDefaultPath(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBackend(context.Background(), StorageOptions{Driver: StorageSQLite, RestaurantName: "Cafe Uno", DataDir: dir})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	sb, ok := b.(*sqlite.Backend)
	if !ok {
		t.Fatalf("unexpected backend %T", b)
	}
	if want := filepath.Join(dir, "cafe_uno_data.db"); sb.Path() != want {
		t.Fatalf("path = %s, want %s", sb.Path(), want)
	}
}

func TestOpenBackendErrors(t *testing.T) {
	cases := map[string]StorageOptions{
		"unknown driver":  {Driver: "floppy"},
		"s3 no bucket":    {Driver: StorageS3},
		"file under file": {Driver: StorageFile, DataDir: fileInTemp(t)},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			if b, err := OpenBackend(context.Background(), opts); err == nil {
				t.Fatalf("expected error, got %T", b)
			}
		})
	}
}

func fileInTemp(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return filepath.Join(path, "data")
}
