package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"restaurantcore/pkg/domain"
)

func openTemp(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestLoadEmptyDatabase(t *testing.T) {
	b := openTemp(t)
	_, found, err := b.Load(context.Background())
	if err != nil || found {
		t.Fatalf("expected no document, found=%v err=%v", found, err)
	}
}

func TestSaveAndLoadSections(t *testing.T) {
	ctx := context.Background()
	b := openTemp(t)
	doc := domain.Document{
		RestaurantName:  json.RawMessage(`"Cafe"`),
		MenuItems:       json.RawMessage(`{"m1":{"id":"m1"}}`),
		ActiveOrders:    json.RawMessage(`{}`),
		CompletedOrders: json.RawMessage(`{}`),
		DailyRevenue:    json.RawMessage(`12.5`),
	}
	if err := b.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc.DailyRevenue = json.RawMessage(`20`)
	doc.MenuItems = nil
	if err := b.Save(ctx, doc); err != nil {
		t.Fatalf("second save: %v", err)
	}

	reopened, err := Open(b.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, found, err := reopened.Load(ctx)
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if string(got.RestaurantName) != `"Cafe"` || string(got.DailyRevenue) != `20` {
		t.Fatalf("unexpected sections %+v", got)
	}
	if got.MenuItems != nil {
		t.Fatalf("dropped section came back: %s", got.MenuItems)
	}
	var rows int
	if err := reopened.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&rows); err != nil || rows != 4 {
		t.Fatalf("expected 4 rows, got %d (%v)", rows, err)
	}
}

func TestSaveCanceledContext(t *testing.T) {
	b := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Save(ctx, domain.Document{DailyRevenue: json.RawMessage(`0`)}); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
