package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"restaurantcore/pkg/domain"
)

func TestBackendCopiesDocuments(t *testing.T) {
	ctx := context.Background()
	b := New()
	if _, found, err := b.Load(ctx); err != nil || found {
		t.Fatalf("new backend should be empty: %v %v", found, err)
	}
	doc := domain.Document{RestaurantName: json.RawMessage(`"Cafe"`)}
	if err := b.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc.RestaurantName[1] = 'X'
	got, found, err := b.Load(ctx)
	if err != nil || !found || string(got.RestaurantName) != `"Cafe"` {
		t.Fatalf("load: %s %v %v", got.RestaurantName, found, err)
	}
	if b.Saves() != 1 {
		t.Fatalf("saves = %d", b.Saves())
	}
}

func TestBackendInjectedErrors(t *testing.T) {
	ctx := context.Background()
	b := NewWithDocument(domain.Document{DailyRevenue: json.RawMessage(`1`)})
	b.SaveErr = errors.New("disk full")
	if err := b.Save(ctx, domain.Document{}); !errors.Is(err, b.SaveErr) {
		t.Fatalf("save err = %v", err)
	}
	if b.Saves() != 0 {
		t.Fatalf("failed save counted")
	}
	b.LoadErr = errors.New("unreadable")
	if _, _, err := b.Load(ctx); !errors.Is(err, b.LoadErr) {
		t.Fatalf("load err = %v", err)
	}
	if doc, found := b.Document(); !found || string(doc.DailyRevenue) != "1" {
		t.Fatalf("preloaded document lost")
	}
}
