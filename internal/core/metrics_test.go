package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"restaurantcore/internal/infra/persistence/memory"
	"restaurantcore/pkg/domain"
)

func TestPrometheusMetricsTrackOperationsAndState(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	f := newFixture(t, WithMetrics(m))
	ctx := context.Background()

	item := mustAddItem(t, f.store, "Coffee", "3.99", "Beverage")
	order := mustCreateOrder(t, f.store, 1, "Al")
	if err := f.store.AddItemToOrder(ctx, order.ID, item.ID, 3, ""); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := f.store.AddItemToOrder(ctx, "missing", item.ID, 1, ""); err == nil {
		t.Fatalf("expected failure for missing order")
	}
	if err := f.store.UpdateOrderStatus(ctx, order.ID, domain.StatusPaid); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if got := testutil.ToFloat64(m.operations.WithLabelValues("add_item_to_order", "success")); got != 1 {
		t.Fatalf("add_item_to_order success = %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("add_item_to_order", "error")); got != 1 {
		t.Fatalf("add_item_to_order error = %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("load", "success")); got != 1 {
		t.Fatalf("load success = %v", got)
	}
	if got := testutil.ToFloat64(m.completed); got != 1 {
		t.Fatalf("completed gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.active); got != 0 {
		t.Fatalf("active gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.revenue); got != 11.97 {
		t.Fatalf("revenue gauge = %v", got)
	}

	expected := `
# HELP restaurant_menu_items Menu items in the catalog.
# TYPE restaurant_menu_items gauge
restaurant_menu_items 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "restaurant_menu_items"); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n := testutil.CollectAndCount(m.durations); n != 5 {
		t.Fatalf("duration series = %d, want one per operation", n)
	}
}

func TestPrometheusMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetrics(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := NewPrometheusMetrics(reg)
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		t.Fatalf("expected AlreadyRegisteredError, got %v", err)
	}
}

func TestPrometheusMetricsIgnoreUnnamedOperation(t *testing.T) {
	m, err := NewPrometheusMetrics(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Observe(context.Background(), "", true, time.Millisecond)
	if n := testutil.CollectAndCount(m.operations); n != 0 {
		t.Fatalf("unnamed operation recorded %d series", n)
	}
}

func TestNoopDefaults(t *testing.T) {
	var logger Logger = noopLogger{}
	logger.Debug("x")
	logger.Info("x")
	logger.Warn("x")
	logger.Error("x")
	var metrics MetricsRecorder = noopMetrics{}
	metrics.Observe(context.Background(), "op", true, 0)
	metrics.RecordState(StateSummary{})

	// A store built without options must still accept mutations.
	s, err := Open(context.Background(), "Plain", memory.New())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.AddMenuItem(context.Background(), "Tea", "Green", money("2"), "Beverage"); err != nil {
		t.Fatalf("add: %v", err)
	}
}
