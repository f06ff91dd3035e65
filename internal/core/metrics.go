package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// MetricsRecorder observes store operations and the resulting state summary.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	RecordState(summary StateSummary)
}

// StateSummary is the aggregate view of the store published after each change.
type StateSummary struct {
	MenuItems       int
	ActiveOrders    int
	CompletedOrders int
	Revenue         decimal.Decimal
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (noopMetrics) RecordState(StateSummary)                            {}

// PrometheusMetrics implements MetricsRecorder with client_golang collectors.
type PrometheusMetrics struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	menuItems  prometheus.Gauge
	active     prometheus.Gauge
	completed  prometheus.Gauge
	revenue    prometheus.Gauge
}

// NewPrometheusMetrics registers the store collectors with reg. A nil reg
// leaves the collectors unregistered, which is useful in tests.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restaurant",
			Name:      "store_operations_total",
			Help:      "Store operations by name and result.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "restaurant",
			Name:      "store_operation_duration_seconds",
			Help:      "Store operation latency including the document save.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		menuItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "restaurant",
			Name:      "menu_items",
			Help:      "Menu items in the catalog.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "restaurant",
			Name:      "active_orders",
			Help:      "Orders not yet paid.",
		}),
		completed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "restaurant",
			Name:      "completed_orders",
			Help:      "Paid orders.",
		}),
		revenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "restaurant",
			Name:      "revenue_total",
			Help:      "Cumulative revenue from paid orders.",
		}),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.operations, m.durations, m.menuItems, m.active, m.completed, m.revenue}
}

// Observe records one operation outcome.
func (m *PrometheusMetrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordState updates the state gauges.
func (m *PrometheusMetrics) RecordState(summary StateSummary) {
	m.menuItems.Set(float64(summary.MenuItems))
	m.active.Set(float64(summary.ActiveOrders))
	m.completed.Set(float64(summary.CompletedOrders))
	m.revenue.Set(summary.Revenue.InexactFloat64())
}
